package visit

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCheckIn(t *testing.T) {
	repo, mock := setupMock(t)
	at := time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gym_visits (user_id, check_in_at) VALUES ($1, $2) RETURNING " + visitColumns)).
		WithArgs(1, at).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "check_in_at", "check_out_at", "created_at"}).
			AddRow(1, 1, at, nil, at))

	v, err := repo.CheckIn(context.Background(), 1, at)
	require.NoError(t, err)
	assert.Nil(t, v.CheckOutAt)
}

func TestCheckIn_AlreadyOpen(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gym_visits")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CheckIn(context.Background(), 1, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckOut_NothingOpen(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE gym_visits SET check_out_at = $1 WHERE id = $2 AND check_out_at IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.CheckOut(context.Background(), 4, time.Now()), ErrNotCheckedIn)
}
