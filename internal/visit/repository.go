package visit

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrAlreadyCheckedIn = apperr.Conflict("already checked in")
	ErrNotCheckedIn     = apperr.Conflict("no open visit to check out")
)

const visitColumns = `id, user_id, check_in_at, check_out_at, created_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

// CheckIn opens a visit. The partial unique index on open visits turns a
// second concurrent check-in into ErrAlreadyCheckedIn.
func (r *repository) CheckIn(ctx context.Context, userID int, at time.Time) (*Visit, error) {
	var v Visit
	err := sqlx.GetContext(ctx, r.db, &v, `
		INSERT INTO gym_visits (user_id, check_in_at)
		VALUES ($1, $2)
		RETURNING `+visitColumns, userID, at)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) FindOpen(ctx context.Context, userID int) (*Visit, error) {
	var v Visit
	err := sqlx.GetContext(ctx, r.db, &v,
		`SELECT `+visitColumns+` FROM gym_visits WHERE user_id = $1 AND check_out_at IS NULL`, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) CheckOut(ctx context.Context, id int, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gym_visits SET check_out_at = $1 WHERE id = $2 AND check_out_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotCheckedIn
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Visit, error) {
	visits := []Visit{}
	err := sqlx.SelectContext(ctx, r.db, &visits,
		`SELECT `+visitColumns+` FROM gym_visits WHERE user_id = $1 ORDER BY check_in_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return visits, nil
}
