package user

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound = apperr.NotFound("user not found")
	ErrEmailExists  = apperr.Conflict("email already registered")
)

const userColumns = `id, name, email, password_hash, role, registration_status, membership_status, membership_end_date, created_at, updated_at`

type repository struct {
	db sqlx.ExtContext
}

// NewRepository binds the repository to a pool or to an open transaction.
func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash string, role Role) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var u User
	if err := sqlx.GetContext(ctx, r.db, &u, query, name, email, passwordHash, role); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id int) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) findOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	if err := sqlx.GetContext(ctx, r.db, &u, query, arg); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) UpdateMembershipSummary(ctx context.Context, id int, status MembershipStatus, endDate *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET membership_status = $1, membership_end_date = $2, updated_at = NOW()
		WHERE id = $3
	`, status, endDate, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *repository) MarkRegistered(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET registration_status = 'registered', updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeactivateLapsed flips cached membership flags whose end date has passed.
func (r *repository) DeactivateLapsed(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET membership_status = 'inactive', updated_at = NOW()
		WHERE membership_status = 'active'
		  AND (membership_end_date IS NULL OR membership_end_date < $1)
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowsResult interface {
	RowsAffected() (int64, error)
}

func expectOne(res rowsResult) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
