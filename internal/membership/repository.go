package membership

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPackageNotFound = apperr.NotFound("membership package not found")
	ErrCodeTaken       = apperr.Conflict("membership package code already exists")
)

const (
	packageColumns = `id, code, name, description, duration, price, status, image_key, created_at, updated_at`
	historyColumns = `id, user_id, membership_package_id, start_date, end_date, status, created_at, updated_at`
)

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) CreatePackage(ctx context.Context, p *Package) error {
	query := `
		INSERT INTO membership_packages (code, name, description, duration, price, status, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if p.Status == "" {
		p.Status = PackageActive
	}

	err := r.db.QueryRowxContext(ctx, query, p.Code, p.Name, p.Description, p.Duration, p.Price, p.Status, p.ImageKey).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrCodeTaken
	}
	return err
}

func (r *repository) GetPackage(ctx context.Context, id int) (*Package, error) {
	var p Package
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+packageColumns+` FROM membership_packages WHERE id = $1`, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPackages(ctx context.Context, onlyActive bool) ([]Package, error) {
	query := `SELECT ` + packageColumns + ` FROM membership_packages`
	if onlyActive {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY duration, id`

	packages := []Package{}
	if err := sqlx.SelectContext(ctx, r.db, &packages, query); err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repository) CreateHistory(ctx context.Context, h *History) error {
	query := `
		INSERT INTO membership_histories (user_id, membership_package_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query, h.UserID, h.MembershipPackageID, h.StartDate, h.EndDate, h.Status).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *repository) ListHistories(ctx context.Context, userID int) ([]History, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM membership_histories
		WHERE user_id = $1
		ORDER BY start_date DESC, id DESC
	`
	histories := []History{}
	if err := sqlx.SelectContext(ctx, r.db, &histories, query, userID); err != nil {
		return nil, err
	}
	return histories, nil
}

// ExpireEnded closes every active or upcoming period that ended before now.
func (r *repository) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE membership_histories
		SET status = 'expired', updated_at = NOW()
		WHERE status IN ('active', 'upcoming') AND end_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) ExpireEndedForUser(ctx context.Context, userID int, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE membership_histories
		SET status = 'expired', updated_at = NOW()
		WHERE user_id = $1 AND status IN ('active', 'upcoming') AND end_date < $2
	`, userID, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PromoteDue activates the earliest due upcoming period of users that no
// longer hold an active one.
func (r *repository) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE membership_histories h
		SET status = 'active', updated_at = NOW()
		WHERE h.status = 'upcoming'
		  AND h.start_date <= $1
		  AND h.start_date = (
			SELECT MIN(u.start_date) FROM membership_histories u
			WHERE u.user_id = h.user_id AND u.status = 'upcoming'
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM membership_histories a
			WHERE a.user_id = h.user_id AND a.status = 'active'
		  )
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
