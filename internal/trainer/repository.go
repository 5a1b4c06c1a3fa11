package trainer

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPackageNotFound    = apperr.NotFound("personal trainer package not found")
	ErrAssignmentNotFound = apperr.NotFound("personal trainer assignment not found")
	ErrSessionNotFound    = apperr.NotFound("training session not found")
)

const (
	packageColumns    = `id, personal_trainer_id, name, description, day_duration, price, status, image_key, created_at, updated_at`
	assignmentColumns = `id, user_id, personal_trainer_id, personal_trainer_package_id, day_left, start_date, end_date, status, created_at, updated_at`
	sessionColumns    = `id, personal_trainer_assignment_id, scheduled_at, status, check_in_at, check_out_at, training_log, created_at, updated_at`
)

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) CreatePackage(ctx context.Context, p *Package) error {
	query := `
		INSERT INTO personal_trainer_packages (personal_trainer_id, name, description, day_duration, price, status, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if p.Status == "" {
		p.Status = PackageActive
	}
	return r.db.QueryRowxContext(ctx, query,
		p.PersonalTrainerID, p.Name, p.Description, p.DayDuration, p.Price, p.Status, p.ImageKey,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) GetPackage(ctx context.Context, id int) (*Package, error) {
	var p Package
	if err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+packageColumns+` FROM personal_trainer_packages WHERE id = $1`, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPackages(ctx context.Context, onlyActive bool) ([]Package, error) {
	query := `SELECT ` + packageColumns + ` FROM personal_trainer_packages`
	if onlyActive {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY personal_trainer_id, id`

	packages := []Package{}
	if err := sqlx.SelectContext(ctx, r.db, &packages, query); err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repository) CreateAssignment(ctx context.Context, a *Assignment) error {
	query := `
		INSERT INTO personal_trainer_assignments
			(user_id, personal_trainer_id, personal_trainer_package_id, day_left, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		a.UserID, a.PersonalTrainerID, a.PersonalTrainerPackageID, a.DayLeft, a.StartDate, a.EndDate, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repository) GetAssignment(ctx context.Context, id int) (*Assignment, error) {
	return r.getAssignment(ctx, `SELECT `+assignmentColumns+` FROM personal_trainer_assignments WHERE id = $1`, id)
}

func (r *repository) GetAssignmentForUpdate(ctx context.Context, id int) (*Assignment, error) {
	return r.getAssignment(ctx, `SELECT `+assignmentColumns+` FROM personal_trainer_assignments WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) getAssignment(ctx context.Context, query string, id int) (*Assignment, error) {
	var a Assignment
	if err := sqlx.GetContext(ctx, r.db, &a, query, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListAssignmentsByUser(ctx context.Context, userID int) ([]Assignment, error) {
	assignments := []Assignment{}
	err := sqlx.SelectContext(ctx, r.db, &assignments,
		`SELECT `+assignmentColumns+` FROM personal_trainer_assignments WHERE user_id = $1 ORDER BY start_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repository) UpdateAssignmentProgress(ctx context.Context, id, dayLeft int, status AssignmentStatus, endDate *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE personal_trainer_assignments
		SET day_left = $1, status = $2, end_date = $3, updated_at = NOW()
		WHERE id = $4
	`, dayLeft, status, endDate, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *repository) CreateSession(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO personal_trainer_schedules (personal_trainer_assignment_id, scheduled_at, status, training_log)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if s.Status == "" {
		s.Status = SessionScheduled
	}
	return r.db.QueryRowxContext(ctx, query, s.PersonalTrainerAssignmentID, s.ScheduledAt, s.Status, s.TrainingLog).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *repository) GetSession(ctx context.Context, id int) (*Session, error) {
	return r.getSession(ctx, `SELECT `+sessionColumns+` FROM personal_trainer_schedules WHERE id = $1`, id)
}

func (r *repository) GetSessionForUpdate(ctx context.Context, id int) (*Session, error) {
	return r.getSession(ctx, `SELECT `+sessionColumns+` FROM personal_trainer_schedules WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) getSession(ctx context.Context, query string, id int) (*Session, error) {
	var s Session
	if err := sqlx.GetContext(ctx, r.db, &s, query, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListSessions(ctx context.Context, assignmentID int) ([]Session, error) {
	sessions := []Session{}
	err := sqlx.SelectContext(ctx, r.db, &sessions,
		`SELECT `+sessionColumns+` FROM personal_trainer_schedules WHERE personal_trainer_assignment_id = $1 ORDER BY scheduled_at, id`,
		assignmentID)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repository) UpdateSession(ctx context.Context, s *Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE personal_trainer_schedules
		SET status = $1, check_in_at = $2, check_out_at = $3, training_log = $4, updated_at = NOW()
		WHERE id = $5
	`, s.Status, s.CheckInAt, s.CheckOutAt, s.TrainingLog, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
