package gymclass

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrClassNotFound      = apperr.NotFound("gym class not found")
	ErrScheduleNotFound   = apperr.NotFound("class schedule not found")
	ErrAttendanceNotFound = apperr.NotFound("booking not found")
)

const (
	classColumns    = `id, name, description, price, status, image_key, created_at, updated_at`
	scheduleColumns = `id, gym_class_id, date, start_time::text AS start_time, end_time::text AS end_time, slot, available_slot, created_at, updated_at`
	attendanceCols  = `id, user_id, gym_class_schedule_id, status, attended_at, created_at, updated_at`
)

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) CreateClass(ctx context.Context, g *GymClass) error {
	query := `
		INSERT INTO gym_classes (name, description, price, status, image_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if g.Status == "" {
		g.Status = StatusActive
	}
	return r.db.QueryRowxContext(ctx, query, g.Name, g.Description, g.Price, g.Status, g.ImageKey).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (r *repository) GetClass(ctx context.Context, id int) (*GymClass, error) {
	var g GymClass
	if err := sqlx.GetContext(ctx, r.db, &g, `SELECT `+classColumns+` FROM gym_classes WHERE id = $1`, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error) {
	query := `SELECT ` + classColumns + ` FROM gym_classes`
	if onlyActive {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY name, id`

	classes := []GymClass{}
	if err := sqlx.SelectContext(ctx, r.db, &classes, query); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *repository) CreateSchedule(ctx context.Context, s *Schedule) error {
	query := `
		INSERT INTO gym_class_schedules (gym_class_id, date, start_time, end_time, slot, available_slot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		s.GymClassID, s.Date.Format(DateLayout), s.StartTime, s.EndTime, s.Slot, s.AvailableSlot,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *repository) GetSchedule(ctx context.Context, id int) (*Schedule, error) {
	return r.getSchedule(ctx, `SELECT `+scheduleColumns+` FROM gym_class_schedules WHERE id = $1`, id)
}

// GetScheduleForUpdate locks the schedule row until the surrounding
// transaction ends. Every capacity change goes through this lock.
func (r *repository) GetScheduleForUpdate(ctx context.Context, id int) (*Schedule, error) {
	return r.getSchedule(ctx, `SELECT `+scheduleColumns+` FROM gym_class_schedules WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) getSchedule(ctx context.Context, query string, id int) (*Schedule, error) {
	var s Schedule
	if err := sqlx.GetContext(ctx, r.db, &s, query, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListSchedules(ctx context.Context, classID int, from time.Time) ([]Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM gym_class_schedules
		WHERE gym_class_id = $1 AND date >= $2
		ORDER BY date, start_time
	`
	schedules := []Schedule{}
	if err := sqlx.SelectContext(ctx, r.db, &schedules, query, classID, from.Format(DateLayout)); err != nil {
		return nil, err
	}
	return schedules, nil
}

// DecrementAvailable takes one seat. It reports false when the floor
// guard rejected the write.
func (r *repository) DecrementAvailable(ctx context.Context, scheduleID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE gym_class_schedules
		SET available_slot = available_slot - 1, updated_at = NOW()
		WHERE id = $1 AND available_slot > 0
	`, scheduleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) IncrementAvailable(ctx context.Context, scheduleID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE gym_class_schedules
		SET available_slot = LEAST(available_slot + 1, slot), updated_at = NOW()
		WHERE id = $1
	`, scheduleID)
	return err
}

func (r *repository) SetCapacity(ctx context.Context, scheduleID, slot, available int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE gym_class_schedules
		SET slot = $1, available_slot = $2, updated_at = NOW()
		WHERE id = $3
	`, slot, available, scheduleID)
	return err
}

func (r *repository) CreateAttendance(ctx context.Context, a *Attendance) error {
	query := `
		INSERT INTO gym_class_attendances (user_id, gym_class_schedule_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	if a.Status == "" {
		a.Status = AttendanceAssigned
	}
	err := r.db.QueryRowxContext(ctx, query, a.UserID, a.GymClassScheduleID, a.Status).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrAlreadyBooked
	}
	return err
}

func (r *repository) GetAttendance(ctx context.Context, id int) (*Attendance, error) {
	var a Attendance
	if err := sqlx.GetContext(ctx, r.db, &a, `SELECT `+attendanceCols+` FROM gym_class_attendances WHERE id = $1`, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) AttendanceExists(ctx context.Context, userID, scheduleID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM gym_class_attendances WHERE user_id = $1 AND gym_class_schedule_id = $2)`,
		userID, scheduleID)
}

func (r *repository) CountAttendances(ctx context.Context, scheduleID int) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		`SELECT COUNT(*) FROM gym_class_attendances WHERE gym_class_schedule_id = $1`, scheduleID)
	return count, err
}

func (r *repository) DeleteAttendance(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gym_class_attendances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAttendanceNotFound
	}
	return nil
}

func (r *repository) UpdateAttendanceStatus(ctx context.Context, id int, status AttendanceStatus, attendedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE gym_class_attendances
		SET status = $1, attended_at = $2, updated_at = NOW()
		WHERE id = $3
	`, status, attendedAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAttendanceNotFound
	}
	return nil
}

func (r *repository) ListAttendancesByUser(ctx context.Context, userID int) ([]Attendance, error) {
	attendances := []Attendance{}
	err := sqlx.SelectContext(ctx, r.db, &attendances,
		`SELECT `+attendanceCols+` FROM gym_class_attendances WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return attendances, nil
}

func (r *repository) ListAttendancesBySchedule(ctx context.Context, scheduleID int) ([]Attendance, error) {
	attendances := []Attendance{}
	err := sqlx.SelectContext(ctx, r.db, &attendances,
		`SELECT `+attendanceCols+` FROM gym_class_attendances WHERE gym_class_schedule_id = $1 ORDER BY id`, scheduleID)
	if err != nil {
		return nil, err
	}
	return attendances, nil
}
