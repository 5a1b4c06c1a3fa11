package trainer

import (
	"time"

	"github.com/shopspring/decimal"
)

type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageInactive PackageStatus = "inactive"
)

type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCancelled AssignmentStatus = "cancelled"
	AssignmentCompleted AssignmentStatus = "completed"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionMissed    SessionStatus = "missed"
)

type Package struct {
	ID                int             `db:"id" json:"id"`
	PersonalTrainerID int             `db:"personal_trainer_id" json:"personal_trainer_id"`
	Name              string          `db:"name" json:"name"`
	Description       string          `db:"description" json:"description"`
	DayDuration       int             `db:"day_duration" json:"day_duration"`
	Price             decimal.Decimal `db:"price" json:"price" swaggertype:"string" example:"500000.00"`
	Status            PackageStatus   `db:"status" json:"status"`
	ImageKey          *string         `db:"image_key" json:"image_key,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

func (p *Package) IsActive() bool {
	return p.Status == PackageActive
}

// Assignment is a count-boxed entitlement: DayLeft sessions with one trainer.
type Assignment struct {
	ID                       int              `db:"id" json:"id"`
	UserID                   int              `db:"user_id" json:"user_id"`
	PersonalTrainerID        int              `db:"personal_trainer_id" json:"personal_trainer_id"`
	PersonalTrainerPackageID int              `db:"personal_trainer_package_id" json:"personal_trainer_package_id"`
	DayLeft                  int              `db:"day_left" json:"day_left"`
	StartDate                time.Time        `db:"start_date" json:"start_date"`
	EndDate                  *time.Time       `db:"end_date" json:"end_date,omitempty"`
	Status                   AssignmentStatus `db:"status" json:"status"`
	CreatedAt                time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time        `db:"updated_at" json:"updated_at"`
}

type Session struct {
	ID                          int           `db:"id" json:"id"`
	PersonalTrainerAssignmentID int           `db:"personal_trainer_assignment_id" json:"personal_trainer_assignment_id"`
	ScheduledAt                 time.Time     `db:"scheduled_at" json:"scheduled_at"`
	Status                      SessionStatus `db:"status" json:"status"`
	CheckInAt                   *time.Time    `db:"check_in_at" json:"check_in_at,omitempty"`
	CheckOutAt                  *time.Time    `db:"check_out_at" json:"check_out_at,omitempty"`
	TrainingLog                 string        `db:"training_log" json:"training_log"`
	CreatedAt                   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt                   time.Time     `db:"updated_at" json:"updated_at"`
}

type CreatePackageRequest struct {
	PersonalTrainerID int             `json:"personal_trainer_id" binding:"required,min=1"`
	Name              string          `json:"name" binding:"required,max=255"`
	Description       string          `json:"description"`
	DayDuration       int             `json:"day_duration" binding:"required,min=1"`
	Price             decimal.Decimal `json:"price" swaggertype:"string"`
	ImageKey          *string         `json:"image_key"`
}

type ScheduleSessionRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required" example:"2025-01-21T09:00:00+07:00"`
}

type CompleteSessionRequest struct {
	TrainingLog string `json:"training_log"`
}

type UpdateSessionRequest struct {
	Status      SessionStatus `json:"status" binding:"required,oneof=cancelled missed"`
	TrainingLog string        `json:"training_log"`
}
