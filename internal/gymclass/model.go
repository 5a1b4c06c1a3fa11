package gymclass

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type AttendanceStatus string

const (
	AttendanceAssigned AttendanceStatus = "assigned"
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceMissed   AttendanceStatus = "missed"
)

const DateLayout = "2006-01-02"

type GymClass struct {
	ID          int             `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price" swaggertype:"string" example:"75000.00"`
	Status      Status          `db:"status" json:"status"`
	ImageKey    *string         `db:"image_key" json:"image_key,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

func (g *GymClass) IsActive() bool {
	return g.Status == StatusActive
}

// Schedule is one dated session of a class. StartTime and EndTime are
// wall-clock times ("15:04" or "15:04:05") in the gym's timezone.
type Schedule struct {
	ID            int       `db:"id" json:"id"`
	GymClassID    int       `db:"gym_class_id" json:"gym_class_id"`
	Date          time.Time `db:"date" json:"date"`
	StartTime     string    `db:"start_time" json:"start_time" example:"07:30:00"`
	EndTime       string    `db:"end_time" json:"end_time" example:"08:30:00"`
	Slot          int       `db:"slot" json:"slot"`
	AvailableSlot int       `db:"available_slot" json:"available_slot"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StartsAt combines the schedule date with its start time in loc.
func (s *Schedule) StartsAt(loc *time.Location) (time.Time, error) {
	return combine(s.Date, s.StartTime, loc)
}

func (s *Schedule) EndsAt(loc *time.Location) (time.Time, error) {
	return combine(s.Date, s.EndTime, loc)
}

func combine(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// ParseClock accepts "15:04:05" and "15:04".
func ParseClock(clock string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid clock time %q", clock)
}

type Attendance struct {
	ID                 int              `db:"id" json:"id"`
	UserID             int              `db:"user_id" json:"user_id"`
	GymClassScheduleID int              `db:"gym_class_schedule_id" json:"gym_class_schedule_id"`
	Status             AttendanceStatus `db:"status" json:"status"`
	AttendedAt         *time.Time       `db:"attended_at" json:"attended_at,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

type CreateClassRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	ImageKey    *string         `json:"image_key"`
}

type CreateScheduleRequest struct {
	Date      string `json:"date" binding:"required" example:"2025-01-20"`
	StartTime string `json:"start_time" binding:"required" example:"07:30"`
	EndTime   string `json:"end_time" binding:"required" example:"08:30"`
	Slot      int    `json:"slot" binding:"required,min=1"`
}

type ResizeRequest struct {
	Slot int `json:"slot" binding:"gte=0"`
}

type MarkAttendanceRequest struct {
	Status AttendanceStatus `json:"status" binding:"required,oneof=attended missed"`
}
