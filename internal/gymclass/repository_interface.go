package gymclass

import (
	"context"
	"time"
)

type Repository interface {
	CreateClass(ctx context.Context, g *GymClass) error
	GetClass(ctx context.Context, id int) (*GymClass, error)
	ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error)

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetSchedule(ctx context.Context, id int) (*Schedule, error)
	GetScheduleForUpdate(ctx context.Context, id int) (*Schedule, error)
	ListSchedules(ctx context.Context, classID int, from time.Time) ([]Schedule, error)
	DecrementAvailable(ctx context.Context, scheduleID int) (bool, error)
	IncrementAvailable(ctx context.Context, scheduleID int) error
	SetCapacity(ctx context.Context, scheduleID, slot, available int) error

	CreateAttendance(ctx context.Context, a *Attendance) error
	GetAttendance(ctx context.Context, id int) (*Attendance, error)
	AttendanceExists(ctx context.Context, userID, scheduleID int) (bool, error)
	CountAttendances(ctx context.Context, scheduleID int) (int, error)
	DeleteAttendance(ctx context.Context, id int) error
	UpdateAttendanceStatus(ctx context.Context, id int, status AttendanceStatus, attendedAt *time.Time) error
	ListAttendancesByUser(ctx context.Context, userID int) ([]Attendance, error)
	ListAttendancesBySchedule(ctx context.Context, scheduleID int) ([]Attendance, error)
}
