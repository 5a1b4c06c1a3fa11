package gymclass

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
)

var (
	ErrScheduleInvalid = apperr.Validation("invalid class schedule")
	ErrInvalidPrice    = apperr.Validation("price must not be negative")
)

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error)
	ListClasses(ctx context.Context) ([]GymClass, error)
	CreateSchedule(ctx context.Context, classID int, req CreateScheduleRequest) (*Schedule, error)
	ListSchedules(ctx context.Context, classID int, now time.Time) ([]Schedule, error)
	ListScheduleAttendances(ctx context.Context, scheduleID int) ([]Attendance, error)
	ListUserBookings(ctx context.Context, userID int) ([]Attendance, error)
}

type service struct {
	repo Repository
	loc  *time.Location
}

func NewService(repo Repository, loc *time.Location) Service {
	return &service{repo: repo, loc: loc}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	g := &GymClass{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Status:      StatusActive,
		ImageKey:    req.ImageKey,
	}
	if err := s.repo.CreateClass(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) ListClasses(ctx context.Context) ([]GymClass, error) {
	return s.repo.ListClasses(ctx, true)
}

func (s *service) CreateSchedule(ctx context.Context, classID int, req CreateScheduleRequest) (*Schedule, error) {
	if _, err := s.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(DateLayout, req.Date, s.loc)
	if err != nil {
		return nil, ErrScheduleInvalid
	}
	start, err := ParseClock(req.StartTime)
	if err != nil {
		return nil, ErrScheduleInvalid
	}
	end, err := ParseClock(req.EndTime)
	if err != nil {
		return nil, ErrScheduleInvalid
	}
	if !end.After(start) || req.Slot <= 0 {
		return nil, ErrScheduleInvalid
	}

	schedule := &Schedule{
		GymClassID:    classID,
		Date:          date,
		StartTime:     start.Format("15:04:05"),
		EndTime:       end.Format("15:04:05"),
		Slot:          req.Slot,
		AvailableSlot: req.Slot,
	}
	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *service) ListSchedules(ctx context.Context, classID int, now time.Time) ([]Schedule, error) {
	if _, err := s.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.repo.ListSchedules(ctx, classID, now.In(s.loc))
}

func (s *service) ListScheduleAttendances(ctx context.Context, scheduleID int) ([]Attendance, error) {
	if _, err := s.repo.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.repo.ListAttendancesBySchedule(ctx, scheduleID)
}

func (s *service) ListUserBookings(ctx context.Context, userID int) ([]Attendance, error) {
	return s.repo.ListAttendancesByUser(ctx, userID)
}
