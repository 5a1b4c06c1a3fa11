package gymclass

import (
	"context"
	"fmt"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
)

var (
	ErrNoCapacity    = apperr.Conflict("No available slots")
	ErrAlreadyBooked = apperr.Conflict("You have already booked this class schedule")
	ErrInvalidSlot   = apperr.Validation("slot must not be negative")
)

// The functions below must run against a Repository bound to an open
// transaction: they rely on the schedule row lock being held until commit.

// ReserveSlot books one seat on scheduleID for userID.
func ReserveSlot(ctx context.Context, repo Repository, scheduleID, userID int) (*Attendance, error) {
	schedule, err := repo.GetScheduleForUpdate(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.AvailableSlot <= 0 {
		return nil, ErrNoCapacity
	}

	a := &Attendance{UserID: userID, GymClassScheduleID: scheduleID, Status: AttendanceAssigned}
	if err := repo.CreateAttendance(ctx, a); err != nil {
		return nil, err
	}

	ok, err := repo.DecrementAvailable(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("decrement available slot: %w", err)
	}
	if !ok {
		return nil, ErrNoCapacity
	}
	return a, nil
}

// ReleaseSlot returns one seat, never exceeding the schedule's capacity.
func ReleaseSlot(ctx context.Context, repo Repository, scheduleID int) error {
	if _, err := repo.GetScheduleForUpdate(ctx, scheduleID); err != nil {
		return err
	}
	return repo.IncrementAvailable(ctx, scheduleID)
}

// ResizeCapacity sets a new capacity and re-derives available seats from
// the current attendance count.
func ResizeCapacity(ctx context.Context, repo Repository, scheduleID, newSlot int) (*Schedule, error) {
	if newSlot < 0 {
		return nil, ErrInvalidSlot
	}

	schedule, err := repo.GetScheduleForUpdate(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	booked, err := repo.CountAttendances(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	available := newSlot - booked
	if available < 0 {
		available = 0
	}
	if err := repo.SetCapacity(ctx, scheduleID, newSlot, available); err != nil {
		return nil, err
	}

	schedule.Slot = newSlot
	schedule.AvailableSlot = available
	return schedule, nil
}
