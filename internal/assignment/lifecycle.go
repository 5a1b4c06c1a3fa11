package assignment

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/logger"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
)

// CancelBooking deletes the member's booking and returns its seat. The class
// must start more than the cancellation window after now.
func (e *Engine) CancelBooking(ctx context.Context, userID, attendanceID int, now time.Time) error {
	var schedule *gymclass.Schedule
	err := e.uow.Within(ctx, func(r store.Repos) error {
		a, err := r.Classes.GetAttendance(ctx, attendanceID)
		if err != nil {
			return err
		}
		if a.UserID != userID {
			return ErrNotYourBooking
		}
		if a.Status != gymclass.AttendanceAssigned {
			return ErrBookingClosed
		}

		schedule, err = r.Classes.GetScheduleForUpdate(ctx, a.GymClassScheduleID)
		if err != nil {
			return err
		}
		startsAt, err := schedule.StartsAt(e.loc)
		if err != nil {
			return err
		}
		if startsAt.Sub(now) <= e.cancellationWindow {
			return ErrCancellationWindowExpired
		}

		if err := r.Classes.DeleteAttendance(ctx, a.ID); err != nil {
			return err
		}
		return gymclass.ReleaseSlot(ctx, r.Classes, schedule.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordBookingCancellation()
	e.announceCancellation(ctx, userID, schedule)
	return nil
}

func (e *Engine) announceCancellation(ctx context.Context, userID int, s *gymclass.Schedule) {
	if e.notifier == nil {
		return
	}
	r := e.uow.Repos()
	u, err := r.Users.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("cancellation notice skipped", "user_id", userID, "error", err.Error())
		return
	}
	class, err := r.Classes.GetClass(ctx, s.GymClassID)
	if err != nil {
		logger.Warn("cancellation notice skipped", "schedule_id", s.ID, "error", err.Error())
		return
	}
	if err := e.notifier.BookingCancelled(ctx, u, class, s); err != nil {
		logger.Warn("cancellation notice failed", "user_id", userID, "error", err.Error())
	}
}

func (e *Engine) MarkAttendance(ctx context.Context, attendanceID int, status gymclass.AttendanceStatus, now time.Time) (*gymclass.Attendance, error) {
	if status != gymclass.AttendanceAttended && status != gymclass.AttendanceMissed {
		return nil, ErrInvalidAttendanceStatus
	}

	var out *gymclass.Attendance
	err := e.uow.Within(ctx, func(r store.Repos) error {
		a, err := r.Classes.GetAttendance(ctx, attendanceID)
		if err != nil {
			return err
		}

		var attendedAt *time.Time
		if status == gymclass.AttendanceAttended {
			attendedAt = &now
		}
		if err := r.Classes.UpdateAttendanceStatus(ctx, a.ID, status, attendedAt); err != nil {
			return err
		}
		a.Status = status
		a.AttendedAt = attendedAt
		out = a
		return nil
	})
	return out, err
}

func (e *Engine) ResizeSchedule(ctx context.Context, scheduleID, slot int) (*gymclass.Schedule, error) {
	var out *gymclass.Schedule
	err := e.uow.Within(ctx, func(r store.Repos) error {
		var err error
		out, err = gymclass.ResizeCapacity(ctx, r.Classes, scheduleID, slot)
		return err
	})
	return out, err
}

// canActOn reports whether actor may touch sessions of a. Admins always may.
func canActOn(a *trainer.Assignment, actorID int, actorRole string) bool {
	if actorRole == string(user.RoleAdmin) {
		return true
	}
	return actorID == a.UserID || actorID == a.PersonalTrainerID
}

// ScheduleTrainingSession books a session under an assignment. Scheduled
// sessions never outnumber the sessions left.
func (e *Engine) ScheduleTrainingSession(ctx context.Context, actorID int, actorRole string, assignmentID int, scheduledAt, now time.Time) (*trainer.Session, error) {
	var out *trainer.Session
	err := e.uow.Within(ctx, func(r store.Repos) error {
		a, err := r.Trainers.GetAssignmentForUpdate(ctx, assignmentID)
		if err != nil {
			return err
		}
		if !canActOn(a, actorID, actorRole) {
			return trainer.ErrNotYours
		}
		if a.Status != trainer.AssignmentActive || a.DayLeft <= 0 {
			return ErrNoSessionsLeft
		}
		if !scheduledAt.After(now) {
			return ErrSessionInPast
		}

		sessions, err := r.Trainers.ListSessions(ctx, a.ID)
		if err != nil {
			return err
		}
		pending := 0
		for _, s := range sessions {
			if s.Status == trainer.SessionScheduled {
				pending++
			}
		}
		if pending >= a.DayLeft {
			return ErrNoSessionsLeft
		}

		s := &trainer.Session{
			PersonalTrainerAssignmentID: a.ID,
			ScheduledAt:                 scheduledAt,
			Status:                      trainer.SessionScheduled,
		}
		if err := r.Trainers.CreateSession(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTrainingSession(string(trainer.SessionScheduled))
	return out, nil
}

// CompleteTrainingSession marks a session completed and consumes one
// session-day of an active assignment. Completing an already completed
// session changes nothing.
func (e *Engine) CompleteTrainingSession(ctx context.Context, actorID int, actorRole string, sessionID int, log string, now time.Time) (*trainer.Session, error) {
	var out *trainer.Session
	consumed := false
	err := e.uow.Within(ctx, func(r store.Repos) error {
		s, err := r.Trainers.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		a, err := r.Trainers.GetAssignmentForUpdate(ctx, s.PersonalTrainerAssignmentID)
		if err != nil {
			return err
		}
		if actorRole != string(user.RoleAdmin) && actorID != a.PersonalTrainerID {
			return trainer.ErrNotYours
		}

		out = s
		if s.Status == trainer.SessionCompleted {
			return nil
		}
		if s.Status != trainer.SessionScheduled {
			return ErrSessionClosed
		}
		if a.Status != trainer.AssignmentActive {
			return ErrAssignmentClosed
		}

		if s.CheckInAt == nil {
			checkIn := s.ScheduledAt
			s.CheckInAt = &checkIn
		}
		s.CheckOutAt = &now
		s.Status = trainer.SessionCompleted
		if log != "" {
			s.TrainingLog = log
		}
		if err := r.Trainers.UpdateSession(ctx, s); err != nil {
			return err
		}

		dayLeft := a.DayLeft - 1
		if dayLeft < 0 {
			dayLeft = 0
		}
		status, endDate := a.Status, a.EndDate
		if dayLeft == 0 {
			status = trainer.AssignmentCompleted
			endDate = &now
		}
		consumed = true
		return r.Trainers.UpdateAssignmentProgress(ctx, a.ID, dayLeft, status, endDate)
	})
	if err != nil {
		return nil, err
	}
	if consumed {
		metrics.RecordTrainingSession(string(trainer.SessionCompleted))
	}
	return out, nil
}

// UpdateTrainingSession cancels a scheduled session or marks it missed.
// Neither consumes a session-day.
func (e *Engine) UpdateTrainingSession(ctx context.Context, actorID int, actorRole string, sessionID int, status trainer.SessionStatus, log string) (*trainer.Session, error) {
	if status != trainer.SessionCancelled && status != trainer.SessionMissed {
		return nil, ErrInvalidSessionStatus
	}

	var out *trainer.Session
	changed := false
	err := e.uow.Within(ctx, func(r store.Repos) error {
		s, err := r.Trainers.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		a, err := r.Trainers.GetAssignment(ctx, s.PersonalTrainerAssignmentID)
		if err != nil {
			return err
		}
		if !canActOn(a, actorID, actorRole) {
			return trainer.ErrNotYours
		}
		// members may only cancel
		if actorRole == string(user.RoleMember) && status != trainer.SessionCancelled {
			return trainer.ErrNotYours
		}

		out = s
		if s.Status == status {
			return nil
		}
		if s.Status != trainer.SessionScheduled {
			return ErrSessionClosed
		}

		s.Status = status
		if log != "" {
			s.TrainingLog = log
		}
		changed = true
		return r.Trainers.UpdateSession(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.RecordTrainingSession(string(status))
	}
	return out, nil
}

// SweepMemberships expires ended periods, starts due stacked periods and
// flips users whose membership lapsed to inactive.
func (e *Engine) SweepMemberships(ctx context.Context, now time.Time) (*SweepResult, error) {
	res := &SweepResult{}
	err := e.uow.Within(ctx, func(r store.Repos) error {
		var err error
		if res.Expired, err = r.Memberships.ExpireEnded(ctx, now); err != nil {
			return err
		}
		if res.Promoted, err = r.Memberships.PromoteDue(ctx, now); err != nil {
			return err
		}
		res.Lapsed, err = r.Users.DeactivateLapsed(ctx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
