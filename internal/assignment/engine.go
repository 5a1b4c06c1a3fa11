// Package assignment is the only writer of entitlements: membership periods,
// class seats and trainer session blocks.
package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/entitlement"
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/logger"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"

	"github.com/shopspring/decimal"
)

var (
	ErrPackageUnavailable        = apperr.Conflict("This package is not available")
	ErrClassUnavailable          = apperr.Conflict("This class is not available")
	ErrAlreadyRegistered         = apperr.Conflict("Registration has already been completed")
	ErrScheduleMismatch          = apperr.Validation("schedule does not belong to this class")
	ErrScheduleStarted           = apperr.Conflict("This class schedule has already started")
	ErrCancellationWindowExpired = apperr.Conflict("Cannot cancel booking less than 24 hours before class")
	ErrNotYourBooking            = apperr.Forbidden("booking belongs to another user")
	ErrBookingClosed             = apperr.Conflict("Only upcoming bookings can be cancelled")
	ErrInvalidAttendanceStatus   = apperr.Validation("status must be attended or missed")
	ErrNoSessionsLeft            = apperr.Conflict("No training sessions left on this assignment")
	ErrSessionInPast             = apperr.Validation("scheduled_at must be in the future")
	ErrSessionClosed             = apperr.Conflict("Only scheduled sessions can be changed")
	ErrInvalidSessionStatus      = apperr.Validation("status must be cancelled or missed")
	ErrAssignmentClosed          = apperr.Conflict("This training assignment is no longer active")
)

const DefaultCancellationWindow = 24 * time.Hour

// Notifier is told about grants after they commit. Failures are logged and
// never undo the grant.
type Notifier interface {
	MembershipGranted(ctx context.Context, u *user.User, pkg *membership.Package, h *membership.History) error
	ClassBooked(ctx context.Context, u *user.User, class *gymclass.GymClass, s *gymclass.Schedule) error
	BookingCancelled(ctx context.Context, u *user.User, class *gymclass.GymClass, s *gymclass.Schedule) error
}

type Engine struct {
	uow                store.UnitOfWork
	registrationCode   string
	loc                *time.Location
	cancellationWindow time.Duration
	notifier           Notifier
}

func NewEngine(uow store.UnitOfWork, registrationCode string, loc *time.Location, cancellationWindow time.Duration) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if cancellationWindow <= 0 {
		cancellationWindow = DefaultCancellationWindow
	}
	return &Engine{
		uow:                uow,
		registrationCode:   registrationCode,
		loc:                loc,
		cancellationWindow: cancellationWindow,
	}
}

func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// GrantMembership sells packageID to userID directly (admin path).
func (e *Engine) GrantMembership(ctx context.Context, userID, packageID int, now time.Time) (*Grant, error) {
	return e.run(ctx, func(r store.Repos) (*Grant, error) {
		return e.grantMembership(ctx, r, userID, packageID, now)
	})
}

func (e *Engine) BookClass(ctx context.Context, userID, classID, scheduleID int, now time.Time) (*gymclass.Attendance, error) {
	g, err := e.run(ctx, func(r store.Repos) (*Grant, error) {
		return e.bookClass(ctx, r, userID, classID, scheduleID, now)
	})
	if err != nil {
		metrics.RecordClassBooking(bookingOutcome(err))
		return nil, err
	}
	return g.Booking, nil
}

func (e *Engine) AssignTrainerPackage(ctx context.Context, userID, packageID int, now time.Time) (*trainer.Assignment, error) {
	g, err := e.run(ctx, func(r store.Repos) (*Grant, error) {
		return e.assignTrainerPackage(ctx, r, userID, packageID, now)
	})
	if err != nil {
		return nil, err
	}
	return g.Assignment, nil
}

// Apply grants what p buys using repos bound to the caller's transaction.
// The caller commits and then passes the result to Announce.
func (e *Engine) Apply(ctx context.Context, r store.Repos, userID int, p payment.Purchasable, now time.Time) (*Grant, error) {
	switch p := p.(type) {
	case payment.MembershipPurchase:
		return e.grantMembership(ctx, r, userID, p.PackageID, now)
	case payment.ClassPurchase:
		return e.bookClass(ctx, r, userID, p.GymClassID, p.ScheduleID, now)
	case payment.TrainerPurchase:
		return e.assignTrainerPackage(ctx, r, userID, p.PackageID, now)
	default:
		return nil, payment.ErrUnknownPurchasable
	}
}

// Announce records metrics and sends notifications for a committed grant.
func (e *Engine) Announce(ctx context.Context, g *Grant) {
	if g == nil {
		return
	}

	switch g.Type {
	case payment.TypeMembershipPackage:
		if g.Registered {
			metrics.RecordMembershipGrant("registration")
			return
		}
		metrics.RecordMembershipGrant(string(g.Membership.Status))
		if e.notifier != nil {
			if err := e.notifier.MembershipGranted(ctx, g.User, g.Package, g.Membership); err != nil {
				logger.Warn("membership notification failed", "user_id", g.User.ID, "error", err.Error())
			}
		}
	case payment.TypeGymClass:
		metrics.RecordClassBooking("booked")
		if e.notifier != nil {
			if err := e.notifier.ClassBooked(ctx, g.User, g.Class, g.Schedule); err != nil {
				logger.Warn("booking notification failed", "user_id", g.User.ID, "error", err.Error())
			}
		}
	case payment.TypeTrainerPackage:
		metrics.RecordTrainerAssignment()
	}
}

// Quote checks that userID may buy p right now and returns its price. It
// reads without locks; Apply repeats every check under lock.
func (e *Engine) Quote(ctx context.Context, userID int, p payment.Purchasable, now time.Time) (decimal.Decimal, error) {
	r := e.uow.Repos()

	u, err := r.Users.FindByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	switch p := p.(type) {
	case payment.MembershipPurchase:
		pkg, err := r.Memberships.GetPackage(ctx, p.PackageID)
		if err != nil {
			return decimal.Zero, err
		}
		if !pkg.IsActive() {
			return decimal.Zero, ErrPackageUnavailable
		}
		if e.isRegistration(pkg) && u.RegistrationStatus == user.Registered {
			return decimal.Zero, ErrAlreadyRegistered
		}
		return pkg.Price, nil

	case payment.ClassPurchase:
		class, schedule, err := e.checkBookable(ctx, r, u, p.GymClassID, p.ScheduleID, now, false)
		if err != nil {
			return decimal.Zero, err
		}
		if schedule.AvailableSlot <= 0 {
			return decimal.Zero, gymclass.ErrNoCapacity
		}
		return class.Price, nil

	case payment.TrainerPurchase:
		pkg, err := r.Trainers.GetPackage(ctx, p.PackageID)
		if err != nil {
			return decimal.Zero, err
		}
		if !pkg.IsActive() {
			return decimal.Zero, ErrPackageUnavailable
		}
		if err := entitlement.RequireMembership(u, now); err != nil {
			return decimal.Zero, err
		}
		return pkg.Price, nil

	default:
		return decimal.Zero, payment.ErrUnknownPurchasable
	}
}

func (e *Engine) run(ctx context.Context, fn func(store.Repos) (*Grant, error)) (*Grant, error) {
	var g *Grant
	err := e.uow.Within(ctx, func(r store.Repos) error {
		var err error
		g, err = fn(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.Announce(ctx, g)
	return g, nil
}

func (e *Engine) isRegistration(pkg *membership.Package) bool {
	return e.registrationCode != "" && pkg.Code == e.registrationCode
}

// grantMembership stacks a new period after the current one, or starts it
// now when the user has no running membership.
func (e *Engine) grantMembership(ctx context.Context, r store.Repos, userID, packageID int, now time.Time) (*Grant, error) {
	pkg, err := r.Memberships.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive() {
		return nil, ErrPackageUnavailable
	}

	u, err := r.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if e.isRegistration(pkg) {
		if err := r.Users.MarkRegistered(ctx, userID); err != nil {
			return nil, err
		}
		u.RegistrationStatus = user.Registered
		return &Grant{Type: payment.TypeMembershipPackage, Registered: true, User: u, Package: pkg}, nil
	}

	start := now
	status := membership.HistoryActive
	if u.MembershipEndDate != nil && !u.MembershipEndDate.Before(now) {
		start = u.MembershipEndDate.AddDate(0, 0, 1)
		status = membership.HistoryUpcoming
	} else if _, err := r.Memberships.ExpireEndedForUser(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("expire ended periods: %w", err)
	}
	end := start.AddDate(0, 0, pkg.Duration)

	h := &membership.History{
		UserID:              userID,
		MembershipPackageID: pkg.ID,
		StartDate:           start,
		EndDate:             end,
		Status:              status,
	}
	if err := r.Memberships.CreateHistory(ctx, h); err != nil {
		return nil, err
	}
	if err := r.Users.UpdateMembershipSummary(ctx, userID, user.MembershipActive, &end); err != nil {
		return nil, err
	}

	u.MembershipStatus = user.MembershipActive
	u.MembershipEndDate = &end
	return &Grant{Type: payment.TypeMembershipPackage, Membership: h, User: u, Package: pkg}, nil
}

// checkBookable runs every booking precondition except capacity. With lock
// set the schedule row stays locked for the rest of the transaction.
func (e *Engine) checkBookable(ctx context.Context, r store.Repos, u *user.User, classID, scheduleID int, now time.Time, lock bool) (*gymclass.GymClass, *gymclass.Schedule, error) {
	class, err := r.Classes.GetClass(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	if !class.IsActive() {
		return nil, nil, ErrClassUnavailable
	}
	if err := entitlement.RequireMembership(u, now); err != nil {
		return nil, nil, err
	}

	var schedule *gymclass.Schedule
	if lock {
		schedule, err = r.Classes.GetScheduleForUpdate(ctx, scheduleID)
	} else {
		schedule, err = r.Classes.GetSchedule(ctx, scheduleID)
	}
	if err != nil {
		return nil, nil, err
	}
	if schedule.GymClassID != class.ID {
		return nil, nil, ErrScheduleMismatch
	}

	startsAt, err := schedule.StartsAt(e.loc)
	if err != nil {
		return nil, nil, err
	}
	if !startsAt.After(now) {
		return nil, nil, ErrScheduleStarted
	}

	booked, err := r.Classes.AttendanceExists(ctx, u.ID, schedule.ID)
	if err != nil {
		return nil, nil, err
	}
	if booked {
		return nil, nil, gymclass.ErrAlreadyBooked
	}
	return class, schedule, nil
}

func (e *Engine) bookClass(ctx context.Context, r store.Repos, userID, classID, scheduleID int, now time.Time) (*Grant, error) {
	u, err := r.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	class, schedule, err := e.checkBookable(ctx, r, u, classID, scheduleID, now, true)
	if err != nil {
		return nil, err
	}

	a, err := gymclass.ReserveSlot(ctx, r.Classes, schedule.ID, userID)
	if err != nil {
		return nil, err
	}
	schedule.AvailableSlot--

	return &Grant{Type: payment.TypeGymClass, Booking: a, User: u, Class: class, Schedule: schedule}, nil
}

func (e *Engine) assignTrainerPackage(ctx context.Context, r store.Repos, userID, packageID int, now time.Time) (*Grant, error) {
	pkg, err := r.Trainers.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive() {
		return nil, ErrPackageUnavailable
	}

	u, err := r.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := entitlement.RequireMembership(u, now); err != nil {
		return nil, err
	}

	a := &trainer.Assignment{
		UserID:                   userID,
		PersonalTrainerID:        pkg.PersonalTrainerID,
		PersonalTrainerPackageID: pkg.ID,
		DayLeft:                  pkg.DayDuration,
		StartDate:                now,
		Status:                   trainer.AssignmentActive,
	}
	if err := r.Trainers.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return &Grant{Type: payment.TypeTrainerPackage, Assignment: a, User: u}, nil
}

func bookingOutcome(err error) string {
	switch err {
	case gymclass.ErrNoCapacity:
		return "no_capacity"
	case gymclass.ErrAlreadyBooked:
		return "already_booked"
	default:
		return "rejected"
	}
}
