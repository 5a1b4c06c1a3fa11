// Package entitlement answers what a member is currently allowed to use.
package entitlement

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
)

var ErrMembershipRequired = apperr.Forbidden("An active membership is required")

// HasActiveMembership is the single membership gate. The cached status
// alone is not trusted: the end date must not have passed.
func HasActiveMembership(u *user.User, now time.Time) bool {
	if u == nil || u.MembershipStatus != user.MembershipActive || u.MembershipEndDate == nil {
		return false
	}
	return !u.MembershipEndDate.Before(now)
}

// RequireMembership returns ErrMembershipRequired unless u passes the gate.
func RequireMembership(u *user.User, now time.Time) error {
	if !HasActiveMembership(u, now) {
		return ErrMembershipRequired
	}
	return nil
}

type Summary struct {
	UserID             int                     `json:"user_id"`
	ActiveMembership   bool                    `json:"active_membership"`
	MembershipEndDate  *time.Time              `json:"membership_end_date"`
	RegistrationStatus user.RegistrationStatus `json:"registration_status"`
	Memberships        []membership.History    `json:"memberships"`
	TrainerAssignments []trainer.Assignment    `json:"trainer_assignments"`
	ClassBookings      []gymclass.Attendance   `json:"class_bookings"`
}

type Ledger struct {
	users       user.Repository
	memberships membership.Repository
	trainers    trainer.Repository
	classes     gymclass.Repository
}

func NewLedger(users user.Repository, memberships membership.Repository, trainers trainer.Repository, classes gymclass.Repository) *Ledger {
	return &Ledger{users: users, memberships: memberships, trainers: trainers, classes: classes}
}

// Summary collects every entitlement a user holds. Trainer assignments are
// limited to active ones.
func (l *Ledger) Summary(ctx context.Context, userID int, now time.Time) (*Summary, error) {
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	histories, err := l.memberships.ListHistories(ctx, userID)
	if err != nil {
		return nil, err
	}

	assignments, err := l.trainers.ListAssignmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := make([]trainer.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.Status == trainer.AssignmentActive {
			active = append(active, a)
		}
	}

	bookings, err := l.classes.ListAttendancesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		UserID:             u.ID,
		ActiveMembership:   HasActiveMembership(u, now),
		MembershipEndDate:  u.MembershipEndDate,
		RegistrationStatus: u.RegistrationStatus,
		Memberships:        histories,
		TrainerAssignments: active,
		ClassBookings:      bookings,
	}, nil
}
