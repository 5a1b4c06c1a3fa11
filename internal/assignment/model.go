package assignment

import (
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
)

// Grant is the entitlement produced by one purchase or admin action. Only
// the field matching Type is set; the fields hidden from JSON feed the
// notifications sent after commit.
type Grant struct {
	Type       payment.PurchasableType `json:"type"`
	Registered bool                    `json:"registered,omitempty"`
	Membership *membership.History     `json:"membership,omitempty"`
	Booking    *gymclass.Attendance    `json:"booking,omitempty"`
	Assignment *trainer.Assignment     `json:"assignment,omitempty"`

	User     *user.User          `json:"-"`
	Package  *membership.Package `json:"-"`
	Class    *gymclass.GymClass  `json:"-"`
	Schedule *gymclass.Schedule  `json:"-"`
}

type SweepResult struct {
	Expired  int64 `json:"expired"`
	Promoted int64 `json:"promoted"`
	Lapsed   int64 `json:"lapsed"`
}

type GrantMembershipRequest struct {
	PackageID int `json:"membership_package_id" binding:"required,min=1"`
}

type BookClassRequest struct {
	GymClassID int `json:"gym_class_id" binding:"required,min=1"`
	ScheduleID int `json:"gym_class_schedule_id" binding:"required,min=1"`
}

type AssignTrainerRequest struct {
	PackageID int `json:"personal_trainer_package_id" binding:"required,min=1"`
}
