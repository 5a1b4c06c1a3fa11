package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusChallenge Status = "challenge"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type PurchasableType string

const (
	TypeMembershipPackage PurchasableType = "membership_package"
	TypeGymClass          PurchasableType = "gym_class"
	TypeTrainerPackage    PurchasableType = "personal_trainer_package"
)

// Purchasable is what a transaction buys. The concrete types below are the
// only implementations.
type Purchasable interface {
	Type() PurchasableType
	ID() int
	isPurchasable()
}

type MembershipPurchase struct {
	PackageID int
}

func (MembershipPurchase) Type() PurchasableType { return TypeMembershipPackage }
func (p MembershipPurchase) ID() int             { return p.PackageID }
func (MembershipPurchase) isPurchasable()        {}

type ClassPurchase struct {
	GymClassID int
	ScheduleID int
}

func (ClassPurchase) Type() PurchasableType { return TypeGymClass }
func (p ClassPurchase) ID() int             { return p.GymClassID }
func (ClassPurchase) isPurchasable()        {}

type TrainerPurchase struct {
	PackageID int
}

func (TrainerPurchase) Type() PurchasableType { return TypeTrainerPackage }
func (p TrainerPurchase) ID() int             { return p.PackageID }
func (TrainerPurchase) isPurchasable()        {}

type Transaction struct {
	ID                 int             `db:"id" json:"id"`
	Code               string          `db:"code" json:"code"`
	UserID             int             `db:"user_id" json:"user_id"`
	PurchasableType    PurchasableType `db:"purchasable_type" json:"purchasable_type"`
	PurchasableID      int             `db:"purchasable_id" json:"purchasable_id"`
	GymClassScheduleID *int            `db:"gym_class_schedule_id" json:"gym_class_schedule_id,omitempty"`
	Amount             decimal.Decimal `db:"amount" json:"amount" swaggertype:"string" example:"200000.00"`
	PaymentStatus      Status          `db:"payment_status" json:"payment_status"`
	PaymentToken       string          `db:"payment_token" json:"payment_token"`
	PaymentDate        *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// SetPurchasable writes p into the transaction's polymorphic columns.
func (t *Transaction) SetPurchasable(p Purchasable) {
	t.PurchasableType = p.Type()
	t.PurchasableID = p.ID()
	t.GymClassScheduleID = nil
	if cp, ok := p.(ClassPurchase); ok {
		scheduleID := cp.ScheduleID
		t.GymClassScheduleID = &scheduleID
	}
}

// Purchasable decodes the polymorphic columns.
func (t *Transaction) Purchasable() (Purchasable, error) {
	switch t.PurchasableType {
	case TypeMembershipPackage:
		return MembershipPurchase{PackageID: t.PurchasableID}, nil
	case TypeGymClass:
		if t.GymClassScheduleID == nil {
			return nil, fmt.Errorf("transaction %s: gym class purchase without schedule", t.Code)
		}
		return ClassPurchase{GymClassID: t.PurchasableID, ScheduleID: *t.GymClassScheduleID}, nil
	case TypeTrainerPackage:
		return TrainerPurchase{PackageID: t.PurchasableID}, nil
	default:
		return nil, fmt.Errorf("transaction %s: unknown purchasable type %q", t.Code, t.PurchasableType)
	}
}

type CheckoutRequest struct {
	PurchasableType    PurchasableType `json:"purchasable_type" binding:"required,oneof=membership_package gym_class personal_trainer_package"`
	PurchasableID      int             `json:"purchasable_id" binding:"required,min=1"`
	GymClassScheduleID int             `json:"gym_class_schedule_id" binding:"required_if=PurchasableType gym_class"`
}

// Purchasable validates the request shape and returns the typed purchase.
func (r CheckoutRequest) Purchasable() (Purchasable, error) {
	switch r.PurchasableType {
	case TypeMembershipPackage:
		return MembershipPurchase{PackageID: r.PurchasableID}, nil
	case TypeGymClass:
		if r.GymClassScheduleID <= 0 {
			return nil, ErrScheduleRequired
		}
		return ClassPurchase{GymClassID: r.PurchasableID, ScheduleID: r.GymClassScheduleID}, nil
	case TypeTrainerPackage:
		return TrainerPurchase{PackageID: r.PurchasableID}, nil
	default:
		return nil, ErrUnknownPurchasable
	}
}

type OverrideRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending paid failed challenge expired cancelled"`
}

type CheckoutResponse struct {
	Transaction *Transaction `json:"transaction"`
	RedirectURL string       `json:"redirect_url"`
}
