package membership

import (
	"time"

	"github.com/shopspring/decimal"
)

type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageInactive PackageStatus = "inactive"
)

type HistoryStatus string

const (
	HistoryActive    HistoryStatus = "active"
	HistoryUpcoming  HistoryStatus = "upcoming"
	HistoryExpired   HistoryStatus = "expired"
	HistoryCancelled HistoryStatus = "cancelled"
)

type Package struct {
	ID          int             `db:"id" json:"id"`
	Code        string          `db:"code" json:"code"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Duration    int             `db:"duration" json:"duration"`
	Price       decimal.Decimal `db:"price" json:"price" swaggertype:"string" example:"200000.00"`
	Status      PackageStatus   `db:"status" json:"status"`
	ImageKey    *string         `db:"image_key" json:"image_key,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

func (p *Package) IsActive() bool {
	return p.Status == PackageActive
}

// History is one membership period. Stacked periods that have not begun yet
// are kept as upcoming so that a user never holds two active rows.
type History struct {
	ID                  int           `db:"id" json:"id"`
	UserID              int           `db:"user_id" json:"user_id"`
	MembershipPackageID int           `db:"membership_package_id" json:"membership_package_id"`
	StartDate           time.Time     `db:"start_date" json:"start_date"`
	EndDate             time.Time     `db:"end_date" json:"end_date"`
	Status              HistoryStatus `db:"status" json:"status"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
}

type CreatePackageRequest struct {
	Code        string          `json:"code" binding:"required,max=64"`
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Duration    int             `json:"duration" binding:"gte=0"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	ImageKey    *string         `json:"image_key"`
}
