package user

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string, role Role) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	FindByIDForUpdate(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateMembershipSummary(ctx context.Context, id int, status MembershipStatus, endDate *time.Time) error
	MarkRegistered(ctx context.Context, id int) error
	DeactivateLapsed(ctx context.Context, now time.Time) (int64, error)
}
