package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByCode(ctx context.Context, code string) (*Transaction, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*Transaction, error)
	ListByUser(ctx context.Context, userID int) ([]Transaction, error)
	UpdateStatus(ctx context.Context, id int, status Status, paymentDate *time.Time) error
}
