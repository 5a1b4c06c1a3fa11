package visit

import (
	"context"
	"time"
)

type Repository interface {
	CheckIn(ctx context.Context, userID int, at time.Time) (*Visit, error)
	FindOpen(ctx context.Context, userID int) (*Visit, error)
	CheckOut(ctx context.Context, id int, at time.Time) error
	ListByUser(ctx context.Context, userID int) ([]Visit, error)
}
