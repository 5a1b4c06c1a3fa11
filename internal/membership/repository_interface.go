package membership

import (
	"context"
	"time"
)

type Repository interface {
	CreatePackage(ctx context.Context, p *Package) error
	GetPackage(ctx context.Context, id int) (*Package, error)
	ListPackages(ctx context.Context, onlyActive bool) ([]Package, error)

	CreateHistory(ctx context.Context, h *History) error
	ListHistories(ctx context.Context, userID int) ([]History, error)
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
	ExpireEndedForUser(ctx context.Context, userID int, now time.Time) (int64, error)
	PromoteDue(ctx context.Context, now time.Time) (int64, error)
}
