package membership

import (
	"context"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
)

var ErrInvalidPrice = apperr.Validation("price must not be negative")

type Service interface {
	CreatePackage(ctx context.Context, req CreatePackageRequest) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
	ListHistories(ctx context.Context, userID int) ([]History, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePackage(ctx context.Context, req CreatePackageRequest) (*Package, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	p := &Package{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
		Status:      PackageActive,
		ImageKey:    req.ImageKey,
	}
	if err := s.repo.CreatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.repo.ListPackages(ctx, true)
}

func (s *service) ListHistories(ctx context.Context, userID int) ([]History, error) {
	return s.repo.ListHistories(ctx, userID)
}
