package visit

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/entitlement"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
)

type Service interface {
	CheckIn(ctx context.Context, userID int, now time.Time) (*Visit, error)
	CheckOut(ctx context.Context, userID int, now time.Time) (*Visit, error)
	List(ctx context.Context, userID int) ([]Visit, error)
}

type service struct {
	repo  Repository
	users user.Repository
}

func NewService(repo Repository, users user.Repository) Service {
	return &service{repo: repo, users: users}
}

func (s *service) CheckIn(ctx context.Context, userID int, now time.Time) (*Visit, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := entitlement.RequireMembership(u, now); err != nil {
		return nil, err
	}

	v, err := s.repo.CheckIn(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	metrics.RecordGymVisit("check_in")
	return v, nil
}

func (s *service) CheckOut(ctx context.Context, userID int, now time.Time) (*Visit, error) {
	v, err := s.repo.FindOpen(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CheckOut(ctx, v.ID, now); err != nil {
		return nil, err
	}
	v.CheckOutAt = &now
	metrics.RecordGymVisit("check_out")
	return v, nil
}

func (s *service) List(ctx context.Context, userID int) ([]Visit, error) {
	return s.repo.ListByUser(ctx, userID)
}
