package trainer

import (
	"context"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
)

var (
	ErrNotATrainer  = apperr.Validation("personal_trainer_id does not belong to a trainer")
	ErrInvalidPrice = apperr.Validation("price must not be negative")
	ErrNotYours     = apperr.Forbidden("assignment belongs to another user")
)

type Service interface {
	CreatePackage(ctx context.Context, req CreatePackageRequest) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
	ListAssignments(ctx context.Context, userID int) ([]Assignment, error)
	ListSessions(ctx context.Context, actorID int, actorRole string, assignmentID int) ([]Session, error)
}

type service struct {
	repo  Repository
	users user.Repository
}

func NewService(repo Repository, users user.Repository) Service {
	return &service{repo: repo, users: users}
}

func (s *service) CreatePackage(ctx context.Context, req CreatePackageRequest) (*Package, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	t, err := s.users.FindByID(ctx, req.PersonalTrainerID)
	if err != nil {
		return nil, err
	}
	if t.Role != user.RoleTrainer {
		return nil, ErrNotATrainer
	}

	p := &Package{
		PersonalTrainerID: req.PersonalTrainerID,
		Name:              req.Name,
		Description:       req.Description,
		DayDuration:       req.DayDuration,
		Price:             req.Price,
		Status:            PackageActive,
		ImageKey:          req.ImageKey,
	}
	if err := s.repo.CreatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.repo.ListPackages(ctx, true)
}

func (s *service) ListAssignments(ctx context.Context, userID int) ([]Assignment, error) {
	return s.repo.ListAssignmentsByUser(ctx, userID)
}

// ListSessions is visible to the member, the assigned trainer and admins.
func (s *service) ListSessions(ctx context.Context, actorID int, actorRole string, assignmentID int) ([]Session, error) {
	a, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if actorRole != string(user.RoleAdmin) && a.UserID != actorID && a.PersonalTrainerID != actorID {
		return nil, ErrNotYours
	}
	return s.repo.ListSessions(ctx, assignmentID)
}
