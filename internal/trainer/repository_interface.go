package trainer

import (
	"context"
	"time"
)

type Repository interface {
	CreatePackage(ctx context.Context, p *Package) error
	GetPackage(ctx context.Context, id int) (*Package, error)
	ListPackages(ctx context.Context, onlyActive bool) ([]Package, error)

	CreateAssignment(ctx context.Context, a *Assignment) error
	GetAssignment(ctx context.Context, id int) (*Assignment, error)
	GetAssignmentForUpdate(ctx context.Context, id int) (*Assignment, error)
	ListAssignmentsByUser(ctx context.Context, userID int) ([]Assignment, error)
	UpdateAssignmentProgress(ctx context.Context, id, dayLeft int, status AssignmentStatus, endDate *time.Time) error

	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id int) (*Session, error)
	GetSessionForUpdate(ctx context.Context, id int) (*Session, error)
	ListSessions(ctx context.Context, assignmentID int) ([]Session, error)
	UpdateSession(ctx context.Context, s *Session) error
}
