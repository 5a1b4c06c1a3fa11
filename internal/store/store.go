// Package store bundles the repositories and runs units of work against them.
package store

import (
	"context"

	"github.com/ahnafi/gym-management-app-sub000/internal/db"
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
	"github.com/ahnafi/gym-management-app-sub000/internal/visit"

	"github.com/jmoiron/sqlx"
)

// Repos is one consistent view of every repository. Inside Within the view
// is bound to the open transaction.
type Repos struct {
	Users       user.Repository
	Memberships membership.Repository
	Classes     gymclass.Repository
	Trainers    trainer.Repository
	Payments    payment.Repository
	Visits      visit.Repository
}

// UnitOfWork runs fn atomically: every write made through the Repos passed
// to fn commits together or not at all.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(Repos) error) error
	Repos() Repos
}

func NewRepos(q sqlx.ExtContext) Repos {
	return Repos{
		Users:       user.NewRepository(q),
		Memberships: membership.NewRepository(q),
		Classes:     gymclass.NewRepository(q),
		Trainers:    trainer.NewRepository(q),
		Payments:    payment.NewRepository(q),
		Visits:      visit.NewRepository(q),
	}
}

type SQLStore struct {
	db    *sqlx.DB
	repos Repos
}

func NewSQLStore(conn *sqlx.DB) *SQLStore {
	return &SQLStore{db: conn, repos: NewRepos(conn)}
}

func (s *SQLStore) Repos() Repos {
	return s.repos
}

func (s *SQLStore) Within(ctx context.Context, fn func(Repos) error) error {
	return db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(NewRepos(tx))
	})
}
