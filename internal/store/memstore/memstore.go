// Package memstore keeps every repository in process memory. Units of work
// serialize behind a single mutex and roll back by restoring a snapshot, which
// gives the same all-or-nothing and row-lock guarantees as the SQL store for
// a single process.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
	"github.com/ahnafi/gym-management-app-sub000/internal/visit"
)

type data struct {
	seq             map[string]int
	users           map[int]user.User
	packages        map[int]membership.Package
	histories       map[int]membership.History
	classes         map[int]gymclass.GymClass
	schedules       map[int]gymclass.Schedule
	attendances     map[int]gymclass.Attendance
	trainerPackages map[int]trainer.Package
	assignments     map[int]trainer.Assignment
	sessions        map[int]trainer.Session
	transactions    map[int]payment.Transaction
	visits          map[int]visit.Visit
}

func newData() *data {
	return &data{
		seq:             map[string]int{},
		users:           map[int]user.User{},
		packages:        map[int]membership.Package{},
		histories:       map[int]membership.History{},
		classes:         map[int]gymclass.GymClass{},
		schedules:       map[int]gymclass.Schedule{},
		attendances:     map[int]gymclass.Attendance{},
		trainerPackages: map[int]trainer.Package{},
		assignments:     map[int]trainer.Assignment{},
		sessions:        map[int]trainer.Session{},
		transactions:    map[int]payment.Transaction{},
		visits:          map[int]visit.Visit{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Row values are copied; pointer fields are
// shared, which is safe because rows are only ever replaced, never mutated
// through those pointers.
func (d *data) clone() *data {
	return &data{
		seq:             copyMap(d.seq),
		users:           copyMap(d.users),
		packages:        copyMap(d.packages),
		histories:       copyMap(d.histories),
		classes:         copyMap(d.classes),
		schedules:       copyMap(d.schedules),
		attendances:     copyMap(d.attendances),
		trainerPackages: copyMap(d.trainerPackages),
		assignments:     copyMap(d.assignments),
		sessions:        copyMap(d.sessions),
		transactions:    copyMap(d.transactions),
		visits:          copyMap(d.visits),
	}
}

func (d *data) next(table string) int {
	d.seq[table]++
	return d.seq[table]
}

type Store struct {
	mu  sync.Mutex
	d   *data
	now func() time.Time
}

func New() *Store {
	return &Store{d: newData(), now: time.Now}
}

// Repos returns a view whose every call takes the store lock.
func (s *Store) Repos() store.Repos {
	return s.repos(true)
}

func (s *Store) Within(ctx context.Context, fn func(store.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.d.clone()
	if err := fn(s.repos(false)); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) repos(locked bool) store.Repos {
	v := view{s: s, locked: locked}
	return store.Repos{
		Users:       userRepo{v},
		Memberships: membershipRepo{v},
		Classes:     classRepo{v},
		Trainers:    trainerRepo{v},
		Payments:    paymentRepo{v},
		Visits:      visitRepo{v},
	}
}

type view struct {
	s      *Store
	locked bool
}

func (v view) run(fn func(d *data) error) error {
	if v.locked {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.d)
}

func (v view) stamp() time.Time {
	return v.s.now()
}

var _ store.UnitOfWork = (*Store)(nil)
