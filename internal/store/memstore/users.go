package memstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/user"
)

type userRepo struct{ view }

func (r userRepo) Create(ctx context.Context, name, email, passwordHash string, role user.Role) (*user.User, error) {
	var out *user.User
	err := r.run(func(d *data) error {
		for _, u := range d.users {
			if u.Email == email {
				return user.ErrEmailExists
			}
		}
		now := r.stamp()
		u := user.User{
			ID:                 d.next("users"),
			Name:               name,
			Email:              email,
			PasswordHash:       passwordHash,
			Role:               role,
			RegistrationStatus: user.Unregistered,
			MembershipStatus:   user.MembershipInactive,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		d.users[u.ID] = u
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var out *user.User
	err := r.run(func(d *data) error {
		ids := make([]int, 0, len(d.users))
		for id := range d.users {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			if u := d.users[id]; u.Email == email {
				out = &u
				return nil
			}
		}
		return user.ErrUserNotFound
	})
	return out, err
}

func (r userRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	var out *user.User
	err := r.run(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return user.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) FindByIDForUpdate(ctx context.Context, id int) (*user.User, error) {
	return r.FindByID(ctx, id)
}

func (r userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r userRepo) UpdateMembershipSummary(ctx context.Context, id int, status user.MembershipStatus, endDate *time.Time) error {
	return r.run(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return user.ErrUserNotFound
		}
		u.MembershipStatus = status
		u.MembershipEndDate = endDate
		u.UpdatedAt = r.stamp()
		d.users[id] = u
		return nil
	})
}

func (r userRepo) MarkRegistered(ctx context.Context, id int) error {
	return r.run(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return user.ErrUserNotFound
		}
		u.RegistrationStatus = user.Registered
		u.UpdatedAt = r.stamp()
		d.users[id] = u
		return nil
	})
}

func (r userRepo) DeactivateLapsed(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.run(func(d *data) error {
		for id, u := range d.users {
			if u.MembershipStatus != user.MembershipActive {
				continue
			}
			if u.MembershipEndDate == nil || u.MembershipEndDate.Before(now) {
				u.MembershipStatus = user.MembershipInactive
				u.UpdatedAt = r.stamp()
				d.users[id] = u
				n++
			}
		}
		return nil
	})
	return n, err
}
