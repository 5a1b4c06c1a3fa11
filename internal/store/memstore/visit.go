package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/visit"
)

type visitRepo struct{ view }

func (r visitRepo) CheckIn(ctx context.Context, userID int, at time.Time) (*visit.Visit, error) {
	var out *visit.Visit
	err := r.run(func(d *data) error {
		for _, v := range d.visits {
			if v.UserID == userID && v.CheckOutAt == nil {
				return visit.ErrAlreadyCheckedIn
			}
		}
		v := visit.Visit{
			ID:        d.next("gym_visits"),
			UserID:    userID,
			CheckInAt: at,
			CreatedAt: r.stamp(),
		}
		d.visits[v.ID] = v
		out = &v
		return nil
	})
	return out, err
}

func (r visitRepo) FindOpen(ctx context.Context, userID int) (*visit.Visit, error) {
	var out *visit.Visit
	err := r.run(func(d *data) error {
		for _, v := range d.visits {
			if v.UserID == userID && v.CheckOutAt == nil {
				out = &v
				return nil
			}
		}
		return visit.ErrNotCheckedIn
	})
	return out, err
}

func (r visitRepo) CheckOut(ctx context.Context, id int, at time.Time) error {
	return r.run(func(d *data) error {
		v, ok := d.visits[id]
		if !ok || v.CheckOutAt != nil {
			return visit.ErrNotCheckedIn
		}
		v.CheckOutAt = &at
		d.visits[id] = v
		return nil
	})
}

func (r visitRepo) ListByUser(ctx context.Context, userID int) ([]visit.Visit, error) {
	out := []visit.Visit{}
	err := r.run(func(d *data) error {
		for _, v := range d.visits {
			if v.UserID == userID {
				out = append(out, v)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].CheckInAt.After(out[j].CheckInAt)
		})
		return nil
	})
	return out, err
}
