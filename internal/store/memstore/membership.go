package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
)

type membershipRepo struct{ view }

func (r membershipRepo) CreatePackage(ctx context.Context, p *membership.Package) error {
	return r.run(func(d *data) error {
		for _, existing := range d.packages {
			if existing.Code == p.Code {
				return membership.ErrCodeTaken
			}
		}
		if p.Status == "" {
			p.Status = membership.PackageActive
		}
		p.ID = d.next("membership_packages")
		p.CreatedAt = r.stamp()
		p.UpdatedAt = p.CreatedAt
		d.packages[p.ID] = *p
		return nil
	})
}

func (r membershipRepo) GetPackage(ctx context.Context, id int) (*membership.Package, error) {
	var out *membership.Package
	err := r.run(func(d *data) error {
		p, ok := d.packages[id]
		if !ok {
			return membership.ErrPackageNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r membershipRepo) ListPackages(ctx context.Context, onlyActive bool) ([]membership.Package, error) {
	out := []membership.Package{}
	err := r.run(func(d *data) error {
		for _, p := range d.packages {
			if onlyActive && !p.IsActive() {
				continue
			}
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Duration != out[j].Duration {
				return out[i].Duration < out[j].Duration
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r membershipRepo) CreateHistory(ctx context.Context, h *membership.History) error {
	return r.run(func(d *data) error {
		if h.Status == membership.HistoryActive {
			for _, existing := range d.histories {
				if existing.UserID == h.UserID && existing.Status == membership.HistoryActive {
					return fmt.Errorf("membership_histories_one_active: user %d already holds an active period", h.UserID)
				}
			}
		}
		h.ID = d.next("membership_histories")
		h.CreatedAt = r.stamp()
		h.UpdatedAt = h.CreatedAt
		d.histories[h.ID] = *h
		return nil
	})
}

func (r membershipRepo) ListHistories(ctx context.Context, userID int) ([]membership.History, error) {
	out := []membership.History{}
	err := r.run(func(d *data) error {
		for _, h := range d.histories {
			if h.UserID == userID {
				out = append(out, h)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].StartDate.Equal(out[j].StartDate) {
				return out[i].StartDate.After(out[j].StartDate)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (r membershipRepo) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	return r.expire(func(membership.History) bool { return true }, now)
}

func (r membershipRepo) ExpireEndedForUser(ctx context.Context, userID int, now time.Time) (int64, error) {
	return r.expire(func(h membership.History) bool { return h.UserID == userID }, now)
}

func (r membershipRepo) expire(match func(membership.History) bool, now time.Time) (int64, error) {
	var n int64
	err := r.run(func(d *data) error {
		for id, h := range d.histories {
			if !match(h) {
				continue
			}
			if (h.Status == membership.HistoryActive || h.Status == membership.HistoryUpcoming) && h.EndDate.Before(now) {
				h.Status = membership.HistoryExpired
				h.UpdatedAt = r.stamp()
				d.histories[id] = h
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r membershipRepo) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.run(func(d *data) error {
		hasActive := map[int]bool{}
		earliest := map[int]membership.History{}
		for _, h := range d.histories {
			switch h.Status {
			case membership.HistoryActive:
				hasActive[h.UserID] = true
			case membership.HistoryUpcoming:
				cur, ok := earliest[h.UserID]
				if !ok || h.StartDate.Before(cur.StartDate) {
					earliest[h.UserID] = h
				}
			}
		}
		for userID, h := range earliest {
			if hasActive[userID] || h.StartDate.After(now) {
				continue
			}
			h.Status = membership.HistoryActive
			h.UpdatedAt = r.stamp()
			d.histories[h.ID] = h
			n++
		}
		return nil
	})
	return n, err
}
