package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
)

type paymentRepo struct{ view }

func (r paymentRepo) Create(ctx context.Context, t *payment.Transaction) error {
	return r.run(func(d *data) error {
		for _, existing := range d.transactions {
			if existing.Code == t.Code {
				return fmt.Errorf("transactions_code_key: duplicate code %s", t.Code)
			}
		}
		if t.PaymentStatus == "" {
			t.PaymentStatus = payment.StatusPending
		}
		t.ID = d.next("transactions")
		t.CreatedAt = r.stamp()
		t.UpdatedAt = t.CreatedAt
		d.transactions[t.ID] = *t
		return nil
	})
}

func (r paymentRepo) GetByCode(ctx context.Context, code string) (*payment.Transaction, error) {
	var out *payment.Transaction
	err := r.run(func(d *data) error {
		for _, t := range d.transactions {
			if t.Code == code {
				out = &t
				return nil
			}
		}
		return payment.ErrTransactionNotFound
	})
	return out, err
}

func (r paymentRepo) GetByCodeForUpdate(ctx context.Context, code string) (*payment.Transaction, error) {
	return r.GetByCode(ctx, code)
}

func (r paymentRepo) ListByUser(ctx context.Context, userID int) ([]payment.Transaction, error) {
	out := []payment.Transaction{}
	err := r.run(func(d *data) error {
		for _, t := range d.transactions {
			if t.UserID == userID {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (r paymentRepo) UpdateStatus(ctx context.Context, id int, status payment.Status, paymentDate *time.Time) error {
	return r.run(func(d *data) error {
		t, ok := d.transactions[id]
		if !ok {
			return payment.ErrTransactionNotFound
		}
		t.PaymentStatus = status
		t.PaymentDate = paymentDate
		t.UpdatedAt = r.stamp()
		d.transactions[id] = t
		return nil
	})
}
