package payment

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrTransactionNotFound = apperr.NotFound("transaction not found")

const transactionColumns = `id, code, user_id, purchasable_type, purchasable_id, gym_class_schedule_id, amount,
	payment_status, payment_token, payment_date, created_at, updated_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(q sqlx.ExtContext) Repository {
	return &repository{db: q}
}

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions
			(code, user_id, purchasable_type, purchasable_id, gym_class_schedule_id, amount, payment_status, payment_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if t.PaymentStatus == "" {
		t.PaymentStatus = StatusPending
	}
	return r.db.QueryRowxContext(ctx, query,
		t.Code, t.UserID, t.PurchasableType, t.PurchasableID, t.GymClassScheduleID, t.Amount, t.PaymentStatus, t.PaymentToken,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE code = $1`, code)
}

// GetByCodeForUpdate locks the transaction row. Concurrent notifications
// for the same order serialize here.
func (r *repository) GetByCodeForUpdate(ctx context.Context, code string) (*Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE code = $1 FOR UPDATE`, code)
}

func (r *repository) get(ctx context.Context, query, code string) (*Transaction, error) {
	var t Transaction
	if err := sqlx.GetContext(ctx, r.db, &t, query, code); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Transaction, error) {
	txs := []Transaction{}
	err := sqlx.SelectContext(ctx, r.db, &txs,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status Status, paymentDate *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET payment_status = $1, payment_date = $2, updated_at = NOW()
		WHERE id = $3
	`, status, paymentDate, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
