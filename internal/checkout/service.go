// Package checkout drives a purchase from initiation to a settled payment
// and hands paid purchases to the assignment engine.
package checkout

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/assignment"
	"github.com/ahnafi/gym-management-app-sub000/internal/gateway"
	"github.com/ahnafi/gym-management-app-sub000/internal/logger"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature = apperr.Forbidden("invalid notification signature")
	ErrAmountMismatch   = apperr.Conflict("notification amount does not match the transaction")
	ErrNotYours         = apperr.Forbidden("transaction belongs to another user")
)

type Gateway interface {
	CreateTransaction(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapResponse, error)
	Status(ctx context.Context, orderID string) (*gateway.Status, error)
}

// Granter turns a paid purchase into an entitlement.
type Granter interface {
	Quote(ctx context.Context, userID int, p payment.Purchasable, now time.Time) (decimal.Decimal, error)
	Apply(ctx context.Context, r store.Repos, userID int, p payment.Purchasable, now time.Time) (*assignment.Grant, error)
	Announce(ctx context.Context, g *assignment.Grant)
}

// Notifier is told about payments that reached paid.
type Notifier interface {
	PaymentReceived(ctx context.Context, u *user.User, t *payment.Transaction) error
}

type Service struct {
	uow       store.UnitOfWork
	granter   Granter
	gateway   Gateway
	dedupe    Deduper
	serverKey string
	notifier  Notifier
}

func NewService(uow store.UnitOfWork, granter Granter, gw Gateway, dedupe Deduper, serverKey string) *Service {
	return &Service{uow: uow, granter: granter, gateway: gw, dedupe: dedupe, serverKey: serverKey}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Initiate prices p, asks the gateway for a payment token and records a
// pending transaction. The gateway charges whole currency units, so the
// stored amount is the rounded price. Free purchases skip the gateway and
// are recorded already paid.
func (s *Service) Initiate(ctx context.Context, userID int, p payment.Purchasable, now time.Time) (*payment.CheckoutResponse, error) {
	quoted, err := s.granter.Quote(ctx, userID, p, now)
	if err != nil {
		return nil, err
	}
	amount := quoted.Round(0)

	u, err := s.uow.Repos().Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	t := &payment.Transaction{
		Code:          payment.NewCode(now),
		UserID:        userID,
		Amount:        amount,
		PaymentStatus: payment.StatusPending,
	}
	t.SetPurchasable(p)

	if amount.IsZero() {
		settled, err := s.settleFree(ctx, t, now)
		if err != nil {
			return nil, err
		}
		return &payment.CheckoutResponse{Transaction: settled}, nil
	}

	snap, err := s.gateway.CreateTransaction(ctx, gateway.SnapRequest{
		OrderID:  t.Code,
		Amount:   amount,
		Customer: gateway.Customer{FirstName: u.Name, Email: u.Email},
	})
	if err != nil {
		logger.Error("gateway token request failed", "code", t.Code, "error", err.Error())
		return nil, err
	}
	t.PaymentToken = snap.Token

	if err := s.uow.Repos().Payments.Create(ctx, t); err != nil {
		return nil, err
	}
	logger.Info("transaction initiated", "code", t.Code, "user_id", userID, "type", string(t.PurchasableType))
	return &payment.CheckoutResponse{Transaction: t, RedirectURL: snap.RedirectURL}, nil
}

// settleFree records t and grants it in one unit of work. A failed grant
// leaves no transaction behind.
func (s *Service) settleFree(ctx context.Context, t *payment.Transaction, now time.Time) (*payment.Transaction, error) {
	var res outcome
	err := s.uow.Within(ctx, func(r store.Repos) error {
		if err := r.Payments.Create(ctx, t); err != nil {
			return err
		}
		var err error
		res, err = s.transition(ctx, r, t, payment.StatusPaid, now, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, t, res)
	return t, nil
}

// HandleNotification applies a gateway webhook. Redelivered notifications
// return the current transaction without side effects.
func (s *Service) HandleNotification(ctx context.Context, n *gateway.Notification, now time.Time) (*payment.Transaction, error) {
	if !n.Verify(s.serverKey) {
		metrics.RecordPaymentNotification("invalid_signature")
		logger.Warn("notification signature mismatch", "order_id", n.OrderID)
		return nil, ErrInvalidSignature
	}

	key := n.DedupeKey()
	claimed, err := s.dedupe.Claim(ctx, key)
	if err != nil {
		// the row lock and status guard still keep the grant single
		logger.Warn("notification dedupe unavailable", "order_id", n.OrderID, "error", err.Error())
	} else if !claimed {
		metrics.RecordPaymentNotification("duplicate")
		return s.uow.Repos().Payments.GetByCode(ctx, n.OrderID)
	}

	t, err := s.applyGateway(ctx, n.OrderID, n.Status(), now)
	if err != nil {
		if claimed {
			if rerr := s.dedupe.Release(ctx, key); rerr != nil {
				logger.Warn("release notification key failed", "order_id", n.OrderID, "error", rerr.Error())
			}
		}
		metrics.RecordPaymentNotification("failed")
		logger.Error("notification not applied", "order_id", n.OrderID, "status", n.TransactionStatus, "error", err.Error())
		return nil, err
	}

	metrics.RecordPaymentNotification("applied")
	return t, nil
}

// Reconcile polls the gateway for code and applies what it reports. When
// the gateway cannot be reached the transaction is left as it is.
func (s *Service) Reconcile(ctx context.Context, actorID int, actorRole string, code string, now time.Time) (*payment.Transaction, error) {
	if _, err := s.Get(ctx, actorID, actorRole, code); err != nil {
		return nil, err
	}

	st, err := s.gateway.Status(ctx, code)
	if err != nil {
		logger.Warn("status check failed, leaving transaction unchanged", "code", code, "error", err.Error())
		return nil, gateway.ErrUnavailable
	}
	return s.applyGateway(ctx, code, st, now)
}

// Override is the admin's manual status write. Unlike gateway input, a
// disallowed transition is reported instead of ignored.
func (s *Service) Override(ctx context.Context, code string, status payment.Status, now time.Time) (*payment.Transaction, error) {
	return s.apply(ctx, code, status, "", now, true)
}

func (s *Service) Get(ctx context.Context, actorID int, actorRole string, code string) (*payment.Transaction, error) {
	t, err := s.uow.Repos().Payments.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if t.UserID != actorID && actorRole != string(user.RoleAdmin) {
		return nil, ErrNotYours
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, userID int) ([]payment.Transaction, error) {
	return s.uow.Repos().Payments.ListByUser(ctx, userID)
}

// applyGateway maps what the gateway reports about code, from a webhook or
// a status poll, onto the transaction. An order the gateway has never seen
// carries no amount to check.
func (s *Service) applyGateway(ctx context.Context, code string, st *gateway.Status, now time.Time) (*payment.Transaction, error) {
	target := payment.MapGatewayStatus(st.TransactionStatus, st.FraudStatus)
	gross := ""
	if st.TransactionStatus != "" {
		gross = st.GrossAmount
	}
	return s.apply(ctx, code, target, gross, now, false)
}

type outcome struct {
	grant   *assignment.Grant
	from    payment.Status
	changed bool
}

// apply moves the transaction code to target under its row lock.
func (s *Service) apply(ctx context.Context, code string, target payment.Status, grossAmount string, now time.Time, strict bool) (*payment.Transaction, error) {
	var (
		out *payment.Transaction
		res outcome
	)

	err := s.uow.Within(ctx, func(r store.Repos) error {
		t, err := r.Payments.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		out = t

		if grossAmount != "" {
			amount, err := decimal.NewFromString(grossAmount)
			if err != nil || !amount.Equal(t.Amount) {
				return ErrAmountMismatch
			}
		}

		res, err = s.transition(ctx, r, t, target, now, strict)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, out, res)
	return out, nil
}

// transition writes target onto the locked t. Moving to paid grants the
// entitlement through r, so a failed grant leaves the transaction unpaid.
// Same-status writes are no-ops.
func (s *Service) transition(ctx context.Context, r store.Repos, t *payment.Transaction, target payment.Status, now time.Time, strict bool) (outcome, error) {
	var res outcome
	if target == t.PaymentStatus {
		return res, nil
	}
	if !payment.CanTransition(t.PaymentStatus, target) {
		if strict {
			return res, payment.ErrInvalidTransition
		}
		if target != payment.StatusPending {
			logger.Warn("ignoring payment status change",
				"code", t.Code, "from", string(t.PaymentStatus), "to", string(target))
		}
		return res, nil
	}

	var paidAt *time.Time
	if target == payment.StatusPaid {
		p, err := t.Purchasable()
		if err != nil {
			return res, err
		}
		if res.grant, err = s.granter.Apply(ctx, r, t.UserID, p, now); err != nil {
			return res, err
		}
		paidAt = &now
	}

	if err := r.Payments.UpdateStatus(ctx, t.ID, target, paidAt); err != nil {
		return res, err
	}
	res.from = t.PaymentStatus
	res.changed = true
	t.PaymentStatus = target
	t.PaymentDate = paidAt
	return res, nil
}

// announce runs after commit.
func (s *Service) announce(ctx context.Context, t *payment.Transaction, res outcome) {
	if !res.changed {
		return
	}
	metrics.RecordPaymentTransition(string(res.from), string(t.PaymentStatus))
	logger.Info("payment status changed", "code", t.Code, "from", string(res.from), "to", string(t.PaymentStatus))
	if t.PaymentStatus == payment.StatusPaid {
		s.granter.Announce(ctx, res.grant)
		s.sendReceipt(ctx, t)
	}
}

func (s *Service) sendReceipt(ctx context.Context, t *payment.Transaction) {
	if s.notifier == nil {
		return
	}
	u, err := s.uow.Repos().Users.FindByID(ctx, t.UserID)
	if err != nil {
		logger.Warn("receipt skipped, user lookup failed", "code", t.Code, "error", err.Error())
		return
	}
	if err := s.notifier.PaymentReceived(ctx, u, t); err != nil {
		logger.Warn("receipt notification failed", "code", t.Code, "error", err.Error())
	}
}
