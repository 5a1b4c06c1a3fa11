package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/assignment"
	"github.com/ahnafi/gym-management-app-sub000/internal/gateway"
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/store/memstore"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverKey = "SB-server-key"

var now = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu       sync.Mutex
	status   *gateway.Status
	err      error
	requests []gateway.SnapRequest
}

func (g *fakeGateway) CreateTransaction(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &gateway.SnapResponse{Token: "tok-" + req.OrderID, RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func (g *fakeGateway) Status(ctx context.Context, orderID string) (*gateway.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	st := *g.status
	st.OrderID = orderID
	return &st, nil
}

type receipts struct {
	mu   sync.Mutex
	sent []string
}

func (r *receipts) PaymentReceived(ctx context.Context, u *user.User, t *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, t.Code)
	return nil
}

type fixture struct {
	store    *memstore.Store
	repos    store.Repos
	gateway  *fakeGateway
	service  *Service
	receipts *receipts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	gw := &fakeGateway{}
	engine := assignment.NewEngine(s, "REG", time.UTC, 24*time.Hour)
	svc := NewService(s, engine, gw, NewMemoryDeduper(time.Hour), serverKey)
	r := &receipts{}
	svc.SetNotifier(r)
	return &fixture{store: s, repos: s.Repos(), gateway: gw, service: svc, receipts: r}
}

func (f *fixture) user(t *testing.T, email string, active bool) *user.User {
	t.Helper()
	ctx := context.Background()
	u, err := f.repos.Users.Create(ctx, "Member", email, "hash", user.RoleMember)
	require.NoError(t, err)
	if active {
		end := now.AddDate(0, 1, 0)
		require.NoError(t, f.repos.Users.UpdateMembershipSummary(ctx, u.ID, user.MembershipActive, &end))
	}
	return u
}

func (f *fixture) membershipPackage(t *testing.T, price int64) *membership.Package {
	t.Helper()
	p := &membership.Package{Code: "M30", Name: "Monthly", Duration: 30, Price: decimal.NewFromInt(price)}
	require.NoError(t, f.repos.Memberships.CreatePackage(context.Background(), p))
	return p
}

func notification(code, status, fraud, gross string) *gateway.Notification {
	n := &gateway.Notification{
		OrderID:           code,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: status,
		FraudStatus:       fraud,
	}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func (f *fixture) histories(t *testing.T, userID int) []membership.History {
	t.Helper()
	h, err := f.repos.Memberships.ListHistories(context.Background(), userID)
	require.NoError(t, err)
	return h
}

func (f *fixture) transaction(t *testing.T, code string) *payment.Transaction {
	t.Helper()
	tx, err := f.repos.Payments.GetByCode(context.Background(), code)
	require.NoError(t, err)
	return tx
}

func TestInitiate_Membership(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)

	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	tx := res.Transaction
	assert.Equal(t, payment.StatusPending, tx.PaymentStatus)
	assert.Equal(t, payment.TypeMembershipPackage, tx.PurchasableType)
	assert.Equal(t, pkg.ID, tx.PurchasableID)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(200000)))
	assert.Equal(t, "tok-"+tx.Code, tx.PaymentToken)
	assert.Equal(t, "https://pay.example/"+tx.Code, res.RedirectURL)
	assert.Regexp(t, `^TRX-20250110-[0-9A-F]{8}$`, tx.Code)

	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, "u@example.com", f.gateway.requests[0].Customer.Email)
	assert.Empty(t, f.histories(t, u.ID))
}

func TestInitiate_GatewayDownPersistsNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	f.gateway.err = gateway.ErrUnavailable

	_, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)

	txs, err := f.service.List(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestInitiate_FreePurchaseSettlesImmediately(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 0)

	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusPaid, res.Transaction.PaymentStatus)
	assert.Empty(t, f.gateway.requests)
	assert.Len(t, f.histories(t, u.ID), 1)
}

type refusingGranter struct {
	*assignment.Engine
	err error
}

func (g refusingGranter) Apply(ctx context.Context, r store.Repos, userID int, p payment.Purchasable, now time.Time) (*assignment.Grant, error) {
	return nil, g.err
}

func TestInitiate_FreePurchaseFailedGrantLeavesNoTransaction(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 0)

	engine := assignment.NewEngine(f.store, "REG", time.UTC, 24*time.Hour)
	svc := NewService(f.store, refusingGranter{Engine: engine, err: gymclass.ErrNoCapacity}, f.gateway, NewMemoryDeduper(time.Hour), serverKey)

	_, err := svc.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	assert.ErrorIs(t, err, gymclass.ErrNoCapacity)

	txs, err := svc.List(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Empty(t, f.histories(t, u.ID))
	assert.Empty(t, f.gateway.requests)
}

func TestInitiate_FractionalPriceSettlesAtChargedAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u@example.com", false)
	pkg := &membership.Package{Code: "M30", Name: "Monthly", Duration: 30, Price: decimal.RequireFromString("150000.50")}
	require.NoError(t, f.repos.Memberships.CreatePackage(ctx, pkg))

	res, err := f.service.Initiate(ctx, u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	charged := decimal.NewFromInt(150001)
	assert.True(t, res.Transaction.Amount.Equal(charged))
	require.Len(t, f.gateway.requests, 1)
	assert.True(t, f.gateway.requests[0].Amount.Equal(charged))

	tx, err := f.service.HandleNotification(ctx, notification(code, "settlement", "", "150001.00"), now)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)
	assert.Len(t, f.histories(t, u.ID), 1)
}

func TestHandleNotification_DuplicateSettlementGrantsOnce(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	for i := 0; i < 2; i++ {
		tx, err := f.service.HandleNotification(context.Background(), notification(code, "settlement", "", "200000.00"), now)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)
	}

	assert.Len(t, f.histories(t, u.ID), 1)
	tx := f.transaction(t, code)
	assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)
	require.NotNil(t, tx.PaymentDate)
	assert.Equal(t, []string{code}, f.receipts.sent)
}

func TestHandleNotification_ConcurrentDeliveriesGrantOnce(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	var wg sync.WaitGroup
	for _, n := range []*gateway.Notification{
		notification(code, "settlement", "", "200000.00"),
		notification(code, "capture", "accept", "200000.00"),
		notification(code, "settlement", "", "200000.00"),
	} {
		wg.Add(1)
		go func(n *gateway.Notification) {
			defer wg.Done()
			_, _ = f.service.HandleNotification(context.Background(), n, now)
		}(n)
	}
	wg.Wait()

	assert.Len(t, f.histories(t, u.ID), 1)
	assert.Equal(t, payment.StatusPaid, f.transaction(t, code).PaymentStatus)
}

func TestHandleNotification_DBGuardWithoutDedupe(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	n := notification(code, "settlement", "", "200000.00")
	_, err = f.service.HandleNotification(context.Background(), n, now)
	require.NoError(t, err)

	f.service.dedupe = NewMemoryDeduper(time.Hour)
	_, err = f.service.HandleNotification(context.Background(), n, now)
	require.NoError(t, err)

	assert.Len(t, f.histories(t, u.ID), 1)
}

func TestHandleNotification_BadSignature(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	n := notification(res.Transaction.Code, "settlement", "", "200000.00")
	n.SignatureKey = "forged"

	_, err = f.service.HandleNotification(context.Background(), n, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, payment.StatusPending, f.transaction(t, res.Transaction.Code).PaymentStatus)
	assert.Empty(t, f.histories(t, u.ID))
}

func TestHandleNotification_AmountMismatch(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	_, err = f.service.HandleNotification(context.Background(), notification(res.Transaction.Code, "settlement", "", "1000.00"), now)
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, payment.StatusPending, f.transaction(t, res.Transaction.Code).PaymentStatus)
}

func TestHandleNotification_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status string
		fraud  string
		want   payment.Status
		grants int
	}{
		{"capture accepted", "capture", "accept", payment.StatusPaid, 1},
		{"capture challenged", "capture", "challenge", payment.StatusChallenge, 0},
		{"capture denied by fraud check", "capture", "deny", payment.StatusFailed, 0},
		{"deny", "deny", "", payment.StatusFailed, 0},
		{"expire", "expire", "", payment.StatusExpired, 0},
		{"cancel", "cancel", "", payment.StatusCancelled, 0},
		{"still pending", "pending", "", payment.StatusPending, 0},
		{"unknown status", "refund", "", payment.StatusPending, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.user(t, "u@example.com", false)
			pkg := f.membershipPackage(t, 200000)
			res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
			require.NoError(t, err)

			tx, err := f.service.HandleNotification(context.Background(), notification(res.Transaction.Code, tt.status, tt.fraud, "200000.00"), now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tx.PaymentStatus)
			assert.Len(t, f.histories(t, u.ID), tt.grants)
		})
	}
}

func TestHandleNotification_ChallengeThenSettlement(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	_, err = f.service.HandleNotification(context.Background(), notification(code, "capture", "challenge", "200000.00"), now)
	require.NoError(t, err)
	assert.Empty(t, f.histories(t, u.ID))

	tx, err := f.service.HandleNotification(context.Background(), notification(code, "settlement", "", "200000.00"), now)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)
	assert.Len(t, f.histories(t, u.ID), 1)
}

func TestHandleNotification_TerminalStatusIsKept(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	_, err = f.service.HandleNotification(context.Background(), notification(code, "expire", "", "200000.00"), now)
	require.NoError(t, err)

	tx, err := f.service.HandleNotification(context.Background(), notification(code, "settlement", "", "200000.00"), now)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusExpired, tx.PaymentStatus)
	assert.Empty(t, f.histories(t, u.ID))
}

func TestHandleNotification_FailedGrantLeavesPendingAndAllowsRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "buyer@example.com", true)
	other := f.user(t, "other@example.com", true)

	class := &gymclass.GymClass{Name: "Spin", Price: decimal.NewFromInt(75000)}
	require.NoError(t, f.repos.Classes.CreateClass(ctx, class))
	sched := &gymclass.Schedule{GymClassID: class.ID, Date: now.AddDate(0, 0, 2), StartTime: "09:00", EndTime: "10:00", Slot: 1, AvailableSlot: 1}
	require.NoError(t, f.repos.Classes.CreateSchedule(ctx, sched))

	purchase := payment.ClassPurchase{GymClassID: class.ID, ScheduleID: sched.ID}
	res, err := f.service.Initiate(ctx, buyer.ID, purchase, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	engine := assignment.NewEngine(f.store, "REG", time.UTC, 24*time.Hour)
	_, err = engine.BookClass(ctx, other.ID, class.ID, sched.ID, now)
	require.NoError(t, err)

	n := notification(code, "settlement", "", "75000.00")
	_, err = f.service.HandleNotification(ctx, n, now)
	assert.ErrorIs(t, err, gymclass.ErrNoCapacity)
	assert.Equal(t, payment.StatusPending, f.transaction(t, code).PaymentStatus)

	require.NoError(t, f.repos.Classes.SetCapacity(ctx, sched.ID, 2, 1))

	tx, err := f.service.HandleNotification(ctx, n, now)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)

	bookings, err := f.repos.Classes.ListAttendancesByUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestReconcile_GatewayUnreachable(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	f.gateway.err = errors.New("dial tcp: connection refused")
	_, err = f.service.Reconcile(context.Background(), u.ID, string(user.RoleMember), res.Transaction.Code, now)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.Equal(t, payment.StatusPending, f.transaction(t, res.Transaction.Code).PaymentStatus)
}

func TestReconcile_SettlementIsIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	f.gateway.status = &gateway.Status{StatusCode: "200", GrossAmount: "200000.00", TransactionStatus: "settlement"}
	for i := 0; i < 2; i++ {
		tx, err := f.service.Reconcile(context.Background(), u.ID, string(user.RoleMember), code, now)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)
	}

	_, err = f.service.HandleNotification(context.Background(), notification(code, "settlement", "", "200000.00"), now)
	require.NoError(t, err)
	assert.Len(t, f.histories(t, u.ID), 1)
}

func TestReconcile_UnknownOrderLeavesPending(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	f.gateway.status = &gateway.Status{StatusCode: "404"}
	tx, err := f.service.Reconcile(context.Background(), u.ID, string(user.RoleMember), res.Transaction.Code, now)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, tx.PaymentStatus)
}

func TestReconcile_OtherUsersTransaction(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	other := f.user(t, "other@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)

	_, err = f.service.Reconcile(context.Background(), other.ID, string(user.RoleMember), res.Transaction.Code, now)
	assert.ErrorIs(t, err, ErrNotYours)
}

func TestOverride(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.com", false)
	pkg := f.membershipPackage(t, 200000)
	res, err := f.service.Initiate(context.Background(), u.ID, payment.MembershipPurchase{PackageID: pkg.ID}, now)
	require.NoError(t, err)
	code := res.Transaction.Code

	tx, err := f.service.Override(context.Background(), code, payment.StatusPaid, now)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, tx.PaymentStatus)
	assert.Len(t, f.histories(t, u.ID), 1)

	_, err = f.service.Override(context.Background(), code, payment.StatusFailed, now)
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
	assert.Equal(t, payment.StatusPaid, f.transaction(t, code).PaymentStatus)
}

func TestInitiate_RegistrationOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u@example.com", false)
	reg := &membership.Package{Code: "REG", Name: "Registration", Duration: 30, Price: decimal.NewFromInt(50000)}
	require.NoError(t, f.repos.Memberships.CreatePackage(ctx, reg))

	res, err := f.service.Initiate(ctx, u.ID, payment.MembershipPurchase{PackageID: reg.ID}, now)
	require.NoError(t, err)
	_, err = f.service.HandleNotification(ctx, notification(res.Transaction.Code, "settlement", "", "50000.00"), now)
	require.NoError(t, err)

	_, err = f.service.Initiate(ctx, u.ID, payment.MembershipPurchase{PackageID: reg.ID}, now)
	assert.ErrorIs(t, err, assignment.ErrAlreadyRegistered)
}
