package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/assignment"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"
	"github.com/ahnafi/gym-management-app-sub000/internal/checkout"
	"github.com/ahnafi/gym-management-app-sub000/internal/config"
	"github.com/ahnafi/gym-management-app-sub000/internal/gateway"
	"github.com/ahnafi/gym-management-app-sub000/internal/storage"
	"github.com/ahnafi/gym-management-app-sub000/internal/store/memstore"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type stubGateway struct{}

func (stubGateway) CreateTransaction(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapResponse, error) {
	return &gateway.SnapResponse{Token: "tok", RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func (stubGateway) Status(ctx context.Context, orderID string) (*gateway.Status, error) {
	return nil, gateway.ErrUnavailable
}

type testServer struct {
	handler http.Handler
	store   *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:               secret,
		RegistrationPackageCode: "registration",
		Location:                time.UTC,
		CancellationWindow:      24 * time.Hour,
		RateLimitRPS:            100,
		RateLimitBurst:          100,
		Gateway:                 config.GatewayConfig{ServerKey: "server-key"},
	}
	s := memstore.New()
	engine := assignment.NewEngine(s, cfg.RegistrationPackageCode, cfg.Location, cfg.CancellationWindow)
	svc := checkout.NewService(s, engine, stubGateway{}, checkout.NewMemoryDeduper(time.Hour), cfg.Gateway.ServerKey)

	srv := New(cfg, Deps{Store: s, Engine: engine, Checkout: svc, Storage: storage.Disabled{}})
	return &testServer{handler: srv.Handler(), store: s}
}

func (ts *testServer) token(t *testing.T, email string, role user.Role) string {
	t.Helper()
	u, err := ts.store.Repos().Users.Create(context.Background(), "Test", email, "hash", role)
	require.NoError(t, err)
	access, err := auth.NewIssuer(secret).Sign(auth.Identity{UserID: u.ID, Email: u.Email, Role: string(role)}, auth.AccessToken)
	require.NoError(t, err)
	return access
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	ts.handler.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = ts.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/auth/register", "", `{"name":"Rina","email":"rina@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/auth/login", "", `{"email":"rina@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data user.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.AccessToken)

	w = ts.do(http.MethodGet, "/me", env.Data.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rina@example.com")

	w = ts.do(http.MethodGet, "/me/entitlements", env.Data.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RouteGuards(t *testing.T) {
	ts := newTestServer(t)
	member := ts.token(t, "m@example.com", user.RoleMember)
	trainer := ts.token(t, "t@example.com", user.RoleTrainer)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/transactions", "", "").Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/admin/classes", member, `{"name":"Yoga","price":"75000"}`).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/trainer/sessions/1/complete", member, "").Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/admin/memberships/sweep", trainer, "").Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/classes", "", "").Code)
}

func TestServer_CheckoutAndWebhook(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, "admin@example.com", user.RoleAdmin)
	member := ts.token(t, "m@example.com", user.RoleMember)

	w := ts.do(http.MethodPost, "/admin/membership-packages", admin, `{"code":"M30","name":"Monthly","duration":30,"price":"200000"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = ts.do(http.MethodPost, "/checkout", member, `{"purchasable_type":"membership_package","purchasable_id":`+strconv.Itoa(created.Data.ID)+`}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var checkoutEnv struct {
		Data struct {
			Transaction struct {
				Code string `json:"code"`
			} `json:"transaction"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkoutEnv))
	code := checkoutEnv.Data.Transaction.Code

	n := gateway.Notification{OrderID: code, StatusCode: "200", GrossAmount: "200000.00", TransactionStatus: "settlement"}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")
	body, err := json.Marshal(n)
	require.NoError(t, err)

	w = ts.do(http.MethodPost, "/payments/notification", "", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payment_status":"paid"`)

	w = ts.do(http.MethodGet, "/me/memberships", member, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"active"`)

	w = ts.do(http.MethodPost, "/transactions/"+code+"/status-check", member, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_UploadsWithoutBucket(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, "admin@example.com", user.RoleAdmin)

	w := ts.do(http.MethodPost, "/admin/uploads", admin, `{"folder":"classes","content_type":"image/png"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
