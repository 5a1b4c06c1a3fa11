package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.GatewayConfig{ServerKey: "SB-server", SnapURL: url + "/snap/v1", APIURL: url, Timeout: time.Second})
}

func TestCreateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/snap/v1/transactions", r.URL.Path)
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "SB-server", user)

		var body map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "TRX-1", body["transaction_details"]["order_id"])
		assert.EqualValues(t, 200000, body["transaction_details"]["gross_amount"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"tok-1","redirect_url":"https://pay.example/tok-1"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).CreateTransaction(context.Background(), SnapRequest{
		OrderID: "TRX-1",
		Amount:  decimal.NewFromInt(200000),
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "https://pay.example/tok-1", res.RedirectURL)
}

func TestCreateTransaction_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateTransaction(context.Background(), SnapRequest{OrderID: "TRX-1", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/TRX-1/status", r.URL.Path)
		w.Write([]byte(`{"order_id":"TRX-1","status_code":"200","transaction_status":"settlement","gross_amount":"200000.00"}`))
	}))
	defer srv.Close()

	st, err := newTestClient(srv.URL).Status(context.Background(), "TRX-1")
	require.NoError(t, err)
	assert.Equal(t, "settlement", st.TransactionStatus)
	assert.Equal(t, "200000.00", st.GrossAmount)
}

func TestStatus_UnknownOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"404","status_message":"Transaction doesn't exist."}`))
	}))
	defer srv.Close()

	st, err := newTestClient(srv.URL).Status(context.Background(), "TRX-9")
	require.NoError(t, err)
	assert.Equal(t, "TRX-9", st.OrderID)
	assert.Empty(t, st.TransactionStatus)
}

func TestStatus_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Status(context.Background(), "TRX-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNotification_Verify(t *testing.T) {
	n := &Notification{OrderID: "TRX-1", StatusCode: "200", GrossAmount: "200000.00", TransactionStatus: "settlement"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "SB-server")

	assert.True(t, n.Verify("SB-server"))
	assert.False(t, n.Verify("other-key"))

	n.GrossAmount = "1.00"
	assert.False(t, n.Verify("SB-server"))
}

func TestNotification_DedupeKey(t *testing.T) {
	a := &Notification{OrderID: "TRX-1", StatusCode: "200", TransactionStatus: "settlement"}
	b := &Notification{OrderID: "TRX-1", StatusCode: "200", TransactionStatus: "settlement"}
	c := &Notification{OrderID: "TRX-1", StatusCode: "201", TransactionStatus: "pending"}

	assert.Equal(t, a.DedupeKey(), b.DedupeKey())
	assert.NotEqual(t, a.DedupeKey(), c.DedupeKey())
}

func TestNotification_Status(t *testing.T) {
	n := &Notification{
		OrderID:           "TRX-1",
		StatusCode:        "200",
		GrossAmount:       "200000.00",
		TransactionStatus: "capture",
		FraudStatus:       "challenge",
		PaymentType:       "credit_card",
		TransactionID:     "abc",
	}

	st := n.Status()
	assert.Equal(t, "TRX-1", st.OrderID)
	assert.Equal(t, "200000.00", st.GrossAmount)
	assert.Equal(t, "capture", st.TransactionStatus)
	assert.Equal(t, "challenge", st.FraudStatus)
	assert.Equal(t, "credit_card", st.PaymentType)
}
