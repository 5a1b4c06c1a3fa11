package checkout

import (
	"net/http"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"
	"github.com/ahnafi/gym-management-app-sub000/internal/gateway"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// Checkout godoc
// @Summary      Start a purchase
// @Description  Creates a pending transaction and returns the gateway payment page
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      payment.CheckoutRequest  true  "What to buy"
// @Success      201      {object}  api.Envelope{data=payment.CheckoutResponse}
// @Failure      403      {object}  api.Envelope
// @Failure      409      {object}  api.Envelope
// @Failure      503      {object}  api.Envelope
// @Router       /checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	var req payment.CheckoutRequest
	if !api.BindJSON(c, &req) {
		return
	}
	p, err := req.Purchasable()
	if err != nil {
		api.Fail(c, err)
		return
	}

	res, err := h.service.Initiate(c.Request.Context(), userID, p, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Transaction created", res)
}

// ListTransactions godoc
// @Summary      List own transactions
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]payment.Transaction}
// @Router       /transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	txs, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Transactions fetched", txs)
}

// GetTransaction godoc
// @Summary      Get a transaction by code
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        code  path      string  true  "Transaction code"
// @Success      200   {object}  api.Envelope{data=payment.Transaction}
// @Failure      404   {object}  api.Envelope
// @Router       /transactions/{code} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := auth.GetUserRole(c)

	t, err := h.service.Get(c.Request.Context(), userID, role, c.Param("code"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Transaction fetched", t)
}

// StatusCheck godoc
// @Summary      Reconcile a transaction with the gateway
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        code  path      string  true  "Transaction code"
// @Success      200   {object}  api.Envelope{data=payment.Transaction}
// @Failure      503   {object}  api.Envelope
// @Router       /transactions/{code}/status-check [post]
func (h *Handler) StatusCheck(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := auth.GetUserRole(c)

	t, err := h.service.Reconcile(c.Request.Context(), userID, role, c.Param("code"), h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Transaction status refreshed", t)
}

// Notification godoc
// @Summary      Payment gateway webhook
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      gateway.Notification  true  "Gateway notification"
// @Success      200      {object}  api.Envelope
// @Failure      400      {object}  api.Envelope
// @Failure      403      {object}  api.Envelope
// @Router       /payments/notification [post]
func (h *Handler) Notification(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		api.Error(c, http.StatusBadRequest, "invalid notification payload")
		return
	}
	if errs := api.ValidateStruct(n); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	t, err := h.service.HandleNotification(c.Request.Context(), &n, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Notification processed", gin.H{"code": t.Code, "payment_status": t.PaymentStatus})
}

// Override godoc
// @Summary      Set a transaction status manually
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        code     path      string                   true  "Transaction code"
// @Param        request  body      payment.OverrideRequest  true  "New status"
// @Success      200      {object}  api.Envelope{data=payment.Transaction}
// @Failure      409      {object}  api.Envelope
// @Router       /admin/transactions/{code}/status [post]
func (h *Handler) Override(c *gin.Context) {
	var req payment.OverrideRequest
	if !api.BindJSON(c, &req) {
		return
	}

	t, err := h.service.Override(c.Request.Context(), c.Param("code"), req.Status, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Transaction status updated", t)
}
