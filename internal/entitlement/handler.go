package entitlement

import (
	"net/http"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ledger *Ledger
	now    func() time.Time
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger, now: time.Now}
}

// MyEntitlements godoc
// @Summary      Current entitlements
// @Description  Membership state, membership periods, active trainer assignments and class bookings.
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=Summary}
// @Router       /me/entitlements [get]
func (h *Handler) MyEntitlements(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	summary, err := h.ledger.Summary(c.Request.Context(), userID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "entitlements fetched", summary)
}
