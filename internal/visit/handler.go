package visit

import (
	"net/http"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// CheckIn godoc
// @Summary      Check in at the gym
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Success      201  {object}  api.Envelope{data=Visit}
// @Failure      403  {object}  api.Envelope
// @Failure      409  {object}  api.Envelope
// @Router       /visits/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	v, err := h.service.CheckIn(c.Request.Context(), userID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "checked in", v)
}

// CheckOut godoc
// @Summary      Check out of the gym
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=Visit}
// @Failure      409  {object}  api.Envelope
// @Router       /visits/check-out [post]
func (h *Handler) CheckOut(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	v, err := h.service.CheckOut(c.Request.Context(), userID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "checked out", v)
}

// List godoc
// @Summary      List own gym visits
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]Visit}
// @Router       /visits [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visits, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "visits fetched", visits)
}
