package membership

import (
	"net/http"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPackages godoc
// @Summary      List membership packages
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]Package}
// @Router       /membership-packages [get]
func (h *Handler) ListPackages(c *gin.Context) {
	packages, err := h.service.ListPackages(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "membership packages fetched", packages)
}

// CreatePackage godoc
// @Summary      Create membership package
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePackageRequest  true  "Package data"
// @Success      201      {object}  api.Envelope{data=Package}
// @Failure      400      {object}  api.Envelope
// @Failure      409      {object}  api.Envelope
// @Router       /admin/membership-packages [post]
func (h *Handler) CreatePackage(c *gin.Context) {
	var req CreatePackageRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreatePackage(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "membership package created", p)
}

// MyMemberships godoc
// @Summary      List own membership periods
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]History}
// @Router       /me/memberships [get]
func (h *Handler) MyMemberships(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	histories, err := h.service.ListHistories(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "membership history fetched", histories)
}
