package trainer

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
// @Summary      List personal trainer packages
// @Tags         trainers
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]Package}
// @Router       /trainer-packages [get]
func (h *Handler) ListPackages(c *gin.Context) {
	packages, err := h.service.ListPackages(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "trainer packages fetched", packages)
}

// CreatePackage godoc
// @Summary      Create personal trainer package
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePackageRequest  true  "Package data"
// @Success      201      {object}  api.Envelope{data=Package}
// @Failure      400      {object}  api.Envelope
// @Router       /admin/trainer-packages [post]
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
	api.Created(c, "trainer package created", p)
}

// MyAssignments godoc
// @Summary      List own trainer assignments
// @Tags         trainers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]Assignment}
// @Router       /trainer-assignments [get]
func (h *Handler) MyAssignments(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	assignments, err := h.service.ListAssignments(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "trainer assignments fetched", assignments)
}

// ListSessions godoc
// @Summary      List sessions of an assignment
// @Tags         trainers
// @Security     BearerAuth
// @Produce      json
// @Param        assignmentID  path      int  true  "Assignment ID"
// @Success      200           {object}  api.Envelope{data=[]Session}
// @Failure      403           {object}  api.Envelope
// @Router       /trainer-assignments/{assignmentID}/sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role, _ := auth.GetUserRole(c)
	assignmentID, ok := api.IDParam(c, "assignmentID")
	if !ok {
		return
	}

	sessions, err := h.service.ListSessions(c.Request.Context(), userID, role, assignmentID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "sessions fetched", sessions)
}
