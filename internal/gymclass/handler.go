package gymclass

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

// ListClasses godoc
// @Summary      List gym classes
// @Tags         classes
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]GymClass}
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.service.ListClasses(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "classes fetched", classes)
}

// ListSchedules godoc
// @Summary      List upcoming schedules of a class
// @Tags         classes
// @Produce      json
// @Param        classID  path      int  true  "Class ID"
// @Success      200      {object}  api.Envelope{data=[]Schedule}
// @Failure      404      {object}  api.Envelope
// @Router       /classes/{classID}/schedules [get]
func (h *Handler) ListSchedules(c *gin.Context) {
	classID, ok := api.IDParam(c, "classID")
	if !ok {
		return
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), classID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "schedules fetched", schedules)
}

// CreateClass godoc
// @Summary      Create gym class
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClassRequest  true  "Class data"
// @Success      201      {object}  api.Envelope{data=GymClass}
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "class created", g)
}

// CreateSchedule godoc
// @Summary      Create class schedule
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        classID  path      int                    true  "Class ID"
// @Param        request  body      CreateScheduleRequest  true  "Schedule data"
// @Success      201      {object}  api.Envelope{data=Schedule}
// @Failure      400      {object}  api.Envelope
// @Router       /admin/classes/{classID}/schedules [post]
func (h *Handler) CreateSchedule(c *gin.Context) {
	classID, ok := api.IDParam(c, "classID")
	if !ok {
		return
	}
	var req CreateScheduleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	schedule, err := h.service.CreateSchedule(c.Request.Context(), classID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "schedule created", schedule)
}

// ListScheduleAttendances godoc
// @Summary      List bookings of a schedule
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int  true  "Schedule ID"
// @Success      200         {object}  api.Envelope{data=[]Attendance}
// @Router       /admin/schedules/{scheduleID}/attendances [get]
func (h *Handler) ListScheduleAttendances(c *gin.Context) {
	scheduleID, ok := api.IDParam(c, "scheduleID")
	if !ok {
		return
	}

	attendances, err := h.service.ListScheduleAttendances(c.Request.Context(), scheduleID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "attendances fetched", attendances)
}

// MyBookings godoc
// @Summary      List own class bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]Attendance}
// @Router       /bookings [get]
func (h *Handler) MyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookings, err := h.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "bookings fetched", bookings)
}
