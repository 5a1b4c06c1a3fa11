package assignment

import (
	"context"
	"net/http"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"

	"github.com/gin-gonic/gin"
)

type Service interface {
	GrantMembership(ctx context.Context, userID, packageID int, now time.Time) (*Grant, error)
	BookClass(ctx context.Context, userID, classID, scheduleID int, now time.Time) (*gymclass.Attendance, error)
	CancelBooking(ctx context.Context, userID, attendanceID int, now time.Time) error
	MarkAttendance(ctx context.Context, attendanceID int, status gymclass.AttendanceStatus, now time.Time) (*gymclass.Attendance, error)
	ResizeSchedule(ctx context.Context, scheduleID, slot int) (*gymclass.Schedule, error)
	AssignTrainerPackage(ctx context.Context, userID, packageID int, now time.Time) (*trainer.Assignment, error)
	ScheduleTrainingSession(ctx context.Context, actorID int, actorRole string, assignmentID int, scheduledAt, now time.Time) (*trainer.Session, error)
	CompleteTrainingSession(ctx context.Context, actorID int, actorRole string, sessionID int, log string, now time.Time) (*trainer.Session, error)
	UpdateTrainingSession(ctx context.Context, actorID int, actorRole string, sessionID int, status trainer.SessionStatus, log string) (*trainer.Session, error)
	SweepMemberships(ctx context.Context, now time.Time) (*SweepResult, error)
}

var _ Service = (*Engine)(nil)

type Handler struct {
	service Service
	now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func actor(c *gin.Context) (int, string, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Error(c, http.StatusUnauthorized, "User not authenticated")
		return 0, "", false
	}
	role, _ := auth.GetUserRole(c)
	return userID, role, true
}

// CancelBooking godoc
// @Summary      Cancel own class booking
// @Description  Allowed only more than 24 hours before the class starts
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        attendanceID  path      int  true  "Booking ID"
// @Success      200           {object}  api.Envelope
// @Failure      403           {object}  api.Envelope
// @Failure      409           {object}  api.Envelope
// @Router       /bookings/{attendanceID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, _, ok := actor(c)
	if !ok {
		return
	}
	attendanceID, ok := api.IDParam(c, "attendanceID")
	if !ok {
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), userID, attendanceID, h.now()); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Booking cancelled successfully", nil)
}

// ScheduleSession godoc
// @Summary      Schedule a training session
// @Tags         trainers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        assignmentID  path      int                             true  "Assignment ID"
// @Param        request       body      trainer.ScheduleSessionRequest  true  "Session time"
// @Success      201           {object}  api.Envelope{data=trainer.Session}
// @Failure      409           {object}  api.Envelope
// @Router       /trainer-assignments/{assignmentID}/sessions [post]
func (h *Handler) ScheduleSession(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}
	assignmentID, ok := api.IDParam(c, "assignmentID")
	if !ok {
		return
	}
	var req trainer.ScheduleSessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.ScheduleTrainingSession(c.Request.Context(), userID, role, assignmentID, req.ScheduledAt, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Training session scheduled", s)
}

// CompleteSession godoc
// @Summary      Complete a training session
// @Tags         trainers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                             true  "Session ID"
// @Param        request    body      trainer.CompleteSessionRequest  false "Training log"
// @Success      200        {object}  api.Envelope{data=trainer.Session}
// @Router       /trainer/sessions/{sessionID}/complete [post]
func (h *Handler) CompleteSession(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}
	sessionID, ok := api.IDParam(c, "sessionID")
	if !ok {
		return
	}
	var req trainer.CompleteSessionRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.CompleteTrainingSession(c.Request.Context(), userID, role, sessionID, req.TrainingLog, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Training session completed", s)
}

// UpdateSession godoc
// @Summary      Cancel a training session or mark it missed
// @Tags         trainers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                           true  "Session ID"
// @Param        request    body      trainer.UpdateSessionRequest  true  "New status"
// @Success      200        {object}  api.Envelope{data=trainer.Session}
// @Router       /trainer/sessions/{sessionID} [patch]
func (h *Handler) UpdateSession(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}
	sessionID, ok := api.IDParam(c, "sessionID")
	if !ok {
		return
	}
	var req trainer.UpdateSessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.UpdateTrainingSession(c.Request.Context(), userID, role, sessionID, req.Status, req.TrainingLog)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Training session updated", s)
}

// ResizeSchedule godoc
// @Summary      Change a schedule's capacity
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        scheduleID  path      int                     true  "Schedule ID"
// @Param        request     body      gymclass.ResizeRequest  true  "New capacity"
// @Success      200         {object}  api.Envelope{data=gymclass.Schedule}
// @Router       /admin/schedules/{scheduleID}/capacity [patch]
func (h *Handler) ResizeSchedule(c *gin.Context) {
	scheduleID, ok := api.IDParam(c, "scheduleID")
	if !ok {
		return
	}
	var req gymclass.ResizeRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.ResizeSchedule(c.Request.Context(), scheduleID, req.Slot)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Schedule capacity updated", s)
}

// MarkAttendance godoc
// @Summary      Mark a booking attended or missed
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        attendanceID  path      int                             true  "Booking ID"
// @Param        request       body      gymclass.MarkAttendanceRequest  true  "Status"
// @Success      200           {object}  api.Envelope{data=gymclass.Attendance}
// @Router       /admin/attendances/{attendanceID} [patch]
func (h *Handler) MarkAttendance(c *gin.Context) {
	attendanceID, ok := api.IDParam(c, "attendanceID")
	if !ok {
		return
	}
	var req gymclass.MarkAttendanceRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.MarkAttendance(c.Request.Context(), attendanceID, req.Status, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Attendance updated", a)
}

// GrantMembership godoc
// @Summary      Grant a membership package to a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID   path      int                     true  "User ID"
// @Param        request  body      GrantMembershipRequest  true  "Package"
// @Success      201      {object}  api.Envelope{data=Grant}
// @Router       /admin/users/{userID}/memberships [post]
func (h *Handler) GrantMembership(c *gin.Context) {
	userID, ok := api.IDParam(c, "userID")
	if !ok {
		return
	}
	var req GrantMembershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.GrantMembership(c.Request.Context(), userID, req.PackageID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Membership granted", g)
}

// BookClass godoc
// @Summary      Book a class seat for a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID   path      int               true  "User ID"
// @Param        request  body      BookClassRequest  true  "Class and schedule"
// @Success      201      {object}  api.Envelope{data=gymclass.Attendance}
// @Failure      409      {object}  api.Envelope
// @Router       /admin/users/{userID}/bookings [post]
func (h *Handler) BookClass(c *gin.Context) {
	userID, ok := api.IDParam(c, "userID")
	if !ok {
		return
	}
	var req BookClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.BookClass(c.Request.Context(), userID, req.GymClassID, req.ScheduleID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Class booked successfully", a)
}

// AssignTrainer godoc
// @Summary      Assign a trainer package to a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID   path      int                   true  "User ID"
// @Param        request  body      AssignTrainerRequest  true  "Package"
// @Success      201      {object}  api.Envelope{data=trainer.Assignment}
// @Router       /admin/users/{userID}/trainer-assignments [post]
func (h *Handler) AssignTrainer(c *gin.Context) {
	userID, ok := api.IDParam(c, "userID")
	if !ok {
		return
	}
	var req AssignTrainerRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.AssignTrainerPackage(c.Request.Context(), userID, req.PackageID, h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Trainer package assigned", a)
}

// SweepMemberships godoc
// @Summary      Expire ended memberships and start stacked ones
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=SweepResult}
// @Router       /admin/memberships/sweep [post]
func (h *Handler) SweepMemberships(c *gin.Context) {
	res, err := h.service.SweepMemberships(c.Request.Context(), h.now())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Memberships swept", res)
}
