package server

import (
	"context"
	"net/http"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/assignment"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"
	"github.com/ahnafi/gym-management-app-sub000/internal/checkout"
	"github.com/ahnafi/gym-management-app-sub000/internal/config"
	"github.com/ahnafi/gym-management-app-sub000/internal/entitlement"
	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/storage"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
	"github.com/ahnafi/gym-management-app-sub000/internal/visit"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived services the routes are built on.
type Deps struct {
	Store    store.UnitOfWork
	Engine   *assignment.Engine
	Checkout *checkout.Service
	Storage  storage.FileStorage
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	repos := deps.Store.Repos()
	tokens := auth.NewIssuer(cfg.JWTSecret)
	userHandler := user.NewHandler(user.NewService(repos.Users, tokens))
	membershipHandler := membership.NewHandler(membership.NewService(repos.Memberships))
	classHandler := gymclass.NewHandler(gymclass.NewService(repos.Classes, cfg.Location))
	trainerHandler := trainer.NewHandler(trainer.NewService(repos.Trainers, repos.Users))
	visitHandler := visit.NewHandler(visit.NewService(repos.Visits, repos.Users))
	entitlementHandler := entitlement.NewHandler(entitlement.NewLedger(repos.Users, repos.Memberships, repos.Trainers, repos.Classes))
	assignmentHandler := assignment.NewHandler(deps.Engine)
	checkoutHandler := checkout.NewHandler(deps.Checkout)
	uploadHandler := storage.NewHandler(deps.Storage)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware("auth", cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	router.GET("/membership-packages", membershipHandler.ListPackages)
	router.GET("/classes", classHandler.ListClasses)
	router.GET("/classes/:classID/schedules", classHandler.ListSchedules)
	router.GET("/trainer-packages", trainerHandler.ListPackages)
	router.POST("/payments/notification",
		RateLimitMiddleware("webhook", cfg.RateLimitRPS, cfg.RateLimitBurst),
		checkoutHandler.Notification)

	authMiddleware := auth.AuthMiddleware(tokens)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/me/entitlements", entitlementHandler.MyEntitlements)
		protected.GET("/me/memberships", membershipHandler.MyMemberships)

		protected.POST("/checkout", checkoutHandler.Checkout)
		protected.GET("/transactions", checkoutHandler.ListTransactions)
		protected.GET("/transactions/:code", checkoutHandler.GetTransaction)
		protected.POST("/transactions/:code/status-check", checkoutHandler.StatusCheck)

		protected.GET("/bookings", classHandler.MyBookings)
		protected.POST("/bookings/:attendanceID/cancel", assignmentHandler.CancelBooking)

		protected.GET("/trainer-assignments", trainerHandler.MyAssignments)
		protected.POST("/trainer-assignments/:assignmentID/sessions", assignmentHandler.ScheduleSession)
		protected.GET("/trainer-assignments/:assignmentID/sessions", trainerHandler.ListSessions)

		protected.POST("/visits/check-in", visitHandler.CheckIn)
		protected.POST("/visits/check-out", visitHandler.CheckOut)
		protected.GET("/visits", visitHandler.List)
	}

	coach := router.Group("/trainer")
	coach.Use(authMiddleware, auth.RequireRole(string(user.RoleTrainer), string(user.RoleAdmin)))
	{
		coach.POST("/sessions/:sessionID/complete", assignmentHandler.CompleteSession)
		coach.PATCH("/sessions/:sessionID", assignmentHandler.UpdateSession)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(string(user.RoleAdmin)))
	{
		admin.POST("/membership-packages", membershipHandler.CreatePackage)
		admin.POST("/classes", classHandler.CreateClass)
		admin.POST("/classes/:classID/schedules", classHandler.CreateSchedule)
		admin.POST("/trainer-packages", trainerHandler.CreatePackage)

		admin.PATCH("/schedules/:scheduleID/capacity", assignmentHandler.ResizeSchedule)
		admin.GET("/schedules/:scheduleID/attendances", classHandler.ListScheduleAttendances)
		admin.PATCH("/attendances/:attendanceID", assignmentHandler.MarkAttendance)

		admin.POST("/users/:userID/memberships", assignmentHandler.GrantMembership)
		admin.POST("/users/:userID/bookings", assignmentHandler.BookClass)
		admin.POST("/users/:userID/trainer-assignments", assignmentHandler.AssignTrainer)

		admin.POST("/transactions/:code/status", checkoutHandler.Override)
		admin.POST("/memberships/sweep", assignmentHandler.SweepMemberships)
		admin.POST("/uploads", uploadHandler.CreateUpload)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{router: router, config: cfg}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
