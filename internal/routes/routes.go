package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	"github.com/BruksfildServices01/practice-scheduler/internal/auth"
	"github.com/BruksfildServices01/practice-scheduler/internal/config"
	apptdomain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	intakedomain "github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/handlers"
	"github.com/BruksfildServices01/practice-scheduler/internal/metrics"
	"github.com/BruksfildServices01/practice-scheduler/internal/middleware"
	"github.com/BruksfildServices01/practice-scheduler/internal/timezone"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/account"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/intake"
)

// Stores are the adapters picked by the storage driver. Cache and
// Archiver are optional and must be left nil, not typed-nil, when off.
type Stores struct {
	Users        user.Repository
	Appointments apptdomain.Repository
	Intake       intakedomain.Repository

	AuditSink   audit.Sink
	AuditReader audit.Reader

	Cache    apptdomain.AvailabilityCache
	Archiver intakedomain.Archiver
}

type Dependencies struct {
	Config   *config.Config
	Stores   Stores
	Clock    timezone.Clock
	Registry *prometheus.Registry
	Logger   zerolog.Logger

	// EmailDomainCheck is consulted on sign-up when non-nil.
	EmailDomainCheck account.EmailChecker
}

// Services are the long-lived pieces main needs after routing is set up.
type Services struct {
	Accounts   *account.Service
	Dispatcher *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) (*Services, error) {
	cfg := deps.Config
	st := deps.Stores
	logger := deps.Logger

	schedule, err := appointment.ScheduleFromConfig(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	clock := deps.Clock
	if clock == nil {
		clock = timezone.RealClock{Loc: schedule.Location}
	}

	// ======================================================
	// 🧱 INFRA
	// ======================================================
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	dispatcher := audit.NewDispatcher(st.AuditSink, logger.With().Str("component", "audit").Logger())
	var reg prometheus.Registerer
	if deps.Registry != nil {
		reg = deps.Registry
	}
	m := metrics.NewSchedulingMetrics(reg)

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	accounts := account.NewService(st.Users, tokens, deps.EmailDomainCheck, logger)

	getAvailabilityUC := appointment.NewGetAvailability(st.Appointments, st.Users, st.Cache, schedule, m, logger)
	createAppointmentUC := appointment.NewCreateAppointment(st.Appointments, st.Users, st.Cache, dispatcher, m, schedule, logger)
	listAppointmentsUC := appointment.NewListAppointments(st.Appointments, schedule)
	listPublicUC := appointment.NewListUpcomingPublic(st.Appointments, clock)
	transitionUC := appointment.NewTransitionAppointment(st.Appointments, st.Cache, dispatcher, m, clock, schedule, logger)

	createTemplateUC := intake.NewCreateTemplate(st.Intake, dispatcher)
	listActiveUC := intake.NewListActiveTemplates(st.Intake)
	deactivateUC := intake.NewDeactivateTemplate(st.Intake, dispatcher)
	forAppointmentUC := intake.NewGetAppointmentIntake(st.Intake, st.Appointments)
	submitUC := intake.NewSubmitIntake(st.Intake, st.Appointments, st.Archiver, dispatcher, m, clock, logger)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(accounts)
	userHandler := handlers.NewUserHandler(accounts)
	publicHandler := handlers.NewPublicHandler(getAvailabilityUC, accounts)
	appointmentHandler := handlers.NewAppointmentHandler(createAppointmentUC, listAppointmentsUC, listPublicUC, transitionUC)
	intakeHandler := handlers.NewIntakeHandler(createTemplateUC, listActiveUC, deactivateUC, forAppointmentUC, submitUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(st.AuditReader)

	// ======================================================
	// 🩺 OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	} else {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	authn := middleware.AuthMiddleware(tokens)
	adminOnly := middleware.RequireRole(user.RoleAdmin)

	// ------------------------------
	// 🌐 PUBLIC
	// ------------------------------
	api.GET("/availability", publicHandler.Availability)
	api.GET("/appointments/public", appointmentHandler.ListPublic)
	api.GET("/intake/templates/active", intakeHandler.ListActive)
	api.GET("/users/practitioners/public", publicHandler.Practitioners)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/check-email", authHandler.CheckEmail)
	api.GET("/auth/check-email", authHandler.CheckEmail)

	// ------------------------------
	// 🔐 AUTHENTICATED
	// ------------------------------
	secured := api.Group("/")
	secured.Use(authn)
	{
		secured.GET("/users/me", userHandler.Me)
		secured.GET("/auth/me", userHandler.Me)
		secured.POST("/users", adminOnly, userHandler.Create)

		secured.POST("/appointments", appointmentHandler.Create)
		secured.GET("/appointments", appointmentHandler.List)
		secured.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
		secured.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
		secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
		secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)

		secured.POST("/intake/templates", intakeHandler.CreateTemplate)
		secured.PATCH("/intake/templates/:id/deactivate", intakeHandler.Deactivate)
		secured.GET("/intake/appointment/:appointmentId", intakeHandler.ForAppointment)
		secured.POST("/intake/submit", intakeHandler.Submit)

		secured.GET("/audit-logs", adminOnly, auditLogsHandler.List)
	}

	return &Services{Accounts: accounts, Dispatcher: dispatcher}, nil
}
