package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/config"
	"github.com/emr-platform/emr-api/internal/service"
	"github.com/emr-platform/emr-api/pkg/auth"
	"github.com/emr-platform/emr-api/pkg/metrics"
)

type RouterDeps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *metrics.Collector
	JWT           *auth.JWTManager
	Auth          *service.AuthService
	Patients      *service.PatientService
	Appointments  *service.AppointmentService
	Prescriptions *service.PrescriptionService
	Audit         *service.AuditService
	Catalog       *service.CatalogService
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(MetricsMiddleware(deps.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     deps.Config.CORS.AllowedMethods,
		AllowHeaders:     deps.Config.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           deps.Config.CORS.MaxAge,
	}))
	r.Use(ActorMiddleware(deps.JWT, deps.Logger))

	authH := NewAuthHandler(deps.Auth, deps.Logger)
	patientH := NewPatientHandler(deps.Patients, deps.Logger)
	appointmentH := NewAppointmentHandler(deps.Appointments, deps.Logger)
	prescriptionH := NewPrescriptionHandler(deps.Prescriptions, deps.Logger)
	auditH := NewAuditHandler(deps.Audit, deps.Logger)
	catalogH := NewCatalogHandler(deps.Catalog, deps.Logger)

	api := r.Group("/api")
	{
		api.POST("/login", authH.Login)

		api.GET("/patients", patientH.List)
		api.POST("/patients", patientH.Create)
		api.GET("/patients/all", patientH.ListAll)
		api.GET("/patients/search", patientH.Search)
		api.GET("/patients/:id", patientH.Get)
		api.PUT("/patients/:id", patientH.Update)

		api.GET("/appointments", appointmentH.List)
		api.POST("/appointments", appointmentH.Schedule)
		api.PUT("/appointments/:id", appointmentH.Update)
		api.DELETE("/appointments/:id", appointmentH.Delete)

		api.GET("/prescriptions", prescriptionH.List)
		api.POST("/prescriptions", prescriptionH.Create)
		api.PUT("/prescriptions/:id", prescriptionH.Update)
		api.DELETE("/prescriptions/:id", prescriptionH.Delete)

		api.GET("/doctors", catalogH.Doctors)
		api.GET("/medications", catalogH.Medications)

		api.GET("/audit-logs", auditH.AdminList)
		api.GET("/audit-log", auditH.SelfList)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": deps.Config.App.Name,
				"version": deps.Config.App.Version,
			})
		})
	}

	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	r.NoRoute(func(c *gin.Context) {
		respondMessage(c, http.StatusNotFound, "Route not found")
	})

	return r
}
