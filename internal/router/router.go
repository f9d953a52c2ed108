package router

import (
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"energytracker/internal/auth"
	"energytracker/internal/config"
	"energytracker/internal/docs"
	"energytracker/internal/handler"
	"energytracker/internal/logging"
	"energytracker/internal/metrics"
	"energytracker/internal/middleware"
	"energytracker/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Appliance   *handler.ApplianceHandler
	Tariff      *handler.TariffHandler
	Limit       *handler.LimitHandler
	Consumption *handler.ConsumptionHandler
	Report      *handler.ReportHandler
	Admin       *handler.AdminHandler
}

// Auth carries what the authentication middleware needs.
type Auth struct {
	JWT    *auth.JWTService
	Tokens auth.TokenStoreInterface
	Users  service.UserService
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *zap.Logger, authDeps Auth, h Handlers) {
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Binder = handler.StrictBinder{}
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	e.Use(echomw.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())

	e.GET("/healthz", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = swaggerHost(cfg.SwaggerHost)
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	// Secured routes (require JWT authentication and an active account)
	secured := api.Group("",
		middleware.JWT(authDeps.JWT),
		middleware.CurrentUser(authDeps.Users, authDeps.Tokens),
	)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	// Appliance routes
	secured.GET("/appliances", h.Appliance.List)
	secured.POST("/appliances", h.Appliance.Create)
	secured.GET("/appliances/:id", h.Appliance.Get)
	secured.PATCH("/appliances/:id", h.Appliance.Update)
	secured.DELETE("/appliances/:id", h.Appliance.Delete)

	// Tariff routes
	secured.GET("/tariffs", h.Tariff.List)
	secured.POST("/tariffs", h.Tariff.Create)
	secured.GET("/tariffs/:id", h.Tariff.Get)
	secured.PATCH("/tariffs/:id", h.Tariff.Update)
	secured.DELETE("/tariffs/:id", h.Tariff.Delete)
	secured.POST("/tariffs/:id/activate", h.Tariff.Activate)

	// Limit routes
	secured.GET("/limits", h.Limit.List)
	secured.POST("/limits", h.Limit.Create)
	secured.GET("/limits/:id", h.Limit.Get)
	secured.PATCH("/limits/:id", h.Limit.Update)
	secured.DELETE("/limits/:id", h.Limit.Delete)
	secured.GET("/limits/:id/progress", h.Limit.Progress)

	// Consumption routes
	secured.GET("/consumption", h.Consumption.List)
	secured.POST("/consumption", h.Consumption.Create)
	secured.GET("/consumption/:id", h.Consumption.Get)
	secured.PATCH("/consumption/:id", h.Consumption.Update)
	secured.DELETE("/consumption/:id", h.Consumption.Delete)

	// Report routes
	secured.GET("/reports/summary", h.Report.Summary)
	secured.GET("/reports/daily", h.Report.Daily)
	secured.GET("/reports/by-appliance", h.Report.ByAppliance)
	secured.GET("/reports/limits", h.Report.Limits)
	secured.GET("/reports/summary/csv", h.Report.SummaryCSV)
	secured.GET("/reports/daily/csv", h.Report.DailyCSV)
	secured.GET("/reports/by-appliance/csv", h.Report.ByApplianceCSV)
	secured.GET("/reports/limits/csv", h.Report.LimitsCSV)
	secured.GET("/reports/xlsx", h.Report.XLSX)
	secured.GET("/reports/pdf", h.Report.PDF)

	// Admin routes
	admin := secured.Group("/admin", middleware.RequireAdmin)
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id", h.Admin.UpdateUser)
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/audit-logs", h.Admin.ListAuditLogs)
}

// swaggerHost strips the scheme from a configured host; swag renders host
// and scheme separately.
func swaggerHost(host string) string {
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimSuffix(host, "/")
}
