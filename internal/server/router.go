package server

import (
	"net/http"

	"resplan/internal/capacity"
	"resplan/internal/config"
	"resplan/internal/grid"
	"resplan/internal/handlers"
	"resplan/internal/metrics"
	"resplan/internal/middleware"
	"resplan/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg *config.Config, manager *grid.Manager, calc *capacity.Calculator) *gin.Engine {
	handlers.Init(manager, calc)

	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("resplan_session", store))

	r.Use(metrics.HTTPMiddleware())
	r.Use(middleware.InjectUser())

	// AUTH
	r.POST("/api/register", handlers.Register)
	r.POST("/api/login", handlers.Login)
	r.POST("/api/logout", handlers.Logout)

	auth := r.Group("/api")
	auth.Use(middleware.RequireAuth())

	auth.GET("/me", handlers.Me)

	// РЕСУРСЫ
	auth.GET("/resources", handlers.ListResources)
	auth.POST("/resources",
		middleware.RequireRole(models.RoleAdmin, models.RolePlanner),
		handlers.CreateResource,
	)
	auth.PUT("/resources/:id",
		middleware.RequireRole(models.RoleAdmin, models.RolePlanner),
		handlers.UpdateResource,
	)

	// удаление ресурсов — только админ
	auth.DELETE("/resources/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteResource,
	)

	// ПРОЕКТЫ
	auth.GET("/projects", handlers.ListProjects)
	auth.POST("/projects",
		middleware.RequireRole(models.RoleAdmin, models.RolePlanner),
		handlers.CreateProject,
	)
	auth.PUT("/projects/:id",
		middleware.RequireRole(models.RoleAdmin, models.RolePlanner),
		handlers.UpdateProject,
	)
	auth.DELETE("/projects/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteProject,
	)

	// ====== ГРИД АЛЛОКАЦИЙ ======
	// снапшот читают все, правят admin + planner
	auth.GET("/allocations", handlers.GridSnapshot)

	gridGroup := auth.Group("/grid")
	gridGroup.Use(middleware.RequireRole(models.RoleAdmin, models.RolePlanner))

	gridGroup.POST("/sessions", handlers.OpenGridSession)
	gridGroup.POST("/sessions/:id/cells", handlers.EditGridCell)
	gridGroup.POST("/sessions/:id/cells/:cellKey/flush", handlers.FlushGridCell)
	gridGroup.GET("/sessions/:id/state", handlers.GridSessionState)
	gridGroup.POST("/sessions/:id/save", handlers.SaveGridSession)
	gridGroup.POST("/sessions/:id/save-selected", handlers.SaveSelectedGridCells)
	gridGroup.POST("/sessions/:id/retry", handlers.RetryGridSession)
	gridGroup.POST("/sessions/:id/discard", handlers.DiscardGridSession)
	gridGroup.POST("/sessions/:id/close", handlers.CloseGridSession)

	// ДАШБОРД
	auth.GET("/dashboard/utilization", handlers.DashboardUtilization)

	// НАСТРОЙКИ
	auth.GET("/preferences/:key", handlers.GetPreference)
	auth.PUT("/preferences/:key", handlers.PutPreference)

	// АУДИТ
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleViewer),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK + METRICS
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
