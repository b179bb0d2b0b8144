package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jcondori/biblioteca-api/internal/middleware"
	"github.com/jcondori/biblioteca-api/internal/models"
	"github.com/jcondori/biblioteca-api/internal/service"
)

// Handlers groups every HTTP handler for route registration.
type Handlers struct {
	Auth        *AuthHandler
	Assets      *AssetHandler
	Students    *StudentHandler
	Loans       *LoanHandler
	Circulation *CirculationHandler
	Dashboard   *DashboardHandler
	Historial   *HistorialHandler
	Metrics     *MetricsHandler
}

// Register mounts the API under the configured prefix. Routes outside the
// public set require a bearer token.
func Register(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	api := r.Group(prefix)

	// Public surface: token issuance and the availability feed.
	api.POST("/token", h.Auth.Login)
	api.POST("/token/refresh", h.Auth.Refresh)
	api.GET("/prestados-publico", h.Loans.PublicActive)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	secured.GET("/perfil", h.Auth.Profile)
	secured.PUT("/perfil", h.Auth.UpdateProfile)

	libros := secured.Group("/libros")
	libros.GET("", h.Assets.List(models.AssetKindBook))
	libros.POST("", h.Assets.Create(models.AssetKindBook))
	libros.GET("/:id", h.Assets.Get(models.AssetKindBook))
	libros.PUT("/:id", h.Assets.Update(models.AssetKindBook))
	libros.DELETE("/:id", h.Assets.Delete(models.AssetKindBook))

	tesis := secured.Group("/tesis")
	tesis.GET("", h.Assets.List(models.AssetKindThesis))
	tesis.POST("", h.Assets.Create(models.AssetKindThesis))
	tesis.GET("/:id", h.Assets.Get(models.AssetKindThesis))
	tesis.PUT("/:id", h.Assets.Update(models.AssetKindThesis))
	tesis.DELETE("/:id", h.Assets.Delete(models.AssetKindThesis))

	secured.GET("/activos", h.Assets.Options)
	secured.GET("/siguiente-codigo", h.Assets.NextCode)
	secured.GET("/secciones-disponibles", h.Assets.Sections)

	estudiantes := secured.Group("/estudiantes")
	estudiantes.GET("", h.Students.List)
	estudiantes.POST("", h.Students.Create)
	estudiantes.GET("/:id", h.Students.Get)
	estudiantes.PUT("/:id", h.Students.Update)
	estudiantes.DELETE("/:id", h.Students.Delete)

	prestamos := secured.Group("/prestamos")
	prestamos.GET("", h.Loans.List)
	prestamos.POST("", h.Loans.Create)
	prestamos.GET("/reporte", h.Loans.Report)
	prestamos.POST("/:id/devolver", h.Loans.Return)

	sesiones := secured.Group("/circulacion/sesiones")
	sesiones.POST("", h.Circulation.Open)
	sesiones.GET("/:id", h.Circulation.Get)
	sesiones.DELETE("/:id", h.Circulation.Cancel)
	sesiones.POST("/:id/items/:assetId", h.Circulation.ToggleItem)
	sesiones.PUT("/:id/estudiante", h.Circulation.SetStudent)
	sesiones.PUT("/:id/tipo", h.Circulation.SetType)
	sesiones.POST("/:id/confirmar", h.Circulation.Confirm)

	secured.GET("/dashboard", h.Dashboard.Stats)
	secured.GET("/historial", h.Historial.List)
	secured.POST("/restaurar/:modelo/:historyId", h.Historial.Restore)
	secured.GET("/metricas", h.Metrics.Snapshot)
}
