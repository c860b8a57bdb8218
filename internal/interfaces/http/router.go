package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/analytics"
	"github.com/jhoicas/agrotrack-api/internal/application/auth"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/application/report"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// Acciones de permiso usadas en las rutas.
const (
	actView   = "ver"
	actCreate = "crear"
	actEdit   = "editar"
	actDelete = "eliminar"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	Authz         *usecase.AuthorizationService
	UserUC        *usecase.UserUseCase
	RoleUC        *usecase.RoleUseCase
	ParcelUC      *usecase.ParcelUseCase
	CropUC        *usecase.CropUseCase
	SupplyUC      *usecase.SupplyUseCase
	StockUC       *inventory.StockUseCase
	MovementUC    *inventory.MovementUseCase
	TreatmentUC   *inventory.TreatmentUseCase
	SensorUC      *usecase.SensorUseCase
	AlertUC       *usecase.AlertUseCase
	Ingester      readingIngester
	FinanceUC     *usecase.FinanceUseCase
	SummaryUC     *analytics.FinanceSummaryUseCase
	ReportUC      *report.UseCase
	Hub           *Hub
	LoginLimiter  rateLimiter
	JWTSecret     string
	UploadDir     string
	UploadMaxSize int64
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if deps.LoginLimiter != nil {
		authGroup.Post("/login", RateLimitByIP(deps.LoginLimiter, "login"), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Websocket de lecturas y alertas (token en ?token=)
	if deps.Hub != nil {
		app.Get("/ws", deps.Hub.Upgrade(deps.JWTSecret), deps.Hub.Handler())
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	perm := func(resource, action string) fiber.Handler {
		return RequirePermission(deps.Authz, resource, action)
	}
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)

	// Usuarios
	users := protected.Group("/usuarios")
	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC, deps.UploadDir, deps.UploadMaxSize)
	users.Get("/", perm("usuarios", actView), userHandler.List)
	users.Post("/", adminOnly, userHandler.Create)
	users.Get("/:id", perm("usuarios", actView), userHandler.GetByID)
	users.Put("/:id", perm("usuarios", actEdit), userHandler.Update)
	users.Delete("/:id", adminOnly, userHandler.Delete)
	users.Put("/:id/estado", perm("usuarios", actEdit), userHandler.SetStatus)
	users.Post("/:id/imagen", perm("usuarios", actEdit), userHandler.UploadImage)

	// Roles y permisos (administración)
	roleHandler := NewRoleHandler(deps.RoleUC)
	roles := protected.Group("/roles", adminOnly)
	roles.Get("/", roleHandler.List)
	roles.Post("/", roleHandler.Create)
	roles.Get("/:id", roleHandler.GetByID)
	roles.Put("/:id", roleHandler.Update)
	roles.Delete("/:id", roleHandler.Delete)
	roles.Put("/:id/permisos", roleHandler.SetPermissions)

	protected.Get("/permisos/me", roleHandler.MyPermissions)
	permisos := protected.Group("/permisos", adminOnly)
	permisos.Get("/", roleHandler.ListPermissions)
	permisos.Post("/", roleHandler.CreatePermission)
	permisos.Delete("/:id", roleHandler.DeletePermission)

	// Lotes y sublotes
	parcelHandler := NewParcelHandler(deps.ParcelUC)
	lots := protected.Group("/lotes")
	lots.Get("/", perm("lotes", actView), parcelHandler.ListLots)
	lots.Get("/mapa", perm("lotes", actView), parcelHandler.Map)
	lots.Post("/", perm("lotes", actCreate), parcelHandler.CreateLot)
	lots.Get("/:id", perm("lotes", actView), parcelHandler.GetLot)
	lots.Put("/:id", perm("lotes", actEdit), parcelHandler.UpdateLot)
	lots.Put("/:id/coordenadas", perm("lotes", actEdit), parcelHandler.SetLotCoordinates)
	lots.Delete("/:id", perm("lotes", actDelete), parcelHandler.DeleteLot)

	sublots := protected.Group("/sublotes")
	sublots.Get("/", perm("sublotes", actView), parcelHandler.ListSublots)
	sublots.Post("/", perm("sublotes", actCreate), parcelHandler.CreateSublot)
	sublots.Get("/:id", perm("sublotes", actView), parcelHandler.GetSublot)
	sublots.Put("/:id", perm("sublotes", actEdit), parcelHandler.UpdateSublot)
	sublots.Put("/:id/coordenadas", perm("sublotes", actEdit), parcelHandler.SetSublotCoordinates)
	sublots.Delete("/:id", perm("sublotes", actDelete), parcelHandler.DeleteSublot)

	// Cultivos
	cropHandler := NewCropHandler(deps.CropUC, deps.TreatmentUC)
	crops := protected.Group("/cultivos")
	crops.Get("/", perm("cultivos", actView), cropHandler.List)
	crops.Post("/", perm("cultivos", actCreate), cropHandler.Create)
	crops.Get("/:id", perm("cultivos", actView), cropHandler.GetByID)
	crops.Get("/:id/tratamientos", perm("tratamientos", actView), cropHandler.Treatments)
	crops.Put("/:id", perm("cultivos", actEdit), cropHandler.Update)
	crops.Delete("/:id", perm("cultivos", actDelete), cropHandler.Delete)

	// Insumos, inventario y movimientos
	invHandler := NewInventoryHandler(deps.SupplyUC, deps.StockUC, deps.MovementUC)
	supplies := protected.Group("/insumos")
	supplies.Get("/", perm("insumos", actView), invHandler.ListSupplies)
	supplies.Post("/", perm("insumos", actCreate), invHandler.CreateSupply)
	supplies.Get("/:id", perm("insumos", actView), invHandler.GetSupply)
	supplies.Put("/:id", perm("insumos", actEdit), invHandler.UpdateSupply)
	supplies.Delete("/:id", perm("insumos", actDelete), invHandler.DeleteSupply)

	stock := protected.Group("/inventario")
	stock.Get("/", perm("inventario", actView), invHandler.ListStock)
	stock.Get("/reposicion", perm("inventario", actView), invHandler.Replenishment)
	stock.Get("/:insumoId", perm("inventario", actView), invHandler.GetStock)
	stock.Get("/:insumoId/conciliacion", perm("inventario", actView), invHandler.Reconcile)
	stock.Post("/:insumoId/conciliacion", perm("inventario", actEdit), invHandler.Reconcile)

	movements := protected.Group("/movimientos")
	movements.Get("/", perm("movimientos", actView), invHandler.ListMovements)
	movements.Post("/", perm("movimientos", actCreate), invHandler.CreateMovement)
	movements.Get("/:id", perm("movimientos", actView), invHandler.GetMovement)
	movements.Put("/:id", perm("movimientos", actEdit), invHandler.EditMovement)
	movements.Delete("/:id", perm("movimientos", actDelete), invHandler.DeleteMovement)

	// Tratamientos
	treatmentHandler := NewTreatmentHandler(deps.TreatmentUC)
	treatments := protected.Group("/tratamientos")
	treatments.Get("/", perm("tratamientos", actView), treatmentHandler.List)
	treatments.Post("/", perm("tratamientos", actCreate), treatmentHandler.Create)
	treatments.Get("/:id", perm("tratamientos", actView), treatmentHandler.GetByID)
	treatments.Delete("/:id", perm("tratamientos", actDelete), treatmentHandler.Delete)

	// Sensores y alertas
	sensorHandler := NewSensorHandler(deps.SensorUC, deps.AlertUC, deps.Ingester)
	sensors := protected.Group("/sensores")
	sensors.Get("/", perm("sensores", actView), sensorHandler.List)
	sensors.Get("/tiempo-real", perm("sensores", actView), sensorHandler.Realtime)
	sensors.Post("/", perm("sensores", actCreate), sensorHandler.Create)
	if deps.Ingester != nil {
		sensors.Post("/lecturas", perm("sensores", actEdit), sensorHandler.Ingest)
	}
	sensors.Get("/:id", perm("sensores", actView), sensorHandler.GetByID)
	sensors.Get("/:id/lecturas", perm("sensores", actView), sensorHandler.Readings)
	sensors.Put("/:id", perm("sensores", actEdit), sensorHandler.Update)
	sensors.Delete("/:id", perm("sensores", actDelete), sensorHandler.Delete)

	alerts := protected.Group("/alertas")
	alerts.Get("/", perm("alertas", actView), sensorHandler.ListAlerts)
	alerts.Put("/:id/leida", perm("alertas", actEdit), sensorHandler.MarkAlertRead)
	alerts.Delete("/:id", perm("alertas", actDelete), sensorHandler.DeleteAlert)

	// Finanzas
	financeHandler := NewFinanceHandler(deps.FinanceUC, deps.SummaryUC)
	finance := protected.Group("/finanzas")
	finance.Get("/", perm("finanzas", actView), financeHandler.List)
	finance.Get("/resumen", perm("finanzas", actView), financeHandler.Summary)
	finance.Post("/", perm("finanzas", actCreate), financeHandler.Create)
	finance.Get("/:id", perm("finanzas", actView), financeHandler.GetByID)
	finance.Put("/:id", perm("finanzas", actEdit), financeHandler.Update)
	finance.Delete("/:id", perm("finanzas", actDelete), financeHandler.Delete)

	// Reportes
	reportHandler := NewReportHandler(deps.ReportUC)
	reports := protected.Group("/reportes", perm("reportes", actView))
	reports.Get("/inventario", reportHandler.Inventory)
	reports.Get("/movimientos", reportHandler.Movements)
	reports.Get("/iot", reportHandler.IoT)
	reports.Get("/finanzas", reportHandler.Finance)
}
