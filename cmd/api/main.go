package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/agrotrack-api/internal/application/analytics"
	"github.com/jhoicas/agrotrack-api/internal/application/auth"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/application/report"
	"github.com/jhoicas/agrotrack-api/internal/application/telemetry"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
	infraexcel "github.com/jhoicas/agrotrack-api/internal/infrastructure/excel"
	"github.com/jhoicas/agrotrack-api/internal/infrastructure/mail"
	"github.com/jhoicas/agrotrack-api/internal/infrastructure/mqtt"
	infrapdf "github.com/jhoicas/agrotrack-api/internal/infrastructure/pdf"
	"github.com/jhoicas/agrotrack-api/internal/infrastructure/postgres"
	"github.com/jhoicas/agrotrack-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/agrotrack-api/internal/interfaces/http"
	"github.com/jhoicas/agrotrack-api/pkg/config"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().Str("env", cfg.App.Env).Msg("iniciando aplicación")

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es opcional: sin él, permisos sin cache y rate limit en memoria.
	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, usando memoria")
		redisClient = nil
	}
	var permCache repository.PermissionCache
	if redisClient != nil {
		defer redisClient.Close()
		permCache = redis.NewPermissionCache(redisClient)
	}
	loginLimiter := redis.NewRateLimiter(redisClient, "rl", cfg.Limit.LoginCapacity, cfg.Limit.LoginRefill, log.Component("ratelimit"))

	var mailer ports.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = mail.NewLogMailer(log)
	}

	hub := httpRouter.NewHub(log)
	go hub.Run()

	userRepo := postgres.NewUserRepository(pool)
	resetRepo := postgres.NewPasswordResetRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	permRepo := postgres.NewPermissionRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	sublotRepo := postgres.NewSublotRepository(pool)
	cropRepo := postgres.NewCropRepository(pool)
	supplyRepo := postgres.NewSupplyRepository(pool)
	itemRepo := postgres.NewInventoryItemRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	treatmentRepo := postgres.NewTreatmentRepository(pool)
	sensorRepo := postgres.NewSensorRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)
	financeRepo := postgres.NewFinanceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authz := usecase.NewAuthorizationService(roleRepo, permCache, log)
	authUC := auth.NewAuthUseCase(userRepo, roleRepo, resetRepo, txRunner, authz, mailer, auth.Config{
		Secret:      cfg.JWT.Secret,
		ExpMinutes:  cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		DefaultRole: cfg.App.DefaultRole,
		ResetURL:    cfg.App.ResetURL,
	}, log)
	userUC := usecase.NewUserUseCase(userRepo, roleRepo)
	roleUC := usecase.NewRoleUseCase(roleRepo, permRepo, authz)
	parcelUC := usecase.NewParcelUseCase(lotRepo, sublotRepo)
	cropUC := usecase.NewCropUseCase(cropRepo, sublotRepo)
	supplyUC := usecase.NewSupplyUseCase(supplyRepo)

	alertUC := usecase.NewAlertUseCase(alertRepo, hub, log)
	stockUC := inventory.NewStockUseCase(itemRepo, supplyRepo)
	movementUC := inventory.NewMovementUseCase(txRunner, supplyRepo, movementRepo, itemRepo, alertUC)
	treatmentUC := inventory.NewTreatmentUseCase(txRunner, cropRepo, treatmentRepo, supplyRepo, alertUC)

	telemetrySvc := telemetry.NewService(sensorRepo, cfg.IoT.WindowSize, alertUC, hub, log)
	sensorUC := usecase.NewSensorUseCase(sensorRepo, lotRepo, telemetrySvc)

	financeUC := usecase.NewFinanceUseCase(financeRepo, cropRepo)
	summaryUC := analytics.NewFinanceSummaryUseCase(financeRepo, movementRepo)
	reportUC := report.NewUseCase(itemRepo, movementRepo, sensorRepo, telemetrySvc, summaryUC, map[string]ports.ReportRenderer{
		report.FormatPDF:  infrapdf.NewReportRenderer(),
		report.FormatXLSX: infraexcel.NewReportRenderer(),
	})

	var subscriber *mqtt.Subscriber
	if cfg.MQTT.Enabled() {
		subscriber = mqtt.NewSubscriber(cfg.MQTT, telemetrySvc, log.Component("mqtt"))
		if err := subscriber.Start(); err != nil {
			log.Error().Err(err).Str("broker", cfg.MQTT.BrokerURL).Msg("no se pudo iniciar MQTT")
			subscriber = nil
		}
	} else {
		log.Info().Msg("MQTT_BROKER_URL vacío, ingesta MQTT deshabilitada")
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("directorio de uploads")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 64<<10,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "AgroTrack API",
	}))

	app.Static(httpRouter.UploadsPrefix, cfg.Upload.Dir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   cfg.App.Name,
			"websocket": hub.Clients(),
			"mqtt":      subscriber != nil,
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		Authz:         authz,
		UserUC:        userUC,
		RoleUC:        roleUC,
		ParcelUC:      parcelUC,
		CropUC:        cropUC,
		SupplyUC:      supplyUC,
		StockUC:       stockUC,
		MovementUC:    movementUC,
		TreatmentUC:   treatmentUC,
		SensorUC:      sensorUC,
		AlertUC:       alertUC,
		Ingester:      telemetrySvc,
		FinanceUC:     financeUC,
		SummaryUC:     summaryUC,
		ReportUC:      reportUC,
		Hub:           hub,
		LoginLimiter:  loginLimiter,
		JWTSecret:     cfg.JWT.Secret,
		UploadDir:     cfg.Upload.Dir,
		UploadMaxSize: cfg.Upload.MaxBytes,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if subscriber != nil {
		subscriber.Stop()
	}
	hub.Stop()

	log.Info().Msg("aplicación detenida")
}
