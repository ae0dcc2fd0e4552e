package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/sanse-api/internal/application/ledger"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/application/sales"
	"github.com/jhoicas/sanse-api/internal/application/usecase"
	"github.com/jhoicas/sanse-api/internal/infrastructure/lock"
	"github.com/jhoicas/sanse-api/internal/infrastructure/metrics"
	"github.com/jhoicas/sanse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/sanse-api/internal/infrastructure/pricefeed"
	httpRouter "github.com/jhoicas/sanse-api/internal/interfaces/http"
	"github.com/jhoicas/sanse-api/pkg/config"
	"github.com/jhoicas/sanse-api/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("supplier", cfg.Sync.Supplier).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, "up"); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	// Bloqueo de sincronización: Redis si está configurado (varias réplicas), si no en proceso.
	var locker pricesync.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.URL, log.Component("redis"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockPrefix, cfg.Sync.LockTTL)
	} else {
		log.Warn().Msg("REDIS_URL vacío: bloqueo de sincronización solo en proceso")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	txRunner := postgres.NewTxRunner(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	typeRepo := postgres.NewMaterialTypeRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)

	feed := pricefeed.NewClient(cfg.Sync.FeedURL, cfg.Sync.FeedToken, cfg.Sync.FetchTimeout)
	reconciler := pricesync.NewReconciler(materialRepo, typeRepo, log.Component("reconciler"))
	synth := pricesync.NewSynthesizer(materialRepo, productRepo, txRunner, pricesync.BaseNames(cfg.Sync.Bases), log.Component("synthesizer"))
	syncUC := pricesync.NewUseCase(feed, reconciler, synth, locker, m, pricesync.Options{
		Supplier:     cfg.Sync.Supplier,
		FetchTimeout: cfg.Sync.FetchTimeout,
	}, log.Component("sync"))

	salesUC := sales.NewUseCase(txRunner, saleRepo, m, log.Component("sales"))
	ledgerUC := ledger.NewUseCase(txRunner, expenseRepo, lock.NewKeyedMutex(), log.Component("ledger"))
	materialUC := usecase.NewMaterialUseCase(materialRepo, txRunner, log.Component("materials"))
	productUC := usecase.NewProductUseCase(productRepo, txRunner, log.Component("products"))
	resellerUC := usecase.NewResellerUseCase(txRunner)
	inventoryUC := usecase.NewInventoryUseCase(inventoryRepo, materialRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Sync.FetchTimeout + time.Minute, // la corrida del cron puede tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sanse API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		SyncUC:      syncUC,
		SalesUC:     salesUC,
		LedgerUC:    ledgerUC,
		MaterialUC:  materialUC,
		ProductUC:   productUC,
		ResellerUC:  resellerUC,
		InventoryUC: inventoryUC,
		Gatherer:    reg,
		JWTSecret:   cfg.JWT.Secret,
		CronSecret:  cfg.Sync.CronSecret,
		ServiceName: cfg.App.Name,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
