// Command sync ejecuta una corrida de sincronización fuera del servidor HTTP.
// Por defecto solo recalcula perfumes con los insumos actuales; -fetch lee además la lista de precios.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/infrastructure/lock"
	"github.com/jhoicas/sanse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/sanse-api/internal/infrastructure/pricefeed"
	"github.com/jhoicas/sanse-api/pkg/config"
	"github.com/jhoicas/sanse-api/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	fetch := flag.Bool("fetch", false, "leer la lista de precios y conciliar insumos antes de sintetizar")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "sanse-sync"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var locker pricesync.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.URL, log.Component("redis"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockPrefix, cfg.Sync.LockTTL)
	}

	txRunner := postgres.NewTxRunner(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	uc := pricesync.NewUseCase(
		pricefeed.NewClient(cfg.Sync.FeedURL, cfg.Sync.FeedToken, cfg.Sync.FetchTimeout),
		pricesync.NewReconciler(materialRepo, postgres.NewMaterialTypeRepository(pool), log.Component("reconciler")),
		pricesync.NewSynthesizer(materialRepo, productRepo, txRunner, pricesync.BaseNames(cfg.Sync.Bases), log.Component("synthesizer")),
		locker,
		nil,
		pricesync.Options{Supplier: cfg.Sync.Supplier, FetchTimeout: cfg.Sync.FetchTimeout},
		log.Component("sync"),
	)

	var out *dto.SyncResponse
	if *fetch {
		out, err = uc.Run(ctx)
	} else {
		out, err = uc.Synthesize(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("sincronización fallida")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
