package pricesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// Options parámetros de una corrida.
type Options struct {
	Supplier     string
	FetchTimeout time.Duration
}

// UseCase orquesta una corrida de sincronización: lectura de precios, conciliación de insumos
// y síntesis de perfumes, bajo un bloqueo exclusivo por proveedor.
type UseCase struct {
	source     PriceSource
	reconciler *Reconciler
	synth      *Synthesizer
	locker     Locker
	metrics    Recorder
	opts       Options
	log        zerolog.Logger
}

// NewUseCase construye el caso de uso. metrics puede ser nil.
func NewUseCase(source PriceSource, reconciler *Reconciler, synth *Synthesizer, locker Locker, metrics Recorder, opts Options, log zerolog.Logger) *UseCase {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	return &UseCase{
		source:     source,
		reconciler: reconciler,
		synth:      synth,
		locker:     locker,
		metrics:    metrics,
		opts:       opts,
		log:        log.With().Str("supplier", opts.Supplier).Logger(),
	}
}

// LockKey clave del bloqueo de sincronización de un proveedor.
func LockKey(supplier string) string {
	return "sync:" + supplier
}

// Run ejecuta una corrida completa. La lista de precios se obtiene antes de tomar el bloqueo.
// Devuelve domain.SyncInProgress si otra corrida del mismo proveedor está activa.
func (uc *UseCase) Run(ctx context.Context) (*dto.SyncResponse, error) {
	start := time.Now()
	scraped, err := uc.fetch(ctx)
	if err != nil {
		uc.observe("upstream_error", start)
		return nil, err
	}
	return uc.locked(ctx, start, func(ctx context.Context, out *dto.SyncResponse) error {
		rec, err := uc.reconciler.Reconcile(ctx, uc.opts.Supplier, scraped)
		if rec != nil {
			out.Materials = dto.SyncMaterialCounts{
				Created:    rec.Created,
				Updated:    rec.Updated,
				Deleted:    rec.Deleted,
				NotDeleted: rec.NotDeleted,
				Skipped:    rec.Skipped,
			}
			out.Warnings = append(out.Warnings, rec.Warnings...)
			uc.countMaterials(rec)
		}
		if err != nil {
			return err
		}
		return uc.synthesize(ctx, out)
	})
}

// Synthesize ejecuta solo la síntesis de perfumes sobre los insumos actuales (corrida manual).
func (uc *UseCase) Synthesize(ctx context.Context) (*dto.SyncResponse, error) {
	return uc.locked(ctx, time.Now(), uc.synthesize)
}

func (uc *UseCase) fetch(ctx context.Context) ([]entity.ScrapedProduct, error) {
	fctx, cancel := context.WithTimeout(ctx, uc.opts.FetchTimeout)
	defer cancel()
	scraped, err := uc.source.Fetch(fctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("no se pudo obtener la lista de precios")
		return nil, domain.Upstream(err)
	}
	return scraped, nil
}

func (uc *UseCase) locked(ctx context.Context, start time.Time, fn func(context.Context, *dto.SyncResponse) error) (*dto.SyncResponse, error) {
	lock, err := uc.locker.Obtain(ctx, LockKey(uc.opts.Supplier))
	if err != nil {
		if errors.Is(err, domain.ErrLockNotObtained) {
			uc.observe("locked", start)
			uc.log.Warn().Msg("sincronización rechazada: otra corrida en curso")
			return nil, domain.SyncInProgress(uc.opts.Supplier)
		}
		uc.observe("error", start)
		return nil, fmt.Errorf("obtain sync lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo liberar el bloqueo de sincronización")
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-lock.Lost():
			cancel()
		case <-runCtx.Done():
		}
	}()

	out := &dto.SyncResponse{Supplier: uc.opts.Supplier}
	err = fn(runCtx, out)
	select {
	case <-lock.Lost():
		uc.observe("lock_lost", start)
		uc.log.Error().Msg("se perdió el bloqueo de sincronización durante la corrida")
		return nil, domain.TransactionFailure(fmt.Errorf("sync lock lost: %w", domain.ErrLockNotObtained))
	default:
	}
	if err != nil {
		uc.observe("error", start)
		return nil, err
	}
	out.DurationMS = time.Since(start).Milliseconds()
	outcome := "ok"
	if len(out.Warnings) > 0 {
		outcome = "partial"
	}
	uc.observe(outcome, start)
	uc.log.Info().
		Int("materials_created", out.Materials.Created).
		Int("materials_updated", out.Materials.Updated).
		Int("materials_deleted", out.Materials.Deleted).
		Int("materials_not_deleted", out.Materials.NotDeleted).
		Int("materials_skipped", out.Materials.Skipped).
		Int("products_created", out.Products.Created).
		Int("products_updated", out.Products.Updated).
		Int("reseller_repriced", out.Products.ResellerRepriced).
		Int("warnings", len(out.Warnings)).
		Int64("duration_ms", out.DurationMS).
		Msg("sincronización completada")
	return out, nil
}

func (uc *UseCase) synthesize(ctx context.Context, out *dto.SyncResponse) error {
	res, err := uc.synth.Synthesize(ctx)
	if err != nil {
		return err
	}
	out.Products = dto.SyncProductCounts{
		Created:          res.Created,
		Updated:          res.Updated,
		Failed:           res.Failed,
		ResellerRepriced: res.ResellerRepriced,
		Orphaned:         res.Orphaned,
		Ungendered:       res.Ungendered,
	}
	out.Missing = res.Missing
	out.Warnings = append(out.Warnings, res.Warnings...)
	if uc.metrics != nil {
		uc.metrics.AddProducts("created", res.Created)
		uc.metrics.AddProducts("updated", res.Updated)
		uc.metrics.AddProducts("failed", res.Failed)
	}
	return nil
}

func (uc *UseCase) countMaterials(r *ReconcileResult) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.AddMaterials(uc.opts.Supplier, "created", r.Created)
	uc.metrics.AddMaterials(uc.opts.Supplier, "updated", r.Updated)
	uc.metrics.AddMaterials(uc.opts.Supplier, "deleted", r.Deleted)
	uc.metrics.AddMaterials(uc.opts.Supplier, "not_deleted", r.NotDeleted)
	uc.metrics.AddMaterials(uc.opts.Supplier, "skipped", r.Skipped)
}

func (uc *UseCase) observe(outcome string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.ObserveSyncRun(uc.opts.Supplier, outcome, time.Since(start))
	}
}
