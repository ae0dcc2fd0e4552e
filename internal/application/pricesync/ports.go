package pricesync

import (
	"context"
	"time"

	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

// PriceSource entrega la lista de productos leída del sitio del proveedor.
// Una lista vacía es válida (corrida sin cambios).
type PriceSource interface {
	Fetch(ctx context.Context) ([]entity.ScrapedProduct, error)
}

// Releaser libera un bloqueo obtenido. Lost se cierra si el bloqueo se pierde antes de
// liberarlo (por ejemplo expiró el TTL); un canal nil significa que no puede perderse.
type Releaser interface {
	Release(ctx context.Context) error
	Lost() <-chan struct{}
}

// Locker bloqueo exclusivo por clave (single-flight). Obtain devuelve domain.ErrLockNotObtained
// si otra corrida ya lo tiene; nunca espera.
type Locker interface {
	Obtain(ctx context.Context, key string) (Releaser, error)
}

// CatalogTxRunner ejecuta fn dentro de una transacción con repos de catálogo atados a ella.
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		materials repository.MaterialRepository,
		products repository.ProductRepository,
		resellers repository.ResellerProductRepository,
	) error) error
}

// Recorder métricas de corridas de sincronización. Puede ser nil.
type Recorder interface {
	ObserveSyncRun(supplier, outcome string, elapsed time.Duration)
	AddMaterials(supplier, action string, n int)
	AddProducts(action string, n int)
}
