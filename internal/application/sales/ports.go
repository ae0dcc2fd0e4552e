package sales

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// La venta, sus líneas y los movimientos de inventario se aplican juntos o no se aplican.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		products repository.ProductRepository,
		resellers repository.ResellerProductRepository,
		inventory repository.InventoryRepository,
		sales repository.SaleRepository,
	) error) error
}

// Recorder métricas de ventas. Puede ser nil.
type Recorder interface {
	IncSale(operation, outcome string)
}
