package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/sanse-api/internal/application/ledger"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/application/sales"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

// Ensure TxRunner implementa los runners de catálogo, ventas y libro de gastos.
var (
	_ pricesync.CatalogTxRunner = (*TxRunner)(nil)
	_ sales.TxRunner            = (*TxRunner)(nil)
	_ ledger.TxRunner           = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (read committed).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn con la tx y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCatalog transacción con repos de insumos, productos y cotizaciones (síntesis, recálculo, edición manual).
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	materials repository.MaterialRepository,
	products repository.ProductRepository,
	resellers repository.ResellerProductRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewMaterialRepository(tx), NewProductRepository(tx), NewResellerProductRepository(tx))
	})
}

// RunSales transacción de venta: línea, inventario y venta se aplican juntos o no se aplican.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	products repository.ProductRepository,
	resellers repository.ResellerProductRepository,
	inventory repository.InventoryRepository,
	sales repository.SaleRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewResellerProductRepository(tx), NewInventoryRepository(tx), NewSaleRepository(tx))
	})
}

// RunLedger transacción del libro de gastos; LockPayer dentro de ella serializa por pagador.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(expenses repository.ExpenseRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewExpenseRepository(tx))
	})
}
