// Package memory implementa los puertos de persistencia en memoria, con transacciones
// por snapshot. Lo usan los tests de los casos de uso.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/sanse-api/internal/application/ledger"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/application/sales"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

var (
	_ pricesync.CatalogTxRunner = (*Store)(nil)
	_ sales.TxRunner            = (*Store)(nil)
	_ ledger.TxRunner           = (*Store)(nil)
)

// errForeignKey causa de los conflictos referenciales simulados.
var errForeignKey = errors.New("foreign key violation")

type data struct {
	types     map[string]entity.MaterialType
	materials map[string]entity.Material
	products  map[string]entity.Product
	resellers map[string]entity.ResellerProduct
	inventory map[string]entity.InventoryItem
	sales     map[string]entity.Sale
	expenses  map[string]entity.Expense
}

func newData() data {
	return data{
		types:     map[string]entity.MaterialType{},
		materials: map[string]entity.Material{},
		products:  map[string]entity.Product{},
		resellers: map[string]entity.ResellerProduct{},
		inventory: map[string]entity.InventoryItem{},
		sales:     map[string]entity.Sale{},
		expenses:  map[string]entity.Expense{},
	}
}

func (d data) clone() data {
	c := newData()
	for k, v := range d.types {
		c.types[k] = v
	}
	for k, v := range d.materials {
		c.materials[k] = v
	}
	for k, v := range d.products {
		v.Ingredients = append([]entity.ProductIngredient(nil), v.Ingredients...)
		c.products[k] = v
	}
	for k, v := range d.resellers {
		c.resellers[k] = v
	}
	for k, v := range d.inventory {
		c.inventory[k] = v
	}
	for k, v := range d.sales {
		v.Items = append([]entity.SaleItem(nil), v.Items...)
		c.sales[k] = v
	}
	for k, v := range d.expenses {
		c.expenses[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan entre sí y hacen rollback
// restaurando el snapshot tomado al iniciar.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    data
	fail map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData(), fail: map[string]error{}}
}

// FailOn hace que la operación op (ej. "sales.create") devuelva err hasta ClearFailures.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// ClearFailures quita los fallos inyectados.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = map[string]error{}
}

// injected debe llamarse con mu tomado.
func (s *Store) injected(op string) error {
	return s.fail[op]
}

// Repositorios fuera de transacción.
func (s *Store) MaterialTypes() repository.MaterialTypeRepository       { return &materialTypeRepo{s} }
func (s *Store) Materials() repository.MaterialRepository               { return &materialRepo{s} }
func (s *Store) Products() repository.ProductRepository                 { return &productRepo{s} }
func (s *Store) ResellerProducts() repository.ResellerProductRepository { return &resellerRepo{s} }
func (s *Store) Inventory() repository.InventoryRepository              { return &inventoryRepo{s} }
func (s *Store) Sales() repository.SaleRepository                       { return &saleRepo{s} }
func (s *Store) Expenses() repository.ExpenseRepository                 { return &expenseRepo{s} }

func (s *Store) run(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.d.clone()
	s.mu.Unlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.d = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// RunCatalog implementa pricesync.CatalogTxRunner.
func (s *Store) RunCatalog(ctx context.Context, fn func(
	materials repository.MaterialRepository,
	products repository.ProductRepository,
	resellers repository.ResellerProductRepository,
) error) error {
	return s.run(func() error {
		return fn(s.Materials(), s.Products(), s.ResellerProducts())
	})
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(ctx context.Context, fn func(
	products repository.ProductRepository,
	resellers repository.ResellerProductRepository,
	inventory repository.InventoryRepository,
	sales repository.SaleRepository,
) error) error {
	return s.run(func() error {
		return fn(s.Products(), s.ResellerProducts(), s.Inventory(), s.Sales())
	})
}

// RunLedger implementa ledger.TxRunner.
func (s *Store) RunLedger(ctx context.Context, fn func(expenses repository.ExpenseRepository) error) error {
	return s.run(func() error {
		return fn(s.Expenses())
	})
}

func conflict(what string) error {
	return domain.ReferentialConflict(what, errForeignKey)
}
