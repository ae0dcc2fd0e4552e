package ledger

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio de gastos atado a ella.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(expenses repository.ExpenseRepository) error) error
}

// PayerLocker exclusión mutua en proceso por pagador. Lock bloquea hasta obtenerla y devuelve la función de liberación.
type PayerLocker interface {
	Lock(key string) (unlock func())
}
