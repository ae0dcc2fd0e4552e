package repository

import (
	"context"

	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ExpenseRepository puerto de persistencia del libro de gastos y reintegros.
type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	// ListByPayer gastos pagados por el usuario, del más antiguo al más reciente (date, created_at, id).
	ListByPayer(ctx context.Context, userID string) ([]*entity.Expense, error)
	// RefundedAmounts suma de reintegros vinculados a cada gasto. Los gastos sin reintegros no aparecen.
	RefundedAmounts(ctx context.Context, expenseIDs []string) (map[string]decimal.Decimal, error)
	// LockPayer serializa asignaciones de reintegros del usuario hasta el fin de la transacción.
	LockPayer(ctx context.Context, userID string) error
	// Delete devuelve un domain.ReferentialConflict si el gasto tiene reintegros vinculados.
	Delete(ctx context.Context, id string) error
}
