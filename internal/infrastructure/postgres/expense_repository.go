package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo libro de gastos y reintegros sobre PostgreSQL (usable con pool o tx).
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador.
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

const expenseColumns = `id, description, amount, payer_id, related_expense_id, date, created_at`

func scanExpense(row scanner) (*entity.Expense, error) {
	var (
		e     entity.Expense
		payer *string
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &payer, &e.RelatedExpenseID, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Payer = entity.PayerFromID(payer)
	return &e, nil
}

// Create persiste un gasto o un reintegro.
func (r *ExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.Description, e.Amount, e.Payer.ID(), e.RelatedExpenseID, e.Date, e.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("gasto original no encontrado")
		}
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento. (nil, nil) si no existe.
func (r *ExpenseRepo) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	e, err := scanExpense(r.q.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListByPayer gastos del usuario en orden de asignación (date, created_at, id).
func (r *ExpenseRepo) ListByPayer(ctx context.Context, userID string) ([]*entity.Expense, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE payer_id = $1
		ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses by payer: %w", err)
	}
	defer rows.Close()
	var list []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// RefundedAmounts suma de reintegros por gasto original.
func (r *ExpenseRepo) RefundedAmounts(ctx context.Context, expenseIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	if len(expenseIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT related_expense_id, SUM(amount)
		FROM expenses
		WHERE related_expense_id = ANY($1::uuid[]) AND payer_id IS NULL
		GROUP BY related_expense_id`, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("sum refunds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  string
			sum decimal.Decimal
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan refund sum: %w", err)
		}
		out[id] = sum
	}
	return out, rows.Err()
}

// LockPayer toma un advisory lock transaccional por pagador: se libera en commit o rollback.
func (r *ExpenseRepo) LockPayer(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('payer:' || $1::text))`, userID); err != nil {
		return fmt.Errorf("lock payer: %w", err)
	}
	return nil
}

// Delete borra un asiento. Un gasto con reintegros vinculados no se puede borrar.
func (r *ExpenseRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ReferentialConflict("el gasto tiene reintegros registrados", err)
		}
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
