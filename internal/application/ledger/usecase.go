package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UseCase libro de gastos y asignación de reintegros.
// Toda asignación de un pagador se serializa: mutex en proceso más bloqueo en la BD dentro de la transacción.
type UseCase struct {
	tx       TxRunner
	expenses repository.ExpenseRepository
	payers   PayerLocker
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx TxRunner, expenses repository.ExpenseRepository, payers PayerLocker, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, expenses: expenses, payers: payers, log: log, now: time.Now}
}

func payerKey(userID string) string {
	return "payer:" + userID
}

// CreateExpense registra un gasto pagado por el negocio o por un usuario.
func (uc *UseCase) CreateExpense(ctx context.Context, in dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.InvalidRequest("el monto debe ser mayor a 0")
	}
	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	e := &entity.Expense{
		ID:          uuid.New().String(),
		Description: in.Description,
		Amount:      in.Amount,
		Payer:       entity.ParsePayer(in.PayerID),
		Date:        date,
		CreatedAt:   now,
	}
	if err := uc.expenses.Create(ctx, e); err != nil {
		return nil, domain.TransactionFailure(err)
	}
	return toExpenseResponse(e), nil
}

// DeleteExpense elimina un gasto. Falla con ReferentialConflict si tiene reintegros vinculados.
func (uc *UseCase) DeleteExpense(ctx context.Context, id string) error {
	if err := uc.expenses.Delete(ctx, id); err != nil {
		if domain.CodeOf(err) != "" {
			return err
		}
		return domain.TransactionFailure(err)
	}
	return nil
}

// TargetedRefund devuelve amount al pagador del gasto indicado. No permite superar la deuda pendiente del gasto.
func (uc *UseCase) TargetedRefund(ctx context.Context, expenseID string, amount decimal.Decimal) (*dto.RefundResponse, error) {
	if !amount.IsPositive() {
		return nil, domain.InvalidRequest("el monto debe ser mayor a 0")
	}
	original, err := uc.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, domain.TransactionFailure(err)
	}
	if original == nil {
		return nil, domain.NotFound("gasto %s no encontrado", expenseID)
	}
	userID, ok := original.Payer.UserID()
	if !ok {
		return nil, domain.InvalidRequest("el gasto %s lo pagó el negocio, no hay nada que reintegrar", expenseID)
	}

	unlock := uc.payers.Lock(payerKey(userID))
	defer unlock()

	var refund *entity.Expense
	err = uc.tx.RunLedger(ctx, func(expenses repository.ExpenseRepository) error {
		if err := expenses.LockPayer(ctx, userID); err != nil {
			return err
		}
		refunded, err := expenses.RefundedAmounts(ctx, []string{original.ID})
		if err != nil {
			return err
		}
		remaining := original.Amount.Sub(refunded[original.ID])
		if amount.GreaterThan(remaining) {
			return domain.InvalidRequest("el reintegro %s supera la deuda pendiente %s del gasto", amount, decimal.Max(remaining, decimal.Zero))
		}
		refund = uc.newRefund(original, amount)
		return expenses.Create(ctx, refund)
	})
	if err != nil {
		return nil, uc.fail(err)
	}
	uc.log.Info().Str("payer", userID).Str("expense_id", expenseID).Str("amount", amount.String()).Msg("reintegro registrado")
	return &dto.RefundResponse{Refunds: []dto.ExpenseResponse{*toExpenseResponse(refund)}, Unallocated: decimal.Zero}, nil
}

// GeneralRefund reparte amount sobre la deuda del pagador, del gasto más antiguo al más reciente,
// cubriendo cada uno por completo antes de pasar al siguiente. Lo que sobra se devuelve como Unallocated.
func (uc *UseCase) GeneralRefund(ctx context.Context, payerID string, amount decimal.Decimal) (*dto.RefundResponse, error) {
	if !amount.IsPositive() {
		return nil, domain.InvalidRequest("el monto debe ser mayor a 0")
	}
	userID, ok := entity.ParsePayer(payerID).UserID()
	if !ok {
		return nil, domain.InvalidRequest("el pagador debe ser un usuario")
	}

	unlock := uc.payers.Lock(payerKey(userID))
	defer unlock()

	var refunds []*entity.Expense
	remaining := amount
	err := uc.tx.RunLedger(ctx, func(expenses repository.ExpenseRepository) error {
		if err := expenses.LockPayer(ctx, userID); err != nil {
			return err
		}
		debts, refunded, err := loadDebts(ctx, expenses, userID)
		if err != nil {
			return err
		}
		for _, e := range debts {
			if !remaining.IsPositive() {
				break
			}
			debt := e.Amount.Sub(refunded[e.ID])
			if !debt.IsPositive() {
				continue
			}
			alloc := decimal.Min(remaining, debt)
			r := uc.newRefund(e, alloc)
			if err := expenses.Create(ctx, r); err != nil {
				return err
			}
			refunds = append(refunds, r)
			remaining = remaining.Sub(alloc)
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(err)
	}

	out := &dto.RefundResponse{Refunds: make([]dto.ExpenseResponse, 0, len(refunds)), Unallocated: remaining}
	for _, r := range refunds {
		out.Refunds = append(out.Refunds, *toExpenseResponse(r))
	}
	uc.log.Info().Str("payer", userID).Str("amount", amount.String()).
		Int("refunds", len(refunds)).Str("unallocated", remaining.String()).Msg("reintegro general registrado")
	return out, nil
}

// DebtSummary deuda del negocio con el usuario. Outstanding es el valor real del libro (puede ser negativo);
// Display nunca baja de 0.
func (uc *UseCase) DebtSummary(ctx context.Context, payerID string) (*dto.DebtResponse, error) {
	userID, ok := entity.ParsePayer(payerID).UserID()
	if !ok {
		return nil, domain.InvalidRequest("el pagador debe ser un usuario")
	}
	debts, refunded, err := loadDebts(ctx, uc.expenses, userID)
	if err != nil {
		return nil, domain.TransactionFailure(err)
	}
	out := &dto.DebtResponse{PayerID: userID, Outstanding: decimal.Zero, Expenses: make([]dto.ExpenseDebtResponse, 0, len(debts))}
	for _, e := range debts {
		r := refunded[e.ID]
		remaining := e.Amount.Sub(r)
		out.Outstanding = out.Outstanding.Add(remaining)
		out.Expenses = append(out.Expenses, dto.ExpenseDebtResponse{
			ExpenseID:   e.ID,
			Description: e.Description,
			Date:        e.Date,
			Amount:      e.Amount,
			Refunded:    r,
			Remaining:   remaining,
		})
	}
	out.Display = decimal.Max(out.Outstanding, decimal.Zero)
	return out, nil
}

// loadDebts gastos del usuario (más antiguo primero) y lo ya reintegrado de cada uno.
func loadDebts(ctx context.Context, expenses repository.ExpenseRepository, userID string) ([]*entity.Expense, map[string]decimal.Decimal, error) {
	list, err := expenses.ListByPayer(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	refunded, err := expenses.RefundedAmounts(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return list, refunded, nil
}

func (uc *UseCase) newRefund(original *entity.Expense, amount decimal.Decimal) *entity.Expense {
	now := uc.now()
	related := original.ID
	return &entity.Expense{
		ID:               uuid.New().String(),
		Description:      "Reintegro: " + original.Description,
		Amount:           amount,
		Payer:            entity.BusinessPayer(),
		RelatedExpenseID: &related,
		Date:             now,
		CreatedAt:        now,
	}
}

func (uc *UseCase) fail(err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	uc.log.Error().Err(err).Msg("transacción de reintegro revertida")
	return domain.TransactionFailure(err)
}

func toExpenseResponse(e *entity.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:               e.ID,
		Description:      e.Description,
		Amount:           e.Amount,
		PayerID:          e.Payer.ID(),
		RelatedExpenseID: e.RelatedExpenseID,
		Date:             e.Date,
	}
}
