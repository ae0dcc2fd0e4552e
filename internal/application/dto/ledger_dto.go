package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateExpenseRequest body para POST /api/expenses. payer_id vacío o "SANSE" = pagó el negocio.
type CreateExpenseRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Amount      decimal.Decimal `json:"amount"`
	PayerID     string          `json:"payer_id,omitempty" validate:"max=100"`
	Date        *time.Time      `json:"date,omitempty"`
}

// TargetedRefundRequest body para POST /api/expenses/:id/refund.
type TargetedRefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GeneralRefundRequest body para POST /api/refunds/general.
type GeneralRefundRequest struct {
	PayerID string          `json:"payer_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// ExpenseResponse asiento del libro. payer_id nulo = negocio.
type ExpenseResponse struct {
	ID               string          `json:"id"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	PayerID          *string         `json:"payer_id"`
	RelatedExpenseID *string         `json:"related_expense_id,omitempty"`
	Date             time.Time       `json:"date"`
}

// RefundResponse reintegros creados y monto sin asignar.
type RefundResponse struct {
	Refunds     []ExpenseResponse `json:"refunds"`
	Unallocated decimal.Decimal   `json:"unallocated"`
}

// ExpenseDebtResponse deuda pendiente de un gasto.
type ExpenseDebtResponse struct {
	ExpenseID   string          `json:"expense_id"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Refunded    decimal.Decimal `json:"refunded"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// DebtResponse deuda del negocio con un usuario. outstanding puede ser negativa; display nunca.
type DebtResponse struct {
	PayerID     string                `json:"payer_id"`
	Outstanding decimal.Decimal       `json:"outstanding"`
	Display     decimal.Decimal       `json:"display"`
	Expenses    []ExpenseDebtResponse `json:"expenses"`
}
