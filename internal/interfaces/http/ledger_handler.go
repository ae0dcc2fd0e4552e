package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/application/ledger"
)

// LedgerHandler gastos, reintegros y deuda por pagador.
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// CreateExpense godoc
// @Summary      Registrar gasto
// @Description  payer_id vacío o "SANSE" = pagó el negocio; otro valor = usuario al que se le debe.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateExpenseRequest  true  "description, amount, payer_id, date"
// @Success      201   {object}  dto.ExpenseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/expenses [post]
func (h *LedgerHandler) CreateExpense(c *fiber.Ctx) error {
	var in dto.CreateExpenseRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateExpense(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteExpense godoc
// @Summary      Borrar gasto
// @Tags         ledger
// @Security     Bearer
// @Param        id   path  string  true  "ID del gasto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/expenses/{id} [delete]
func (h *LedgerHandler) DeleteExpense(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	if err := h.uc.DeleteExpense(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TargetedRefund godoc
// @Summary      Reintegro de un gasto
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del gasto original"
// @Param        body  body  dto.TargetedRefundRequest  true  "amount"
// @Success      201   {object}  dto.RefundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/expenses/{id}/refund [post]
func (h *LedgerHandler) TargetedRefund(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var in dto.TargetedRefundRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.TargetedRefund(c.Context(), id, in.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GeneralRefund godoc
// @Summary      Reintegro general a un pagador
// @Description  Reparte el monto sobre los gastos pendientes del más antiguo al más reciente.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GeneralRefundRequest  true  "payer_id, amount"
// @Success      201   {object}  dto.RefundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/refunds/general [post]
func (h *LedgerHandler) GeneralRefund(c *fiber.Ctx) error {
	var in dto.GeneralRefundRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.GeneralRefund(c.Context(), in.PayerID, in.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Debt godoc
// @Summary      Deuda pendiente con un pagador
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario pagador"
// @Success      200  {object}  dto.DebtResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/payers/{id}/debt [get]
func (h *LedgerHandler) Debt(c *fiber.Ctx) error {
	out, err := h.uc.DebtSummary(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
