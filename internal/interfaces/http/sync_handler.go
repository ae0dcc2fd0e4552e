package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
)

// SyncHandler disparador de la sincronización de precios (cron o manual).
type SyncHandler struct {
	uc *pricesync.UseCase
}

// NewSyncHandler construye el handler.
func NewSyncHandler(uc *pricesync.UseCase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// Run godoc
// @Summary      Sincronizar precios del proveedor
// @Description  Reconciliación de insumos y síntesis de productos. Idempotente; una corrida por proveedor a la vez.
// @Tags         sync
// @Security     CronSecret
// @Produce      json
// @Success      200  {object}  dto.SyncResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/cron/sync-prices [post]
func (h *SyncHandler) Run(c *fiber.Ctx) error {
	out, err := h.uc.Run(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
