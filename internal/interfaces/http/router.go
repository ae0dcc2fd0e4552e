package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/sanse-api/internal/application/ledger"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/application/sales"
	"github.com/jhoicas/sanse-api/internal/application/usecase"
	"github.com/jhoicas/sanse-api/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SyncUC      *pricesync.UseCase
	SalesUC     *sales.UseCase
	LedgerUC    *ledger.UseCase
	MaterialUC  *usecase.MaterialUseCase
	ProductUC   *usecase.ProductUseCase
	ResellerUC  *usecase.ResellerUseCase
	InventoryUC *usecase.InventoryUseCase
	Gatherer    prometheus.Gatherer // nil = sin /metrics
	JWTSecret   string
	CronSecret  string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Cron (secreto compartido, sin JWT)
	syncHandler := NewSyncHandler(deps.SyncUC)
	cron := api.Group("/cron", CronAuth(deps.CronSecret))
	cron.Get("/sync-prices", syncHandler.Run)
	cron.Post("/sync-prices", syncHandler.Run)

	// Rutas protegidas (requieren token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleEditor, jwt.RoleViewer)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleEditor)

	saleHandler := NewSaleHandler(deps.SalesUC)
	protected.Post("/sales", writers, saleHandler.Create)
	protected.Get("/sales", readers, saleHandler.List)
	protected.Get("/sales/:id", readers, saleHandler.GetByID)
	protected.Delete("/sales/:id", writers, saleHandler.Delete)

	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	protected.Post("/expenses", writers, ledgerHandler.CreateExpense)
	protected.Delete("/expenses/:id", writers, ledgerHandler.DeleteExpense)
	protected.Post("/expenses/:id/refund", writers, ledgerHandler.TargetedRefund)
	protected.Post("/refunds/general", writers, ledgerHandler.GeneralRefund)
	protected.Get("/payers/:id/debt", readers, ledgerHandler.Debt)

	catalogHandler := NewCatalogHandler(deps.MaterialUC, deps.ProductUC, deps.ResellerUC)
	protected.Post("/materials", writers, catalogHandler.CreateMaterial)
	protected.Put("/materials/:id", writers, catalogHandler.UpdateMaterial)
	protected.Delete("/materials/:id", writers, catalogHandler.DeleteMaterial)
	protected.Post("/products/recalculate", writers, catalogHandler.Recalculate)
	protected.Post("/products", writers, catalogHandler.CreateProduct)
	protected.Put("/products/:id", writers, catalogHandler.UpdateProduct)
	protected.Post("/reseller-products", writers, catalogHandler.CreateResellerProduct)

	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	protected.Get("/inventory/low-stock", readers, inventoryHandler.LowStock)
	protected.Post("/inventory", writers, inventoryHandler.AddStock)
	protected.Put("/inventory/:id", writers, inventoryHandler.Update)
}
