package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/application/usecase"
)

// CatalogHandler insumos, productos y cotizaciones a revendedor.
// Toda escritura recalcula los costos derivados antes de responder.
type CatalogHandler struct {
	materials *usecase.MaterialUseCase
	products  *usecase.ProductUseCase
	resellers *usecase.ResellerUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(materials *usecase.MaterialUseCase, products *usecase.ProductUseCase, resellers *usecase.ResellerUseCase) *CatalogHandler {
	return &CatalogHandler{materials: materials, products: products, resellers: resellers}
}

// CreateMaterial godoc
// @Summary      Crear insumo
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "name, unit, purchase_cost, purchase_quantity"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *CatalogHandler) CreateMaterial(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.materials.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateMaterial godoc
// @Summary      Actualizar insumo
// @Description  Recalcula costo por unidad y el costo de los productos que lo usan.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del insumo"
// @Param        body  body  dto.UpdateMaterialRequest  true  "campos a modificar"
// @Success      200   {object}  dto.MaterialUpdateResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [put]
func (h *CatalogHandler) UpdateMaterial(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var in dto.UpdateMaterialRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.materials.Update(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteMaterial godoc
// @Summary      Borrar insumo
// @Tags         materials
// @Security     Bearer
// @Param        id   path  string  true  "ID del insumo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [delete]
func (h *CatalogHandler) DeleteMaterial(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	if err := h.materials.Delete(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateProduct godoc
// @Summary      Crear producto con receta
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "name, profit_margin, ingredients"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.products.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateProduct godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "ingredients reemplaza la receta completa"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var in dto.UpdateProductRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.products.Update(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Recalculate godoc
// @Summary      Recalcular costos de todos los productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RecalculateResponse
// @Router       /api/products/recalculate [post]
func (h *CatalogHandler) Recalculate(c *fiber.Ctx) error {
	out, err := h.products.Recalculate(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateResellerProduct godoc
// @Summary      Cotizar producto para revendedor
// @Description  price = costo del producto × (1 + margen/100).
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateResellerProductRequest  true  "product_id, profit_margin"
// @Success      201   {object}  dto.ResellerProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reseller-products [post]
func (h *CatalogHandler) CreateResellerProduct(c *fiber.Ctx) error {
	var in dto.CreateResellerProductRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.resellers.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
