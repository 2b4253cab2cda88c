package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-labs/storefront-api/internal/api/dto"
	"github.com/storefront-labs/storefront-api/internal/service"
	apperrors "github.com/storefront-labs/storefront-api/pkg/util"
)

// ProductHandler serves the catalogue.
type ProductHandler struct {
	products *service.ProductService
}

// NewProductHandler constructs handler.
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, page, err := h.products.List(c.UserContext(), service.ProductQuery{
		Search:      c.Query("search"),
		PageRequest: pageRequest(c),
	})
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productResponse(&products[i]))
	}
	return c.JSON(dto.ProductListResponse{
		Message:  "Products retrieved successfully",
		Products: items,
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
		Pages:    page.Pages,
	})
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product retrieved successfully", "product": productResponse(product)})
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	var missing []string
	if req.Name == nil || *req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFields(missing...)
	}

	product, err := h.products.Create(c.UserContext(), user.ID, service.ProductInput{
		Name:        *req.Name,
		Price:       *req.Price,
		Description: deref(req.Description),
		ImageURL:    deref(req.ImageURL),
		Currency:    deref(req.Currency),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": productResponse(product)})
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), c.Params("id"), service.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Currency:    req.Currency,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product updated successfully", "product": productResponse(product)})
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// Import handles POST /products/import.
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewMissingFields("file")
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	report, err := h.products.Import(c.UserContext(), user.ID, file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Import finished",
		"imported": report.Imported,
		"skipped":  report.Skipped,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

