package handlers

import (
	"fmt"
	"strings"

	"ticktee/internal/models"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const maxImageSize = 5 << 20

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers catalog management routes on an admin router.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/images", h.HandleUploadImage)
}

// HandleListProducts returns one page of products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page := pageFrom(c)
	products, total, err := h.service.ListProducts(services.ProductQuery{
		Category:    models.Category(strings.ToLower(c.Query("category"))),
		Brand:       c.Query("brand"),
		Search:      strings.TrimSpace(c.Query("q")),
		InStockOnly: c.QueryBool("in_stock", false),
		Page:        page,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(listResponse("products", products, total, page))
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	product, err := h.service.CreateProduct(req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.WithField("product_id", product.ID).Info("product created")
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces an existing product's fields.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	product, err := h.service.UpdateProduct(c.Params("id"), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the catalog.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product with ID %s deleted successfully", id),
	})
}

// HandleUploadImage stores the multipart "image" file and appends it to the product.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return respondError(c, h.log, fmt.Errorf("image file is required: %w", services.ErrInvalidInput))
	}
	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !imageContentTypes[contentType] {
		return respondError(c, h.log, fmt.Errorf("unsupported image type %q: %w", contentType, services.ErrInvalidInput))
	}
	if fh.Size > maxImageSize {
		return respondError(c, h.log, fmt.Errorf("image exceeds %d bytes: %w", maxImageSize, services.ErrInvalidInput))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	product, err := h.service.AddProductImage(c.UserContext(), c.Params("id"), fh.Filename, f, fh.Size, contentType)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}
