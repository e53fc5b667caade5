package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/pkg/storage"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps page to >= 1 and limit to 1..100 (default 20).
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ProductQuery filters the catalog.
type ProductQuery struct {
	Category    models.Category
	Brand       string
	Search      string
	InStockOnly bool
	Page        Page
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=3,max=150"`
	Brand       string          `json:"brand" validate:"required,max=100"`
	Price       float64         `json:"price" validate:"required,gt=0"`
	Description string          `json:"description" validate:"omitempty,max=5000"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    models.Category `json:"category" validate:"required,oneof=men women unisex smart"`
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Brand = strings.TrimSpace(in.Brand)
	p.Price = in.Price
	p.Description = in.Description
	p.Images = in.Images
	p.Stock = in.Stock
	p.Category = in.Category
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	uploader storage.Uploader
}

// NewProductService creates a new ProductService. uploader may be nil when
// storage is not configured.
func NewProductService(repo repositories.ProductRepository, uploader storage.Uploader) *ProductService {
	return &ProductService{
		repo:     repo,
		uploader: uploader,
	}
}

// ListProducts returns one page of the catalog and the total match count.
func (s *ProductService) ListProducts(q ProductQuery) ([]models.Product, int64, error) {
	if q.Category != "" && !q.Category.Valid() {
		return nil, 0, fmt.Errorf("unknown category %q: %w", q.Category, ErrInvalidInput)
	}
	page := q.Page.Normalize()
	return s.repo.List(repositories.ProductFilter{
		Category:    q.Category,
		Brand:       q.Brand,
		Query:       q.Search,
		InStockOnly: q.InStockOnly,
		Offset:      page.Offset(),
		Limit:       page.Limit,
	})
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(in ProductInput) (*models.Product, error) {
	product := &models.Product{}
	in.apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces the writable fields of an existing product.
func (s *ProductService) UpdateProduct(id string, in ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	in.apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// AddProductImage uploads an image and appends its URL to the product's images.
func (s *ProductService) AddProductImage(ctx context.Context, id, filename string, r io.Reader, size int64, contentType string) (*models.Product, error) {
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.Upload(ctx, storage.ObjectName("products/"+id, filename), r, size, contentType)
	if err != nil {
		return nil, err
	}
	product.Images = append(product.Images, url)
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// LowStockCount counts products with stock at or below threshold.
func (s *ProductService) LowStockCount(threshold int) (int64, error) {
	return s.repo.CountLowStock(threshold)
}

func validateProduct(p *models.Product) error {
	if p.Price <= 0 {
		return fmt.Errorf("price must be greater than zero: %w", ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock cannot be negative: %w", ErrInvalidInput)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", p.Category, ErrInvalidInput)
	}
	return nil
}
