package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Seiko Presage", Price: 45000, Stock: 4, Category: models.CategoryMen},
		{ID: "2", Name: "Casio Vintage", Price: 9000, Stock: 10, Category: models.CategoryMen},
	}

	mockRepo.On("List", repositories.ProductFilter{Category: models.CategoryMen, Query: "seiko", Offset: 20, Limit: 20}).
		Return(expectedProducts, int64(22), nil).Once()

	products, total, err := service.ListProducts(services.ProductQuery{
		Category: models.CategoryMen,
		Search:   "seiko",
		Page:     services.Page{Page: 2},
	})
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	assert.Equal(t, int64(22), total)
	mockRepo.AssertExpectations(t)

	// Unknown category never reaches the repository
	_, _, err = service.ListProducts(services.ProductQuery{Category: "kids"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, services.Page{Page: 1, Limit: 20}, services.Page{}.Normalize())
	assert.Equal(t, services.Page{Page: 3, Limit: 100}, services.Page{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, 40, services.Page{Page: 3, Limit: 20}.Offset())
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: "1", Name: "Seiko Presage", Price: 45000, Stock: 4}

	// Test successful retrieval
	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	_, err = service.GetProductByID("99")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	in := services.ProductInput{
		Name:     "  Tissot PRX ",
		Brand:    "Tissot",
		Price:    120000,
		Stock:    3,
		Category: models.CategoryUnisex,
	}
	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Tissot PRX" && p.Category == models.CategoryUnisex
	})).Return(nil).Once()

	product, err := service.CreateProduct(in)
	assert.NoError(t, err)
	assert.Equal(t, "Tissot PRX", product.Name)
	mockRepo.AssertExpectations(t)

	// Invalid price
	in.Price = 0
	_, err = service.CreateProduct(in)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	// Negative stock
	in.Price, in.Stock = 10, -1
	_, err = service.CreateProduct(in)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: "1", Name: "Old", Brand: "Casio", Price: 10, Stock: 1, Category: models.CategoryMen}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.UpdateProduct("1", services.ProductInput{
		Name: "G-Shock", Brand: "Casio", Price: 25000, Stock: 7, Category: models.CategorySmart,
	})
	assert.NoError(t, err)
	assert.Equal(t, "G-Shock", product.Name)
	assert.Equal(t, 7, product.Stock)
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByID", "404").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.UpdateProduct("404", services.ProductInput{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Delete", "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct("1"))

	mockRepo.On("Delete", "99").Return(fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.DeleteProduct("99"), repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AddProductImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	uploader := new(MockUploader)
	service := services.NewProductService(mockRepo, uploader)

	existing := &models.Product{ID: "p1", Name: "Watch", Price: 10, Stock: 1, Category: models.CategoryMen,
		Images: []string{"https://cdn.example.com/a.jpg"}}
	mockRepo.On("GetByID", "p1").Return(existing, nil).Once()
	uploader.On("Upload", mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "products/p1/") && strings.HasSuffix(name, ".png")
	}), int64(4), "image/png").Return("https://cdn.example.com/b.png", nil).Once()
	mockRepo.On("Update", existing).Return(nil).Once()

	product, err := service.AddProductImage(context.Background(), "p1", "Front.PNG", strings.NewReader("data"), 4, "image/png")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.png"}, product.Images)
	assert.Equal(t, "https://cdn.example.com/a.jpg", product.PrimaryImage())
	mockRepo.AssertExpectations(t)
	uploader.AssertExpectations(t)

	// Without storage the upload is refused
	_, err = services.NewProductService(mockRepo, nil).AddProductImage(context.Background(), "p1", "x.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, services.ErrStorageDisabled)
}
