package services_test

import (
	"testing"

	"ticktee/internal/database"
	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testStore wires the GORM repositories over a private in-memory database.
type testStore struct {
	db       *gorm.DB
	products *repositories.GORMProductRepository
	users    *repositories.GORMUserRepository
	profiles *repositories.GORMProfileRepository
	carts    *repositories.GORMCartRepository
	orders   *repositories.GORMOrderRepository
	contacts *repositories.GORMContactRepository
	pricing  *services.Pricing
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+uuid.New().String()+"?mode=memory&cache=shared", quietLogger())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	return &testStore{
		db:       db,
		products: repositories.NewGORMProductRepository(db),
		users:    repositories.NewGORMUserRepository(db),
		profiles: repositories.NewGORMProfileRepository(db),
		carts:    repositories.NewGORMCartRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
		contacts: repositories.NewGORMContactRepository(db),
		pricing:  services.NewPricing(services.DefaultPricing),
	}
}

func (s *testStore) seedProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Brand: "Casio", Price: price, Stock: stock, Category: models.CategoryUnisex}
	require.NoError(t, s.products.Create(&p))
	return p
}

func (s *testStore) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x"}
	require.NoError(t, s.users.CreateWithProfile(user, &models.Profile{FullName: "Test Customer"}))
	return user
}

func (s *testStore) stock(t *testing.T, productID string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, s.db.Unscoped().First(&p, "id = ?", productID).Error)
	return p.Stock
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{FullName: "Test Customer", Phone: "03001234567", Address: "12 Mall Road", City: "Lahore"}
}
