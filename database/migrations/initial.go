package migrations

import (
	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/migration"
)

func init() {
	migration.Register("20260115000000_create_products_table", &CreateProductsTable{})
	migration.Register("20260115000001_create_customers_table", &CreateCustomersTable{})
	migration.Register("20260115000002_create_user_profiles_table", &CreateUserProfilesTable{})
	migration.Register("20260115000003_create_orders_tables", &CreateOrdersTables{})
}

// -------- 0000: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0001: customers --------

type CreateCustomersTable struct{}

func (m *CreateCustomersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Customer{})
}

func (m *CreateCustomersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("customers")
}

// -------- 0002: user_profiles --------

type CreateUserProfilesTable struct{}

func (m *CreateUserProfilesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.UserProfile{})
}

func (m *CreateUserProfilesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("user_profiles")
}

// -------- 0003: orders + order_items --------

type CreateOrdersTables struct{}

func (m *CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrdersTables) Down(db *gorm.DB) error {
	if err := db.Migrator().DropTable("order_items"); err != nil {
		return err
	}
	return db.Migrator().DropTable("orders")
}
