package seeders

import (
	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
)

func init() {
	Register("products", SeedProducts)
	Register("customers", SeedCustomers)
}

func strPtr(s string) *string { return &s }

// SeedProducts inserts a starter catalog. Skips rows that already exist by
// barcode.
func SeedProducts(db *gorm.DB) error {
	products := []models.Product{
		{Name: "Americano", Price: 3.50, Category: "beverage", Stock: 100, Barcode: strPtr("8990001000017")},
		{Name: "Cafe Latte", Price: 4.50, Category: "beverage", Stock: 100, Barcode: strPtr("8990001000024")},
		{Name: "Croissant", Price: 3.00, Category: "bakery", Stock: 40, Barcode: strPtr("8990001000031")},
		{Name: "Banana Bread", Price: 3.25, Category: "bakery", Stock: 25, Barcode: strPtr("8990001000048")},
		{Name: "Mineral Water", Price: 1.50, Category: "beverage", Stock: 200, Barcode: strPtr("8990001000055")},
	}
	for _, p := range products {
		var count int64
		db.Model(&models.Product{}).Where("barcode = ?", p.Barcode).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedCustomers inserts a few walk-in regulars, keyed by email.
func SeedCustomers(db *gorm.DB) error {
	customers := []models.Customer{
		{Name: "Andi Wijaya", Email: "andi@example.com", Phone: "+62811000001", Status: "active"},
		{Name: "Budi Santoso", Email: "budi@example.com", Phone: "+62811000002", Status: "active"},
		{Name: "Citra Lestari", Email: "citra@example.com", Phone: "+62811000003", Status: "active"},
	}
	for _, c := range customers {
		var count int64
		db.Model(&models.Customer{}).Where("email = ?", c.Email).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}
