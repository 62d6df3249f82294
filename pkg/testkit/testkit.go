// Package testkit holds the shared helpers behind the package tests: an
// in-memory database with the full schema, and a mock transport for the
// outgoing HTTP client.
package testkit

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kasirin/kasirin/app/models"
)

// dbSeq disambiguates databases when one test opens several.
var dbSeq atomic.Int64

// OpenDB returns an isolated in-memory database with every table
// migrated. Each call gets its own database, so tests never share state.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps the pool's connections on one
	// database; a plain :memory: DSN gives every connection its own.
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open in-memory database")

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Customer{},
		&models.UserProfile{},
		&models.Order{},
		&models.OrderItem{},
	), "migrate schema")

	return db
}

// SeedProduct inserts a product and returns it.
func SeedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Category: "test", Stock: stock}
	require.NoError(t, db.Create(p).Error)
	return p
}

// SeedCustomer inserts a customer and returns it.
func SeedCustomer(t *testing.T, db *gorm.DB, name, email string) *models.Customer {
	t.Helper()
	c := &models.Customer{Name: name, Email: email, Phone: "0800000000", Status: "active"}
	require.NoError(t, db.Create(c).Error)
	return c
}
