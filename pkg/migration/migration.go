// Package migration tracks and applies schema migrations.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20260115000000_create_products_table", &createProductsTable{})
//	}
//
// The CLI drives the runner: `kasirin migrate` applies pending
// migrations, `kasirin migrate:rollback` reverses the last batch.
package migration

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/kasirin/kasirin/pkg/logger"
)

// Migration applies or reverses one schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is one row of the tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "kasirin_migrations" }

type entry struct {
	name string
	m    Migration
}

var registry []entry

// Register adds a migration to the global registry. Names carry a
// timestamp prefix so pending migrations sort chronologically.
func Register(name string, m Migration) {
	registry = append(registry, entry{name: name, m: m})
}

// Runner executes registered migrations against one database.
type Runner struct {
	db *gorm.DB
}

// New creates a Runner.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// EnsureTable creates the tracking table when missing.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) applied() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the registered migrations that have not run, in name
// order.
func (r *Runner) Pending() ([]string, error) {
	done, err := r.applied()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range registry {
		if _, ok := done[e.name]; !ok {
			names = append(names, e.name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Run applies every pending migration as a single batch. Each migration
// and its tracking row commit together, so a failure leaves the earlier
// migrations of the batch applied and recorded.
func (r *Runner) Run() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.Pending()
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to migrate.")
		return nil
	}

	byName := index()
	batch := r.nextBatch()

	for _, name := range pending {
		fmt.Printf("  ▶ Migrating: %s\n", name)
		logger.Info("migration: running", "name", name, "batch", batch)

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := byName[name].Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s: %w", name, err)
		}

		fmt.Printf("  ✅ Migrated:  %s\n", name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest migration first.
func (r *Runner) Rollback() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	last := r.lastBatch()
	if last == 0 {
		fmt.Println("Nothing to roll back.")
		return nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("id desc").Find(&rows).Error; err != nil {
		return err
	}

	byName := index()
	for _, rec := range rows {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot rollback %s: not registered", rec.Name)
		}

		fmt.Printf("  ◀ Rolling back: %s\n", rec.Name)
		logger.Info("migration: rolling back", "name", rec.Name)

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, rec.ID).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}

		fmt.Printf("  ✅ Rolled back:  %s\n", rec.Name)
	}

	return nil
}

// Status prints every registered migration with its state and batch.
func (r *Runner) Status() error {
	if err := r.EnsureTable(); err != nil {
		return err
	}

	done, err := r.applied()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
	for _, e := range registry {
		if rec, ok := done[e.name]; ok {
			fmt.Fprintf(w, "%s\tRan\t%d\n", e.name, rec.Batch)
		} else {
			fmt.Fprintf(w, "%s\tPending\t-\n", e.name)
		}
	}
	return w.Flush()
}

func index() map[string]Migration {
	out := make(map[string]Migration, len(registry))
	for _, e := range registry {
		out[e.name] = e.m
	}
	return out
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("MAX(batch) as max").Scan(&max)
	return max.Max
}

func (r *Runner) nextBatch() int {
	return r.lastBatch() + 1
}
