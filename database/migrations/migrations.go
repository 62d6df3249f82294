// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// Imported for side effects by the CLI and the server bootstrap.
package migrations
