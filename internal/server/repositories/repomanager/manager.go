package repomanager

import (
	"context"
	"database/sql"

	"invoice-pipeline/internal/server/repositories/invoices"
)

// RepositoryManager vends repository implementations and exposes a schema
// migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Invoices(db *sql.DB) invoices.Repository
}
