package repomanager

import (
	"context"
	"database/sql"

	"github.com/akapustin/itemhub/internal/dbx"
	"github.com/akapustin/itemhub/internal/server/repositories/items"
	"github.com/akapustin/itemhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Items(db dbx.DBTX) items.Repository
}
