package session

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/quzhan/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/quzhan/internal/dbx"
)

// StorageKey is the metadata key of the session snapshot.
const StorageKey = "user-auth-storage-v2"

// Persister saves and loads session snapshots.
type Persister interface {
	Save(ctx context.Context, st State) error
	Load(ctx context.Context) (State, bool, error)
}

// SQLitePersister stores the snapshot as JSON in the metadata table.
type SQLitePersister struct {
	db *sql.DB
}

func NewSQLitePersister(db *sql.DB) *SQLitePersister {
	return &SQLitePersister{db: db}
}

func (p *SQLitePersister) Save(ctx context.Context, st State) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.StoreJSON(ctx, metadata.NewSQLiteRepository(tx), StorageKey, st)
	})
}

func (p *SQLitePersister) Load(ctx context.Context) (State, bool, error) {
	var st State
	ok, err := metadata.LoadJSON(ctx, metadata.NewSQLiteRepository(p.db), StorageKey, &st)
	return st, ok, err
}
