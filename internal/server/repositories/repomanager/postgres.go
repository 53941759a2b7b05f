package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/potkeeper/internal/dbx"
	"github.com/dmitrijs2005/potkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/holdings"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/pots"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/transfers"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type postgresRepositories struct {
	db dbx.DBTX
}

func (r postgresRepositories) Profiles() profiles.Repository {
	return profiles.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Pots() pots.Repository {
	return pots.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Holdings() holdings.Repository {
	return holdings.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Transfers() transfers.Repository {
	return transfers.NewPostgresRepository(r.db)
}

func (r postgresRepositories) RefreshTokens() refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(r.db)
}

// PostgresRepositoryManager runs transactions at SERIALIZABLE isolation and
// retries them on serialization failures up to maxRetries times.
type PostgresRepositoryManager struct {
	db         *sql.DB
	maxRetries uint64
}

func NewPostgresRepositoryManager(db *sql.DB, maxRetries uint64) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, maxRetries: maxRetries}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Read() Repositories {
	return postgresRepositories{db: m.db}
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithSerializableTx(ctx, m.db, m.maxRetries, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, postgresRepositories{db: tx})
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
