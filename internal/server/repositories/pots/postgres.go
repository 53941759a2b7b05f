package pots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/dbx"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const potColumns = `address, authority, name, unlock_time, balance, created_at, bump, deposit`

type scanner interface {
	Scan(dest ...any) error
}

func scanPot(row scanner) (*models.SavingsPot, error) {
	var (
		p                                    models.SavingsPot
		unlock, balance, created, depositAmt dbx.U64
	)
	if err := row.Scan(&p.Address, &p.Authority, &p.Name, &unlock, &balance, &created, &p.Bump, &depositAmt); err != nil {
		return nil, err
	}
	p.UnlockTime, p.Balance, p.CreatedAt, p.Deposit = uint64(unlock), uint64(balance), uint64(created), uint64(depositAmt)
	return &p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error) {
	return r.get(ctx, `
		SELECT `+potColumns+`
		FROM savings_pots
		WHERE address = $1`, addr)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error) {
	return r.get(ctx, `
		SELECT `+potColumns+`
		FROM savings_pots
		WHERE address = $1
		FOR UPDATE`, addr)
}

func (r *PostgresRepository) get(ctx context.Context, query string, addr cryptox.Address) (*models.SavingsPot, error) {
	p, err := scanPot(r.db.QueryRowContext(ctx, query, addr))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.SavingsPot) error {
	query := `
		INSERT INTO savings_pots (` + potColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, p.Address, p.Authority, p.Name,
		dbx.U64(p.UnlockTime), dbx.U64(p.Balance), dbx.U64(p.CreatedAt), int16(p.Bump), dbx.U64(p.Deposit))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, common.ErrAccountAlreadyExists)
}

func (r *PostgresRepository) UpdateBalance(ctx context.Context, addr cryptox.Address, balance uint64) error {
	query := `
		UPDATE savings_pots
		SET balance = $2
		WHERE address = $1`

	res, err := r.db.ExecContext(ctx, query, addr, dbx.U64(balance))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, common.ErrorNotFound)
}

func (r *PostgresRepository) Delete(ctx context.Context, addr cryptox.Address) error {
	query := `
		DELETE FROM savings_pots
		WHERE address = $1`

	res, err := r.db.ExecContext(ctx, query, addr)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, common.ErrorNotFound)
}

func (r *PostgresRepository) ListByAuthority(ctx context.Context, authority cryptox.Address) ([]*models.SavingsPot, error) {
	query := `
		SELECT ` + potColumns + `
		FROM savings_pots
		WHERE authority = $1
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, authority)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.SavingsPot
	for rows.Next() {
		p, err := scanPot(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// expectOne turns "no row touched" into missing.
func expectOne(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
