package profiles

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

const selectProfile = `
		SELECT address, authority, username, emoji, gender, pin, bump, deposit, created_at, updated_at
		FROM user_profiles
		WHERE address = $1`

func (r *PostgresRepository) Get(ctx context.Context, addr cryptox.Address) (*models.UserProfile, error) {
	return r.get(ctx, selectProfile, addr)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, addr cryptox.Address) (*models.UserProfile, error) {
	return r.get(ctx, selectProfile+`
		FOR UPDATE`, addr)
}

func (r *PostgresRepository) get(ctx context.Context, query string, addr cryptox.Address) (*models.UserProfile, error) {
	var (
		p                            models.UserProfile
		username, emoji, gender, pin []byte
		deposit, created, updated    dbx.U64
	)
	err := r.db.QueryRowContext(ctx, query, addr).Scan(&p.Address, &p.Authority,
		&username, &emoji, &gender, &pin, &p.Bump, &deposit, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	copy(p.Username[:], username)
	copy(p.Emoji[:], emoji)
	copy(p.Gender[:], gender)
	copy(p.Pin[:], pin)
	p.Deposit, p.CreatedAt, p.UpdatedAt = uint64(deposit), uint64(created), uint64(updated)
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (address, authority, username, emoji, gender, pin, bump, deposit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, p.Address, p.Authority,
		p.Username[:], p.Emoji[:], p.Gender[:], p.Pin[:], int16(p.Bump),
		dbx.U64(p.Deposit), dbx.U64(p.CreatedAt), dbx.U64(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrAccountAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET username = $2, emoji = $3, gender = $4, pin = $5, updated_at = $6
		WHERE address = $1`

	res, err := r.db.ExecContext(ctx, query, p.Address,
		p.Username[:], p.Emoji[:], p.Gender[:], p.Pin[:], dbx.U64(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
