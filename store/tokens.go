package store

import (
	"context"
	"database/sql"
	"errors"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/swaptypes"
)

// TokenRepo is the database-first half of the token cache (spec §4.2).
type TokenRepo struct {
	db *DB
}

func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

// Get returns the cached token row, or nil if the key has never been
// written (a cache miss the caller must resolve on-chain).
func (r *TokenRepo) Get(ctx context.Context, chainID int64, address string) (*swaptypes.TokenRecord, error) {
	address = mcommon.NormalizeAddress(address)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, chain_id, token_address, name, symbol, decimals
		FROM tokens WHERE chain_id = $1 AND token_address = $2`, chainID, address)

	var rec swaptypes.TokenRecord
	err := row.Scan(&rec.ID, &rec.ChainID, &rec.TokenAddress, &rec.Name, &rec.Symbol, &rec.Decimals)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert writes the resolved metadata, idempotent under concurrent writers
// racing the same (chain_id, token_address) key (spec §4.2, §9).
func (r *TokenRepo) Upsert(ctx context.Context, rec *swaptypes.TokenRecord) error {
	rec.TokenAddress = mcommon.NormalizeAddress(rec.TokenAddress)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (chain_id, token_address, name, symbol, decimals)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chain_id, token_address) DO UPDATE SET
			name = EXCLUDED.name, symbol = EXCLUDED.symbol, decimals = EXCLUDED.decimals`,
		rec.ChainID, rec.TokenAddress, rec.Name, rec.Symbol, rec.Decimals)
	return err
}
