package store

import (
	"context"
	"database/sql"
	"errors"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/swaptypes"
)

// PoolRepo is the database-first half of the pool cache (spec §4.2). A row
// with Exists=false is read as an absent pool, though the pool cache never
// writes one; a zero-address row is never written (spec: "never insert a
// zero-address pool").
type PoolRepo struct {
	db *DB
}

func NewPoolRepo(db *DB) *PoolRepo { return &PoolRepo{db: db} }

func (r *PoolRepo) scanOne(row *sql.Row) (*swaptypes.PoolRecord, error) {
	var rec swaptypes.PoolRecord
	var family string
	err := row.Scan(&rec.ID, &rec.ChainID, &rec.PoolAddress, &rec.Token0, &rec.Token1, &rec.Exists, &family, &rec.Fee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.RouterFamily = swaptypes.RouterFamily(family)
	return &rec, nil
}

// GetByAddress looks up a pool directly by its chain-assigned address.
func (r *PoolRepo) GetByAddress(ctx context.Context, chainID int64, poolAddr string) (*swaptypes.PoolRecord, error) {
	poolAddr = mcommon.NormalizeAddress(poolAddr)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, chain_id, pool_address, token0, token1, exists_on_chain, router_family, fee
		FROM pools WHERE chain_id = $1 AND pool_address = $2`, chainID, poolAddr)
	return r.scanOne(row)
}

// SearchByTokenPair is the pool cache's DB lookup, used before the on-chain
// factory call and again as the fallback when that call times out: search
// by (token0, token1, family) regardless of which side is tokenA/tokenB in
// the original request.
func (r *PoolRepo) SearchByTokenPair(ctx context.Context, chainID int64, tokenA, tokenB string, family swaptypes.RouterFamily) (*swaptypes.PoolRecord, error) {
	tokenA = mcommon.NormalizeAddress(tokenA)
	tokenB = mcommon.NormalizeAddress(tokenB)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, chain_id, pool_address, token0, token1, exists_on_chain, router_family, fee
		FROM pools
		WHERE chain_id = $1 AND router_family = $2 AND exists_on_chain = true
		  AND ((token0 = $3 AND token1 = $4) OR (token0 = $4 AND token1 = $3))
		LIMIT 1`, chainID, string(family), tokenA, tokenB)
	return r.scanOne(row)
}

// Upsert writes the resolved (or confirmed-absent) pool row. A zero-address
// poolAddr is rejected by the caller before this is reached (spec §4.2);
// this method does not re-check it so that absence markers with an empty
// address are representable if a caller chooses to store them that way.
func (r *PoolRepo) Upsert(ctx context.Context, rec *swaptypes.PoolRecord) error {
	rec.PoolAddress = mcommon.NormalizeAddress(rec.PoolAddress)
	rec.Token0 = mcommon.NormalizeAddress(rec.Token0)
	rec.Token1 = mcommon.NormalizeAddress(rec.Token1)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pools (chain_id, pool_address, token0, token1, exists_on_chain, router_family, fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chain_id, pool_address) DO UPDATE SET
			token0 = EXCLUDED.token0, token1 = EXCLUDED.token1,
			exists_on_chain = EXCLUDED.exists_on_chain,
			router_family = EXCLUDED.router_family, fee = EXCLUDED.fee`,
		rec.ChainID, rec.PoolAddress, rec.Token0, rec.Token1, rec.Exists, string(rec.RouterFamily), rec.Fee)
	return err
}
