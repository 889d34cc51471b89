package store

import (
	"context"
	"database/sql"
	"errors"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/swaptypes"
)

// FactoryRepo is the database-first half of the factory cache (spec §4.2).
type FactoryRepo struct {
	db *DB
}

func NewFactoryRepo(db *DB) *FactoryRepo { return &FactoryRepo{db: db} }

func (r *FactoryRepo) Get(ctx context.Context, chainID int64, router string) (*swaptypes.FactoryRecord, error) {
	router = mcommon.NormalizeAddress(router)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, chain_id, router, factory_address, wrapped_native_address, router_family
		FROM factory_addresses WHERE chain_id = $1 AND router = $2`, chainID, router)

	var rec swaptypes.FactoryRecord
	var family string
	err := row.Scan(&rec.ID, &rec.ChainID, &rec.Router, &rec.FactoryAddress, &rec.WrappedNativeAddress, &family)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.RouterFamily = swaptypes.RouterFamily(family)
	return &rec, nil
}

func (r *FactoryRepo) Upsert(ctx context.Context, rec *swaptypes.FactoryRecord) error {
	rec.Router = mcommon.NormalizeAddress(rec.Router)
	rec.FactoryAddress = mcommon.NormalizeAddress(rec.FactoryAddress)
	rec.WrappedNativeAddress = mcommon.NormalizeAddress(rec.WrappedNativeAddress)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO factory_addresses (chain_id, router, factory_address, wrapped_native_address, router_family)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chain_id, router) DO UPDATE SET
			factory_address = EXCLUDED.factory_address,
			wrapped_native_address = EXCLUDED.wrapped_native_address,
			router_family = EXCLUDED.router_family`,
		rec.ChainID, rec.Router, rec.FactoryAddress, rec.WrappedNativeAddress, string(rec.RouterFamily))
	return err
}
