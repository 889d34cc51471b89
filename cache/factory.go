package cache

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/chainclient"
	"github.com/shadowline/mevwatch/store"
	"github.com/shadowline/mevwatch/swaptypes"
)

// FactoryCache is the factory half of the lookup layer (spec §4.2).
type FactoryCache struct {
	chainID int64
	store   *store.FactoryRepo
	pool    *chainclient.Pool
}

func NewFactoryCache(chainID int64, repo *store.FactoryRepo, pool *chainclient.Pool) *FactoryCache {
	return &FactoryCache{chainID: chainID, store: repo, pool: pool}
}

// GetFactoryAddress resolves (factory, wrappedNative) for a router of the
// given family, DB-first with on-chain fallback on miss.
func (c *FactoryCache) GetFactoryAddress(ctx context.Context, router string, family swaptypes.RouterFamily) (*swaptypes.FactoryRecord, error) {
	norm := mcommon.NormalizeAddress(router)
	if norm == "" {
		return nil, ErrInvalidAddress
	}

	rec, err := c.store.Get(ctx, c.chainID, norm)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	var factoryAddr common.Address
	if err := abibind.Call(ctx, c.pool, abibind.RouterABI(family), norm, "factory", &factoryAddr); err != nil {
		return nil, err
	}

	wrappedNativeMethod := "WETH"
	if family == swaptypes.FamilyV3 {
		wrappedNativeMethod = "WETH9"
	}
	var wrappedNative common.Address
	if err := abibind.Call(ctx, c.pool, abibind.RouterABI(family), norm, wrappedNativeMethod, &wrappedNative); err != nil {
		return nil, err
	}

	rec = &swaptypes.FactoryRecord{
		ChainID:              c.chainID,
		Router:               norm,
		FactoryAddress:       mcommon.NormalizeAddress(factoryAddr.Hex()),
		WrappedNativeAddress: mcommon.NormalizeAddress(wrappedNative.Hex()),
		RouterFamily:         family,
	}
	if err := c.store.Upsert(ctx, rec); err != nil {
		log.Warn("factory upsert failed", "router", norm, "err", err)
	}
	return rec, nil
}
