package cache

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/chainclient"
	"github.com/shadowline/mevwatch/store"
	"github.com/shadowline/mevwatch/swaptypes"
)

// defaultV2Fee is the historical-artifact fee value stamped on V2 pools,
// which have no real per-pool fee tier (spec §9). Treated as opaque.
const defaultV2Fee = "2500"

// PoolCache is the pool half of the lookup layer (spec §4.2).
type PoolCache struct {
	chainID        int64
	store          *store.PoolRepo
	pool           *chainclient.Pool
	lookupTimeout  time.Duration
}

func NewPoolCache(chainID int64, repo *store.PoolRepo, rpcPool *chainclient.Pool, lookupTimeout time.Duration) *PoolCache {
	return &PoolCache{chainID: chainID, store: repo, pool: rpcPool, lookupTimeout: lookupTimeout}
}

// GetPools resolves the pool for (tokenA, tokenB) under the given factory
// and family. fee is only consulted for V3 lookups. A stored row for the
// pair, family and fee is returned without a chain call; otherwise the
// factory is asked. A nil record, nil error return means "confirmed absent"
// (spec §4.2): never an error on its own.
func (c *PoolCache) GetPools(ctx context.Context, tokenA, tokenB, factoryAddr string, family swaptypes.RouterFamily, fee *big.Int) (*swaptypes.PoolRecord, error) {
	tokenA = mcommon.NormalizeAddress(tokenA)
	tokenB = mcommon.NormalizeAddress(tokenB)
	if tokenA == "" || tokenB == "" {
		return nil, ErrInvalidAddress
	}

	if cached, err := c.store.SearchByTokenPair(ctx, c.chainID, tokenA, tokenB, family); err != nil {
		log.Warn("pool DB lookup failed, asking factory", "tokenA", tokenA, "tokenB", tokenB, "err", err)
	} else if cached != nil && !mcommon.IsZeroAddress(cached.PoolAddress) && cached.Fee == feeString(family, fee) {
		return cached, nil
	}

	addr, onChainErr := c.resolveOnChain(ctx, tokenA, tokenB, factoryAddr, family, fee)
	if onChainErr == nil {
		if mcommon.IsZeroAddress(addr) {
			return nil, nil
		}
		rec := &swaptypes.PoolRecord{
			ChainID:      c.chainID,
			PoolAddress:  mcommon.NormalizeAddress(addr),
			Token0:       tokenA,
			Token1:       tokenB,
			Exists:       true,
			RouterFamily: family,
			Fee:          feeString(family, fee),
		}
		if err := c.store.Upsert(ctx, rec); err != nil {
			log.Warn("pool upsert failed", "pool", rec.PoolAddress, "err", err)
		}
		return rec, nil
	}

	if !errors.Is(onChainErr, context.DeadlineExceeded) && !errors.Is(onChainErr, chainclient.ErrTransient) {
		return nil, onChainErr
	}

	log.Warn("pool factory lookup timed out, falling back to DB search", "tokenA", tokenA, "tokenB", tokenB, "err", onChainErr)
	rec, err := c.store.SearchByTokenPair(ctx, c.chainID, tokenA, tokenB, family)
	if err != nil {
		return nil, err
	}
	if rec == nil || mcommon.IsZeroAddress(rec.PoolAddress) {
		return nil, nil
	}
	return rec, nil
}

func (c *PoolCache) resolveOnChain(ctx context.Context, tokenA, tokenB, factoryAddr string, family swaptypes.RouterFamily, fee *big.Int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	var addr common.Address
	var err error
	if family == swaptypes.FamilyV3 {
		f := fee
		if f == nil {
			f = big.NewInt(0)
		}
		err = abibind.Call(callCtx, c.pool, abibind.V3Factory, factoryAddr, "getPool", &addr,
			common.HexToAddress(tokenA), common.HexToAddress(tokenB), f)
	} else {
		err = abibind.Call(callCtx, c.pool, abibind.V2Factory, factoryAddr, "getPair", &addr,
			common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	}
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

func feeString(family swaptypes.RouterFamily, fee *big.Int) string {
	if family == swaptypes.FamilyV3 {
		if fee != nil {
			return fee.String()
		}
		return "0"
	}
	return defaultV2Fee
}
