// Package cache implements the DB-first, on-chain-fallback, write-through
// lookup layer spec §4.2 describes for tokens, factories, and pools.
package cache

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/chainclient"
	"github.com/shadowline/mevwatch/store"
	"github.com/shadowline/mevwatch/swaptypes"
)

var log = mcommon.NewLogger("cache")

const (
	unknownName     = "Unknown"
	unknownSymbol   = "UNKNOWN"
	unknownDecimals = 18
)

// ErrInvalidAddress is returned when GetToken is asked to resolve something
// that doesn't even parse as an address (spec §4.2: "reject non-address
// input").
var ErrInvalidAddress = errors.New("cache: invalid address")

// TokenCache is the token half of the lookup layer.
type TokenCache struct {
	chainID int64
	store   *store.TokenRepo
	pool    *chainclient.Pool
}

func NewTokenCache(chainID int64, repo *store.TokenRepo, pool *chainclient.Pool) *TokenCache {
	return &TokenCache{chainID: chainID, store: repo, pool: pool}
}

// GetToken resolves ERC-20 metadata for address, DB-first, with a
// parallel on-chain fallback on miss (spec §4.2).
func (c *TokenCache) GetToken(ctx context.Context, address string) (*swaptypes.TokenRecord, error) {
	norm := mcommon.NormalizeAddress(address)
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

	rec = c.fetchOnChain(ctx, norm)
	if err := c.store.Upsert(ctx, rec); err != nil {
		log.Warn("token upsert failed", "address", norm, "err", err)
	}
	return rec, nil
}

// fetchOnChain calls name()/symbol()/decimals() in parallel, each falling
// back to a safe default on failure rather than failing the whole lookup
// (spec §4.2).
func (c *TokenCache) fetchOnChain(ctx context.Context, address string) *swaptypes.TokenRecord {
	rec := &swaptypes.TokenRecord{
		ChainID:      c.chainID,
		TokenAddress: address,
		Name:         unknownName,
		Symbol:       unknownSymbol,
		Decimals:     unknownDecimals,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var name string
		if err := abibind.Call(gctx, c.pool, abibind.ERC20, address, "name", &name); err == nil && name != "" {
			rec.Name = name
		} else if err != nil {
			log.Warn("token name() failed, using default", "address", address, "err", err)
		}
		return nil
	})
	g.Go(func() error {
		var symbol string
		if err := abibind.Call(gctx, c.pool, abibind.ERC20, address, "symbol", &symbol); err == nil && symbol != "" {
			rec.Symbol = symbol
		} else if err != nil {
			log.Warn("token symbol() failed, using default", "address", address, "err", err)
		}
		return nil
	})
	g.Go(func() error {
		var decimals uint8
		if err := abibind.Call(gctx, c.pool, abibind.ERC20, address, "decimals", &decimals); err == nil {
			rec.Decimals = decimals
		} else {
			log.Warn("token decimals() failed, using default", "address", address, "err", err)
		}
		return nil
	})
	_ = g.Wait() // each goroutine already absorbed its own error into a default

	return rec
}
