package poolstate

import (
	"context"
	"math/big"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/chainclient"
)

// V3State is the slot0/liquidity snapshot the liquidity-admissibility check
// and the mid-price calculation need (spec §4.4).
type V3State struct {
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Fee          *big.Int
	Token0       string
	Token1       string
}

// ReadV3 reads slot0/liquidity/fee/token0/token1 from a V3 pool.
func ReadV3(ctx context.Context, pool *chainclient.Pool, poolAddr string) (*V3State, error) {
	var slot0 []interface{}
	if err := abibind.Call(ctx, pool, abibind.V3Pool, poolAddr, "slot0", &slot0); err != nil {
		return nil, err
	}
	sqrtPriceX96, _ := slot0[0].(*big.Int)

	var liquidity *big.Int
	if err := abibind.Call(ctx, pool, abibind.V3Pool, poolAddr, "liquidity", &liquidity); err != nil {
		return nil, err
	}
	var fee *big.Int
	if err := abibind.Call(ctx, pool, abibind.V3Pool, poolAddr, "fee", &fee); err != nil {
		return nil, err
	}
	var token0, token1 interface{}
	if err := abibind.Call(ctx, pool, abibind.V3Pool, poolAddr, "token0", &token0); err != nil {
		return nil, err
	}
	if err := abibind.Call(ctx, pool, abibind.V3Pool, poolAddr, "token1", &token1); err != nil {
		return nil, err
	}

	return &V3State{
		SqrtPriceX96: orZero(sqrtPriceX96),
		Liquidity:    orZero(liquidity),
		Fee:          orZero(fee),
		Token0:       addressString(token0),
		Token1:       addressString(token1),
	}, nil
}
