// Package poolstate reads live V2/V3 pool state over the RPC provider pool
// (spec §4.4): reserves/totalSupply for V2, slot0/liquidity for V3.
package poolstate

import (
	"context"
	"math/big"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/chainclient"
)

// V2Reserves is the raw state needed to orient and run the constant-product
// impact formula (spec §4.4).
type V2Reserves struct {
	Reserve0    *big.Int
	Reserve1    *big.Int
	Token0      string
	Token1      string
	TotalSupply *big.Int
	K           *big.Int
}

// ReadV2 reads getReserves/token0/token1/totalSupply from a V2 pair.
func ReadV2(ctx context.Context, pool *chainclient.Pool, pairAddr string) (*V2Reserves, error) {
	var reservesOut []interface{}
	if err := abibind.Call(ctx, pool, abibind.V2Pair, pairAddr, "getReserves", &reservesOut); err != nil {
		return nil, err
	}
	reserve0, _ := reservesOut[0].(*big.Int)
	reserve1, _ := reservesOut[1].(*big.Int)

	var token0, token1 interface{}
	if err := abibind.Call(ctx, pool, abibind.V2Pair, pairAddr, "token0", &token0); err != nil {
		return nil, err
	}
	if err := abibind.Call(ctx, pool, abibind.V2Pair, pairAddr, "token1", &token1); err != nil {
		return nil, err
	}
	var totalSupply *big.Int
	if err := abibind.Call(ctx, pool, abibind.V2Pair, pairAddr, "totalSupply", &totalSupply); err != nil {
		return nil, err
	}

	token0Addr := addressString(token0)
	token1Addr := addressString(token1)

	k := new(big.Int)
	if reserve0 != nil && reserve1 != nil {
		k.Mul(reserve0, reserve1)
	}

	return &V2Reserves{
		Reserve0:    orZero(reserve0),
		Reserve1:    orZero(reserve1),
		Token0:      token0Addr,
		Token1:      token1Addr,
		TotalSupply: orZero(totalSupply),
		K:           k,
	}, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
