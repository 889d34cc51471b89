package impact

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMidPriceToken1PerToken0_EqualDecimals(t *testing.T) {
	sqrtPriceX96 := new(big.Int).Lsh(big.NewInt(1), 96) // sqrt(1) scaled
	mid := MidPriceToken1PerToken0(sqrtPriceX96, 18, 18)
	require.InDelta(t, 1.0, mid, 1e-9)
}

func TestMidPriceToken1PerToken0_NilSqrtPrice(t *testing.T) {
	require.Zero(t, MidPriceToken1PerToken0(nil, 18, 18))
}

func TestComputeV3_TokenInIsToken0(t *testing.T) {
	r := require.New(t)

	sqrtPriceX96 := new(big.Int).Lsh(big.NewInt(1), 96)
	tokenIn := "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	tokenOut := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"

	quote := func(ctx context.Context, in, out string, fee, amountIn *big.Int) (*big.Int, error) {
		return new(big.Int).Set(amountIn), nil // 1:1 quote, no impact
	}

	result, err := ComputeV3(context.Background(), quote, tokenIn, tokenOut, tokenIn, sqrtPriceX96, big.NewInt(3000), big.NewInt(1000), 18, 18)
	r.NoError(err)
	r.InDelta(1.0, result.MidPrice, 1e-9)
	r.InDelta(1.0, result.QuotedPrice, 1e-9)
	r.InDelta(0, result.ImpactPct, 1e-9)
}

func TestComputeV3_QuoterError(t *testing.T) {
	r := require.New(t)

	sqrtPriceX96 := new(big.Int).Lsh(big.NewInt(1), 96)
	errReverted := errors.New("execution reverted")
	quote := func(ctx context.Context, in, out string, fee, amountIn *big.Int) (*big.Int, error) {
		return nil, errReverted
	}

	_, err := ComputeV3(context.Background(), quote, "0xaa", "0xbb", "0xaa", sqrtPriceX96, big.NewInt(3000), big.NewInt(1000), 18, 18)
	r.ErrorIs(err, errReverted)
}
