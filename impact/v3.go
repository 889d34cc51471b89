package impact

import (
	"context"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// q192 = 2^192, the fixed-point scale sqrtPriceX96² sits in (spec §4.4).
var q192 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 192))

// V3Result mirrors V2Result for the concentrated-liquidity engine.
type V3Result struct {
	AmountOut   *big.Int
	MidPrice    float64
	QuotedPrice float64
	ImpactPct   float64
}

// MidPriceToken1PerToken0 computes price1Over0 = sqrtPriceX96^2 / 2^192,
// the raw token1-per-token0 mid price (spec §4.4), decimal-adjusted.
func MidPriceToken1PerToken0(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) float64 {
	if sqrtPriceX96 == nil {
		return 0
	}
	sq := new(big.Float).SetInt(new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96))
	raw := new(big.Float).Quo(sq, q192)
	rawF, _ := raw.Float64()
	// token0 has `decimals0` units, token1 has `decimals1`: adjust the raw
	// ratio by 10^(decimals0-decimals1) to land in human decimal terms.
	adjust := math.Pow10(int(decimals0) - int(decimals1))
	return rawF * adjust
}

// ComputeV3 orients the mid price to tokenOut/tokenIn, invokes the quoter,
// and derives the impact fraction (spec §4.4). quote performs the one
// on-chain staticCall; if it errors (e.g. the quoter reverted) ComputeV3
// returns the error so the evaluator can surface a QuoterRevert verdict
// (spec §7) instead of a bogus zero-impact result.
func ComputeV3(ctx context.Context, quote V3QuoteFunc, tokenIn, tokenOut, token0 string, sqrtPriceX96, fee, amountIn *big.Int, decimalsIn, decimalsOut uint8) (V3Result, error) {
	tokenInIsToken0 := common.HexToAddress(tokenIn) == common.HexToAddress(token0)

	var midPrice float64
	if tokenInIsToken0 {
		// token1-per-token0 raw ratio is already tokenOut-per-tokenIn.
		midPrice = MidPriceToken1PerToken0(sqrtPriceX96, decimalsIn, decimalsOut)
	} else {
		inv := MidPriceToken1PerToken0(sqrtPriceX96, decimalsOut, decimalsIn)
		if inv != 0 {
			midPrice = 1 / inv
		}
	}

	amountOut, err := quote(ctx, tokenIn, tokenOut, fee, amountIn)
	if err != nil {
		return V3Result{MidPrice: midPrice}, err
	}

	amountInF := toDecimal(amountIn, decimalsIn)
	amountOutF := toDecimal(amountOut, decimalsOut)
	var quotedPrice float64
	if amountInF != 0 {
		quotedPrice = amountOutF / amountInF
	}

	var impact float64
	if midPrice != 0 {
		impact = (quotedPrice - midPrice) / midPrice
	}

	return V3Result{
		AmountOut:   amountOut,
		MidPrice:    midPrice,
		QuotedPrice: quotedPrice,
		ImpactPct:   impact,
	}, nil
}

func mustHexAddr(a string) common.Address {
	return common.HexToAddress(a)
}
