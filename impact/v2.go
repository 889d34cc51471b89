// Package impact implements the V2 constant-product and V3 quoter-based
// price-impact engines described in spec §4.4.
package impact

import (
	"context"
	"math"
	"math/big"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/chainclient"
)

// v2FeeNumerator/v2FeeDenominator encode the canonical 0.3% V2 swap fee as
// an integer ratio (997/1000) so the constant-product math stays exact
// until the final float conversion (spec §4.4).
const (
	v2FeeNumerator   = 997
	v2FeeDenominator = 1000
)

// V2Result is the impact engine's output: the simulated output amount and
// the resulting relative price-impact, plus the before/after prices the
// impact was computed from.
type V2Result struct {
	AmountOut    *big.Int
	PriceBefore  float64
	PriceAfter   float64
	ImpactPct    float64 // fraction, e.g. 0.0023 for 0.23%
}

// ComputeV2 runs the constant-product formula oriented by tokenIn. reserveIn
// and reserveOut are already oriented (reserveIn is the tokenIn side); the
// caller (evaluator) is responsible for that orientation per the source's
// token0 ordering (spec §9 open question: "preserve the source behavior").
func ComputeV2(amountIn, reserveIn, reserveOut *big.Int, decimalsIn, decimalsOut uint8) V2Result {
	if amountIn == nil || amountIn.Sign() == 0 {
		return V2Result{AmountOut: big.NewInt(0), ImpactPct: 0}
	}

	amountInWithFee := new(big.Int).Mul(amountIn, big.NewInt(v2FeeNumerator))
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Add(new(big.Int).Mul(reserveIn, big.NewInt(v2FeeDenominator)), amountInWithFee)
	amountOut := big.NewInt(0)
	if denominator.Sign() > 0 {
		amountOut = new(big.Int).Div(numerator, denominator)
	}

	reserveInF := toDecimal(reserveIn, decimalsIn)
	reserveOutF := toDecimal(reserveOut, decimalsOut)
	amountInF := toDecimal(amountIn, decimalsIn)
	amountOutF := toDecimal(amountOut, decimalsOut)

	var priceBefore float64
	if reserveInF != 0 {
		priceBefore = reserveOutF / reserveInF
	}
	var priceAfter float64
	newReserveIn := reserveInF + amountInF
	if newReserveIn != 0 {
		priceAfter = (reserveOutF - amountOutF) / newReserveIn
	}

	var impact float64
	if priceBefore != 0 {
		impact = math.Abs(priceBefore-priceAfter) / priceBefore
	}

	return V2Result{
		AmountOut:   amountOut,
		PriceBefore: priceBefore,
		PriceAfter:  priceAfter,
		ImpactPct:   impact,
	}
}

func toDecimal(v *big.Int, decimals uint8) float64 {
	if v == nil {
		return 0
	}
	f := new(big.Float).SetInt(v)
	scale := new(big.Float).SetFloat64(math.Pow10(int(decimals)))
	if scale.Sign() == 0 {
		scale = big.NewFloat(1)
	}
	result := new(big.Float).Quo(f, scale)
	out, _ := result.Float64()
	return out
}

// V3QuoteFunc performs the V3 quoter staticCall; injected so ComputeV3 stays
// a pure function over its inputs plus one I/O seam, matching the "decoders
// are pure, engines may do one I/O call" split spec §4.4 draws.
type V3QuoteFunc func(ctx context.Context, tokenIn, tokenOut string, fee *big.Int, amountIn *big.Int) (*big.Int, error)

// Quoter is the production V3QuoteFunc, calling the configured V3 quoter
// contract's quoteExactInputSingle via eth_call (spec §4.4).
func Quoter(pool *chainclient.Pool, quoterAddr string) V3QuoteFunc {
	return func(ctx context.Context, tokenIn, tokenOut string, fee *big.Int, amountIn *big.Int) (*big.Int, error) {
		var amountOut *big.Int
		err := abibind.Call(ctx, pool, abibind.V3Quoter, quoterAddr, "quoteExactInputSingle", &amountOut,
			mustHexAddr(tokenIn), mustHexAddr(tokenOut), fee, amountIn, big.NewInt(0))
		if err != nil {
			return nil, err
		}
		return amountOut, nil
	}
}
