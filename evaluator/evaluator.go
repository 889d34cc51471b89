// Package evaluator implements the opportunity evaluator's detect()
// orchestration (spec §4.5): token resolution, router substitution, pool
// lookup, liquidity admissibility, price impact, profit, and deadline
// gating, collapsed into a single verdict.
package evaluator

import (
	"context"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/cache"
	"github.com/shadowline/mevwatch/chainclient"
	"github.com/shadowline/mevwatch/config"
	"github.com/shadowline/mevwatch/impact"
	"github.com/shadowline/mevwatch/poolstate"
	"github.com/shadowline/mevwatch/swaptypes"
)

var log = mcommon.NewLogger("evaluator")

const (
	v2MaxReserveFraction = 0.5
	v2MinReserveMultiple = 10
	v3MinLiquidity       = "1000000000000" // 10^12, spec §4.5
)

// Verdict is detect()'s return value (spec §4.5).
type Verdict struct {
	IsOpportunity           bool
	ExpectedProfitFormatted string
	PriceImpact             float64
	PoolAddress             string
	TokenInDecimals         uint8
	TokenOutDecimals        uint8
	Reason                  string
	TimeToSubmitSeconds     int64
	DeadlineTimestamp       int64
	IsExpired               bool
}

// Evaluator holds the dependencies detect() needs: the three lookup caches,
// the RPC pool for liquidity reads and V3 quoting, and the router allow-lists
// used for universal-router substitution.
type Evaluator struct {
	cfg          *config.Config
	tokenCache   *cache.TokenCache
	factoryCache *cache.FactoryCache
	poolCache    *cache.PoolCache
	rpcPool      *chainclient.Pool
}

func New(cfg *config.Config, tokenCache *cache.TokenCache, factoryCache *cache.FactoryCache, poolCache *cache.PoolCache, rpcPool *chainclient.Pool) *Evaluator {
	return &Evaluator{cfg: cfg, tokenCache: tokenCache, factoryCache: factoryCache, poolCache: poolCache, rpcPool: rpcPool}
}

func notOpportunity(reason string) Verdict {
	return Verdict{IsOpportunity: false, Reason: reason}
}

// Detect runs the full nine-step orchestration described in spec §4.5.
func (e *Evaluator) Detect(ctx context.Context, txHash string, swap *swaptypes.DecodedSwap, router string) Verdict {
	// Step 1: token metadata, resolved in parallel.
	var tokenIn, tokenOut *swaptypes.TokenRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := e.tokenCache.GetToken(gctx, swap.TokenIn)
		if err != nil {
			return err
		}
		tokenIn = rec
		return nil
	})
	g.Go(func() error {
		rec, err := e.tokenCache.GetToken(gctx, swap.TokenOut)
		if err != nil {
			return err
		}
		tokenOut = rec
		return nil
	})
	if err := g.Wait(); err != nil || tokenIn == nil || tokenOut == nil {
		if err != nil {
			log.Warn("token resolution failed", "txHash", txHash, "err", err)
		}
		return notOpportunity("Token information not available")
	}

	// Step 2: router substitution for universal-router-originated swaps.
	effectiveRouter := mcommon.NormalizeAddress(router)
	if e.cfg.UniversalRouters.Contains(effectiveRouter) {
		if swap.RouterFamily == swaptypes.FamilyV3 {
			effectiveRouter = mcommon.NormalizeAddress(e.cfg.CanonicalV3Router)
		} else {
			effectiveRouter = mcommon.NormalizeAddress(e.cfg.CanonicalV2Router)
		}
	}

	factory, err := e.factoryCache.GetFactoryAddress(ctx, effectiveRouter, swap.RouterFamily)
	if err != nil {
		log.Warn("factory resolution failed", "txHash", txHash, "err", err)
		return notOpportunity("Token information not available")
	}

	// Step 3: pool lookup.
	var fee *big.Int
	if swap.RouterFamily == swaptypes.FamilyV3 {
		fee, _ = new(big.Int).SetString(swap.Fee, 10)
	}
	poolRec, err := e.poolCache.GetPools(ctx, swap.TokenIn, swap.TokenOut, factory.FactoryAddress, swap.RouterFamily, fee)
	if err != nil {
		log.Warn("pool lookup failed", "txHash", txHash, "err", err)
		return notOpportunity("Pool not found")
	}
	if poolRec == nil {
		return notOpportunity("Pool not found")
	}

	// Step 4: effective input amount.
	amountInEffective, _ := new(big.Int).SetString(swap.AmountIn, 10)
	if amountInEffective == nil {
		amountInEffective = big.NewInt(0)
	}
	if amountInEffective.Sign() == 0 {
		if amountInMax, ok := new(big.Int).SetString(swap.AmountInMax, 10); ok && amountInMax.Sign() > 0 {
			amountInEffective = amountInMax
		}
	}

	var (
		amountOut       *big.Int
		priceImpact     float64
		liquidityReason string
	)

	if amountInEffective.Sign() > 0 {
		switch swap.RouterFamily {
		case swaptypes.FamilyV2:
			amountOut, priceImpact, liquidityReason = e.evaluateV2(ctx, poolRec, swap, amountInEffective, tokenIn.Decimals, tokenOut.Decimals, txHash)
		case swaptypes.FamilyV3:
			amountOut, priceImpact, liquidityReason = e.evaluateV3(ctx, poolRec, swap, amountInEffective, tokenIn.Decimals, tokenOut.Decimals, txHash)
		}
	}
	if liquidityReason != "" {
		v := notOpportunity(liquidityReason)
		v.PoolAddress = poolRec.PoolAddress
		v.TokenInDecimals = tokenIn.Decimals
		v.TokenOutDecimals = tokenOut.Decimals
		return v
	}

	// Step 7: profit.
	expectedProfit, hasProfit := computeProfit(amountOut, swap.AmountOutMin)

	// Step 8: deadline.
	deadlineTS, timeToSubmit, isExpired := evaluateDeadline(swap.Deadline)

	// Step 9: verdict. Reason reflects whichever gate failed, checked in the
	// order the spec lists them: impact, profit, expired, none.
	isOpportunity := hasProfit && priceImpact >= e.cfg.MinPriceImpact
	reason := "none"
	switch {
	case priceImpact < e.cfg.MinPriceImpact:
		reason = "Price impact below threshold"
	case !hasProfit:
		reason = "No profitable spread"
	case isExpired:
		reason = "Deadline passed"
	}

	profitFormatted := ""
	if expectedProfit != nil {
		profitFormatted = expectedProfit.String()
	}

	return Verdict{
		IsOpportunity:           isOpportunity,
		ExpectedProfitFormatted: profitFormatted,
		PriceImpact:             priceImpact,
		PoolAddress:             poolRec.PoolAddress,
		TokenInDecimals:         tokenIn.Decimals,
		TokenOutDecimals:        tokenOut.Decimals,
		Reason:                  reason,
		TimeToSubmitSeconds:     timeToSubmit,
		DeadlineTimestamp:       deadlineTS,
		IsExpired:               isExpired,
	}
}

// evaluateV2 runs the liquidity admissibility check and the constant-product
// impact engine (spec §4.5 step 5/6). A non-empty liquidityReason means the
// trade is rejected before impact is meaningful.
func (e *Evaluator) evaluateV2(ctx context.Context, poolRec *swaptypes.PoolRecord, swap *swaptypes.DecodedSwap, amountIn *big.Int, decimalsIn, decimalsOut uint8, txHash string) (*big.Int, float64, string) {
	reserves, err := poolstate.ReadV2(ctx, e.rpcPool, poolRec.PoolAddress)
	if err != nil {
		log.Warn("v2 reserve read failed, proceeding without liquidity check", "txHash", txHash, "err", err)
		return nil, 0, ""
	}

	// Orient by tokenIn (spec §9: preserve the token0-ordering quirk verbatim).
	reserveIn, reserveOut := reserves.Reserve1, reserves.Reserve0
	if mcommon.AddressesEqual(swap.TokenIn, reserves.Token0) {
		reserveIn, reserveOut = reserves.Reserve0, reserves.Reserve1
	}

	half := new(big.Int).Div(reserveIn, big.NewInt(2))
	if amountIn.Cmp(half) > 0 {
		return nil, 0, "Insufficient liquidity: trade > 50% of reserve"
	}
	tenX := new(big.Int).Mul(amountIn, big.NewInt(v2MinReserveMultiple))
	if reserveIn.Cmp(tenX) < 0 {
		return nil, 0, "Low liquidity: reserve < 10x trade"
	}

	result := impact.ComputeV2(amountIn, reserveIn, reserveOut, decimalsIn, decimalsOut)
	return result.AmountOut, result.ImpactPct, ""
}

func (e *Evaluator) evaluateV3(ctx context.Context, poolRec *swaptypes.PoolRecord, swap *swaptypes.DecodedSwap, amountIn *big.Int, decimalsIn, decimalsOut uint8, txHash string) (*big.Int, float64, string) {
	state, err := poolstate.ReadV3(ctx, e.rpcPool, poolRec.PoolAddress)
	if err != nil {
		log.Warn("v3 state read failed, proceeding without liquidity check", "txHash", txHash, "err", err)
	} else {
		if state.Liquidity.Sign() == 0 {
			return nil, 0, "Zero liquidity in V3 pool"
		}
		minLiquidity, _ := new(big.Int).SetString(v3MinLiquidity, 10)
		if state.Liquidity.Cmp(minLiquidity) < 0 {
			return nil, 0, "Very low V3 liquidity"
		}
	}

	if state == nil {
		return nil, 0, ""
	}

	fee := state.Fee
	if swap.Fee != "" {
		if f, ok := new(big.Int).SetString(swap.Fee, 10); ok {
			fee = f
		}
	}

	quote := impact.Quoter(e.rpcPool, e.cfg.V3QuoterAddress)
	result, err := impact.ComputeV3(ctx, quote, swap.TokenIn, swap.TokenOut, state.Token0, state.SqrtPriceX96, fee, amountIn, decimalsIn, decimalsOut)
	if err != nil {
		log.Warn("v3 quoter reverted", "txHash", txHash, "err", err)
		return nil, 0, ""
	}
	return result.AmountOut, result.ImpactPct, ""
}

// computeProfit compares amountOut against the user-declared minimum
// (spec §4.5 step 7). Equality yields zero profit, not an opportunity;
// negative yields no profit at all.
func computeProfit(amountOut *big.Int, amountOutMinStr string) (*big.Int, bool) {
	if amountOut == nil {
		return nil, false
	}
	amountOutMin, ok := new(big.Int).SetString(amountOutMinStr, 10)
	if !ok {
		return nil, false
	}
	if amountOut.Cmp(amountOutMin) <= 0 {
		if amountOut.Cmp(amountOutMin) == 0 {
			return big.NewInt(0), false
		}
		return nil, false
	}
	return new(big.Int).Sub(amountOut, amountOutMin), true
}

// evaluateDeadline parses swap.Deadline as unix seconds (spec §4.5 step 8).
func evaluateDeadline(deadlineStr string) (deadlineTS int64, timeToSubmit int64, isExpired bool) {
	deadlineTS, ok := parseInt64(deadlineStr)
	if !ok {
		return 0, 0, true
	}
	now := time.Now().Unix()
	if deadlineTS > now {
		return deadlineTS, deadlineTS - now, false
	}
	return deadlineTS, 0, true
}

func parseInt64(s string) (int64, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, false
	}
	return v.Int64(), true
}
