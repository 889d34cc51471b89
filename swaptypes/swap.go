// Package swaptypes defines the unified intermediate records produced by
// the decoder family and persisted by the evaluator/store (spec §3).
package swaptypes

// RouterFamily dictates which pool cache key shape and which price-impact
// engine apply to a DecodedSwap.
type RouterFamily string

const (
	FamilyV2 RouterFamily = "v2"
	FamilyV3 RouterFamily = "v3"
)

// Method tags emitted by the decoders. These are symbolic, not ABI method
// selectors.
const (
	MethodSwapExactTokensForTokens = "swapExactTokensForTokens"
	MethodSwapTokensForExactTokens = "swapTokensForExactTokens"
	MethodSwapExactETHForTokens    = "swapExactETHForTokens"
	MethodSwapExactTokensForETH    = "swapExactTokensForETH"
	MethodSwapETHForExactTokens    = "swapETHForExactTokens"
	MethodSwapTokensForExactETH    = "swapTokensForExactETH"

	MethodV3ExactInputSingle  = "exactInputSingle"
	MethodV3ExactOutputSingle = "exactOutputSingle"
	MethodV3ExactInput        = "exactInput"
	MethodV3ExactOutput       = "exactOutput"

	MethodUniversalV3ExactIn  = "V3_EXACT_IN"
	MethodUniversalV3ExactOut = "V3_EXACT_OUT"
	MethodUniversalV2ExactIn  = "V2_EXACT_IN"
	MethodUniversalV2ExactOut = "V2_EXACT_OUT"
)

// DecodedSwap is the unified record every decoder emits. All addresses are
// lowercase; all 256-bit amounts travel as base-10 decimal strings so they
// round-trip exactly across the bus and through the database (spec §9,
// "BigInt on the wire").
type DecodedSwap struct {
	Router        string       `json:"router"`
	Method        string       `json:"method"`
	RouterFamily  RouterFamily `json:"routerFamily"`
	TokenIn       string       `json:"tokenIn"`
	TokenOut      string       `json:"tokenOut"`
	AmountIn      string       `json:"amountIn"`
	AmountOut     string       `json:"amountOut"`
	AmountOutMin  string       `json:"amountOutMin"`
	AmountInMax   string       `json:"amountInMax"`
	Fee           string       `json:"fee"`
	Recipient     string       `json:"recipient"`
	Deadline      string       `json:"deadline"`
	PayerIsUser   bool         `json:"payerIsUser"`
}
