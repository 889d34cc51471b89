package decoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/swaptypes"
)

// DecodeV2 decodes a V2-family router transaction's calldata per the table
// in spec §4.3. wrappedNative is the router's WETH() address, needed to
// substitute the synthetic tokenIn/tokenOut for the ETH-in/ETH-out method
// variants. A nil return means "not a method we trade on", not an error.
func DecodeV2(tx RawTx, wrappedNative string) (*swaptypes.DecodedSwap, error) {
	method, args, err := methodByID(abibind.V2Router, tx.Data)
	if err != nil {
		return nil, nil
	}
	if method == nil {
		return nil, nil
	}

	switch method.Name {
	case "swapExactTokensForTokens", "swapExactTokensForTokensSupportingFeeOnTransferTokens":
		return pathSwap(args, swaptypes.MethodSwapExactTokensForTokens, argBig(args, "amountIn"), zero(), tx.To, wrappedNative, ethNone), nil

	case "swapTokensForExactTokens":
		return pathSwap(args, swaptypes.MethodSwapTokensForExactTokens, zero(), argBig(args, "amountInMax"), tx.To, wrappedNative, ethNone), nil

	case "swapExactETHForTokens", "swapExactETHForTokensSupportingFeeOnTransferTokens":
		amountIn := decimalOrZero(tx.Value)
		return pathSwap(args, swaptypes.MethodSwapExactETHForTokens, amountIn, zero(), tx.To, wrappedNative, ethIn), nil

	case "swapExactTokensForETH", "swapExactTokensForETHSupportingFeeOnTransferTokens":
		return pathSwap(args, swaptypes.MethodSwapExactTokensForETH, argBig(args, "amountIn"), zero(), tx.To, wrappedNative, ethOut), nil

	case "swapETHForExactTokens":
		amountIn := decimalOrZero(tx.Value)
		return pathSwap(args, swaptypes.MethodSwapETHForExactTokens, amountIn, zero(), tx.To, wrappedNative, ethIn), nil

	case "swapTokensForExactETH":
		amountInMax := argBig(args, "amountInMax")
		return pathSwap(args, swaptypes.MethodSwapTokensForExactETH, amountInMax, amountInMax, tx.To, wrappedNative, ethOut), nil

	default:
		return nil, nil
	}
}

// ethSubstitution tells pathSwap which leg of a path, if any, must be forced
// to the router's wrapped-native address rather than trusted verbatim from
// calldata (spec §3: "for ETH-in/ETH-out methods, substituted with the
// wrapped-native address").
type ethSubstitution int

const (
	ethNone ethSubstitution = iota
	ethIn
	ethOut
)

// pathSwap builds a DecodedSwap from a decoded `path []address` argument,
// taking path[0] as tokenIn and path[len-1] as tokenOut.
func pathSwap(args map[string]interface{}, methodTag string, amountIn, amountInMax *big.Int, router, wrappedNative string, sub ethSubstitution) *swaptypes.DecodedSwap {
	path, ok := args["path"].([]common.Address)
	if !ok || len(path) < 2 {
		return nil
	}
	tokenIn := normalizeAddr(path[0].Hex())
	tokenOut := normalizeAddr(path[len(path)-1].Hex())
	switch sub {
	case ethIn:
		tokenIn = normalizeAddr(wrappedNative)
	case ethOut:
		tokenOut = normalizeAddr(wrappedNative)
	}

	return &swaptypes.DecodedSwap{
		Router:       normalizeAddr(router),
		Method:       methodTag,
		RouterFamily: swaptypes.FamilyV2,
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountIn:     bigStr(amountIn),
		AmountOut:    decStr(args, "amountOut"),
		AmountOutMin: decStr(args, "amountOutMin"),
		AmountInMax:  bigStr(amountInMax),
		Fee:          "0",
		Recipient:    normalizeAddr(addrStr(args, "to")),
		Deadline:     decStr(args, "deadline"),
	}
}

func zero() *big.Int { return big.NewInt(0) }

func bigStr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func decimalOrZero(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func argBig(args map[string]interface{}, key string) *big.Int {
	v, ok := args[key].(*big.Int)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func decStr(args map[string]interface{}, key string) string {
	return bigStr(argBig(args, key))
}

func addrStr(args map[string]interface{}, key string) string {
	a, ok := args[key].(common.Address)
	if !ok {
		return ""
	}
	return a.Hex()
}
