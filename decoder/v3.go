package decoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/swaptypes"
)

// v3PathStride is the byte width of one (fee, token) hop in a V3 packed
// path: 20-byte address + 3-byte fee, repeated, terminated by a final
// 20-byte token (spec §4.3).
const v3PathStride = 23

// DecodeV3 decodes exactInputSingle/exactOutputSingle/exactInput/exactOutput
// calldata into a DecodedSwap, or returns nil for anything else.
func DecodeV3(tx RawTx) (*swaptypes.DecodedSwap, error) {
	method, args, err := methodByID(abibind.V3Router, tx.Data)
	if err != nil {
		return nil, nil
	}
	if method == nil {
		return nil, nil
	}
	params, ok := args["params"]
	if !ok {
		return nil, nil
	}

	switch method.Name {
	case swaptypes.MethodV3ExactInputSingle:
		return singleSwap(tx, swaptypes.MethodV3ExactInputSingle,
			tupleAddress(params, "TokenIn"), tupleAddress(params, "TokenOut"), tupleBigInt(params, "Fee"),
			tupleBigInt(params, "AmountIn"), zero(), bigStr(tupleBigInt(params, "AmountOutMinimum")),
			tupleAddress(params, "Recipient"), tupleBigInt(params, "Deadline")), nil

	case swaptypes.MethodV3ExactOutputSingle:
		return singleSwap(tx, swaptypes.MethodV3ExactOutputSingle,
			tupleAddress(params, "TokenIn"), tupleAddress(params, "TokenOut"), tupleBigInt(params, "Fee"),
			zero(), tupleBigInt(params, "AmountInMaximum"), bigStr(tupleBigInt(params, "AmountOut")),
			tupleAddress(params, "Recipient"), tupleBigInt(params, "Deadline")), nil

	case swaptypes.MethodV3ExactInput:
		tokenIn, tokenOut, fee, walkErr := walkV3Path(tupleBytes(params, "Path"))
		if walkErr != nil {
			return nil, nil
		}
		return &swaptypes.DecodedSwap{
			Router:       normalizeAddr(tx.To),
			Method:       swaptypes.MethodV3ExactInput,
			RouterFamily: swaptypes.FamilyV3,
			TokenIn:      tokenIn,
			TokenOut:     tokenOut,
			AmountIn:     bigStr(tupleBigInt(params, "AmountIn")),
			AmountOutMin: bigStr(tupleBigInt(params, "AmountOutMinimum")),
			AmountInMax:  "0",
			Fee:          fee,
			Recipient:    normalizeAddr(tupleAddress(params, "Recipient").Hex()),
			Deadline:     bigStr(tupleBigInt(params, "Deadline")),
		}, nil

	case swaptypes.MethodV3ExactOutput:
		tokenIn, tokenOut, fee, walkErr := walkV3Path(tupleBytes(params, "Path"))
		if walkErr != nil {
			return nil, nil
		}
		return &swaptypes.DecodedSwap{
			Router:       normalizeAddr(tx.To),
			Method:       swaptypes.MethodV3ExactOutput,
			RouterFamily: swaptypes.FamilyV3,
			TokenIn:      tokenIn,
			TokenOut:     tokenOut,
			AmountIn:     "0",
			AmountOut:    bigStr(tupleBigInt(params, "AmountOut")),
			AmountInMax:  bigStr(tupleBigInt(params, "AmountInMaximum")),
			Fee:          fee,
			Recipient:    normalizeAddr(tupleAddress(params, "Recipient").Hex()),
			Deadline:     bigStr(tupleBigInt(params, "Deadline")),
		}, nil

	default:
		return nil, nil
	}
}

func singleSwap(tx RawTx, methodTag string, tokenIn, tokenOut common.Address, fee, amountIn, amountInMax *big.Int, amountOutMin string, recipient common.Address, deadline *big.Int) *swaptypes.DecodedSwap {
	return &swaptypes.DecodedSwap{
		Router:       normalizeAddr(tx.To),
		Method:       methodTag,
		RouterFamily: swaptypes.FamilyV3,
		TokenIn:      normalizeAddr(tokenIn.Hex()),
		TokenOut:     normalizeAddr(tokenOut.Hex()),
		AmountIn:     bigStr(amountIn),
		AmountOutMin: amountOutMin,
		AmountInMax:  bigStr(amountInMax),
		Fee:          bigStr(fee),
		Recipient:    normalizeAddr(recipient.Hex()),
		Deadline:     bigStr(deadline),
	}
}

// walkV3Path extracts the first token, last token, and last fee tier from a
// packed V3 path by striding 23 bytes at a time (spec §4.3).
func walkV3Path(path []byte) (tokenIn, tokenOut, fee string, err error) {
	if len(path) < 20+v3PathStride || (len(path)-20)%v3PathStride != 0 {
		return "", "", "", errShortPath
	}
	first := common.BytesToAddress(path[0:20])

	var last common.Address
	var lastFee *big.Int
	for offset := 20; offset+v3PathStride <= len(path); offset += v3PathStride {
		lastFee = new(big.Int).SetBytes(path[offset : offset+3])
		last = common.BytesToAddress(path[offset+3 : offset+23])
	}
	return normalizeAddr(first.Hex()), normalizeAddr(last.Hex()), lastFee.String(), nil
}

var errShortPath = &pathError{"v3 packed path too short or misaligned"}

type pathError struct{ msg string }

func (e *pathError) Error() string { return e.msg }
