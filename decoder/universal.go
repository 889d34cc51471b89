package decoder

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/swaptypes"
)

// Universal-router command tags this system trades on (spec §4.3). Any tag
// not in this table (PERMIT2, WRAP_ETH, SWEEP, ...) is skipped silently —
// the command stream is a mini bytecode and most of it isn't a swap.
const (
	tagV3ExactIn  byte = 0x00
	tagV3ExactOut byte = 0x01
	tagV2ExactIn  byte = 0x08
	tagV2ExactOut byte = 0x09
)

// commandInputABI is keyed by command tag and holds the ABI argument list
// used to decode that tag's single `inputs[i]` entry. Kept as one lookup
// structure per spec §9 so a new opcode is a one-line addition. Each entry
// is expressed as a synthetic single-method ABI (reusing the same
// abi.JSON parser the rest of abibind uses) purely so the field list can be
// written as a JSON literal next to the tag it belongs to.
var commandInputABI = map[byte]abi.Arguments{
	tagV3ExactIn:  mustCommandArgs(`[{"name":"recipient","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"bytes"},{"name":"payerIsUser","type":"bool"}]`),
	tagV3ExactOut: mustCommandArgs(`[{"name":"recipient","type":"address"},{"name":"amountOut","type":"uint256"},{"name":"amountInMax","type":"uint256"},{"name":"path","type":"bytes"},{"name":"payerIsUser","type":"bool"}]`),
	tagV2ExactIn:  mustCommandArgs(`[{"name":"recipient","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"payerIsUser","type":"bool"}]`),
	tagV2ExactOut: mustCommandArgs(`[{"name":"recipient","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"amountInMax","type":"uint256"},{"name":"path","type":"address[]"},{"name":"payerIsUser","type":"bool"}]`),
}

func mustCommandArgs(jsonInputFields string) abi.Arguments {
	wrapped := `[{"name":"decode","type":"function","inputs":` + jsonInputFields + `}]`
	parsed, err := abi.JSON(strings.NewReader(wrapped))
	if err != nil {
		panic("decoder: invalid command input ABI: " + err.Error())
	}
	return parsed.Methods["decode"].Inputs
}

// DecodeUniversal parses execute(commands, inputs, deadline) and returns one
// DecodedSwap per recognized sub-action, in command order, each carrying
// the enclosing transaction's deadline. Unrecognized commands are skipped;
// an all-unrecognized command stream decodes to an empty (non-nil) slice
// per spec §8.
func DecodeUniversal(tx RawTx) ([]*swaptypes.DecodedSwap, error) {
	method, args, err := methodByID(abibind.UniversalRouter, tx.Data)
	if err != nil {
		return nil, nil
	}
	if method == nil || method.Name != "execute" {
		return nil, nil
	}

	commands, _ := args["commands"].([]byte)
	inputs, _ := args["inputs"].([][]byte)
	deadline := argBig(args, "deadline")

	out := make([]*swaptypes.DecodedSwap, 0, len(commands))
	for i, rawTag := range commands {
		tag := rawTag & 0x3f // top bits are flags (ALLOW_REVERT etc), not part of the opcode
		spec, known := commandInputABI[tag]
		if !known || i >= len(inputs) {
			continue
		}
		decoded, err := decodeCommand(tag, spec, inputs[i], tx.To, deadline)
		if err != nil || decoded == nil {
			continue
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodeCommand(tag byte, argsSpec abi.Arguments, input []byte, router string, deadline *big.Int) (*swaptypes.DecodedSwap, error) {
	vals, err := argsSpec.Unpack(input)
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{}, len(vals))
	for i, arg := range argsSpec {
		m[arg.Name] = vals[i]
	}

	recipient, _ := m["recipient"].(common.Address)
	payerIsUser, _ := m["payerIsUser"].(bool)

	switch tag {
	case tagV3ExactIn:
		path, _ := m["path"].([]byte)
		tokenIn, tokenOut, fee, werr := walkV3Path(path)
		if werr != nil {
			return nil, nil
		}
		amountIn, _ := m["amountIn"].(*big.Int)
		amountOutMin, _ := m["amountOutMin"].(*big.Int)
		return &swaptypes.DecodedSwap{
			Router: normalizeAddr(router), Method: swaptypes.MethodUniversalV3ExactIn, RouterFamily: swaptypes.FamilyV3,
			TokenIn: tokenIn, TokenOut: tokenOut, Fee: fee,
			AmountIn: bigStr(amountIn), AmountOutMin: bigStr(amountOutMin), AmountInMax: "0",
			Recipient: normalizeAddr(recipient.Hex()), Deadline: bigStr(deadline), PayerIsUser: payerIsUser,
		}, nil

	case tagV3ExactOut:
		path, _ := m["path"].([]byte)
		tokenIn, tokenOut, fee, werr := walkV3Path(path)
		if werr != nil {
			return nil, nil
		}
		amountOut, _ := m["amountOut"].(*big.Int)
		amountInMax, _ := m["amountInMax"].(*big.Int)
		return &swaptypes.DecodedSwap{
			Router: normalizeAddr(router), Method: swaptypes.MethodUniversalV3ExactOut, RouterFamily: swaptypes.FamilyV3,
			TokenIn: tokenIn, TokenOut: tokenOut, Fee: fee,
			AmountIn: "0", AmountOut: bigStr(amountOut), AmountInMax: bigStr(amountInMax),
			Recipient: normalizeAddr(recipient.Hex()), Deadline: bigStr(deadline), PayerIsUser: payerIsUser,
		}, nil

	case tagV2ExactIn:
		path, _ := m["path"].([]common.Address)
		if len(path) < 2 {
			return nil, nil
		}
		amountIn, _ := m["amountIn"].(*big.Int)
		amountOutMin, _ := m["amountOutMin"].(*big.Int)
		return &swaptypes.DecodedSwap{
			Router: normalizeAddr(router), Method: swaptypes.MethodUniversalV2ExactIn, RouterFamily: swaptypes.FamilyV2,
			TokenIn: normalizeAddr(path[0].Hex()), TokenOut: normalizeAddr(path[len(path)-1].Hex()), Fee: "0",
			AmountIn: bigStr(amountIn), AmountOutMin: bigStr(amountOutMin), AmountInMax: "0",
			Recipient: normalizeAddr(recipient.Hex()), Deadline: bigStr(deadline), PayerIsUser: payerIsUser,
		}, nil

	case tagV2ExactOut:
		path, _ := m["path"].([]common.Address)
		if len(path) < 2 {
			return nil, nil
		}
		amountIn, _ := m["amountIn"].(*big.Int)
		amountInMax, _ := m["amountInMax"].(*big.Int)
		return &swaptypes.DecodedSwap{
			Router: normalizeAddr(router), Method: swaptypes.MethodUniversalV2ExactOut, RouterFamily: swaptypes.FamilyV2,
			TokenIn: normalizeAddr(path[0].Hex()), TokenOut: normalizeAddr(path[len(path)-1].Hex()), Fee: "0",
			AmountIn: bigStr(amountIn), AmountInMax: bigStr(amountInMax),
			Recipient: normalizeAddr(recipient.Hex()), Deadline: bigStr(deadline), PayerIsUser: payerIsUser,
		}, nil

	default:
		return nil, nil
	}
}

