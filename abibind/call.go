package abibind

import (
	"context"
	"fmt"
	"reflect"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/shadowline/mevwatch/chainclient"
)

// Call packs method(args...), eth_calls contractAddr through the pool, and
// unpacks the single named ABI method into out. out must be a pointer to a
// value compatible with the method's sole return type, or a *[]interface{}
// for multi-return methods.
func Call(ctx context.Context, pool *chainclient.Pool, contractABI abi.ABI, contractAddr string, method string, out interface{}, args ...interface{}) error {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("abibind: pack %s: %w", method, err)
	}
	to := common.HexToAddress(contractAddr)

	var result []byte
	callErr := pool.Call(ctx, func(ctx context.Context, cl *ethclient.Client) error {
		msg := ethereum.CallMsg{To: &to, Data: data}
		res, err := cl.CallContract(ctx, msg, nil)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if callErr != nil {
		return callErr
	}

	return unpackSingle(contractABI, method, result, out)
}

func unpackSingle(contractABI abi.ABI, method string, result []byte, out interface{}) error {
	vals, err := contractABI.Unpack(method, result)
	if err != nil {
		return fmt.Errorf("abibind: unpack %s: %w", method, err)
	}
	if len(vals) == 0 {
		return fmt.Errorf("abibind: %s returned no values", method)
	}
	if multi, ok := out.(*[]interface{}); ok {
		*multi = vals
		return nil
	}
	return assign(vals[0], out)
}

// assign copies src into the value out points to. No conversion is done:
// if the ABI-unpacked type is not assignable to out's element type an error
// is returned, so call sites pass an out of the exact unpacked type (e.g.
// *big.Int) or an interface{}.
func assign(src interface{}, out interface{}) error {
	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Ptr || ov.IsNil() {
		return fmt.Errorf("abibind: out must be a non-nil pointer")
	}
	sv := reflect.ValueOf(src)
	if !sv.Type().AssignableTo(ov.Elem().Type()) {
		return fmt.Errorf("abibind: cannot assign %s into %s", sv.Type(), ov.Elem().Type())
	}
	ov.Elem().Set(sv)
	return nil
}
