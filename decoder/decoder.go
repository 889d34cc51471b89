// Package decoder implements the three pure, I/O-free decoders described in
// spec §4.3: V2, V3, and universal-router calldata become zero or more
// swaptypes.DecodedSwap records. No decoder ever returns an error for a
// calldata shape it simply doesn't recognize — that collapses to (nil, nil)
// or an empty slice, per spec §7 DecodeError / §9 "error-as-value".
package decoder

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	mcommon "github.com/shadowline/mevwatch/common"
)

// RawTx is the subset of a hydrated transaction every decoder needs. It is
// deliberately narrow so decoders stay pure functions of their input.
type RawTx struct {
	To    string
	Value string // decimal wei string; "0" if absent
	Data  []byte
}

func normalizeAddr(a string) string {
	return mcommon.NormalizeAddress(a)
}

// methodByID looks up the 4-byte selector at the front of data against a
// parsed ABI and returns the matched method plus its decoded arguments, or
// (nil, nil, nil) if the selector isn't one the ABI knows — the universal
// "not interesting" case every decoder must tolerate.
func methodByID(contractABI abi.ABI, data []byte) (*abi.Method, map[string]interface{}, error) {
	if len(data) < 4 {
		return nil, nil, nil
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, nil
	}
	args := make(map[string]interface{})
	if err := method.Inputs.UnpackIntoMap(args, data[4:]); err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

// tupleField reads a named field off an ABI-decoded tuple value (the
// anonymous struct go-ethereum's abi package builds via reflection for
// `tuple` inputs). Returns the zero Value if the tuple has no such field,
// which the typed accessors below treat as "absent".
func tupleField(tuple interface{}, name string) reflect.Value {
	rv := reflect.ValueOf(tuple)
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return rv.FieldByName(name)
}

func tupleAddress(tuple interface{}, name string) common.Address {
	v := tupleField(tuple, name)
	if v.IsValid() {
		if a, ok := v.Interface().(common.Address); ok {
			return a
		}
	}
	return common.Address{}
}

func tupleBigInt(tuple interface{}, name string) *big.Int {
	v := tupleField(tuple, name)
	if v.IsValid() {
		if b, ok := v.Interface().(*big.Int); ok && b != nil {
			return b
		}
	}
	return big.NewInt(0)
}

func tupleBytes(tuple interface{}, name string) []byte {
	v := tupleField(tuple, name)
	if v.IsValid() {
		if b, ok := v.Interface().([]byte); ok {
			return b
		}
	}
	return nil
}

func tupleBool(tuple interface{}, name string) bool {
	v := tupleField(tuple, name)
	if v.IsValid() {
		if b, ok := v.Interface().(bool); ok {
			return b
		}
	}
	return false
}

