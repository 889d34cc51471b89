package decoder

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/swaptypes"
)

var universalRouter = "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"

func packCommandInput(t *testing.T, tag byte, vals ...interface{}) []byte {
	t.Helper()
	spec, ok := commandInputABI[tag]
	require.True(t, ok)
	data, err := spec.Pack(vals...)
	require.NoError(t, err)
	return data
}

func TestDecodeUniversal_MultiAction(t *testing.T) {
	r := require.New(t)

	v3Path := append(append([]byte{}, common.HexToAddress(weth).Bytes()...), append([]byte{0x00, 0x0b, 0xb8}, common.HexToAddress(usdc).Bytes()...)...)
	v3Input := packCommandInput(t, tagV3ExactIn,
		common.HexToAddress(recipient), big.NewInt(1e18), big.NewInt(1), v3Path, true)

	v2Path := []common.Address{common.HexToAddress(weth), common.HexToAddress(usdc)}
	v2Input := packCommandInput(t, tagV2ExactIn,
		common.HexToAddress(recipient), big.NewInt(2e18), big.NewInt(2), v2Path, true)

	commands := []byte{tagV3ExactIn, tagV2ExactIn}
	inputs := [][]byte{v3Input, v2Input}
	deadline := big.NewInt(9999999999)

	data, err := abibind.UniversalRouter.Pack("execute", commands, inputs, deadline)
	r.NoError(err)

	swaps, err := DecodeUniversal(RawTx{To: universalRouter, Data: data})
	r.NoError(err)
	r.Len(swaps, 2)

	r.Equal(swaptypes.FamilyV3, swaps[0].RouterFamily)
	r.Equal(swaptypes.MethodUniversalV3ExactIn, swaps[0].Method)
	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", swaps[0].TokenIn)

	r.Equal(swaptypes.FamilyV2, swaps[1].RouterFamily)
	r.Equal(swaptypes.MethodUniversalV2ExactIn, swaps[1].Method)
	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", swaps[1].TokenIn)
	r.Equal("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", swaps[1].TokenOut)
}

func TestDecodeUniversal_AllUnrecognizedTagsYieldEmptyNonNilSlice(t *testing.T) {
	r := require.New(t)

	// 0x3f is not in commandInputABI; inputs content is irrelevant since the
	// tag is skipped before it is ever unpacked.
	commands := []byte{0x3f}
	inputs := [][]byte{{}}
	deadline := big.NewInt(9999999999)

	data, err := abibind.UniversalRouter.Pack("execute", commands, inputs, deadline)
	r.NoError(err)

	swaps, err := DecodeUniversal(RawTx{To: universalRouter, Data: data})
	r.NoError(err)
	r.NotNil(swaps)
	r.Empty(swaps)
}
