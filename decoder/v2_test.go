package decoder

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/swaptypes"
)

var (
	v2Router  = "0xd99d1c33f9fc3444f8101754abc46c52416550d1"
	weth      = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	usdc      = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	recipient = "0x000000000000000000000000000000000000aa"
)

func pack(t *testing.T, method string, args ...interface{}) []byte {
	t.Helper()
	data, err := abibind.V2Router.Pack(method, args...)
	require.NoError(t, err)
	return data
}

func TestDecodeV2_SwapExactTokensForTokens(t *testing.T) {
	r := require.New(t)

	path := []common.Address{common.HexToAddress(weth), common.HexToAddress(usdc)}
	amountIn := new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	amountOutMin := new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))
	deadline := big.NewInt(9999999999)

	data := pack(t, "swapExactTokensForTokens", amountIn, amountOutMin, path, common.HexToAddress(recipient), deadline)
	swap, err := DecodeV2(RawTx{To: v2Router, Value: "0", Data: data}, weth)
	r.NoError(err)
	r.NotNil(swap)

	r.Equal(swaptypes.FamilyV2, swap.RouterFamily)
	r.Equal(swaptypes.MethodSwapExactTokensForTokens, swap.Method)
	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", swap.TokenIn)
	r.Equal("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", swap.TokenOut)
	r.Equal(amountIn.String(), swap.AmountIn)
	r.Equal("0", swap.AmountInMax)
	r.Equal("0", swap.Fee)
}

func TestDecodeV2_SwapExactTokensForTokens_NonWETHPathNotRewritten(t *testing.T) {
	r := require.New(t)

	dai := "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	path := []common.Address{common.HexToAddress(usdc), common.HexToAddress(dai)}
	amountIn := new(big.Int).Mul(big.NewInt(10), big.NewInt(1e6))
	amountOutMin := new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))
	deadline := big.NewInt(9999999999)

	data := pack(t, "swapExactTokensForTokens", amountIn, amountOutMin, path, common.HexToAddress(recipient), deadline)
	swap, err := DecodeV2(RawTx{To: v2Router, Value: "0", Data: data}, weth)
	r.NoError(err)
	r.NotNil(swap)

	// Neither leg of a token-to-token swap is the wrapped-native address;
	// tokenIn must come from path[0] verbatim, not be rewritten to weth.
	r.Equal("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", swap.TokenIn)
	r.Equal(normalizeAddr(dai), swap.TokenOut)
}

func TestDecodeV2_SwapTokensForExactTokens(t *testing.T) {
	r := require.New(t)

	path := []common.Address{common.HexToAddress(weth), common.HexToAddress(usdc)}
	amountOut := new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))
	amountInMax := new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18))
	deadline := big.NewInt(9999999999)

	data := pack(t, "swapTokensForExactTokens", amountOut, amountInMax, path, common.HexToAddress(recipient), deadline)
	swap, err := DecodeV2(RawTx{To: v2Router, Value: "0", Data: data}, weth)
	r.NoError(err)
	r.NotNil(swap)

	r.Equal("0", swap.AmountIn)
	r.Equal(amountInMax.String(), swap.AmountInMax)
}

func TestDecodeV2_SwapExactETHForTokens_UsesTxValue(t *testing.T) {
	r := require.New(t)

	path := []common.Address{common.HexToAddress(weth), common.HexToAddress(usdc)}
	amountOutMin := big.NewInt(1)
	deadline := big.NewInt(9999999999)

	data := pack(t, "swapExactETHForTokens", amountOutMin, path, common.HexToAddress(recipient), deadline)
	txValue := new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18))
	swap, err := DecodeV2(RawTx{To: v2Router, Value: txValue.String(), Data: data}, weth)
	r.NoError(err)
	r.NotNil(swap)
	r.Equal(txValue.String(), swap.AmountIn)
	// ETH-in: tokenIn forced to wrapped native regardless of path[0].
	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", swap.TokenIn)
}

func TestDecodeV2_UnrecognizedSelector(t *testing.T) {
	r := require.New(t)
	swap, err := DecodeV2(RawTx{To: v2Router, Value: "0", Data: []byte{0xde, 0xad, 0xbe, 0xef}}, weth)
	r.NoError(err)
	r.Nil(swap)
}

func TestDecodeV2_ShortCalldata(t *testing.T) {
	r := require.New(t)
	swap, err := DecodeV2(RawTx{To: v2Router, Value: "0", Data: []byte{0x01, 0x02}}, weth)
	r.NoError(err)
	r.Nil(swap)
}
