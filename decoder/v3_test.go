package decoder

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/shadowline/mevwatch/abibind"
	"github.com/shadowline/mevwatch/swaptypes"
)

var v3Router = "0xE592427A0AEce92De3Edee1F18E0157C05861564"

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

func TestDecodeV3_ExactInputSingle(t *testing.T) {
	r := require.New(t)

	params := exactInputSingleParams{
		TokenIn:           common.HexToAddress(weth),
		TokenOut:          common.HexToAddress(usdc),
		Fee:               big.NewInt(3000),
		Recipient:         common.HexToAddress(recipient),
		Deadline:          big.NewInt(9999999999),
		AmountIn:          new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)),
		AmountOutMinimum:  big.NewInt(1),
		SqrtPriceLimitX96: big.NewInt(0),
	}
	data, err := abibind.V3Router.Pack("exactInputSingle", params)
	r.NoError(err)

	swap, err := DecodeV3(RawTx{To: v3Router, Data: data})
	r.NoError(err)
	r.NotNil(swap)
	r.Equal(swaptypes.FamilyV3, swap.RouterFamily)
	r.Equal(swaptypes.MethodV3ExactInputSingle, swap.Method)
	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", swap.TokenIn)
	r.Equal("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", swap.TokenOut)
	r.Equal("3000", swap.Fee)
	r.Equal(params.AmountIn.String(), swap.AmountIn)
}

func TestWalkV3Path_MultiHop(t *testing.T) {
	r := require.New(t)

	feeA := []byte{0x00, 0x01, 0xf4} // 500
	feeB := []byte{0x00, 0x0b, 0xb8} // 3000
	var path []byte
	path = append(path, common.HexToAddress(weth).Bytes()...)
	path = append(path, feeA...)
	path = append(path, common.HexToAddress("0x000000000000000000000000000000000000bb").Bytes()...)
	path = append(path, feeB...)
	path = append(path, common.HexToAddress(usdc).Bytes()...)

	tokenIn, tokenOut, fee, err := walkV3Path(path)
	r.NoError(err)
	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", tokenIn)
	r.Equal("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", tokenOut)
	r.Equal("3000", fee)
}

func TestWalkV3Path_TooShort(t *testing.T) {
	_, _, _, err := walkV3Path([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}
