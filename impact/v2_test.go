package impact

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeV2_ZeroAmountIn(t *testing.T) {
	result := ComputeV2(big.NewInt(0), big.NewInt(1000), big.NewInt(2000), 0, 0)
	require.Equal(t, big.NewInt(0), result.AmountOut)
	require.Zero(t, result.ImpactPct)
}

func TestComputeV2_ConstantProduct(t *testing.T) {
	r := require.New(t)

	result := ComputeV2(big.NewInt(10), big.NewInt(1000), big.NewInt(2000), 0, 0)
	r.Equal(big.NewInt(19), result.AmountOut)
	r.InDelta(0.019307, result.ImpactPct, 0.0001)
}

func TestComputeV2_NilAmountIn(t *testing.T) {
	result := ComputeV2(nil, big.NewInt(1000), big.NewInt(2000), 0, 0)
	require.Equal(t, big.NewInt(0), result.AmountOut)
	require.Zero(t, result.ImpactPct)
}
