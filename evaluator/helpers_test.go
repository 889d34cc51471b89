package evaluator

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeProfit_Positive(t *testing.T) {
	r := require.New(t)

	profit, ok := computeProfit(big.NewInt(120), "100")
	r.True(ok)
	r.Equal(big.NewInt(20), profit)
}

func TestComputeProfit_EqualIsNotOpportunity(t *testing.T) {
	r := require.New(t)

	profit, ok := computeProfit(big.NewInt(100), "100")
	r.False(ok)
	r.Equal(big.NewInt(0), profit)
}

func TestComputeProfit_Negative(t *testing.T) {
	profit, ok := computeProfit(big.NewInt(80), "100")
	require.False(t, ok)
	require.Nil(t, profit)
}

func TestComputeProfit_NilAmountOut(t *testing.T) {
	profit, ok := computeProfit(nil, "100")
	require.False(t, ok)
	require.Nil(t, profit)
}

func TestComputeProfit_UnparseableMin(t *testing.T) {
	profit, ok := computeProfit(big.NewInt(100), "not-a-number")
	require.False(t, ok)
	require.Nil(t, profit)
}

func TestEvaluateDeadline_Future(t *testing.T) {
	r := require.New(t)

	future := time.Now().Add(5 * time.Minute).Unix()
	ts, ttl, expired := evaluateDeadline(big.NewInt(future).String())
	r.Equal(future, ts)
	r.False(expired)
	r.Greater(ttl, int64(0))
}

func TestEvaluateDeadline_Past(t *testing.T) {
	r := require.New(t)

	past := time.Now().Add(-5 * time.Minute).Unix()
	ts, ttl, expired := evaluateDeadline(big.NewInt(past).String())
	r.Equal(past, ts)
	r.True(expired)
	r.Zero(ttl)
}

func TestEvaluateDeadline_Unparseable(t *testing.T) {
	ts, ttl, expired := evaluateDeadline("not-a-number")
	require.Zero(t, ts)
	require.Zero(t, ttl)
	require.True(t, expired)
}

func TestParseInt64(t *testing.T) {
	r := require.New(t)

	v, ok := parseInt64("12345")
	r.True(ok)
	r.Equal(int64(12345), v)

	_, ok = parseInt64("garbage")
	r.False(ok)
}
