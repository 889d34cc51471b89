package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	r := require.New(t)

	r.Equal("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", NormalizeAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"))
	r.Equal("", NormalizeAddress("not-an-address"))
	r.Equal("", NormalizeAddress(""))
}

func TestAddressesEqual(t *testing.T) {
	r := require.New(t)

	a := "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	b := "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	r.True(AddressesEqual(a, b))
	r.False(AddressesEqual(a, ""))
	r.False(AddressesEqual("", ""))
}

func TestAllowList(t *testing.T) {
	r := require.New(t)

	al := NewAllowList([]string{
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"not-an-address",
	})
	r.True(al.Contains("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"))
	r.False(al.Contains("0x0000000000000000000000000000000000000001"))
	r.Len(al.Addresses(), 1)
}

func TestAllowListNilSafe(t *testing.T) {
	var al *AllowList
	require.False(t, al.Contains("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"))
}

func TestIsZeroAddress(t *testing.T) {
	r := require.New(t)

	r.True(IsZeroAddress("0x0000000000000000000000000000000000000000"))
	r.True(IsZeroAddress(""))
	r.True(IsZeroAddress("garbage"))
	r.False(IsZeroAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"))
}
