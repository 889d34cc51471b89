package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shadowline/mevwatch/swaptypes"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	r := require.New(t)

	env := &Envelope{
		TxHash:        "0xABCDEF0000000000000000000000000000000000000000000000000000001",
		RouterAddress: "0xD99D1C33F9FC3444F8101754ABC46C52416550D1",
		Timestamp:     1700000000000,
		DecodedTx: swaptypes.DecodedSwap{
			Router:       "0xd99d1c33f9fc3444f8101754abc46c52416550d1",
			RouterFamily: swaptypes.FamilyV2,
			TokenIn:      "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			TokenOut:     "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			AmountIn:     "10000000000000000000",
			AmountOutMin: "1000000000000000000",
			AmountInMax:  "0",
			Fee:          "0",
			Deadline:     "9999999999",
		},
		RawTx: &RawTxSummary{Hash: "0xabc", To: "0xdef", Value: "0", GasPrice: "1", GasLimit: "21000"},
	}

	payload, err := env.Marshal()
	r.NoError(err)

	// Marshal normalizes addresses in place.
	r.Equal("0xabcdef0000000000000000000000000000000000000000000000000000001", env.TxHash)
	r.Equal("0xd99d1c33f9fc3444f8101754abc46c52416550d1", env.RouterAddress)

	parsed, err := UnmarshalEnvelope(payload)
	r.NoError(err)
	r.Equal(env.TxHash, parsed.TxHash)
	r.Equal(env.RouterAddress, parsed.RouterAddress)
	r.Equal(env.Timestamp, parsed.Timestamp)
	r.Equal(env.DecodedTx, parsed.DecodedTx)
	r.Equal(env.RawTx, parsed.RawTx)
}

func TestUnmarshalEnvelope_Malformed(t *testing.T) {
	_, err := UnmarshalEnvelope([]byte("not json"))
	require.Error(t, err)
}
