// Package bus implements the durable partitioned-topic boundary between the
// mempool tap and the opportunity evaluator (spec §4.7, §6), backed by
// github.com/twmb/franz-go.
package bus

import (
	"encoding/json"
	"strings"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/swaptypes"
)

// RawTxSummary is the envelope's optional raw-transaction bag (spec §6).
type RawTxSummary struct {
	Hash     string `json:"hash"`
	To       string `json:"to"`
	From     string `json:"from"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
}

// Envelope is the `transactions` topic's JSON wire shape (spec §6). Message
// key is always the txHash.
type Envelope struct {
	TxHash        string               `json:"txHash"`
	BlockNumber   *int64               `json:"blockNumber"`
	DecodedTx     swaptypes.DecodedSwap `json:"decodedTx"`
	RouterAddress string               `json:"routerAddress"`
	Timestamp     int64                `json:"timestamp"` // unix millis
	RawTx         *RawTxSummary        `json:"rawTx,omitempty"`
}

// Marshal serializes the envelope, lowercasing the router address and the
// tx hash per spec §9 ("BigInt on the wire" + the blanket lowercase-addresses
// invariant).
func (e *Envelope) Marshal() ([]byte, error) {
	e.RouterAddress = mcommon.NormalizeAddress(e.RouterAddress)
	e.TxHash = strings.ToLower(e.TxHash)
	return json.Marshal(e)
}

// UnmarshalEnvelope parses a `transactions` topic message.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
