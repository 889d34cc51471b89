package swaptypes

import "time"

// PoolRecord caches a resolved pool for a (chainId, poolAddress) key.
// Readers treat a row with Exists=false as "no pool". The pool cache only
// writes rows with Exists=true, so absence is not memoized: a lookup for a
// pair with no pool asks the factory again every time.
type PoolRecord struct {
	ID           int64
	ChainID      int64
	PoolAddress  string
	Token0       string
	Token1       string
	Exists       bool
	RouterFamily RouterFamily
	Fee          string
}

// TokenRecord caches ERC-20 metadata for (chainId, tokenAddress).
type TokenRecord struct {
	ID           int64
	ChainID      int64
	TokenAddress string
	Name         string
	Symbol       string
	Decimals     uint8
}

// FactoryRecord caches the (factory, wrapped-native) pair a router family
// resolves to, for (chainId, router).
type FactoryRecord struct {
	ID                    int64
	ChainID               int64
	Router                string
	FactoryAddress        string
	WrappedNativeAddress  string
	RouterFamily          RouterFamily
}

// OpportunityStatus is the lifecycle state of a detected swap (spec §3).
type OpportunityStatus string

const (
	StatusPending  OpportunityStatus = "pending"
	StatusDetected OpportunityStatus = "detected"
	StatusExpired  OpportunityStatus = "expired"
)

// OpportunityMetadata is the free-form bag spec §3 describes: decimals, the
// original DecodedSwap, the human reason, and deadline bookkeeping.
type OpportunityMetadata struct {
	TokenInDecimals     uint8       `json:"tokenInDecimals"`
	TokenOutDecimals    uint8       `json:"tokenOutDecimals"`
	DecodedSwap         DecodedSwap `json:"decodedSwap"`
	Reason              string      `json:"reason"`
	PriceImpact         float64     `json:"priceImpact"`
	ExpectedProfit      string      `json:"expectedProfit,omitempty"`
	TimeToSubmitSeconds int64       `json:"timeToSubmitSeconds"`
	DeadlineTimestamp   int64       `json:"deadlineTimestamp"`
	IsExpired           bool        `json:"isExpired"`
}

// Opportunity is the persisted verdict for a unique (chainId, txHash).
type Opportunity struct {
	ID           int64
	ChainID      int64
	TxHash       string
	Router       string
	RouterFamily RouterFamily
	TokenIn      string
	TokenOut     string
	AmountIn     string
	AmountOut    string
	Fee          string
	Pool         string
	Method       string
	Recipient    string
	Deadline     string
	BlockNumber  *int64
	Status       OpportunityStatus
	Metadata     OpportunityMetadata
	DetectedAt   time.Time
	ProcessedAt  time.Time
}
