// Package config loads and validates the process environment per spec §6.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	mcommon "github.com/shadowline/mevwatch/common"
)

// Default canonical router allow-lists. Operators may extend the universal
// router list with UNIVERSAL_ROUTER; the V2/V3 lists are code-owned per
// spec §6 ("canonical list in code").
var (
	defaultUniversalRouters = []string{
		"0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD",
		"0xEf1c6E67703c7BD7107eed8303Fbe6EC2554BF6B",
	}
	defaultV2Routers = []string{
		"0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
	}
	defaultV3Routers = []string{
		"0xE592427A0AEce92De3Edee1F18E0157C05861564",
	}
	defaultV3QuoterAddress    = "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB2"
	defaultWrappedNativeAddr  = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

// Config is the process-wide validated configuration.
type Config struct {
	HTTPRPCURLs []string
	WSSRPCURL   string

	ChainID int64

	UniversalRouters  *mcommon.AllowList
	V2Routers         *mcommon.AllowList
	V3Routers         *mcommon.AllowList
	CanonicalV2Router string
	CanonicalV3Router string
	V3QuoterAddress   string
	WrappedNative     string

	KafkaBrokers          []string
	KafkaClientID         string
	KafkaGroupID          string
	TransactionsTopic     string
	OpportunitiesTopic    string

	DatabaseURL string

	HTTPListenAddr string

	RPCCallTimeout  time.Duration
	PoolLookupTimeout time.Duration
	RPCMaxRetries   int
	RPCBaseBackoff  time.Duration

	TapWarmup        time.Duration
	MessageMaxAge    time.Duration
	CleanupInterval  time.Duration
	MinPriceImpact   float64
}

// ErrConfig wraps any validation failure into the single fatal ConfigError
// class described in spec §7.
type ErrConfig struct {
	Field string
	Msg   string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// Load reads .env (if present, ignored if absent) then the process
// environment, and returns a validated Config or a *ErrConfig.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPRPCURLs:        splitCSV(os.Getenv("HTTP_RPC_URL")),
		WSSRPCURL:          os.Getenv("WSS_RPC_URL"),
		KafkaBrokers:       splitCSV(getenvDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaClientID:      getenvDefault("KAFKA_CLIENT_ID", "mevwatch"),
		KafkaGroupID:       getenvDefault("KAFKA_GROUP_ID", "mevwatch-consumers"),
		TransactionsTopic:  getenvDefault("KAFKA_TRANSACTIONS_TOPIC", "transactions"),
		OpportunitiesTopic: getenvDefault("KAFKA_OPPORTUNITIES_TOPIC", "opportunities"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		HTTPListenAddr:     getenvDefault("HTTP_LISTEN_ADDR", ":8080"),

		RPCCallTimeout:    10 * time.Second,
		PoolLookupTimeout: 15 * time.Second,
		RPCMaxRetries:     3,
		RPCBaseBackoff:    500 * time.Millisecond,

		TapWarmup:       1 * time.Second,
		MessageMaxAge:   10 * time.Minute,
		CleanupInterval: 60 * time.Minute,
		MinPriceImpact:  0.005,
	}

	chainID, err := strconv.ParseInt(getenvDefault("CHAIN_ID", "1"), 10, 64)
	if err != nil {
		return nil, &ErrConfig{Field: "CHAIN_ID", Msg: err.Error()}
	}
	cfg.ChainID = chainID

	universal := append([]string{}, defaultUniversalRouters...)
	if extra := os.Getenv("UNIVERSAL_ROUTER"); extra != "" {
		universal = append(universal, splitCSV(extra)...)
	}
	cfg.UniversalRouters = mcommon.NewAllowList(universal)
	cfg.V2Routers = mcommon.NewAllowList(defaultV2Routers)
	cfg.V3Routers = mcommon.NewAllowList(defaultV3Routers)
	cfg.CanonicalV2Router = getenvDefault("CANONICAL_V2_ROUTER", defaultV2Routers[0])
	cfg.CanonicalV3Router = getenvDefault("CANONICAL_V3_ROUTER", defaultV3Routers[0])
	cfg.V3QuoterAddress = getenvDefault("V3_QUOTER_ADDRESS", defaultV3QuoterAddress)
	cfg.WrappedNative = mcommon.NormalizeAddress(getenvDefault("WRAPPED_NATIVE_ADDRESS", defaultWrappedNativeAddr))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.HTTPRPCURLs) == 0 {
		return &ErrConfig{Field: "HTTP_RPC_URL", Msg: "at least one RPC URL is required"}
	}
	if c.WSSRPCURL == "" {
		return &ErrConfig{Field: "WSS_RPC_URL", Msg: "required"}
	}
	if c.DatabaseURL == "" {
		return &ErrConfig{Field: "DATABASE_URL", Msg: "required"}
	}
	if len(c.KafkaBrokers) == 0 {
		return &ErrConfig{Field: "KAFKA_BROKERS", Msg: "at least one broker is required"}
	}
	return nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
