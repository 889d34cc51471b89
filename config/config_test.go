package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_MissingRPCURL(t *testing.T) {
	cfg := &Config{WSSRPCURL: "ws://x", DatabaseURL: "postgres://x", KafkaBrokers: []string{"b:9092"}}
	err := cfg.validate()
	require.Error(t, err)
	require.Equal(t, "HTTP_RPC_URL", err.(*ErrConfig).Field)
}

func TestValidate_MissingWSSURL(t *testing.T) {
	cfg := &Config{HTTPRPCURLs: []string{"http://x"}, DatabaseURL: "postgres://x", KafkaBrokers: []string{"b:9092"}}
	err := cfg.validate()
	require.Error(t, err)
	require.Equal(t, "WSS_RPC_URL", err.(*ErrConfig).Field)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{HTTPRPCURLs: []string{"http://x"}, WSSRPCURL: "ws://x", KafkaBrokers: []string{"b:9092"}}
	err := cfg.validate()
	require.Error(t, err)
	require.Equal(t, "DATABASE_URL", err.(*ErrConfig).Field)
}

func TestValidate_MissingKafkaBrokers(t *testing.T) {
	cfg := &Config{HTTPRPCURLs: []string{"http://x"}, WSSRPCURL: "ws://x", DatabaseURL: "postgres://x"}
	err := cfg.validate()
	require.Error(t, err)
	require.Equal(t, "KAFKA_BROKERS", err.(*ErrConfig).Field)
}

func TestValidate_OK(t *testing.T) {
	cfg := &Config{
		HTTPRPCURLs:  []string{"http://x"},
		WSSRPCURL:    "ws://x",
		DatabaseURL:  "postgres://x",
		KafkaBrokers: []string{"b:9092"},
	}
	require.NoError(t, cfg.validate())
}

func TestLoad_RequiresEnv(t *testing.T) {
	t.Setenv("HTTP_RPC_URL", "http://localhost:8545")
	t.Setenv("WSS_RPC_URL", "ws://localhost:8546")
	t.Setenv("DATABASE_URL", "postgres://localhost/mevwatch")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("CHAIN_ID", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, int64(1), cfg.ChainID)
	require.Equal(t, []string{"http://localhost:8545"}, cfg.HTTPRPCURLs)
	require.True(t, cfg.UniversalRouters.Contains("0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"))
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("HTTP_RPC_URL", "http://localhost:8545")
	t.Setenv("WSS_RPC_URL", "ws://localhost:8546")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")

	_, err := Load()
	require.Error(t, err)
	require.Equal(t, "DATABASE_URL", err.(*ErrConfig).Field)
}

func TestLoad_BadChainID(t *testing.T) {
	t.Setenv("HTTP_RPC_URL", "http://localhost:8545")
	t.Setenv("WSS_RPC_URL", "ws://localhost:8546")
	t.Setenv("DATABASE_URL", "postgres://localhost/mevwatch")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("CHAIN_ID", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	require.Equal(t, "CHAIN_ID", err.(*ErrConfig).Field)
}
