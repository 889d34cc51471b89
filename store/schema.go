package store

// Schema is the DDL this system expects to already exist (spec §1: DB
// schema migrations are explicitly out of scope for this component). It is
// kept here, unexecuted, purely as the documented contract the repositories
// below assume.
const Schema = `
CREATE TABLE IF NOT EXISTS tokens (
	id SERIAL PRIMARY KEY,
	chain_id BIGINT NOT NULL,
	token_address TEXT NOT NULL,
	name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	decimals SMALLINT NOT NULL,
	UNIQUE (chain_id, token_address)
);

CREATE TABLE IF NOT EXISTS factory_addresses (
	id SERIAL PRIMARY KEY,
	chain_id BIGINT NOT NULL,
	router TEXT NOT NULL,
	factory_address TEXT NOT NULL,
	wrapped_native_address TEXT NOT NULL,
	router_family TEXT NOT NULL,
	UNIQUE (chain_id, router)
);

CREATE TABLE IF NOT EXISTS pools (
	id SERIAL PRIMARY KEY,
	chain_id BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	token0 TEXT NOT NULL,
	token1 TEXT NOT NULL,
	exists_on_chain BOOLEAN NOT NULL,
	router_family TEXT NOT NULL,
	fee TEXT NOT NULL,
	UNIQUE (chain_id, pool_address)
);

CREATE TABLE IF NOT EXISTS opportunities (
	id SERIAL PRIMARY KEY,
	chain_id BIGINT NOT NULL,
	tx_hash TEXT NOT NULL,
	router TEXT NOT NULL,
	router_family TEXT NOT NULL,
	token_in TEXT NOT NULL,
	token_out TEXT NOT NULL,
	amount_in TEXT NOT NULL,
	amount_out TEXT NOT NULL,
	fee TEXT NOT NULL,
	pool TEXT NOT NULL,
	method TEXT NOT NULL,
	recipient TEXT NOT NULL,
	deadline TEXT NOT NULL,
	block_number BIGINT,
	status TEXT NOT NULL,
	metadata JSONB NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (chain_id, tx_hash)
);
`
