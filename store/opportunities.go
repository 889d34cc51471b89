package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/swaptypes"
)

// OpportunityRepo persists verdicts per spec §3/§4.7 and backs the cleanup
// loop's three deletion passes (spec §4.8).
type OpportunityRepo struct {
	db *DB
}

func NewOpportunityRepo(db *DB) *OpportunityRepo { return &OpportunityRepo{db: db} }

// Upsert writes an Opportunity keyed on (chain_id, tx_hash); re-observation
// of the same tx overwrites the previous verdict (spec §3 invariant).
func (r *OpportunityRepo) Upsert(ctx context.Context, o *swaptypes.Opportunity) error {
	o.Router = mcommon.NormalizeAddress(o.Router)
	o.TokenIn = mcommon.NormalizeAddress(o.TokenIn)
	o.TokenOut = mcommon.NormalizeAddress(o.TokenOut)
	o.Pool = mcommon.NormalizeAddress(o.Pool)
	o.Recipient = mcommon.NormalizeAddress(o.Recipient)
	o.TxHash = strings.ToLower(o.TxHash)

	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO opportunities (
			chain_id, tx_hash, router, router_family, token_in, token_out,
			amount_in, amount_out, fee, pool, method, recipient, deadline,
			block_number, status, metadata, processed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now())
		ON CONFLICT (chain_id, tx_hash) DO UPDATE SET
			router = EXCLUDED.router, router_family = EXCLUDED.router_family,
			token_in = EXCLUDED.token_in, token_out = EXCLUDED.token_out,
			amount_in = EXCLUDED.amount_in, amount_out = EXCLUDED.amount_out,
			fee = EXCLUDED.fee, pool = EXCLUDED.pool, method = EXCLUDED.method,
			recipient = EXCLUDED.recipient, deadline = EXCLUDED.deadline,
			block_number = EXCLUDED.block_number, status = EXCLUDED.status,
			metadata = EXCLUDED.metadata, processed_at = now()`,
		o.ChainID, o.TxHash, o.Router, string(o.RouterFamily), o.TokenIn, o.TokenOut,
		o.AmountIn, o.AmountOut, o.Fee, o.Pool, o.Method, o.Recipient, o.Deadline,
		o.BlockNumber, string(o.Status), metadata)
	return err
}

// Get fetches a single opportunity by its unique key, for the read-only
// HTTP surface's detail view.
func (r *OpportunityRepo) Get(ctx context.Context, chainID int64, txHash string) (*swaptypes.Opportunity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, chain_id, tx_hash, router, router_family, token_in, token_out,
			amount_in, amount_out, fee, pool, method, recipient, deadline,
			block_number, status, metadata, detected_at, processed_at
		FROM opportunities WHERE chain_id = $1 AND tx_hash = $2`, chainID, strings.ToLower(txHash))
	o, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// ListDetected returns the HTTP-facing opportunity feed per spec §1's
// read-only surface, newest first, capped at limit.
func (r *OpportunityRepo) ListDetected(ctx context.Context, chainID int64, limit int) ([]*swaptypes.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chain_id, tx_hash, router, router_family, token_in, token_out,
			amount_in, amount_out, fee, pool, method, recipient, deadline,
			block_number, status, metadata, detected_at, processed_at
		FROM opportunities WHERE chain_id = $1 AND status = 'detected'
		ORDER BY detected_at DESC LIMIT $2`, chainID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*swaptypes.Opportunity
	for rows.Next() {
		o, err := scanOpportunityRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteByStatus implements cleanup passes 1 and 2 (spec §4.8): unconditional
// bulk deletion of every row in the given status, returning the row count.
func (r *OpportunityRepo) DeleteByStatus(ctx context.Context, status swaptypes.OpportunityStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM opportunities WHERE status = $1`, string(status))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredDetected implements the first half of cleanup pass 3 (spec
// §4.8): detected rows whose metadata.isExpired is true.
func (r *OpportunityRepo) DeleteExpiredDetected(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM opportunities
		WHERE status = 'detected' AND (metadata->>'isExpired')::boolean = true`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RemainingDetected fetches the detected rows cleanup needs to inspect
// in-process for the deadlineTimestamp second pass (spec §4.8: "a second
// pass is required because JSON-numeric comparison in the store is
// unreliable").
func (r *OpportunityRepo) RemainingDetected(ctx context.Context) ([]*swaptypes.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chain_id, tx_hash, router, router_family, token_in, token_out,
			amount_in, amount_out, fee, pool, method, recipient, deadline,
			block_number, status, metadata, detected_at, processed_at
		FROM opportunities WHERE status = 'detected'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*swaptypes.Opportunity
	for rows.Next() {
		o, err := scanOpportunityRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteByIDs deletes specific rows by primary key, used for the computed
// deadline-expiry pass (spec §4.8).
func (r *OpportunityRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOpportunity(row *sql.Row) (*swaptypes.Opportunity, error) {
	return scanOpportunityRows(row)
}

func scanOpportunityRows(row rowScanner) (*swaptypes.Opportunity, error) {
	var o swaptypes.Opportunity
	var family, status string
	var metadataRaw []byte
	var detectedAt, processedAt time.Time
	var blockNumber sql.NullInt64

	err := row.Scan(&o.ID, &o.ChainID, &o.TxHash, &o.Router, &family, &o.TokenIn, &o.TokenOut,
		&o.AmountIn, &o.AmountOut, &o.Fee, &o.Pool, &o.Method, &o.Recipient, &o.Deadline,
		&blockNumber, &status, &metadataRaw, &detectedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	o.RouterFamily = swaptypes.RouterFamily(family)
	o.Status = swaptypes.OpportunityStatus(status)
	o.DetectedAt = detectedAt
	o.ProcessedAt = processedAt
	if blockNumber.Valid {
		o.BlockNumber = &blockNumber.Int64
	}
	if err := json.Unmarshal(metadataRaw, &o.Metadata); err != nil {
		return nil, err
	}
	return &o, nil
}
