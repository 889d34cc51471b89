// Package mempool implements the tap described in spec §4.6: subscribe to
// pending transaction hashes, hydrate each through the RPC pool, route by
// router allow-list to the matching decoder, and publish onto the bus.
package mempool

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/shadowline/mevwatch/bus"
	"github.com/shadowline/mevwatch/chainclient"
	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/config"
	"github.com/shadowline/mevwatch/decoder"
	"github.com/shadowline/mevwatch/metrics"
	"github.com/shadowline/mevwatch/swaptypes"
)

var log = mcommon.NewLogger("mempool")

// Tap owns the long-lived pending-transaction subscription.
type Tap struct {
	cfg       *config.Config
	rpcPool   *chainclient.Pool
	producer  *bus.Producer
	startedAt time.Time
}

func New(cfg *config.Config, rpcPool *chainclient.Pool, producer *bus.Producer) *Tap {
	return &Tap{cfg: cfg, rpcPool: rpcPool, producer: producer}
}

// Run subscribes to newPendingTransactions and handles hashes until ctx is
// cancelled. Each hash is handled independently and concurrently (spec §5:
// "ordering across hashes is not preserved").
func (t *Tap) Run(ctx context.Context) error {
	t.startedAt = time.Now()

	rc, ec, err := chainclient.DialPendingSubscriber(ctx, t.cfg.WSSRPCURL)
	if err != nil {
		return err
	}
	defer rc.Close()
	defer ec.Close()

	hashes := make(chan common.Hash, 256)
	sub, err := rc.EthSubscribe(ctx, hashes, "newPendingTransactions")
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case hash := <-hashes:
			go t.handle(ctx, hash)
		}
	}
}

func (t *Tap) handle(ctx context.Context, hash common.Hash) {
	// Filter: suppress the reconnection backlog (spec §4.6 step 3).
	if time.Since(t.startedAt) < t.cfg.TapWarmup {
		return
	}

	tx, isPending, err := t.hydrate(ctx, hash)
	if err != nil {
		log.Warn("hydrate failed, dropping", "hash", hash.Hex(), "err", err)
		return
	}
	if !isPending {
		// Already mined by the time we hydrated it (spec §4.6 step 2).
		return
	}
	if tx.To() == nil {
		return // contract creation, never a router call
	}

	to := mcommon.NormalizeAddress(tx.To().Hex())
	raw := decoder.RawTx{To: to, Value: tx.Value().String(), Data: tx.Data()}

	var swaps []*swaptypes.DecodedSwap
	var family string
	switch {
	case t.cfg.UniversalRouters.Contains(to):
		family = "universal"
		decoded, err := decoder.DecodeUniversal(raw)
		if err != nil {
			metrics.DecodeErrors.WithLabelValues(family).Inc()
			return
		}
		swaps = decoded
	case t.cfg.V2Routers.Contains(to):
		family = "v2"
		decoded, err := decoder.DecodeV2(raw, t.cfg.WrappedNative)
		if err != nil {
			metrics.DecodeErrors.WithLabelValues(family).Inc()
			return
		}
		if decoded != nil {
			swaps = []*swaptypes.DecodedSwap{decoded}
		}
	case t.cfg.V3Routers.Contains(to):
		family = "v3"
		decoded, err := decoder.DecodeV3(raw)
		if err != nil {
			metrics.DecodeErrors.WithLabelValues(family).Inc()
			return
		}
		if decoded != nil {
			swaps = []*swaptypes.DecodedSwap{decoded}
		}
	default:
		return // not a configured router (spec §4.6 step 4)
	}
	if len(swaps) > 0 {
		metrics.TransactionsDecoded.WithLabelValues(family).Inc()
	}

	for _, swap := range swaps {
		env := &bus.Envelope{
			TxHash:        hash.Hex(),
			BlockNumber:   nil,
			DecodedTx:     *swap,
			RouterAddress: to,
			Timestamp:     time.Now().UnixMilli(),
			RawTx: &bus.RawTxSummary{
				Hash:     hash.Hex(),
				To:       to,
				Value:    tx.Value().String(),
				GasPrice: gasPriceStr(tx),
				GasLimit: big.NewInt(0).SetUint64(tx.Gas()).String(),
			},
		}
		if err := t.producer.Publish(ctx, env); err != nil {
			log.Warn("publish failed", "hash", hash.Hex(), "err", err)
		}
	}
}

// hydrate fetches the transaction through the HTTP provider pool, not the
// WebSocket connection the subscription arrived on, so it gets the §4.1
// retry policy (random endpoint, bounded exponential backoff on timeout-class
// errors) instead of a single best-effort call.
func (t *Tap) hydrate(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	var (
		tx        *types.Transaction
		isPending bool
	)
	err := t.rpcPool.Call(ctx, func(callCtx context.Context, cl *ethclient.Client) error {
		var err error
		tx, isPending, err = cl.TransactionByHash(callCtx, hash)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return tx, isPending, nil
}

func gasPriceStr(tx *types.Transaction) string {
	if gp := tx.GasPrice(); gp != nil {
		return gp.String()
	}
	return "0"
}
