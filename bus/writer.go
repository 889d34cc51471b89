package bus

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/shadowline/mevwatch/chainclient"
	"github.com/shadowline/mevwatch/evaluator"
	"github.com/shadowline/mevwatch/metrics"
	"github.com/shadowline/mevwatch/store"
	"github.com/shadowline/mevwatch/swaptypes"
)

// Publisher fans a persisted opportunity out to live subscribers, e.g. the
// httpapi Hub. Declared here rather than imported to avoid bus depending on
// httpapi; a nil Publisher is valid and simply skips the fan-out.
type Publisher interface {
	Publish(o *swaptypes.Opportunity)
}

// Writer is the bus consumer and opportunity writer described in spec §4.7:
// it reads the transactions topic, gates stale/already-mined messages,
// runs the evaluator, and upserts the verdict.
type Writer struct {
	consumer  *Consumer
	evaluator *evaluator.Evaluator
	opps      *store.OpportunityRepo
	rpcPool   *chainclient.Pool
	chainID   int64
	maxAge    time.Duration
	publisher Publisher
}

func NewWriter(consumer *Consumer, eval *evaluator.Evaluator, opps *store.OpportunityRepo, rpcPool *chainclient.Pool, chainID int64, maxAge time.Duration) *Writer {
	return &Writer{consumer: consumer, evaluator: eval, opps: opps, rpcPool: rpcPool, chainID: chainID, maxAge: maxAge}
}

// SetPublisher wires a live fan-out sink. Optional: a Writer with no
// publisher still persists opportunities, it just has no subscriber feed.
func (w *Writer) SetPublisher(p Publisher) {
	w.publisher = p
}

// Run polls the consumer until ctx is cancelled. A single message's failure
// is logged and never aborts the loop (spec §4.7).
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, errs := w.consumer.Poll(ctx)
		for _, err := range errs {
			log.Warn("bus poll error", "err", err)
		}
		for _, msg := range msgs {
			w.process(ctx, msg)
		}
	}
}

func (w *Writer) process(ctx context.Context, msg *Message) {
	env := msg.Envelope

	// Step 2: age gate, preferring the envelope timestamp over the broker's.
	ts := env.Timestamp
	if ts == 0 {
		ts = msg.BrokerTimeMS
	}
	age := time.Since(time.UnixMilli(ts))
	if age > w.maxAge {
		return
	}

	// Step 3: already-mined gate.
	if env.BlockNumber != nil {
		return
	}

	// Step 4: rehydrate amountIn into a 256-bit integer (spec §4.7).
	swap := env.DecodedTx
	amountIn, err := uint256.FromDecimal(swap.AmountIn)
	if err != nil {
		amountIn = new(uint256.Int)
	}
	swap.AmountIn = amountIn.Dec()

	var verdict evaluator.Verdict
	var currentBlock uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		verdict = w.evaluator.Detect(gctx, env.TxHash, &swap, env.RouterAddress)
		return nil
	})
	g.Go(func() error {
		block, err := w.fetchCurrentBlock(gctx)
		if err != nil {
			log.Warn("current block fetch failed", "txHash", env.TxHash, "err", err)
			return nil
		}
		currentBlock = block
		return nil
	})
	_ = g.Wait()

	if !verdict.IsOpportunity {
		return
	}

	status := swaptypes.StatusDetected
	if verdict.IsExpired {
		status = swaptypes.StatusExpired
	}

	blockNumber := int64(currentBlock)
	opp := &swaptypes.Opportunity{
		ChainID:      w.chainID,
		TxHash:       env.TxHash,
		Router:       env.RouterAddress,
		RouterFamily: swap.RouterFamily,
		TokenIn:      swap.TokenIn,
		TokenOut:     swap.TokenOut,
		AmountIn:     swap.AmountIn,
		AmountOut:    swap.AmountOut,
		Fee:          swap.Fee,
		Pool:         verdict.PoolAddress,
		Method:       swap.Method,
		Recipient:    swap.Recipient,
		Deadline:     swap.Deadline,
		BlockNumber:  &blockNumber,
		Status:       status,
		Metadata: swaptypes.OpportunityMetadata{
			TokenInDecimals:     verdict.TokenInDecimals,
			TokenOutDecimals:    verdict.TokenOutDecimals,
			DecodedSwap:         swap,
			Reason:              verdict.Reason,
			PriceImpact:         verdict.PriceImpact,
			ExpectedProfit:      verdict.ExpectedProfitFormatted,
			TimeToSubmitSeconds: verdict.TimeToSubmitSeconds,
			DeadlineTimestamp:   verdict.DeadlineTimestamp,
			IsExpired:           verdict.IsExpired,
		},
	}

	if err := w.opps.Upsert(ctx, opp); err != nil {
		log.Warn("opportunity upsert failed", "txHash", env.TxHash, "err", err)
		return
	}
	metrics.OpportunitiesDetected.WithLabelValues(string(swap.RouterFamily)).Inc()
	if w.publisher != nil {
		w.publisher.Publish(opp)
	}
}

func (w *Writer) fetchCurrentBlock(ctx context.Context) (uint64, error) {
	var blockNumber uint64
	err := w.rpcPool.Call(ctx, func(ctx context.Context, cl *ethclient.Client) error {
		n, err := cl.BlockNumber(ctx)
		if err != nil {
			return err
		}
		blockNumber = n
		return nil
	})
	return blockNumber, err
}
