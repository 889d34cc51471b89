// Package chainclient implements the load-balanced JSON-RPC provider pool
// described in spec §4.1: a fresh client per call, uniformly sampled from
// the configured HTTP endpoints, wrapped in a hard timeout and a bounded
// exponential backoff retried only on timeout-class errors.
package chainclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	mcommon "github.com/shadowline/mevwatch/common"
)

var log = mcommon.NewLogger("chainclient")

// ErrTransient marks an error the pool considers retryable: a timeout or a
// connection-level failure, per spec §7 TransientRpcError.
var ErrTransient = errors.New("chainclient: transient rpc error")

// Pool hands out ethclient.Client instances dialed against a randomly
// chosen HTTP endpoint per call, and wraps every call in the retry policy.
// It deliberately does not hold a shared client: allocation is cheap and
// this removes any possibility of shared-client contention across the
// concurrent tap/evaluator/consumer tasks (spec §5).
type Pool struct {
	urls        []string
	callTimeout time.Duration
	maxRetries  int
	baseBackoff time.Duration
}

// New builds a Pool. urls must be non-empty; callers validate this at
// config-load time (spec §7 ConfigError).
func New(urls []string, callTimeout time.Duration, maxRetries int, baseBackoff time.Duration) *Pool {
	return &Pool{
		urls:        urls,
		callTimeout: callTimeout,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

// dial picks a uniformly random HTTP endpoint and connects with ENS
// resolution disabled (staticNetwork, per spec §4.1).
func (p *Pool) dial(ctx context.Context) (*ethclient.Client, error) {
	url := p.urls[rand.Intn(len(p.urls))]
	cl, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransient, url, err)
	}
	return cl, nil
}

// Call runs fn against a freshly dialed client, under callTimeout, making
// up to maxRetries attempts in total with exponential backoff
// baseBackoff·2^(n-1) before retry n, on timeout-class errors only.
// Non-timeout errors fail fast without retry.
func (p *Pool) Call(ctx context.Context, fn func(context.Context, *ethclient.Client) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		err := p.attempt(callCtx, fn)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTimeoutClass(err) {
			return err
		}
		if attempt == p.maxRetries {
			break
		}
		backoff := time.Duration(1<<(attempt-1)) * p.baseBackoff
		log.Warn("rpc call timed out, retrying", "attempt", attempt, "backoff", backoff, "err", err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: exhausted %d attempts: %v", ErrTransient, p.maxRetries, lastErr)
}

func (p *Pool) attempt(ctx context.Context, fn func(context.Context, *ethclient.Client) error) error {
	cl, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer cl.Close()
	return fn(ctx, cl)
}

func isTimeoutClass(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, ErrTransient)
}
