package chainclient

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// DialPendingSubscriber connects the single configured WebSocket endpoint
// and returns a raw *rpc.Client suitable for eth_subscribe
// ("newPendingTransactions"), plus an ethclient wrapping the same
// connection. The mempool tap does not hydrate through this ethclient; it
// uses the HTTP provider pool for that.
//
// Unlike the HTTP provider pool this connection is long-lived: a pending
// subscription is inherently stateful and reconnecting per-hash would
// defeat the point of a push feed.
func DialPendingSubscriber(ctx context.Context, wssURL string) (*rpc.Client, *ethclient.Client, error) {
	rc, err := rpc.DialContext(ctx, wssURL)
	if err != nil {
		return nil, nil, err
	}
	return rc, ethclient.NewClient(rc), nil
}
