package bus

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/metrics"
)

var log = mcommon.NewLogger("bus")

// Producer is the process-wide singleton publishing decoded swaps onto the
// transactions topic (spec §5: "the bus producer is a process-wide
// singleton, lazily initialized").
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer dials the given brokers and returns a Producer bound to
// topic. Construction is cheap (no broker round trip); the first Produce
// call establishes the actual connection.
func NewProducer(brokers []string, clientID, topic string) (*Producer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}
	return &Producer{client: cl, topic: topic}, nil
}

// Publish produces env keyed by its txHash, synchronously, so the mempool
// tap's publish step (spec §4.6 step 5) observes a definitive success/fail
// per transaction rather than fire-and-forget semantics.
func (p *Producer) Publish(ctx context.Context, env *Envelope) error {
	payload, err := env.Marshal()
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(env.TxHash),
		Value: payload,
	}
	results := p.client.ProduceSync(ctx, record)
	if err := results.FirstErr(); err != nil {
		metrics.BusPublishErrors.Inc()
		return err
	}
	return nil
}

// Close flushes in-flight records and disconnects (spec §5 cancellation).
func (p *Producer) Close() {
	p.client.Close()
}
