package bus

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one fetched record, carrying both the parsed envelope and the
// broker timestamp the age gate falls back to when the envelope's own
// timestamp is missing (spec §4.7 step 2).
type Message struct {
	Envelope       *Envelope
	BrokerTimeMS   int64
	raw            *kgo.Record
}

// Consumer reads the transactions topic with fromBeginning = false (spec
// §4.7): a fresh consumer group only sees records produced after it joins.
type Consumer struct {
	client *kgo.Client
}

// NewConsumer dials brokers and joins groupID against topic, starting from
// the log end on a brand new group (spec: "fromBeginning = false").
func NewConsumer(brokers []string, clientID, groupID, topic string) (*Consumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: cl}, nil
}

// Poll blocks until at least one record is available or ctx is done, and
// returns the batch parsed into Messages. Malformed envelopes are dropped
// with the raw error, per spec §4.7 ("unhandled errors in a single message
// never crash the consumer").
func (c *Consumer) Poll(ctx context.Context) ([]*Message, []error) {
	fetches := c.client.PollFetches(ctx)
	var errs []error
	for _, err := range fetches.Errors() {
		errs = append(errs, err.Err)
	}

	var out []*Message
	fetches.EachRecord(func(rec *kgo.Record) {
		env, err := UnmarshalEnvelope(rec.Value)
		if err != nil {
			errs = append(errs, err)
			return
		}
		out = append(out, &Message{
			Envelope:     env,
			BrokerTimeMS: rec.Timestamp.UnixMilli(),
			raw:          rec,
		})
	})
	return out, errs
}

// CommitRecord marks m's underlying record as processed.
func (c *Consumer) CommitRecord(ctx context.Context, m *Message) error {
	return c.client.CommitRecords(ctx, m.raw)
}

// Close leaves the consumer group and disconnects (spec §5 cancellation).
func (c *Consumer) Close() {
	c.client.Close()
}
