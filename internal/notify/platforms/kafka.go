package platforms

import (
	"context"
	"encoding/json"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaAdapter publishes each message as a JSON record keyed by user id, so
// a user's notifications stay ordered within a partition.
type KafkaAdapter struct {
	client *kgo.Client
	topic  string
}

func NewKafkaAdapter(brokers []string, topic string) (*KafkaAdapter, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaAdapter{client: client, topic: topic}, nil
}

func (a *KafkaAdapter) Name() string { return "kafka" }

func (a *KafkaAdapter) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	rec := &kgo.Record{Topic: a.topic, Key: []byte(msg.UserID), Value: value}
	return a.client.ProduceSync(ctx, rec).FirstErr()
}

func (a *KafkaAdapter) Close() {
	a.client.Close()
}
