package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes events as JSON to a single topic, keyed so that all
// events for one order or saree land on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// Producer timeouts stay short; a request must not hang on an unreachable broker.
const (
	produceTimeout = 2 * time.Second
	dialTimeout    = 2 * time.Second
)

func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Timeout = produceTimeout
	cfg.Producer.Retry.Max = 3
	cfg.Net.DialTimeout = dialTimeout
	cfg.Net.ReadTimeout = produceTimeout
	cfg.Net.WriteTimeout = produceTimeout
	cfg.Metadata.Retry.Max = 1
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = false
	cfg.ClientID = "kbr-silks-backend"
	return cfg
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	// SendMessage takes no context; the send is abandoned, not cancelled,
	// when ctx ends first.
	type result struct {
		partition int32
		offset    int64
		err       error
	}
	done := make(chan result, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		done <- result{partition, offset, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return fmt.Errorf("failed to publish %s: %w", event.Type, ctx.Err())
	}
	if res.err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, res.err)
	}
	partition, offset := res.partition, res.offset

	slog.DebugContext(ctx, "event published",
		"type", event.Type, "key", event.Key, "partition", partition, "offset", offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
