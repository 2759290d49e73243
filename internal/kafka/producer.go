package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers      []string
	BatchTimeout time.Duration // default 10ms
	WriteTimeout time.Duration // default 10s
}

// Producer wraps a single kafka-go Writer that serves every topic; the topic
// is set per message. Keys are hashed to partitions so one channel/meeting
// always lands on the same partition.
type Producer struct {
	w *kafka.Writer
}

func NewProducerFromConfig(c ProducerConfig) *Producer {
	bt := c.BatchTimeout
	if bt <= 0 {
		bt = 10 * time.Millisecond
	}
	wt := c.WriteTimeout
	if wt <= 0 {
		wt = 10 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: bt,
		WriteTimeout: wt,
	}

	return &Producer{w: w}
}

// Publish writes one message and blocks until the broker acknowledges it.
// A nil return means the event is durably on the topic.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}

func (p *Producer) Close() error { return p.w.Close() }
