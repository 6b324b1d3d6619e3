package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic. With an empty group id it tails partition 0 from
// the latest offset and commits nothing.
type Consumer struct {
	r      messageReader
	commit bool
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
		cfg.StartOffset = kafka.LastOffset
	}
	return &Consumer{r: kafka.NewReader(cfg), commit: groupID != ""}
}

func newConsumerWithReader(r messageReader, commit bool) *Consumer {
	return &Consumer{r: r, commit: commit}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume passes messages to handler until ctx is done (nil) or reading,
// handling or committing fails.
func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(msg.Key, msg.Value); err != nil {
			// commit только после успешной обработки
			return err
		}
		if !c.commit {
			continue
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}
