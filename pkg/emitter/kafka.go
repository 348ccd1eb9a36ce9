// Package emitter streams archived rounds to external consumers.
package emitter

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/weave/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Emitter errors start from 2300
var ErrClosed = errors.Register(2300, "emitter closed")

// MessageWriter is the part of kafka.Writer the emitter uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter publishes a summary of every accepted round to a Kafka topic,
// keyed by round number.
type KafkaEmitter struct {
	writer MessageWriter
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewKafkaEmitter creates a new KafkaEmitter
func NewKafkaEmitter(brokerAddress, topic string, logger zerolog.Logger) *KafkaEmitter {
	return NewEmitter(&kafka.Writer{
		Addr:     kafka.TCP(brokerAddress),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}, logger)
}

// NewEmitter wraps an existing writer.
func NewEmitter(w MessageWriter, logger zerolog.Logger) *KafkaEmitter {
	return &KafkaEmitter{writer: w, logger: logger}
}

func (k *KafkaEmitter) Publish(ctx context.Context, msg models.FeedMessage) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		return ErrClosed
	}

	round := models.NewArchivedRound(msg)
	value, err := json.Marshal(round)
	if err != nil {
		return errors.Wrap(err, "marshal round")
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(round.Round, 10)),
		Value: value,
	})
	if err != nil {
		return errors.Wrap(err, "write message to kafka")
	}

	k.logger.Debug().
		Uint64("round", round.Round).
		Int("txns", round.TxnCount).
		Msg("round emitted")
	return nil
}

func (k *KafkaEmitter) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}
