// Package feed keeps the state store in step with the push channel.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iov-one/block-explorer/pkg/metrics"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/weave/errors"
	"github.com/rs/zerolog"
)

// Client reads messages from the push channel websocket. A severed
// connection is reestablished with a fixed delay between attempts.
type Client struct {
	uri      string
	attempts int
	delay    time.Duration
	dialer   *websocket.Dialer
	logger   zerolog.Logger
}

func NewClient(uri string, attempts int, delay time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		uri:      uri,
		attempts: attempts,
		delay:    delay,
		dialer:   websocket.DefaultDialer,
		logger:   logger,
	}
}

// Run delivers every decoded message to out until ctx is cancelled or the
// connection cannot be reestablished. The failed attempt counter resets after
// each successful connection. out is never closed by Run.
func (c *Client) Run(ctx context.Context, out chan<- models.FeedMessage) error {
	failures := 0
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.uri, nil)
		if err == nil {
			failures = 0
			c.logger.Info().Str("uri", c.uri).Msg("push channel connected")
			err = c.read(ctx, conn, out)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn().Err(err).Int("failures", failures).Msg("push channel disconnected")

		if failures >= c.attempts {
			return errors.Wrapf(ErrReconnectExhausted, "%d attempts to %s", failures, c.uri)
		}
		failures++
		metrics.FeedReconnects.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}
	}
}

// read consumes conn until it fails or ctx is done. Messages that cannot be
// decoded are logged and skipped.
func (c *Client) read(ctx context.Context, conn *websocket.Conn, out chan<- models.FeedMessage) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read")
		}
		metrics.FeedMessages.Inc()

		msg, err := DecodeMessage(data)
		if err != nil {
			c.logger.Error().Err(err).Msg("skipping feed message")
			continue
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// DecodeMessage parses a single push channel payload.
func DecodeMessage(data []byte) (models.FeedMessage, error) {
	var msg models.FeedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errors.Wrap(ErrMalformedMessage, err.Error())
	}
	if msg.Block.Round == 0 {
		return msg, errors.Wrap(ErrMalformedMessage, "missing block round")
	}
	return msg, nil
}
