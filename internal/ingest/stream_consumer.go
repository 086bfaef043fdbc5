package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/janus/internal/picks"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = time.Second

	// Pause after a read error before retrying
	retryDelay = time.Second
)

// Message types on the snapshot stream
const (
	TypeSnapshot = "snapshot"
	TypeLiveLine = "live_line"
	TypeRelease  = "release"
)

// Envelope is the JSON carried in a stream message's "data" field
type Envelope struct {
	Type     string              `json:"type"`
	Pick     picks.Pick          `json:"pick"`
	Snapshot *picks.LiveSnapshot `json:"snapshot,omitempty"`
	LiveLine *picks.LiveLine     `json:"live_line,omitempty"`
}

// Handler receives decoded stream messages
type Handler interface {
	Process(ctx context.Context, pick picks.Pick, snap picks.LiveSnapshot) error
	UpdateLiveLine(ctx context.Context, pickID string, line picks.LiveLine) error
	Release(ctx context.Context, pickID string) error
}

// StreamConsumer reads per-pick live snapshots from a Redis stream consumer group
type StreamConsumer struct {
	redis    *redis.Client
	handler  Handler
	stream   string
	group    string
	consumer string
	log      logrus.FieldLogger

	processed atomic.Int64
	failed    atomic.Int64
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(client *redis.Client, handler Handler, stream, group, consumer string, log logrus.FieldLogger) *StreamConsumer {
	return &StreamConsumer{
		redis:    client,
		handler:  handler,
		stream:   stream,
		group:    group,
		consumer: consumer,
		log: log.WithFields(logrus.Fields{
			"component": "stream_consumer",
			"stream":    stream,
		}),
	}
}

// Start consumes until ctx is cancelled
func (sc *StreamConsumer) Start(ctx context.Context) error {
	if err := sc.createConsumerGroup(ctx); err != nil {
		return err
	}
	sc.log.WithField("group", sc.group).Info("Stream consumer started")

	for {
		select {
		case <-ctx.Done():
			sc.log.Info("Stream consumer stopped")
			return nil
		default:
		}

		streams, err := sc.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    sc.group,
			Consumer: sc.consumer,
			Streams:  []string{sc.stream, ">"},
			Count:    batchSize,
			Block:    blockDuration,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			sc.log.WithError(err).Warn("Stream read error")
			time.Sleep(retryDelay)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				sc.processMessage(ctx, msg)
			}
		}
	}
}

// Stats returns how many messages were handled and how many failed
func (sc *StreamConsumer) Stats() (processed, failed int64) {
	return sc.processed.Load(), sc.failed.Load()
}

func (sc *StreamConsumer) createConsumerGroup(ctx context.Context) error {
	err := sc.redis.XGroupCreateMkStream(ctx, sc.stream, sc.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group %s on %s: %w", sc.group, sc.stream, err)
	}
	return nil
}

// processMessage handles one message. Malformed messages are acked and dropped so
// they are never redelivered; handler failures are left pending.
func (sc *StreamConsumer) processMessage(ctx context.Context, msg redis.XMessage) {
	env, err := Decode(msg.Values)
	if err != nil {
		sc.failed.Add(1)
		sc.log.WithError(err).WithField("message_id", msg.ID).Warn("Dropping malformed message")
		sc.ack(ctx, msg.ID)
		return
	}

	if err := Dispatch(ctx, sc.handler, env); err != nil {
		sc.failed.Add(1)
		sc.log.WithError(err).WithFields(logrus.Fields{
			"message_id": msg.ID,
			"pick_id":    env.Pick.ID,
			"type":       env.Type,
		}).Error("Failed to handle message")
		return
	}

	sc.processed.Add(1)
	sc.ack(ctx, msg.ID)
}

func (sc *StreamConsumer) ack(ctx context.Context, id string) {
	if err := sc.redis.XAck(ctx, sc.stream, sc.group, id).Err(); err != nil {
		sc.log.WithError(err).WithField("message_id", id).Warn("Failed to ack message")
	}
}

// Decode parses a stream message's values into an envelope
func Decode(values map[string]interface{}) (Envelope, error) {
	var env Envelope

	data, ok := values["data"].(string)
	if !ok {
		return env, errors.New("message has no data field")
	}
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return env, fmt.Errorf("decoding envelope: %w", err)
	}

	if env.Type == "" {
		env.Type = TypeSnapshot
	}
	if env.Pick.ID == "" {
		return env, errors.New("envelope has no pick id")
	}

	switch env.Type {
	case TypeSnapshot:
		if env.Snapshot == nil {
			return env, errors.New("snapshot message without snapshot")
		}
	case TypeLiveLine:
		if env.LiveLine == nil {
			return env, errors.New("live line message without line")
		}
	case TypeRelease:
	default:
		return env, fmt.Errorf("unknown message type %q", env.Type)
	}
	return env, nil
}

// Dispatch routes a decoded envelope to the handler
func Dispatch(ctx context.Context, h Handler, env Envelope) error {
	switch env.Type {
	case TypeLiveLine:
		return h.UpdateLiveLine(ctx, env.Pick.ID, *env.LiveLine)
	case TypeRelease:
		return h.Release(ctx, env.Pick.ID)
	default:
		snap := *env.Snapshot
		if snap.PickID == "" {
			snap.PickID = env.Pick.ID
		}
		return h.Process(ctx, env.Pick, snap)
	}
}
