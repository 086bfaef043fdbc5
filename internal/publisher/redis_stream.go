package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/janus/internal/hedge"
	"github.com/fortuna/janus/internal/picks"
)

// Event types carried in the "type" field
const (
	EventHedgeAction       = "hedge_action"
	EventQuarterTransition = "quarter_transition"
	EventHalftime          = "halftime_recalibration"
)

// approximate cap on stream length
const maxStreamLen = 10000

// RedisStreamPublisher publishes pick events to a Redis stream
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	now    func() time.Time
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		now:    time.Now,
	}
}

// Stream returns the target stream name
func (p *RedisStreamPublisher) Stream() string {
	return p.stream
}

// PublishHedgeAction publishes a pick's hedge recommendation
func (p *RedisStreamPublisher) PublishHedgeAction(ctx context.Context, action *hedge.Action) error {
	return p.publish(ctx, EventHedgeAction, action.PickID, action)
}

// PublishQuarterTransition publishes a freshly issued quarter alert
func (p *RedisStreamPublisher) PublishQuarterTransition(ctx context.Context, alert *picks.QuarterTransitionAlert) error {
	return p.publish(ctx, EventQuarterTransition, alert.PickID, alert)
}

// PublishHalftime publishes a halftime recalibration
func (p *RedisStreamPublisher) PublishHalftime(ctx context.Context, rec *picks.HalftimeRecalibration) error {
	return p.publish(ctx, EventHalftime, rec.PickID, rec)
}

func (p *RedisStreamPublisher) publish(ctx context.Context, eventType, pickID string, payload interface{}) error {
	values, err := p.values(eventType, pickID, payload)
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing %s for %s: %w", eventType, pickID, err)
	}
	return nil
}

func (p *RedisStreamPublisher) values(eventType, pickID string, payload interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", eventType, err)
	}
	return map[string]interface{}{
		"event_id":  uuid.NewString(),
		"type":      eventType,
		"pick_id":   pickID,
		"data":      string(data),
		"timestamp": p.now().Unix(),
	}, nil
}
