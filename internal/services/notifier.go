package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventProgressUpdated   = "progress_updated"
	EventMilestoneAchieved = "milestone_achieved"
	EventGoalCompleted     = "goal_completed"
	EventItineraryAdapted  = "itinerary_adapted"
	EventItineraryRollback = "itinerary_rolled_back"

	// UserChannelPrefix prefixes the per-user pub/sub channel.
	UserChannelPrefix = "tripwise:user:"
)

// Publisher delivers an event to every open session of a user.
type Publisher interface {
	Publish(ctx context.Context, userID, event string, payload any) error
}

// Envelope is the wire shape of a pushed event.
type Envelope struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func UserChannel(userID string) string {
	return UserChannelPrefix + userID
}

func EncodeEnvelope(userID, event string, payload any) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: event, UserID: userID, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event, err)
	}
	return data, nil
}

// RedisPublisher fans events out through Redis so every instance holding a
// session of the user can deliver them.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID, event string, payload any) error {
	data, err := EncodeEnvelope(userID, event, payload)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		return fmt.Errorf("publish %s to redis: %w", event, err)
	}
	return nil
}
