package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"mealplan-system/internal/orders"
	rpc "mealplan-system/internal/rpc/ordering"
)

const (
	CHECKOUT_CACHE_PREFIX = "ordering:checkout:"
	CHECKOUT_TTL_DEFAULT  = 30 * time.Minute
)

// pendingCheckout is a priced cart waiting for the payment provider to
// confirm. Its orders are created by ConfirmCheckout.
type pendingCheckout struct {
	RequestedBy    string         `json:"requested_by"`
	CustomerID     string         `json:"customer_id"`
	Orders         []orders.Order `json:"orders"`
	DiscountCodeID string         `json:"discount_code_id,omitempty"`
	Net            string         `json:"net"`
}

// ownedBy reports whether userID started the checkout or is the customer it
// orders for.
func (p pendingCheckout) ownedBy(userID string) bool {
	return userID == p.RequestedBy || userID == p.CustomerID
}

type SessionStore interface {
	Save(ctx context.Context, id string, p pendingCheckout) error
	// Peek returns the session without consuming it.
	Peek(ctx context.Context, id string) (pendingCheckout, error)
	// Take returns and deletes the session, so a session confirms once.
	Take(ctx context.Context, id string) (pendingCheckout, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event rpc.OrderEvent) error
}

type redisSessions struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessions(redisClient *redis.Client, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = CHECKOUT_TTL_DEFAULT
	}
	return &redisSessions{redis: redisClient, ttl: ttl}
}

func (s *redisSessions) Save(ctx context.Context, id string, p pendingCheckout) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	if err := s.redis.Set(ctx, CHECKOUT_CACHE_PREFIX+id, string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

func (s *redisSessions) Peek(ctx context.Context, id string) (pendingCheckout, error) {
	return decodeSession(id, s.redis.Get(ctx, CHECKOUT_CACHE_PREFIX+id))
}

func (s *redisSessions) Take(ctx context.Context, id string) (pendingCheckout, error) {
	return decodeSession(id, s.redis.GetDel(ctx, CHECKOUT_CACHE_PREFIX+id))
}

func decodeSession(id string, cmd *redis.StringCmd) (pendingCheckout, error) {
	var p pendingCheckout
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return p, &orders.NotFoundError{Resource: "checkout session", ID: id}
	}
	if err != nil {
		return p, fmt.Errorf("failed to load checkout session: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return p, nil
}

type redisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(redisClient *redis.Client) EventPublisher {
	return &redisPublisher{redis: redisClient}
}

func (p *redisPublisher) Publish(ctx context.Context, event rpc.OrderEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.redis.Publish(ctx, rpc.EVENTS_CHANNEL_PREFIX+event.EventType, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.redis.Publish(ctx, rpc.EVENTS_CHANNEL_ALL, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}
	return nil
}
