// Package events keeps the gateway's order store in step with the ordering
// service by following its Redis event channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"mealplan-system/internal/orders"
	"mealplan-system/internal/orderstore"
	rpc "mealplan-system/internal/rpc/ordering"
)

// Loader fetches every upcoming order, used to seed the store.
type Loader func(ctx context.Context) ([]orders.Order, error)

type Subscriber struct {
	redis *redis.Client
	store *orderstore.Store
	load  Loader
}

func NewSubscriber(redisClient *redis.Client, store *orderstore.Store, load Loader) *Subscriber {
	return &Subscriber{redis: redisClient, store: store, load: load}
}

// Apply decodes one published event and applies it to store.
func Apply(store *orderstore.Store, payload []byte) error {
	var event rpc.OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	switch event.EventType {
	case rpc.EventOrdersCreated:
		store.AppendOrders(event.Orders)
	case rpc.EventOrdersStatusChanged:
		if _, err := store.ApplyStatusChange(event.OrderIDs, event.Status); err != nil {
			return fmt.Errorf("failed to apply %s for %v: %w", event.Status, event.OrderIDs, err)
		}
	default:
		log.Printf("events: ignoring unknown event type %q", event.EventType)
	}
	return nil
}

// Run seeds the store and then applies events until ctx is done. The store
// is reloaded after any event that fails to apply.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.redis.Subscribe(ctx, rpc.EVENTS_CHANNEL_ALL)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", rpc.EVENTS_CHANNEL_ALL, err)
	}
	if err := s.reload(ctx); err != nil {
		log.Printf("events: initial load failed: %v", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := Apply(s.store, []byte(msg.Payload)); err != nil {
				log.Printf("events: %v, reloading", err)
				if err := s.reload(ctx); err != nil {
					log.Printf("events: reload failed: %v", err)
				}
			}
		}
	}
}

func (s *Subscriber) reload(ctx context.Context) error {
	if s.load == nil {
		return nil
	}
	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.store.Replace(list)
	return nil
}
