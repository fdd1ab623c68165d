package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-system/internal/orders"
	rpc "mealplan-system/internal/rpc/ordering"
)

func TestRedisSessions_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisSessions(db, 0)

	p := pendingCheckout{CustomerID: "u1", Orders: []orders.Order{}, Net: "5.00"}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	mock.ExpectSet(CHECKOUT_CACHE_PREFIX+"s1", string(data), CHECKOUT_TTL_DEFAULT).SetVal("OK")
	require.NoError(t, s.Save(context.Background(), "s1", p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessions_PeekDoesNotConsume(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisSessions(db, 0)

	mock.ExpectGet(CHECKOUT_CACHE_PREFIX + "s1").SetVal(`{"requested_by":"admin","customer_id":"u1","orders":[],"net":"5.00"}`)
	p, err := s.Peek(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, p.ownedBy("admin"))
	assert.True(t, p.ownedBy("u1"))
	assert.False(t, p.ownedBy("u2"))

	mock.ExpectGet(CHECKOUT_CACHE_PREFIX + "gone").RedisNil()
	_, err = s.Peek(context.Background(), "gone")
	assert.True(t, orders.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_PublishesToEventAndAllChannels(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := NewRedisPublisher(db)

	event := rpc.OrderEvent{
		EventType: rpc.EventOrdersStatusChanged,
		OrderIDs:  []string{"o1"},
		Status:    orders.StatusDelivered,
		Timestamp: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("ordering:events:orders.status_changed", payload).SetVal(1)
	mock.ExpectPublish(rpc.EVENTS_CHANNEL_ALL, payload).SetVal(2)

	require.NoError(t, p.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}
