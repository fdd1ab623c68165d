package clientstore

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefs struct {
	SortBy string `json:"sortBy"`
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cart-u1", CartKey(ScopeCustomer, "u1"))
	assert.Equal(t, "admin-cart-u1", CartKey(ScopeAdmin, "u1"))
	assert.Equal(t, "company-admin-cart-u1", CartKey(ScopeCompanyAdmin, "u1"))
	assert.Equal(t, "discount-u1", DiscountKey("u1"))
	assert.Equal(t, "filters-u1", FiltersKey("u1"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got prefs
	ok, err := s.Get(ctx, "filters-u1", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "filters-u1", prefs{SortBy: "date"}))
	ok, err = s.Get(ctx, "filters-u1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "date", got.SortBy)

	require.NoError(t, s.Remove(ctx, "filters-u1"))
	ok, err = s.Get(ctx, "filters-u1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_UnknownVersionReadsAsAbsent(t *testing.T) {
	s := NewMemoryStore()
	s.data["filters-u1"] = []byte(`{"v":2,"data":{"sortBy":"date","columns":[]}}`)

	var got prefs
	ok, err := s.Get(context.Background(), "filters-u1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_LegacyUnversionedValue(t *testing.T) {
	s := NewMemoryStore()
	s.data["cart-u1"] = []byte(`[{"itemId":"x"}]`)

	var got []map[string]any
	_, err := s.Get(context.Background(), "cart-u1", &got)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, "", 0)

	mock.ExpectSet("client:cart-u1", `{"v":1,"data":["taco"]}`, 0).SetVal("OK")
	require.NoError(t, s.Set(ctx, "cart-u1", []string{"taco"}))

	mock.ExpectGet("client:cart-u1").SetVal(`{"v":1,"data":["taco"]}`)
	var items []string
	ok, err := s.Get(ctx, "cart-u1", &items)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"taco"}, items)

	mock.ExpectGet("client:cart-u2").RedisNil()
	ok, err = s.Get(ctx, "cart-u2", &items)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectDel("client:cart-u1").SetVal(1)
	require.NoError(t, s.Remove(ctx, "cart-u1"))

	mock.ExpectGet("client:cart-u3").SetErr(errors.New("connection reset"))
	_, err = s.Get(ctx, "cart-u3", &items)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
