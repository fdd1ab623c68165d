// Package clientstore is the per-user key/value state the checkout screens
// keep between requests: carts, the applied discount and filter preferences.
// Values are JSON inside a versioned envelope so their shape can evolve.
package clientstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Version is the envelope version written by this build. Entries written
// with any other version read as absent.
const Version = 1

// Store is a small get/set/remove abstraction so the backing storage can be
// swapped without touching cart or discount logic.
type Store interface {
	// Get decodes the value under key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

type envelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return json.Marshal(envelope{V: Version, Data: data})
}

func decode(raw []byte, dst any) (bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.V != Version {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return false, fmt.Errorf("failed to decode value: %w", err)
	}
	return true, nil
}

// Scope namespaces carts by the role context they were built in.
type Scope string

const (
	ScopeCustomer     Scope = "cart"
	ScopeAdmin        Scope = "admin-cart"
	ScopeCompanyAdmin Scope = "company-admin-cart"
)

func CartKey(scope Scope, userID string) string {
	return fmt.Sprintf("%s-%s", scope, userID)
}

func DiscountKey(userID string) string {
	return "discount-" + userID
}

func FiltersKey(userID string) string {
	return "filters-" + userID
}
