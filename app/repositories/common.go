package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
)

const (
	// Keys of the three persisted slots.
	BlogDataKey     = "blog_data"
	AuthSettingsKey = "blog_auth_settings"
	SessionKey      = "blog_session"
)

// marshalEntity marshals an entity to indented JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// GetJSON reads key from store and decodes it into v.
func GetJSON(ctx context.Context, store KVStore, key string, v interface{}) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	return unmarshalEntity(data, v)
}

// PutJSON encodes v and writes it under key.
func PutJSON(ctx context.Context, store KVStore, key string, v interface{}) error {
	data, err := marshalEntity(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}
