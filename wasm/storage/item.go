package storage

import (
	"encoding/json"
	"fmt"
)

// Item stores a single JSON value under a fixed key.
type Item[T any] struct {
	key string
}

func NewItem[T any](key string) Item[T] {
	return Item[T]{key: key}
}

func (i Item[T]) Key() string {
	return i.key
}

// Load returns ErrNotFound when nothing was saved yet.
func (i Item[T]) Load(store KVStore) (T, error) {
	v, ok, err := i.May(store)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("%s: %w", i.key, ErrNotFound)
	}
	return v, nil
}

func (i Item[T]) May(store KVStore) (T, bool, error) {
	var v T
	raw, err := store.Get([]byte(i.key))
	if err != nil {
		return v, false, fmt.Errorf("failed to read %s: %w", i.key, err)
	}
	if raw == nil {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("failed to decode %s: %w", i.key, err)
	}
	return v, true, nil
}

func (i Item[T]) Exists(store KVStore) (bool, error) {
	return store.Has([]byte(i.key))
}

func (i Item[T]) Save(store KVStore, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", i.key, err)
	}
	if err := store.Set([]byte(i.key), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", i.key, err)
	}
	return nil
}

func (i Item[T]) Remove(store KVStore) error {
	return store.Delete([]byte(i.key))
}

// Update loads the current value (zero value and false if missing), applies fn and saves the result.
func (i Item[T]) Update(store KVStore, fn func(cur T, found bool) (T, error)) (T, error) {
	cur, found, err := i.May(store)
	if err != nil {
		return cur, err
	}
	next, err := fn(cur, found)
	if err != nil {
		return next, err
	}
	return next, i.Save(store, next)
}
