package storage

import (
	"encoding/json"
	"fmt"
)

// Map stores JSON values under a namespace, addressed by a typed composite key.
// Entries iterate in the byte order of their encoded keys.
type Map[K any, V any] struct {
	namespace []byte
	name      string
	keys      KeyCodec[K]
}

// NewMap panics when namespace does not fit a key prefix.
func NewMap[K any, V any](namespace string, keys KeyCodec[K]) Map[K, V] {
	prefix, err := lengthPrefixed([]byte(namespace))
	if err != nil {
		panic(fmt.Sprintf("map namespace %.32q...: %v", namespace, err))
	}
	return Map[K, V]{
		namespace: prefix,
		name:      namespace,
		keys:      keys,
	}
}

func (m Map[K, V]) rawKey(key K) ([]byte, error) {
	encoded, err := m.keys.Encode(key)
	if err != nil {
		return nil, fmt.Errorf("invalid %s key: %w", m.name, err)
	}
	return append(append([]byte{}, m.namespace...), encoded...), nil
}

func (m Map[K, V]) Load(store KVStore, key K) (V, error) {
	v, ok, err := m.May(store, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("%s %v: %w", m.name, key, ErrNotFound)
	}
	return v, nil
}

func (m Map[K, V]) May(store KVStore, key K) (V, bool, error) {
	var v V
	k, err := m.rawKey(key)
	if err != nil {
		return v, false, err
	}
	raw, err := store.Get(k)
	if err != nil {
		return v, false, fmt.Errorf("failed to read %s %v: %w", m.name, key, err)
	}
	if raw == nil {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("failed to decode %s %v: %w", m.name, key, err)
	}
	return v, true, nil
}

func (m Map[K, V]) Has(store KVStore, key K) (bool, error) {
	k, err := m.rawKey(key)
	if err != nil {
		return false, err
	}
	return store.Has(k)
}

func (m Map[K, V]) Save(store KVStore, key K, v V) error {
	k, err := m.rawKey(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %v: %w", m.name, key, err)
	}
	if err := store.Set(k, raw); err != nil {
		return fmt.Errorf("failed to write %s %v: %w", m.name, key, err)
	}
	return nil
}

func (m Map[K, V]) Remove(store KVStore, key K) error {
	k, err := m.rawKey(key)
	if err != nil {
		return err
	}
	return store.Delete(k)
}

func (m Map[K, V]) Update(store KVStore, key K, fn func(cur V, found bool) (V, error)) (V, error) {
	cur, found, err := m.May(store, key)
	if err != nil {
		return cur, err
	}
	next, err := fn(cur, found)
	if err != nil {
		return next, err
	}
	return next, m.Save(store, key, next)
}

// Range walks every entry in key order until fn returns false or an error.
func (m Map[K, V]) Range(store KVStore, fn func(key K, v V) (bool, error)) error {
	it, err := store.Iterator(m.namespace, prefixEnd(m.namespace))
	if err != nil {
		return fmt.Errorf("failed to iterate %s: %w", m.name, err)
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key, err := m.keys.Decode(it.Key()[len(m.namespace):])
		if err != nil {
			return fmt.Errorf("failed to decode %s key: %w", m.name, err)
		}
		var v V
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return fmt.Errorf("failed to decode %s %v: %w", m.name, key, err)
		}
		more, err := fn(key, v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return it.Error()
}

func (m Map[K, V]) Keys(store KVStore) ([]K, error) {
	var keys []K
	err := m.Range(store, func(key K, _ V) (bool, error) {
		keys = append(keys, key)
		return true, nil
	})
	return keys, err
}
