package storage

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	dbm "github.com/cometbft/cometbft-db"
)

var (
	errKeyEmpty   = errors.New("key cannot be empty")
	errValueNil   = errors.New("value cannot be nil")
	errIterClosed = errors.New("iterator is closed")
)

type cacheEntry struct {
	value   []byte
	deleted bool
}

// CacheStore buffers writes over a parent store. Reads see the buffered
// writes; nothing reaches the parent until Write is called, so dropping a
// CacheStore discards the whole batch.
type CacheStore struct {
	parent KVStore
	dirty  map[string]cacheEntry
}

var _ KVStore = (*CacheStore)(nil)

func NewCacheStore(parent KVStore) *CacheStore {
	return &CacheStore{
		parent: parent,
		dirty:  make(map[string]cacheEntry),
	}
}

func (c *CacheStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errKeyEmpty
	}
	if e, ok := c.dirty[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.parent.Get(key)
}

func (c *CacheStore) Has(key []byte) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (c *CacheStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	if value == nil {
		return errValueNil
	}
	c.dirty[string(key)] = cacheEntry{value: append([]byte{}, value...)}
	return nil
}

func (c *CacheStore) Delete(key []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	c.dirty[string(key)] = cacheEntry{deleted: true}
	return nil
}

func (c *CacheStore) Iterator(start, end []byte) (dbm.Iterator, error) {
	items, err := c.merged(start, end)
	if err != nil {
		return nil, err
	}
	return newSliceIterator(start, end, items), nil
}

func (c *CacheStore) ReverseIterator(start, end []byte) (dbm.Iterator, error) {
	items, err := c.merged(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return newSliceIterator(start, end, items), nil
}

// Write flushes the buffered writes into the parent in key order and resets the cache.
func (c *CacheStore) Write() error {
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := c.dirty[k]
		var err error
		if e.deleted {
			err = c.parent.Delete([]byte(k))
		} else {
			err = c.parent.Set([]byte(k), e.value)
		}
		if err != nil {
			return fmt.Errorf("failed to flush key %x: %w", k, err)
		}
	}
	c.dirty = make(map[string]cacheEntry)
	return nil
}

// Discard drops every buffered write.
func (c *CacheStore) Discard() {
	c.dirty = make(map[string]cacheEntry)
}

func inRange(key, start, end []byte) bool {
	if start != nil && bytes.Compare(key, start) < 0 {
		return false
	}
	if end != nil && bytes.Compare(key, end) >= 0 {
		return false
	}
	return true
}

func (c *CacheStore) merged(start, end []byte) ([]kvPair, error) {
	view := make(map[string][]byte)
	it, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	for ; it.Valid(); it.Next() {
		view[string(it.Key())] = it.Value()
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, err
	}
	if err := it.Close(); err != nil {
		return nil, err
	}

	for k, e := range c.dirty {
		if !inRange([]byte(k), start, end) {
			continue
		}
		if e.deleted {
			delete(view, k)
		} else {
			view[k] = e.value
		}
	}

	items := make([]kvPair, 0, len(view))
	for k, v := range view {
		items = append(items, kvPair{key: []byte(k), value: v})
	}
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].key, items[j].key) < 0
	})
	return items, nil
}

type kvPair struct {
	key   []byte
	value []byte
}

type sliceIterator struct {
	start, end []byte
	items      []kvPair
	pos        int
	closed     bool
}

var _ dbm.Iterator = (*sliceIterator)(nil)

func newSliceIterator(start, end []byte, items []kvPair) *sliceIterator {
	return &sliceIterator{start: start, end: end, items: items}
}

func (it *sliceIterator) Domain() ([]byte, []byte) { return it.start, it.end }

func (it *sliceIterator) Valid() bool {
	return !it.closed && it.pos < len(it.items)
}

func (it *sliceIterator) Next() {
	if it.Valid() {
		it.pos++
	}
}

func (it *sliceIterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.items[it.pos].key
}

func (it *sliceIterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	return it.items[it.pos].value
}

func (it *sliceIterator) Error() error {
	if it.closed {
		return errIterClosed
	}
	return nil
}

func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}
