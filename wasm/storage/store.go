// Package storage provides the key-value handle that contracts persist state through,
// backed by cometbft-db, plus typed helpers for single values and keyed collections.
package storage

import (
	"errors"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"
)

var ErrNotFound = errors.New("not found")

// KVStore is the storage surface a contract sees during one invocation.
// Every cometbft-db database satisfies it.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Iterator(start, end []byte) (dbm.Iterator, error)
	ReverseIterator(start, end []byte) (dbm.Iterator, error)
}

// NewMemStore returns an in-memory store.
func NewMemStore() *dbm.MemDB {
	return dbm.NewMemDB()
}

// OpenStore opens a persistent database of the given backend ("goleveldb", "memdb", ...)
// under dir.
func OpenStore(backend, name, dir string) (dbm.DB, error) {
	db, err := dbm.NewDB(name, dbm.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store %s: %w", backend, name, err)
	}
	return db, nil
}

// PrefixStore namespaces every key of parent under prefix.
func PrefixStore(parent dbm.DB, prefix []byte) *dbm.PrefixDB {
	return dbm.NewPrefixDB(parent, prefix)
}
