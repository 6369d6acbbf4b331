package storage_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestItem_SaveLoadRemove(t *testing.T) {
	store := storage.NewMemStore()
	item := storage.NewItem[record]("config")

	_, err := item.Load(store)
	require.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, item.Save(store, record{Name: "a", Count: 1}))
	got, err := item.Load(store)
	require.NoError(t, err)
	require.Equal(t, record{Name: "a", Count: 1}, got)

	updated, err := item.Update(store, func(cur record, found bool) (record, error) {
		require.True(t, found)
		cur.Count++
		return cur, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Count)

	require.NoError(t, item.Remove(store))
	_, ok, err := item.May(store)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMap_PairKeysIterateInOrder(t *testing.T) {
	store := storage.NewMemStore()
	m := storage.NewMap[storage.Pair, record]("flow", storage.PairKey)
	other := storage.NewMap[storage.Pair, record]("flowx", storage.PairKey)

	require.NoError(t, m.Save(store, storage.Pair{First: "channel-1", Second: "uosmo"}, record{Name: "b"}))
	require.NoError(t, m.Save(store, storage.Pair{First: "channel-0", Second: "uatom"}, record{Name: "a"}))
	require.NoError(t, other.Save(store, storage.Pair{First: "channel-0", Second: "uatom"}, record{Name: "other"}))

	keys, err := m.Keys(store)
	require.NoError(t, err)
	require.Equal(t, []storage.Pair{
		{First: "channel-0", Second: "uatom"},
		{First: "channel-1", Second: "uosmo"},
	}, keys)

	_, err = m.Load(store, storage.Pair{First: "channel-9", Second: "uatom"})
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestMap_ChannelSeqKey(t *testing.T) {
	store := storage.NewMemStore()
	m := storage.NewMap[storage.ChannelSeq, record]("inflight", storage.ChannelSeqKey)

	require.NoError(t, m.Save(store, storage.ChannelSeq{Channel: "channel-0", Sequence: 256}, record{Name: "late"}))
	require.NoError(t, m.Save(store, storage.ChannelSeq{Channel: "channel-0", Sequence: 2}, record{Name: "early"}))

	var names []string
	require.NoError(t, m.Range(store, func(_ storage.ChannelSeq, v record) (bool, error) {
		names = append(names, v.Name)
		return true, nil
	}))
	require.Equal(t, []string{"early", "late"}, names)
}

func TestMap_RejectsOversizedKeyParts(t *testing.T) {
	store := storage.NewMemStore()
	m := storage.NewMap[storage.Pair, record]("flow", storage.PairKey)
	long := strings.Repeat("a", 1<<16)

	// 65536 bytes would wrap to a zero length prefix and alias the empty channel
	err := m.Save(store, storage.Pair{First: long, Second: "uosmo"}, record{Name: "long"})
	require.True(t, errors.Is(err, storage.ErrKeyTooLong))
	_, _, err = m.May(store, storage.Pair{First: "channel-0", Second: long})
	require.True(t, errors.Is(err, storage.ErrKeyTooLong))
	require.True(t, errors.Is(m.Remove(store, storage.Pair{First: long}), storage.ErrKeyTooLong))

	_, ok, err := m.May(store, storage.Pair{First: "", Second: "uosmo"})
	require.NoError(t, err)
	require.False(t, ok)

	edge := strings.Repeat("a", 1<<16-1)
	require.NoError(t, m.Save(store, storage.Pair{First: edge, Second: "uosmo"}, record{Name: "edge"}))
	got, err := m.Load(store, storage.Pair{First: edge, Second: "uosmo"})
	require.NoError(t, err)
	require.Equal(t, "edge", got.Name)

	seq := storage.NewMap[storage.ChannelSeq, record]("inflight", storage.ChannelSeqKey)
	_, err = seq.Has(store, storage.ChannelSeq{Channel: long, Sequence: 1})
	require.True(t, errors.Is(err, storage.ErrKeyTooLong))
}

func TestCacheStore_WriteAndDiscard(t *testing.T) {
	parent := storage.NewMemStore()
	item := storage.NewItem[record]("config")
	require.NoError(t, item.Save(parent, record{Name: "committed"}))

	cache := storage.NewCacheStore(parent)
	require.NoError(t, item.Save(cache, record{Name: "pending"}))

	got, err := item.Load(cache)
	require.NoError(t, err)
	require.Equal(t, "pending", got.Name)

	got, err = item.Load(parent)
	require.NoError(t, err)
	require.Equal(t, "committed", got.Name)

	cache.Discard()
	got, err = item.Load(cache)
	require.NoError(t, err)
	require.Equal(t, "committed", got.Name)

	require.NoError(t, item.Remove(cache))
	require.NoError(t, cache.Write())
	_, ok, err := item.May(parent)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheStore_IteratorMergesParentAndPending(t *testing.T) {
	parent := storage.NewMemStore()
	m := storage.NewMap[string, record]("roles", storage.StringKey)
	require.NoError(t, m.Save(parent, "alice", record{Name: "alice"}))
	require.NoError(t, m.Save(parent, "bob", record{Name: "bob"}))

	cache := storage.NewCacheStore(parent)
	require.NoError(t, m.Remove(cache, "alice"))
	require.NoError(t, m.Save(cache, "carol", record{Name: "carol"}))

	keys, err := m.Keys(cache)
	require.NoError(t, err)
	require.Equal(t, []string{"bob", "carol"}, keys)

	keys, err = m.Keys(parent)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, keys)
}

func TestPrefixStore_Isolation(t *testing.T) {
	db := storage.NewMemStore()
	a := storage.PrefixStore(db, []byte("contract-a/"))
	b := storage.PrefixStore(db, []byte("contract-b/"))
	item := storage.NewItem[record]("config")

	require.NoError(t, item.Save(a, record{Name: "a"}))
	_, ok, err := item.May(b)
	require.NoError(t, err)
	require.False(t, ok)
}
