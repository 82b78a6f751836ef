package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custodia/errors"
)

func TestMemStoreBasics(t *testing.T) {
	db := MemStore()

	k, v := []byte("a-key"), []byte("a-value")

	got, err := db.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Set(k, v))

	got, err = db.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	has, err := db.Has(k)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete(k))

	has, err = db.Has(k)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	db := MemStore()
	require.NoError(t, db.Set([]byte("base"), []byte("1")))

	// Discarded wrap leaves the parent untouched.
	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("tmp"), []byte("2")))
	require.NoError(t, cache.Delete([]byte("base")))
	cache.Discard()

	got, err := db.Get([]byte("base"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	has, err := db.Has([]byte("tmp"))
	require.NoError(t, err)
	assert.False(t, has)

	// Written wrap flushes all operations.
	cache = db.CacheWrap()
	require.NoError(t, cache.Set([]byte("tmp"), []byte("2")))
	require.NoError(t, cache.Delete([]byte("base")))
	require.NoError(t, cache.Write())

	got, err = db.Get([]byte("tmp"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
	has, err = db.Has([]byte("base"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCacheWrapShadowsParentReads(t *testing.T) {
	db := MemStore()
	require.NoError(t, db.Set([]byte("k"), []byte("old")))

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("k"), []byte("new")))

	got, err := cache.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)

	require.NoError(t, cache.Delete([]byte("k")))
	got, err = cache.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, got)

	// parent still has the old value until Write
	got, err = db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)
}

func collectKeys(t *testing.T, it Iterator) []string {
	t.Helper()
	defer it.Release()
	var keys []string
	for {
		k, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, string(k))
	}
}

func TestIteratorMergesOverlayAndParent(t *testing.T) {
	db := MemStore()
	require.NoError(t, db.Set([]byte("a"), []byte("1")))
	require.NoError(t, db.Set([]byte("c"), []byte("3")))
	require.NoError(t, db.Set([]byte("e"), []byte("5")))

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("2")))  // new key
	require.NoError(t, cache.Set([]byte("c"), []byte("33"))) // shadowed
	require.NoError(t, cache.Delete([]byte("e")))            // hidden

	it, err := cache.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, collectKeys(t, it))

	it, err = cache.Iterator([]byte("b"), []byte("e"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, collectKeys(t, it))
}

func TestReverseIterator(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Set([]byte(k), []byte("x")))
	}
	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("d"), []byte("x")))

	it, err := cache.ReverseIterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "b", "a"}, collectKeys(t, it))
}
