package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *LevelDBStore {
	t.Helper()
	db, err := OpenLevelDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLevelDBRoundTrip(t *testing.T) {
	db := openTestDB(t)

	got, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	got, err = db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, db.Delete([]byte("k")))
	has, err := db.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestLevelDBCacheWrapCommits(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Set([]byte("stale"), []byte("x")))

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("fresh"), []byte("y")))
	require.NoError(t, cache.Delete([]byte("stale")))

	// nothing visible on the backend before Write
	has, err := db.Has([]byte("fresh"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, cache.Write())

	got, err := db.Get([]byte("fresh"))
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), got)
	has, err = db.Has([]byte("stale"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestLevelDBIterator(t *testing.T) {
	db := openTestDB(t)
	for _, k := range []string{"p:a", "p:b", "q:c"} {
		require.NoError(t, db.Set([]byte(k), []byte("x")))
	}

	it, err := db.Iterator([]byte("p:"), []byte("p;"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p:a", "p:b"}, collectKeys(t, it))

	it, err = db.ReverseIterator([]byte("p:"), []byte("p;"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p:b", "p:a"}, collectKeys(t, it))
}
