package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/store"
)

type counterModel struct {
	Name  string
	Count uint64
}

func (c *counterModel) Validate() error {
	if c.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	return nil
}

func TestModelBucketRoundTrip(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnt")

	src := &counterModel{Name: "hits", Count: 42}
	require.NoError(t, b.Put(db, []byte("one"), src))

	var dest counterModel
	require.NoError(t, b.One(db, []byte("one"), &dest))
	assert.Equal(t, *src, dest)

	var missing counterModel
	err := b.One(db, []byte("two"), &missing)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestModelBucketRejectsInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnt")

	err := b.Put(db, []byte("one"), &counterModel{Count: 1})
	assert.True(t, errors.ErrEmpty.Is(err))

	ok, err := b.Has(db, []byte("one"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModelBucketDelete(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnt")

	err := b.Delete(db, []byte("ghost"))
	assert.True(t, errors.ErrNotFound.Is(err))

	require.NoError(t, b.Put(db, []byte("one"), &counterModel{Name: "n"}))
	require.NoError(t, b.Delete(db, []byte("one")))
	ok, err := b.Has(db, []byte("one"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModelBucketIterate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnt")
	other := NewModelBucket("oth")

	require.NoError(t, b.Put(db, []byte("a"), &counterModel{Name: "a"}))
	require.NoError(t, b.Put(db, []byte("b"), &counterModel{Name: "b"}))
	require.NoError(t, other.Put(db, []byte("x"), &counterModel{Name: "x"}))

	var names []string
	err := b.Iterate(db, func(key, raw []byte) error {
		var m counterModel
		if err := b.Unmarshal(raw, &m); err != nil {
			return err
		}
		names = append(names, m.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestIDIndexAppendAll(t *testing.T) {
	db := store.MemStore()
	idx := NewIDIndex("idx")

	ids, err := idx.All(db, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, idx.Append(db, "alice", "first"))
	require.NoError(t, idx.Append(db, "alice", "second"))
	require.NoError(t, idx.Append(db, "bob", "other"))

	ids, err = idx.All(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ids)
}

func TestSequenceOrder(t *testing.T) {
	db := store.MemStore()
	seq := NewSequence("test", "id")

	prev, err := seq.NextVal(db)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := seq.NextVal(db)
		require.NoError(t, err)
		assert.True(t, string(prev) < string(next), "sequence keys must be ordered")
		prev = next
	}
}
