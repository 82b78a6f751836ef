package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/custodia-one/custodia/errors"
)

// Model groups a key-value pair for slice-backed iteration.
type Model struct {
	Key   []byte
	Value []byte
}

// SliceIterator wraps an Iterator over a slice of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{
		data: data,
	}
}

// Next returns the next key-value pair or ErrIteratorDone on exhaustion.
func (s *SliceIterator) Next() ([]byte, []byte, error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

// Release frees the underlying slice.
func (s *SliceIterator) Release() {
	s.data = nil
	s.idx = 0
}

// itemIter merges this transition's btree overlay with the iterator of the
// backing store. Overlay entries shadow the parent on equal keys; deleted
// overlay entries hide parent entries.
type itemIter struct {
	items   []btree.Item
	idx     int
	parent  Iterator
	reverse bool

	parentKey   []byte
	parentValue []byte
	parentDone  bool
	primed      bool
}

var _ Iterator = (*itemIter)(nil)

func mergeIterators(items []btree.Item, parent Iterator, reverse bool) *itemIter {
	return &itemIter{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// advanceParent loads the next parent pair unless exhausted.
func (i *itemIter) advanceParent() error {
	if i.parentDone {
		return nil
	}
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.parentKey, i.parentValue = key, value
	case errors.ErrIteratorDone.Is(err):
		i.parentDone = true
		i.parentKey, i.parentValue = nil, nil
	default:
		return err
	}
	return nil
}

// before reports whether key a comes before key b in iteration order.
func (i *itemIter) before(a, b []byte) bool {
	if i.reverse {
		return bytes.Compare(a, b) > 0
	}
	return bytes.Compare(a, b) < 0
}

func (i *itemIter) Next() ([]byte, []byte, error) {
	if !i.primed {
		if err := i.advanceParent(); err != nil {
			return nil, nil, err
		}
		i.primed = true
	}

	for {
		overlayLeft := i.idx < len(i.items)
		parentLeft := !i.parentDone

		switch {
		case !overlayLeft && !parentLeft:
			return nil, nil, errors.ErrIteratorDone

		case !overlayLeft:
			key, value := i.parentKey, i.parentValue
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
			return key, value, nil

		default:
			item := i.items[i.idx]
			overlayKey := item.(keyer).Key()

			if parentLeft && i.before(i.parentKey, overlayKey) {
				key, value := i.parentKey, i.parentValue
				if err := i.advanceParent(); err != nil {
					return nil, nil, err
				}
				return key, value, nil
			}

			// Overlay entry wins; skip the shadowed parent entry.
			if parentLeft && bytes.Equal(i.parentKey, overlayKey) {
				if err := i.advanceParent(); err != nil {
					return nil, nil, err
				}
			}
			i.idx++

			switch t := item.(type) {
			case setItem:
				return t.key, t.value, nil
			case deletedItem:
				// hidden, move on
				continue
			default:
				return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", item)
			}
		}
	}
}

func (i *itemIter) Release() {
	i.items = nil
	i.idx = 0
	i.parentDone = true
	i.parent.Release()
}

/////////////////////////////////////////////////////
// Empty KVStore

// EmptyKVStore never holds any data, used as a base layer in tests and
// in-memory stores.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil.
func (e EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false.
func (e EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop.
func (e EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop.
func (e EmptyKVStore) Delete(key []byte) error { return nil }

// Iterator is always empty.
func (e EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// ReverseIterator is always empty.
func (e EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
