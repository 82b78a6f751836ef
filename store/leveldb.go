package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/custodia-one/custodia/errors"
)

// LevelDBStore is the persistent backend of a module instance. Every
// transition runs inside a CacheWrap whose batch commits to leveldb
// atomically, so a crash never exposes a half-applied transition.
type LevelDBStore struct {
	db *leveldb.DB
}

var _ PersistentKVStore = (*LevelDBStore)(nil)

// OpenLevelDB opens (creating if missing) a leveldb database at given path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %q: %v", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

// Get returns nil iff key doesn't exist.
func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	switch err {
	case nil:
		return value, nil
	case ldberrors.ErrNotFound:
		return nil, nil
	default:
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %v", err)
	}
}

// Has checks if a key exists.
func (s *LevelDBStore) Has(key []byte) (bool, error) {
	ok, err := s.db.Has(key, nil)
	if err != nil {
		return false, errors.Wrapf(errors.ErrDatabase, "has: %v", err)
	}
	return ok, nil
}

// Set writes the key directly to the backend. Prefer going through a
// CacheWrap, direct writes are meant for genesis initialization only.
func (s *LevelDBStore) Set(key, value []byte) error {
	if err := s.db.Put(key, value, nil); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "put: %v", err)
	}
	return nil
}

// Delete removes the key directly from the backend.
func (s *LevelDBStore) Delete(key []byte) error {
	if err := s.db.Delete(key, nil); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "delete: %v", err)
	}
	return nil
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (s *LevelDBStore) Iterator(start, end []byte) (Iterator, error) {
	it := s.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &leveldbIter{it: it, reverse: false}, nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (s *LevelDBStore) ReverseIterator(start, end []byte) (Iterator, error) {
	it := s.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &leveldbIter{it: it, reverse: true}, nil
}

// CacheWrap returns a scratch-pad whose Write commits all accumulated
// operations to leveldb in a single atomic batch.
func (s *LevelDBStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, &leveldbBatch{db: s.db, batch: new(leveldb.Batch)}, nil)
}

// Close releases the backend.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// leveldbBatch accumulates writes and flushes them with the atomic write
// guarantee of leveldb batches.
type leveldbBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

var _ Batch = (*leveldbBatch)(nil)

func (b *leveldbBatch) Set(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *leveldbBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *leveldbBatch) Write() error {
	if err := b.db.Write(b.batch, nil); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write batch: %v", err)
	}
	b.batch.Reset()
	return nil
}

// leveldbIter adapts the goleveldb iterator. The goleveldb cursor starts
// before the first entry, which matches our Next-driven interface directly.
type leveldbIter struct {
	it      iterator.Iterator
	reverse bool
	started bool
}

var _ Iterator = (*leveldbIter)(nil)

func (l *leveldbIter) Next() ([]byte, []byte, error) {
	var ok bool
	if !l.started {
		l.started = true
		if l.reverse {
			ok = l.it.Last()
		} else {
			ok = l.it.First()
		}
	} else {
		if l.reverse {
			ok = l.it.Prev()
		} else {
			ok = l.it.Next()
		}
	}
	if !ok {
		if err := l.it.Error(); err != nil {
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "iterate: %v", err)
		}
		return nil, nil, errors.ErrIteratorDone
	}

	// goleveldb reuses the key/value buffers between moves.
	key := append([]byte(nil), l.it.Key()...)
	value := append([]byte(nil), l.it.Value()...)
	return key, value, nil
}

func (l *leveldbIter) Release() {
	l.it.Release()
}
