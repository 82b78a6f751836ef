package orm

import (
	"regexp"

	"github.com/tendermint/go-amino"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

// cdc is the codec all buckets marshal through. Amino produces a
// deterministic, byte-stable encoding without a code generation step, so
// stored entities round-trip bit-exact across upgrades.
var cdc = amino.NewCodec()

// Model is implemented by any entity that can be stored in a ModelBucket.
type Model interface {
	Validate() error
}

var isBucketName = regexp.MustCompile(`^[a-z]{3,10}$`).MatchString

// ModelBucket reads and writes models of one kind under a private namespace
// prefix. Each module instance partitions its storage with distinct buckets
// and never reaches into another bucket's namespace.
type ModelBucket struct {
	prefix []byte
}

// NewModelBucket returns a bucket storing under the given namespace. The
// name must be a short lowercase identifier; it becomes part of every key.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	return ModelBucket{prefix: []byte(name + ":")}
}

// DBKey is the full storage key for the given entity key.
func (b ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte(nil), b.prefix...), key...)
}

// One queries the database for a single model instance. Lookup is done by
// the primary key. The result is loaded into the given destination model.
//
// This method returns ErrNotFound if the entity does not exist in the
// database.
func (b ModelBucket) One(db custodia.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrType, "%T cannot be deserialized: %v", dest, err)
	}
	return nil
}

// Has returns true if an entity with given key exists.
func (b ModelBucket) Has(db custodia.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put saves given model in the database. The model is validated before
// being written.
func (b ModelBucket) Put(db custodia.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot serialize %T: %v", m, err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database. It
// returns ErrNotFound if an entity with given key does not exist.
func (b ModelBucket) Delete(db custodia.KVStore, key []byte) error {
	dbkey := b.DBKey(key)
	ok, err := db.Has(dbkey)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return db.Delete(dbkey)
}

// Iterate walks all entities of this bucket in key order, calling fn with
// the entity key (prefix stripped) and the raw value for each.
func (b ModelBucket) Iterate(db custodia.ReadOnlyKVStore, fn func(key, raw []byte) error) error {
	it, err := db.Iterator(b.prefix, prefixEnd(b.prefix))
	if err != nil {
		return err
	}
	defer it.Release()
	for {
		key, raw, err := it.Next()
		switch {
		case err == nil:
			if err := fn(key[len(b.prefix):], raw); err != nil {
				return err
			}
		case errors.ErrIteratorDone.Is(err):
			return nil
		default:
			return err
		}
	}
}

// Unmarshal decodes a raw value of this bucket into dest. Use together with
// Iterate.
func (b ModelBucket) Unmarshal(raw []byte, dest Model) error {
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrType, "%T cannot be deserialized: %v", dest, err)
	}
	return nil
}

// prefixEnd returns the exclusive upper bound of the key range sharing the
// given prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	// prefix of all 0xff bytes, iterate to the end of the keyspace
	return nil
}
