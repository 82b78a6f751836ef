package orm

import (
	"encoding/binary"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

// Sequence maintains a strictly increasing counter in the database. It is
// used to order entries that must drain in insertion order, such as the
// deferred payout queue.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence persisted under the given bucket and name.
func NewSequence(bucket, name string) Sequence {
	return Sequence{
		id: []byte("_s." + bucket + ":" + name),
	}
}

// NextVal increments the sequence and returns its new value as an 8 byte
// big-endian key, so that lexicographic key order equals allocation order.
func (s Sequence) NextVal(db custodia.KVStore) ([]byte, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load sequence")
	}
	var val uint64
	if raw != nil {
		if len(raw) != 8 {
			return nil, errors.Wrapf(errors.ErrState, "sequence %q corrupted", s.id)
		}
		val = binary.BigEndian.Uint64(raw)
	}
	val++
	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, val)
	if err := db.Set(s.id, next); err != nil {
		return nil, errors.Wrap(err, "cannot store sequence")
	}
	return next, nil
}
