package orm

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

// IDIndex keeps append-only lists of entity ids grouped by an owner key.
// The custody modules use it for the per-account secondary indices: swaps by
// initiator, swaps by participant, transfers by account. There is no
// removal and no compaction.
type IDIndex struct {
	bucket ModelBucket
}

// idList is the stored value of one index entry.
type idList struct {
	IDs []string
}

func (l *idList) Validate() error {
	return nil
}

// NewIDIndex returns an index storing under the given namespace.
func NewIDIndex(name string) IDIndex {
	return IDIndex{bucket: NewModelBucket(name)}
}

// Append adds the id to the list kept for the owner. Duplicates are not
// filtered, the callers only ever append ids of freshly created entities.
func (i IDIndex) Append(db custodia.KVStore, owner custodia.Address, id string) error {
	var list idList
	switch err := i.bucket.One(db, []byte(owner), &list); {
	case err == nil, errors.ErrNotFound.Is(err):
		// a missing entry means an empty list
	default:
		return errors.Wrap(err, "cannot load index entry")
	}
	list.IDs = append(list.IDs, id)
	return i.bucket.Put(db, []byte(owner), &list)
}

// All returns all ids recorded for the owner, oldest first. A missing entry
// is an empty list, not an error.
func (i IDIndex) All(db custodia.ReadOnlyKVStore, owner custodia.Address) ([]string, error) {
	var list idList
	switch err := i.bucket.One(db, []byte(owner), &list); {
	case err == nil:
		return list.IDs, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, errors.Wrap(err, "cannot load index entry")
	}
}
