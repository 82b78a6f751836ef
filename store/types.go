package store

import "github.com/custodia-one/custodia"

// Move references for all storage types into this package
// for shorter names everywhere.

type ReadOnlyKVStore = custodia.ReadOnlyKVStore
type KVStore = custodia.KVStore
type Iterator = custodia.Iterator
type CacheableKVStore = custodia.CacheableKVStore
type KVCacheWrap = custodia.KVCacheWrap
type PersistentKVStore = custodia.PersistentKVStore

// SetDeleter is a subset of KVStore that batches write into.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Batch groups writes so they can be applied to the backing store in one
// shot when the cache wrap commits.
type Batch interface {
	SetDeleter
	// Write flushes all accumulated operations to the destination.
	Write() error
}
