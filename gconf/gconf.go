package gconf

import (
	"github.com/tendermint/go-amino"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

var cdc = amino.NewCodec()

// ReadStore is a subset of custodia.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of custodia.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is implemented by every module configuration singleton.
type Configuration interface {
	Validate() error
	// GetOwner returns the administrator of the module instance. The
	// owner is fixed at initialization and cannot be rotated.
	GetOwner() custodia.Address
}

// Save will Validate the object, before writing it to a special
// "configuration" singleton for that package name.
func Save(db Store, pkg string, src Configuration) error {
	key := []byte("_c:" + pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := cdc.MarshalBinaryBare(src)
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	return db.Set(key, raw)
}

// Load copies the configuration stored for the package into dst.
func Load(db ReadStore, pkg string, dst Configuration) error {
	key := []byte("_c:" + pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := cdc.UnmarshalBinaryBare(raw, dst); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", key)
	}
	return nil
}

// InitConfig will take opts["conf"][pkg], parse it into the given
// Configuration object, validate it, and store it under the proper key in
// the database. Returns an error if anything goes wrong.
func InitConfig(db Store, opts custodia.Options, pkg string, conf Configuration) error {
	var confOptions custodia.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
