package aswap

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

// Default configuration values, applied when the genesis leaves them out.
const (
	defaultFeePercentage uint32 = 30
	defaultMinTimeLock   uint64 = 3600
	defaultMaxTimeLock   uint64 = 86400
)

// Initializer fulfils the custodia.Initializer interface to load data from
// the genesis file.
type Initializer struct{}

var _ custodia.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account info from genesis and save it to
// the database.
func (Initializer) FromGenesis(opts custodia.Options, db custodia.KVStore) error {
	var confOpts custodia.Options
	if err := opts.ReadOptions("conf", &confOpts); err != nil {
		return errors.Wrap(err, "read conf")
	}
	var conf Configuration
	if err := confOpts.ReadOptions("aswap", &conf); err != nil {
		return errors.Wrap(err, "read aswap configuration")
	}
	if conf.FeePercentage == 0 {
		conf.FeePercentage = defaultFeePercentage
	}
	if conf.MinTimeLock == 0 {
		conf.MinTimeLock = defaultMinTimeLock
	}
	if conf.MaxTimeLock == 0 {
		conf.MaxTimeLock = defaultMaxTimeLock
	}
	if err := gconf.Save(db, "aswap", &conf); err != nil {
		return errors.Wrap(err, "save config")
	}
	return nil
}
