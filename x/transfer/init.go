package transfer

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

// defaultFeePercentage is applied when the genesis leaves the fee out.
const defaultFeePercentage uint32 = 10

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
	if err := confOpts.ReadOptions("transfer", &conf); err != nil {
		return errors.Wrap(err, "read transfer configuration")
	}
	if conf.FeePercentage == 0 {
		conf.FeePercentage = defaultFeePercentage
	}
	if err := gconf.Save(db, "transfer", &conf); err != nil {
		return errors.Wrap(err, "save config")
	}
	return nil
}
