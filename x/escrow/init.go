package escrow

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

// Initializer fulfils the custodia.Initializer interface to load data from
// the genesis file.
type Initializer struct{}

var _ custodia.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account info from genesis and save it to
// the database.
func (Initializer) FromGenesis(opts custodia.Options, db custodia.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, "escrow", &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	// The owner starts out as the sole trusted verifier unless the
	// genesis names others.
	if len(conf.TrustedVerifiers) == 0 {
		conf.TrustedVerifiers = []custodia.Address{conf.Owner}
		if err := gconf.Save(db, "escrow", &conf); err != nil {
			return errors.Wrap(err, "save config")
		}
	}
	return nil
}
