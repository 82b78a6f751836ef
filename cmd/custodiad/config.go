package main

import (
	"github.com/spf13/viper"

	"github.com/custodia-one/custodia/errors"
)

// Config holds all configuration for the daemon.
type Config struct {
	ListenAddress   string `mapstructure:"listen_address"`
	DBPath          string `mapstructure:"db_path"`
	GenesisPath     string `mapstructure:"genesis_path"`
	ContractAccount string `mapstructure:"contract_account"`
	LogLevel        string `mapstructure:"log_level"`
}

// LoadConfig reads the configuration file and the CUSTODIAD_* environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("listen_address", ":8420")
	v.SetDefault("db_path", "custodia.db")
	v.SetDefault("genesis_path", "genesis.json")
	v.SetDefault("contract_account", "custodia")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("CUSTODIAD")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
	} else {
		v.SetConfigName("custodiad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/custodiad")
		if err := v.ReadInConfig(); err != nil {
			// run on defaults and environment when no file is present
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "read config file")
			}
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &conf, nil
}
