// Command custodiad runs the custody application behind an HTTP gateway. It
// owns a local leveldb store, applies the genesis file on first start and
// exposes transitions and queries under /api/v1.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/app"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/store"
	"github.com/custodia-one/custodia/x/aswap"
	"github.com/custodia-one/custodia/x/escrow"
	"github.com/custodia-one/custodia/x/transfer"
)

// initializedKey marks a store that already went through genesis.
var initializedKey = []byte("_sys:initialized")

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "custodiad: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	conf, err := LoadConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer logger.Sync()

	db, err := store.OpenLevelDB(conf.DBPath)
	if err != nil {
		return errors.Wrapf(err, "open store at %q", conf.DBPath)
	}
	defer db.Close()

	a := app.NewCustodyApp(db, buildHandler(), logger)

	if err := initGenesis(a, db, conf.GenesisPath, logger); err != nil {
		return errors.Wrap(err, "genesis initialization")
	}

	account := custodia.Address(conf.ContractAccount)
	if err := account.Validate(); err != nil {
		return errors.Wrap(err, "contract account")
	}
	srv := NewServer(a, db, account, logger)

	httpSrv := &http.Server{
		Addr:         conf.ListenAddress,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", conf.ListenAddress))
		errc <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(ctx)
	}
}

// buildHandler assembles the full transition stack: recovery, message
// validation and the attached value contract in front of the module routers.
func buildHandler() custodia.Handler {
	r := app.NewRouter()
	escrow.RegisterRoutes(r)
	aswap.RegisterRoutes(r)
	transfer.RegisterRoutes(r)
	return app.ChainDecorators(
		app.NewRecoveryDecorator(),
		app.NewValidationDecorator(),
		app.NewAttachedValueDecorator(),
	).WithHandler(r)
}

// initGenesis runs every module initializer against the genesis file, once
// per store lifetime.
func initGenesis(a *app.CustodyApp, db custodia.CacheableKVStore, path string, logger *zap.Logger) error {
	done, err := db.Has(initializedKey)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read genesis file %q", path)
	}
	var opts custodia.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return errors.Wrap(errors.ErrInput, "malformed genesis file")
	}

	err = a.InitGenesis(opts,
		escrow.Initializer{},
		aswap.Initializer{},
		transfer.Initializer{},
	)
	if err != nil {
		return err
	}
	if err := db.Set(initializedKey, []byte{1}); err != nil {
		return err
	}
	logger.Info("genesis applied", zap.String("path", path))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	switch level {
	case "debug":
		return zap.NewDevelopment()
	case "", "info", "warn", "error":
		conf := zap.NewProductionConfig()
		if level != "" && level != "info" {
			lvl, err := zap.ParseAtomicLevel(level)
			if err != nil {
				return nil, err
			}
			conf.Level = lvl
		}
		return conf.Build()
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown log level %q", level)
	}
}
