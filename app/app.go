package app

import (
	"go.uber.org/zap"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/bank"
	"github.com/custodia-one/custodia/errors"
)

// CustodyApp executes state transitions against a persistent store. Each
// delivered message runs inside its own cache wrap: the transition commits
// atomically on success and leaves no trace on failure.
type CustodyApp struct {
	db      custodia.CacheableKVStore
	handler custodia.Handler
	logger  *zap.Logger
}

func NewCustodyApp(db custodia.CacheableKVStore, handler custodia.Handler, logger *zap.Logger) *CustodyApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustodyApp{
		db:      db,
		handler: handler,
		logger:  logger,
	}
}

// InitGenesis feeds the genesis options through all registered
// initializers. It must be called exactly once on an empty store.
func (a *CustodyApp) InitGenesis(opts custodia.Options, inits ...custodia.Initializer) error {
	cache := a.db.CacheWrap()
	for _, init := range inits {
		if err := init.FromGenesis(opts, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	return cache.Write()
}

// CheckTx runs the read-only validity check of a message. No state is
// retained regardless of the outcome.
func (a *CustodyApp) CheckTx(ctx custodia.Context, msg custodia.Msg) (*custodia.CheckResult, error) {
	cache := a.db.CacheWrap()
	defer cache.Discard()
	return a.handler.Check(ctx, cache, msg)
}

// DeliverTx executes a message. On success, the state transition is
// committed and any payouts the transition queued are drained and
// returned for the host ledger to execute. On failure, nothing is
// committed and no payout is released.
func (a *CustodyApp) DeliverTx(ctx custodia.Context, msg custodia.Msg) (*custodia.DeliverResult, []bank.Payout, error) {
	cache := a.db.CacheWrap()
	res, err := a.handler.Deliver(ctx, cache, msg)
	if err != nil {
		cache.Discard()
		a.logger.Info("transition rejected",
			zap.String("path", msg.Path()),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, nil, errors.Wrap(err, "commit")
	}

	payouts, err := a.drainPayouts()
	if err != nil {
		return nil, nil, err
	}

	a.logger.Info("transition committed",
		zap.String("path", msg.Path()),
		zap.String("log", res.Log),
		zap.Int("payouts", len(payouts)),
	)
	for _, p := range payouts {
		a.logger.Info("payout due",
			zap.String("id", p.ID),
			zap.String("recipient", p.Recipient.String()),
			zap.Uint64("amount", p.Amount),
			zap.String("origin", p.Origin),
		)
	}
	return res, payouts, nil
}

// drainPayouts removes the queued payouts in a single atomic write.
func (a *CustodyApp) drainPayouts() ([]bank.Payout, error) {
	cache := a.db.CacheWrap()
	payouts, err := bank.Drain(cache)
	if err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "drain payouts")
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "commit payout drain")
	}
	return payouts, nil
}
