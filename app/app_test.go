package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/bank"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/store"
)

type depositMsg struct {
	Beneficiary custodia.Address
}

func (depositMsg) Path() string { return "deposit/create" }
func (m depositMsg) Validate() error {
	return m.Beneficiary.Validate()
}
func (depositMsg) Payable() {}

type pingMsg struct{}

func (pingMsg) Path() string    { return "deposit/ping" }
func (pingMsg) Validate() error { return nil }

type depositHandler struct{}

func (depositHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	return &custodia.CheckResult{}, nil
}

func (depositHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, ok := msg.(*depositMsg)
	if !ok {
		return nil, errors.ErrType
	}
	if err := db.Set([]byte("deposit:last"), []byte(m.Beneficiary)); err != nil {
		return nil, err
	}
	if _, err := bank.Enqueue(db, m.Beneficiary, custodia.AttachedValue(ctx), "deposit"); err != nil {
		return nil, err
	}
	return &custodia.DeliverResult{Log: "deposited"}, nil
}

type failingHandler struct{}

func (failingHandler) Check(custodia.Context, custodia.KVStore, custodia.Msg) (*custodia.CheckResult, error) {
	return nil, errors.ErrState
}

func (failingHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	// write something first, then fail: nothing may survive
	if err := db.Set([]byte("deposit:last"), []byte("tainted")); err != nil {
		return nil, err
	}
	return nil, errors.ErrState
}

type panickyHandler struct{}

func (panickyHandler) Check(custodia.Context, custodia.KVStore, custodia.Msg) (*custodia.CheckResult, error) {
	panic("boom")
}

func (panickyHandler) Deliver(custodia.Context, custodia.KVStore, custodia.Msg) (*custodia.DeliverResult, error) {
	panic("boom")
}

func newApp(t *testing.T, h custodia.Handler) (*CustodyApp, custodia.CacheableKVStore) {
	t.Helper()
	db := store.MemStore()
	router := NewRouter()
	router.Handle("deposit/create", h)
	stack := ChainDecorators(
		NewRecoveryDecorator(),
		NewValidationDecorator(),
		NewAttachedValueDecorator(),
	).WithHandler(router)
	return NewCustodyApp(db, stack, nil), db
}

func TestRouterRejectsUnknownPath(t *testing.T) {
	app, _ := newApp(t, depositHandler{})
	ctx := custodia.WithCaller(context.Background(), "alice.near")

	_, _, err := app.DeliverTx(ctx, pingMsg{})
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestRouterPanicsOnBadRegistration(t *testing.T) {
	router := NewRouter()
	assert.Panics(t, func() { router.Handle("NoSlash", depositHandler{}) })

	router.Handle("deposit/create", depositHandler{})
	assert.Panics(t, func() { router.Handle("deposit/create", depositHandler{}) })
}

func TestAttachedValueContract(t *testing.T) {
	app, _ := newApp(t, depositHandler{})

	// a payable message may carry value
	ctx := custodia.WithAttachedValue(custodia.WithCaller(context.Background(), "alice.near"), 100)
	_, payouts, err := app.DeliverTx(ctx, &depositMsg{Beneficiary: "bob.near"})
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, uint64(100), payouts[0].Amount)

	// a non-payable message must not
	router := NewRouter()
	router.Handle("deposit/ping", depositHandler{})
	appPing := NewCustodyApp(store.MemStore(), ChainDecorators(NewAttachedValueDecorator()).WithHandler(router), nil)
	ctx = custodia.WithAttachedValue(context.Background(), 1)
	_, _, err = appPing.DeliverTx(ctx, pingMsg{})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestDeliverCommitsAtomically(t *testing.T) {
	app, db := newApp(t, depositHandler{})
	ctx := custodia.WithAttachedValue(custodia.WithCaller(context.Background(), "alice.near"), 42)

	_, payouts, err := app.DeliverTx(ctx, &depositMsg{Beneficiary: "bob.near"})
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, custodia.Address("bob.near"), payouts[0].Recipient)

	raw, err := db.Get([]byte("deposit:last"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bob.near"), raw)

	// the queue was drained as part of delivery
	pending, err := bank.Pending(db)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeliverRollsBackOnFailure(t *testing.T) {
	app, db := newApp(t, failingHandler{})
	ctx := custodia.WithAttachedValue(custodia.WithCaller(context.Background(), "alice.near"), 42)

	_, _, err := app.DeliverTx(ctx, &depositMsg{Beneficiary: "bob.near"})
	assert.True(t, errors.ErrState.Is(err))

	raw, err := db.Get([]byte("deposit:last"))
	require.NoError(t, err)
	assert.Nil(t, raw, "failed transition must not write state")
}

func TestRecoveryDecorator(t *testing.T) {
	app, db := newApp(t, panickyHandler{})
	ctx := custodia.WithCaller(context.Background(), "alice.near")

	_, _, err := app.DeliverTx(ctx, &depositMsg{Beneficiary: "bob.near"})
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))

	raw, err := db.Get([]byte("deposit:last"))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestCheckTxNeverPersists(t *testing.T) {
	app, db := newApp(t, depositHandler{})
	ctx := custodia.WithAttachedValue(custodia.WithCaller(context.Background(), "alice.near"), 1)

	_, err := app.CheckTx(ctx, &depositMsg{Beneficiary: "bob.near"})
	require.NoError(t, err)

	raw, err := db.Get([]byte("deposit:last"))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

type genesisInit struct {
	key string
}

func (g genesisInit) FromGenesis(opts custodia.Options, db custodia.KVStore) error {
	var val string
	if err := opts.ReadOptions(g.key, &val); err != nil {
		return err
	}
	return db.Set([]byte("genesis:"+g.key), []byte(val))
}

func TestInitGenesis(t *testing.T) {
	db := store.MemStore()
	app := NewCustodyApp(db, NewRouter(), nil)

	opts := custodia.Options{"owner": []byte(`"alice.near"`)}
	require.NoError(t, app.InitGenesis(opts, genesisInit{key: "owner"}))

	raw, err := db.Get([]byte("genesis:owner"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alice.near"), raw)
}
