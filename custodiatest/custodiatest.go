// Package custodiatest provides helpers shared by module tests: a fully
// populated execution environment and an in-memory store.
package custodiatest

import (
	"context"
	"time"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/store"
)

// ContractAccount is the default contract account id used by tests.
const ContractAccount custodia.Address = "custody.near"

// Env builds a transition environment the way the real runtime does.
type Env struct {
	Caller   custodia.Address
	Now      time.Time
	Attached uint64
}

// Ctx materializes the environment into a context. Zero fields get
// sensible defaults so most tests only set what they assert on.
func (e Env) Ctx() custodia.Context {
	ctx := context.Background()
	now := e.Now
	if now.IsZero() {
		now = time.Unix(1_700_000_000, 0)
	}
	ctx = custodia.WithBlockTime(ctx, now)
	ctx = custodia.WithContractAccount(ctx, ContractAccount)
	if e.Caller != "" {
		ctx = custodia.WithCaller(ctx, e.Caller)
	}
	if e.Attached != 0 {
		ctx = custodia.WithAttachedValue(ctx, e.Attached)
	}
	return ctx
}

// NewStore returns an empty in-memory cacheable store.
func NewStore() custodia.CacheableKVStore {
	return store.MemStore()
}
