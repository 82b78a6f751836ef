package app

import (
	"github.com/custodia-one/custodia"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler.
type Decorators struct {
	chain []custodia.Decorator
}

// ChainDecorators takes a chain of decorators and, upon adding a final
// Handler (usually a Router), returns a Handler that executes the whole
// stack.
func ChainDecorators(chain ...custodia.Decorator) Decorators {
	return Decorators{chain: chain}
}

// WithHandler resolves the stack and returns a concrete Handler that will
// pass through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h custodia.Handler) custodia.Handler {
	// The top of the chain is executed first, so wrap from the end.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one decorator around a specific Handler.
type step struct {
	d    custodia.Decorator
	next custodia.Handler
}

var _ custodia.Handler = step{}

func (s step) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	return s.d.Check(ctx, db, msg, s.next)
}

func (s step) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	return s.d.Deliver(ctx, db, msg, s.next)
}
