package custodia

import (
	"context"
	"time"
)

// Context is just the context.Context to keep the handler signatures
// readable. The host environment travels inside it.
type Context = context.Context

type contextKey int

const (
	contextKeyBlockTime contextKey = iota
	contextKeyCaller
	contextKeyAttachedValue
	contextKeyContractAccount
)

// WithBlockTime sets the block time for the current transition. The host
// clock is monotonic across transitions.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyBlockTime, AsUnixNano(t))
}

// BlockTime returns the block time of the current transition.
func BlockTime(ctx Context) (UnixNano, bool) {
	val, ok := ctx.Value(contextKeyBlockTime).(UnixNano)
	return val, ok
}

// MustBlockTime returns the block time of the current transition.
//
// This function panics if the block time is not provided in the context.
// This must never happen. The panic is here to prevent a broken setup from
// processing data incorrectly.
func MustBlockTime(ctx Context) UnixNano {
	val, ok := BlockTime(ctx)
	if !ok {
		panic("block time is not present")
	}
	return val
}

// WithCaller sets the account that invoked the current transition. The host
// authenticates the caller before dispatching, handlers only compare it with
// stored parties.
func WithCaller(ctx Context, caller Address) Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// Caller returns the account that invoked the current transition.
func Caller(ctx Context) (Address, bool) {
	val, ok := ctx.Value(contextKeyCaller).(Address)
	return val, ok
}

// MustCaller returns the account that invoked the current transition and
// panics if the host did not provide one.
func MustCaller(ctx Context) Address {
	val, ok := Caller(ctx)
	if !ok {
		panic("caller is not present")
	}
	return val
}

// WithAttachedValue sets the native asset amount delivered alongside a
// value bearing invocation.
func WithAttachedValue(ctx Context, amount uint64) Context {
	return context.WithValue(ctx, contextKeyAttachedValue, amount)
}

// AttachedValue returns the amount delivered with the current invocation,
// zero for non payable calls.
func AttachedValue(ctx Context) uint64 {
	val, _ := ctx.Value(contextKeyAttachedValue).(uint64)
	return val
}

// WithContractAccount sets the identity of the module instance itself.
func WithContractAccount(ctx Context, account Address) Context {
	return context.WithValue(ctx, contextKeyContractAccount, account)
}

// ContractAccount returns the identity of the module instance itself.
func ContractAccount(ctx Context) (Address, bool) {
	val, ok := ctx.Value(contextKeyContractAccount).(Address)
	return val, ok
}

// IsExpired returns true if given time is in the past as compared to the
// "now" as declared for the block. Expiration is inclusive, meaning that if
// current time is equal to the expiration time then this function returns
// true.
//
// This function panics if the block time is not provided in the context.
func IsExpired(ctx Context, t UnixNano) bool {
	return t <= MustBlockTime(ctx)
}

// InTheFuture returns true if given time is strictly after the block time
// declared in the context.
func InTheFuture(ctx Context, t UnixNano) bool {
	return t > MustBlockTime(ctx)
}
