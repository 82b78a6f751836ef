package custodia

import (
	"context"
	"testing"
	"time"
)

func TestContextEnvironment(t *testing.T) {
	now := time.Now()
	ctx := context.Background()
	ctx = WithBlockTime(ctx, now)
	ctx = WithCaller(ctx, "alice")
	ctx = WithAttachedValue(ctx, 77)
	ctx = WithContractAccount(ctx, "custody.pool")

	if got := MustBlockTime(ctx); got != AsUnixNano(now) {
		t.Fatalf("unexpected block time: %d", got)
	}
	if got := MustCaller(ctx); got != "alice" {
		t.Fatalf("unexpected caller: %q", got)
	}
	if got := AttachedValue(ctx); got != 77 {
		t.Fatalf("unexpected attached value: %d", got)
	}
	if got, ok := ContractAccount(ctx); !ok || got != "custody.pool" {
		t.Fatalf("unexpected contract account: %q", got)
	}
}

func TestAttachedValueDefaultsToZero(t *testing.T) {
	if got := AttachedValue(context.Background()); got != 0 {
		t.Fatalf("unexpected attached value: %d", got)
	}
}

func TestIsExpiredIsInclusive(t *testing.T) {
	now := time.Now()
	ctx := WithBlockTime(context.Background(), now)

	at := AsUnixNano(now)
	if !IsExpired(ctx, at) {
		t.Fatal("expiration must be inclusive of the block time")
	}
	if IsExpired(ctx, at.Add(time.Nanosecond)) {
		t.Fatal("future time must not be expired")
	}
	if InTheFuture(ctx, at) {
		t.Fatal("block time itself is not in the future")
	}
}

func TestMustBlockTimePanicsWithoutHost(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	MustBlockTime(context.Background())
}
