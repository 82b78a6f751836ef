package app

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

// AttachedValueDecorator enforces the deposit contract: only messages that
// declare themselves payable may carry attached value. How much value a
// payable message requires is the concern of its own handler.
type AttachedValueDecorator struct{}

var _ custodia.Decorator = AttachedValueDecorator{}

func NewAttachedValueDecorator() AttachedValueDecorator {
	return AttachedValueDecorator{}
}

func (AttachedValueDecorator) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg, next custodia.Checker) (*custodia.CheckResult, error) {
	if err := checkAttached(ctx, msg); err != nil {
		return nil, err
	}
	return next.Check(ctx, db, msg)
}

func (AttachedValueDecorator) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg, next custodia.Deliverer) (*custodia.DeliverResult, error) {
	if err := checkAttached(ctx, msg); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, msg)
}

func checkAttached(ctx custodia.Context, msg custodia.Msg) error {
	if _, ok := msg.(custodia.PayableMsg); ok {
		return nil
	}
	if attached := custodia.AttachedValue(ctx); attached != 0 {
		return errors.Wrapf(errors.ErrInput, "message %q does not accept attached value", msg.Path())
	}
	return nil
}

// RecoveryDecorator turns a panic inside a handler into an error so one
// broken transition cannot take down the runtime.
type RecoveryDecorator struct{}

var _ custodia.Decorator = RecoveryDecorator{}

func NewRecoveryDecorator() RecoveryDecorator {
	return RecoveryDecorator{}
}

func (RecoveryDecorator) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg, next custodia.Checker) (res *custodia.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, msg)
}

func (RecoveryDecorator) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg, next custodia.Deliverer) (res *custodia.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, msg)
}

// ValidationDecorator rejects malformed messages before they reach any
// handler state logic.
type ValidationDecorator struct{}

var _ custodia.Decorator = ValidationDecorator{}

func NewValidationDecorator() ValidationDecorator {
	return ValidationDecorator{}
}

func (ValidationDecorator) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg, next custodia.Checker) (*custodia.CheckResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return next.Check(ctx, db, msg)
}

func (ValidationDecorator) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg, next custodia.Deliverer) (*custodia.DeliverResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, msg)
}
