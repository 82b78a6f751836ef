package gconf

import (
	"reflect"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

// NewUpdateConfigurationHandler returns a message handler that manages a
// configuration update for a given package.
//
// This function requires a destination configuration object instance that
// the patch is applied to. Patch is a configuration instance as well,
// extracted from the message.
//
// Only the current configuration owner is authorized to patch, and the
// owner itself is immutable: a patch that carries an owner value is
// rejected.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig) custodia.Handler {
	return configHandler{
		pkg:    pkg,
		config: config,
	}
}

// OwnedConfig is the subset of a module configuration that the update
// handler operates on.
type OwnedConfig = Configuration

type configHandler struct {
	pkg    string
	config OwnedConfig
}

func (h configHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if err := h.applyTx(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{}, nil
}

func (h configHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	if err := h.applyTx(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.DeliverResult{Log: "Configuration updated: " + h.pkg}, nil
}

func (h configHandler) applyTx(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) error {
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "message")
	}
	patch, err := patchFrom(msg)
	if err != nil {
		return errors.Wrapf(err, "invalid message for %q configuration update", h.pkg)
	}

	if err := Load(db, h.pkg, h.config); err != nil {
		return errors.Wrap(err, "load configuration")
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !h.config.GetOwner().Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the owner can update the configuration")
	}
	if !patch.GetOwner().IsEmpty() {
		return errors.Wrap(errors.ErrImmutable, "owner cannot be changed")
	}

	if err := patchConfig(h.config, patch); err != nil {
		return errors.Wrap(err, "patch configuration")
	}
	return Save(db, h.pkg, h.config)
}

// patchFrom extracts the configuration carried in the message's Patch
// field. The update message of every module is a structure with a single
// Patch field of its configuration type.
func patchFrom(msg custodia.Msg) (Configuration, error) {
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrType, "message must be a structure pointer, got %T", msg)
	}
	field := v.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrType, "message %T has no Patch field", msg)
	}
	conf, ok := field.Addr().Interface().(Configuration)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T Patch field is not a configuration", msg)
	}
	return conf, nil
}

// patchConfig rewrites all non zero-value fields from the patch into the
// base configuration. Both arguments must be pointers to structures of the
// same type.
func patchConfig(base, patch Configuration) error {
	bval := reflect.ValueOf(base)
	pval := reflect.ValueOf(patch)
	if bval.Type() != pval.Type() {
		return errors.Wrapf(errors.ErrType, "patch type %T does not match configuration type %T", patch, base)
	}
	if bval.Kind() != reflect.Ptr || bval.Elem().Kind() != reflect.Struct {
		return errors.Wrapf(errors.ErrType, "configuration must be a structure pointer, got %T", base)
	}

	bval = bval.Elem()
	pval = pval.Elem()
	for i := 0; i < pval.NumField(); i++ {
		field := pval.Field(i)
		if field.IsZero() {
			continue
		}
		bval.Field(i).Set(field)
	}
	return nil
}
