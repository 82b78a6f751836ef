package custodia

import (
	"encoding/json"
)

// Msg is the requested action of a state transition. Messages are routed to
// handlers by their path.
type Msg interface {
	// Path returns the routing identifier of this message kind.
	Path() string
	// Validate makes sure basic rules are enforced upon input data.
	Validate() error
}

// PayableMsg marks messages that carry attached value. The dispatcher
// rejects attached value on any message that does not implement this
// interface; handlers of payable messages enforce their own minimum.
type PayableMsg interface {
	Msg
	// Payable is a marker method, never called for its result.
	Payable()
}

// Handler is a core engine that can process a few specific messages.
// This could represent "release escrowed funds", or "lock a swap".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a message. It is
// its own interface to allow better type controls in the next arguments in
// Decorator.
type Checker interface {
	Check(ctx Context, db KVStore, msg Msg) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a message. It is its own
// interface to allow better type controls in the next arguments in
// Decorator.
type Deliverer interface {
	Deliver(ctx Context, db KVStore, msg Msg) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like the
// attached-value contract, to many Handlers.
type Decorator interface {
	Check(ctx Context, db KVStore, msg Msg, next Checker) (*CheckResult, error)
	Deliver(ctx Context, db KVStore, msg Msg, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler, the setup side of a
// router.
type Registry interface {
	Handle(path string, h Handler)
}

// Options are the initialization options. Each extension can look up its key
// and parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the json
// into the given obj. Returns an error if it cannot parse. Noop and no error
// if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize extensions from the
// genesis file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
