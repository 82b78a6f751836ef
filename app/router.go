package app

import (
	"regexp"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

var isRoute = regexp.MustCompile(`^[a-z]+/[a-z_]+$`).MatchString

// Router maps message paths to their handlers.
type Router struct {
	routes map[string]custodia.Handler
}

var _ custodia.Registry = (*Router)(nil)
var _ custodia.Handler = (*Router)(nil)

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]custodia.Handler),
	}
}

// Handle registers a handler for the given path. It panics on an invalid
// path or a duplicate registration, as both are programmer errors.
func (r *Router) Handle(path string, h custodia.Handler) {
	if !isRoute(path) {
		panic("route must be of the form module/operation: " + path)
	}
	if _, ok := r.routes[path]; ok {
		panic("re-registering route: " + path)
	}
	r.routes[path] = h
}

// handler returns the registered handler, or a handler that always fails
// when the path is unknown.
func (r *Router) handler(path string) custodia.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

func (r *Router) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	return r.handler(msg.Path()).Check(ctx, db, msg)
}

func (r *Router) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	return r.handler(msg.Path()).Deliver(ctx, db, msg)
}

type notFoundHandler string

func (p notFoundHandler) Check(custodia.Context, custodia.KVStore, custodia.Msg) (*custodia.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(p))
}

func (p notFoundHandler) Deliver(custodia.Context, custodia.KVStore, custodia.Msg) (*custodia.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(p))
}
