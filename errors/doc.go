/*
Package errors implements custom error interfaces for the custody modules.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when it cannot be avoided. Errors are categorized
by a registered root error and compared using the Is method, never by string
matching. Every error that crosses a handler boundary wraps exactly one root
error, which makes failures transition-fatal and classifiable at the host
boundary without leaking internals.
*/
package errors
