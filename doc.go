/*
Package custodia defines the common interfaces that tie the custody state
machines together, as well as implementations of the simpler components
(when interfaces would be too much overhead).

The execution model mirrors a single-threaded ledger host: every delivered
message is an atomic, totally-ordered state transition. Environment data
provided by the host, such as the caller account, the block time and the
value attached to a payable call, is passed through context.Context. For
every such value XYZ of type T there exist two functions:

	WithXYZ(Context, T) Context
	XYZ(Context) (val T, ok bool)

Extensions under x/ consume this environment and never talk to the host
directly.
*/
package custodia
