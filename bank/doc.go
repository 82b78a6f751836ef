/*
Package bank queues native token transfers requested by state transitions.

The contract account never pays synchronously. A transition that owes
tokens to an account enqueues a Payout in the same store it mutates, so
the payment request and the state change commit or roll back together.
After a successful commit the runtime drains the queue and hands the
transfers to the host ledger for execution.
*/
package bank
