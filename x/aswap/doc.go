/*
Package aswap implements a hash-time-locked atomic swap usable as one leg
of a cross-chain exchange.

The initiator deposits the attached value behind a hash lock and a time
lock. The participant locks in, then completes by revealing the preimage
before the deadline, which pays the participant minus the protocol fee.
After the deadline the initiator reclaims the full deposit. SHA256 locks
are verified in-contract; Poseidon locks go through SecretVerifier's
oracle path because the contract cannot compute Poseidon itself.
*/
package aswap
