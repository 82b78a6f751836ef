/*
Package transfer implements peer-to-peer value movement: transparent
fee-taking direct transfers and a commitment/nullifier shielded pool.

Direct transfers settle immediately, splitting the attached value between
the recipient and the fee recipient and recording both the gross and the
net amount. The shielded pool hides endpoints behind commitments: deposits
create unspent notes, transfers spend a note and re-create its full value
under a new commitment without leaving the pool, withdrawals reveal the
recipient and settle minus the fee. A global nullifier set rejects any
reuse, across notes too.
*/
package transfer
