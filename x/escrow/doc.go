/*
Package escrow implements a time- and proof-gated custody record between a
depositor and a beneficiary, with an optional arbiter.

The depositor funds an escrow with the attached value. The beneficiary can
claim it once the release time passed, or earlier when a trusted verifier
confirmed an external-chain event through the proof slot. The arbiter can
release unconditionally, refund after the release time, and is the only
exit out of a raised dispute. Refunds return the full principal to the
depositor; the machine never takes a fee.
*/
package escrow
