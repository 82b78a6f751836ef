package escrow

import (
	"github.com/custodia-one/custodia"
)

// EscrowStatus is the lifecycle position of an escrow record.
type EscrowStatus uint8

const (
	EscrowStatusInvalid EscrowStatus = iota
	// Active accepts proofs, release, refund and dispute.
	EscrowStatusActive
	// Completed means the funds were released to the beneficiary. Terminal.
	EscrowStatusCompleted
	// Disputed halts all value movement until the arbiter resolves.
	EscrowStatusDisputed
	// Refunded means the funds went back to the depositor. Terminal.
	EscrowStatusRefunded
)

func (s EscrowStatus) String() string {
	switch s {
	case EscrowStatusActive:
		return "Active"
	case EscrowStatusCompleted:
		return "Completed"
	case EscrowStatusDisputed:
		return "Disputed"
	case EscrowStatusRefunded:
		return "Refunded"
	default:
		return "Invalid"
	}
}

// Terminal returns true once no further transition is permitted.
func (s EscrowStatus) Terminal() bool {
	return s == EscrowStatusCompleted || s == EscrowStatusRefunded
}

// CrossChainProof is the single proof slot of an escrow. It is
// overwritable until verified and frozen afterwards.
type CrossChainProof struct {
	ChainID     string
	TxHash      string
	BlockNumber uint64
	ProofData   string
	Verified    bool
	VerifiedAt  custodia.UnixNano
}

// Escrow is a two-party custody record with an optional arbiter. The
// amount is frozen to the value attached at creation.
type Escrow struct {
	ID          string
	Depositor   custodia.Address
	Beneficiary custodia.Address
	// Arbiter is optional. When set, it may release regardless of the
	// time and proof conditions, and resolve disputes.
	Arbiter     custodia.Address
	Amount      uint64
	ReleaseTime custodia.UnixNano
	CreatedAt   custodia.UnixNano
	Status      EscrowStatus
	Proof       *CrossChainProof
	// Metadata is an opaque caller-supplied string, never interpreted.
	Metadata string
}

// Configuration is the escrow module instance administration state.
type Configuration struct {
	Owner custodia.Address
	// TrustedVerifiers may verify cross-chain proofs in addition to the
	// owner.
	TrustedVerifiers []custodia.Address
}
