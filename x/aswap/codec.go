package aswap

import (
	"github.com/custodia-one/custodia"
)

// SwapStatus is the lifecycle position of an atomic swap.
type SwapStatus uint8

const (
	SwapStatusInvalid SwapStatus = iota
	// Initiated holds the initiator's deposit awaiting the participant.
	SwapStatusInitiated
	// Locked means the participant committed to the swap.
	SwapStatusLocked
	// Completed means the secret was revealed and the payout issued. Terminal.
	SwapStatusCompleted
	// Refunded means the time lock expired and the deposit went back. Terminal.
	SwapStatusRefunded
	// Cancelled means the initiator backed out before the participant
	// locked. Terminal.
	SwapStatusCancelled
)

func (s SwapStatus) String() string {
	switch s {
	case SwapStatusInitiated:
		return "Initiated"
	case SwapStatusLocked:
		return "Locked"
	case SwapStatusCompleted:
		return "Completed"
	case SwapStatusRefunded:
		return "Refunded"
	case SwapStatusCancelled:
		return "Cancelled"
	default:
		return "Invalid"
	}
}

// Terminal returns true once no further transition is permitted.
func (s SwapStatus) Terminal() bool {
	return s == SwapStatusCompleted || s == SwapStatusRefunded || s == SwapStatusCancelled
}

// HashAlgorithm names the hash family of a swap's lock.
type HashAlgorithm uint8

const (
	HashAlgorithmInvalid HashAlgorithm = iota
	// HashAlgorithmSHA256 locks are verified in-contract.
	HashAlgorithmSHA256
	// HashAlgorithmPoseidon locks require the oracle path: Poseidon is
	// not computable inside the contract.
	HashAlgorithmPoseidon
)

func (a HashAlgorithm) String() string {
	switch a {
	case HashAlgorithmSHA256:
		return "SHA256"
	case HashAlgorithmPoseidon:
		return "Poseidon"
	default:
		return "Invalid"
	}
}

// AtomicSwap is one leg of a cross-chain hash-time-locked exchange. The
// amount is frozen to the value attached at initiation.
type AtomicSwap struct {
	ID          string
	Initiator   custodia.Address
	Participant custodia.Address
	Amount      uint64
	// HashLock is the lowercase hex encoding of a 32-byte digest.
	HashLock  string
	Algorithm HashAlgorithm
	TimeLock  custodia.UnixNano
	CreatedAt custodia.UnixNano
	Status    SwapStatus
	// Secret is set iff the swap completed.
	Secret string
	// Cross-chain target descriptor, recorded for the relayers.
	TargetChain        string
	TargetAddress      string
	CounterpartySwapID string
}

// PoseidonVerification is the oracle's attestation that a revealed secret
// matches a Poseidon hash lock, keyed by swap id.
type PoseidonVerification struct {
	PoseidonHash  string
	SecretMatches bool
	VerifiedAt    custodia.UnixNano
}

// Configuration is the swap module instance administration state.
type Configuration struct {
	Owner custodia.Address
	// FeePercentage in basis points, at most 1000 (10%).
	FeePercentage uint32
	FeeRecipient  custodia.Address
	// OracleAccount is the only caller allowed to submit Poseidon
	// verifications.
	OracleAccount custodia.Address
	// MinTimeLock and MaxTimeLock bound the caller-supplied duration, in
	// seconds.
	MinTimeLock uint64
	MaxTimeLock uint64
}
