package aswap

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

const (
	pathInitiate     = "aswap/initiate"
	pathLock         = "aswap/lock"
	pathComplete     = "aswap/complete"
	pathSubmitOracle = "aswap/submit_oracle_verification"
	pathRefund       = "aswap/refund"
	pathCancel       = "aswap/cancel"
	pathUpdateConf   = "aswap/update_configuration"
)

// InitiateSwapMsg opens a new swap funded by the attached value.
type InitiateSwapMsg struct {
	SwapID      string
	Participant custodia.Address
	HashLock    string
	Algorithm   HashAlgorithm
	// TimeLockDuration in seconds, bounded by the configuration.
	TimeLockDuration   uint64
	TargetChain        string
	TargetAddress      string
	CounterpartySwapID string
}

var _ custodia.PayableMsg = (*InitiateSwapMsg)(nil)

func (InitiateSwapMsg) Path() string { return pathInitiate }
func (InitiateSwapMsg) Payable()     {}

func (m *InitiateSwapMsg) Validate() error {
	if m.SwapID == "" {
		return errors.Wrap(errors.ErrEmpty, "swap id")
	}
	if err := m.Participant.Validate(); err != nil {
		return errors.Wrap(err, "participant")
	}
	if !isHashLock(m.HashLock) {
		return errors.Wrap(errors.ErrInput, "hash lock must be 64 lowercase hex characters")
	}
	if m.Algorithm != HashAlgorithmSHA256 && m.Algorithm != HashAlgorithmPoseidon {
		return errors.Wrap(errors.ErrInput, "hash algorithm")
	}
	if m.TimeLockDuration == 0 {
		return errors.Wrap(errors.ErrInput, "time lock duration")
	}
	if m.TargetChain == "" {
		return errors.Wrap(errors.ErrEmpty, "target chain")
	}
	if m.TargetAddress == "" {
		return errors.Wrap(errors.ErrEmpty, "target address")
	}
	return nil
}

// LockSwapMsg is the participant's commitment to the swap.
type LockSwapMsg struct {
	SwapID string
}

var _ custodia.Msg = (*LockSwapMsg)(nil)

func (LockSwapMsg) Path() string { return pathLock }

func (m *LockSwapMsg) Validate() error {
	if m.SwapID == "" {
		return errors.Wrap(errors.ErrEmpty, "swap id")
	}
	return nil
}

// CompleteSwapMsg reveals the secret and settles the swap.
type CompleteSwapMsg struct {
	SwapID string
	Secret string
}

var _ custodia.Msg = (*CompleteSwapMsg)(nil)

func (CompleteSwapMsg) Path() string { return pathComplete }

func (m *CompleteSwapMsg) Validate() error {
	if m.SwapID == "" {
		return errors.Wrap(errors.ErrEmpty, "swap id")
	}
	if m.Secret == "" {
		return errors.Wrap(errors.ErrEmpty, "secret")
	}
	return nil
}

// SubmitOracleVerificationMsg is the oracle's attestation for a Poseidon
// swap. Overwriting an earlier attestation is permitted.
type SubmitOracleVerificationMsg struct {
	SwapID        string
	PoseidonHash  string
	SecretMatches bool
}

var _ custodia.Msg = (*SubmitOracleVerificationMsg)(nil)

func (SubmitOracleVerificationMsg) Path() string { return pathSubmitOracle }

func (m *SubmitOracleVerificationMsg) Validate() error {
	if m.SwapID == "" {
		return errors.Wrap(errors.ErrEmpty, "swap id")
	}
	if !isHashLock(m.PoseidonHash) {
		return errors.Wrap(errors.ErrInput, "poseidon hash must be 64 lowercase hex characters")
	}
	return nil
}

// RefundSwapMsg returns the deposit to the initiator after the time lock
// expired.
type RefundSwapMsg struct {
	SwapID string
}

var _ custodia.Msg = (*RefundSwapMsg)(nil)

func (RefundSwapMsg) Path() string { return pathRefund }

func (m *RefundSwapMsg) Validate() error {
	if m.SwapID == "" {
		return errors.Wrap(errors.ErrEmpty, "swap id")
	}
	return nil
}

// CancelSwapMsg lets the initiator back out before the participant locked.
type CancelSwapMsg struct {
	SwapID string
}

var _ custodia.Msg = (*CancelSwapMsg)(nil)

func (CancelSwapMsg) Path() string { return pathCancel }

func (m *CancelSwapMsg) Validate() error {
	if m.SwapID == "" {
		return errors.Wrap(errors.ErrEmpty, "swap id")
	}
	return nil
}

// UpdateConfigurationMsg patches the module configuration. Owner only;
// the owner field itself is immutable.
type UpdateConfigurationMsg struct {
	Patch Configuration
}

var _ custodia.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string    { return pathUpdateConf }
func (UpdateConfigurationMsg) Validate() error { return nil }
