package transfer

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

const (
	pathSendDirect     = "transfer/send_direct"
	pathShieldDeposit  = "transfer/shield_deposit"
	pathShieldTransfer = "transfer/shield_transfer"
	pathShieldWithdraw = "transfer/shield_withdraw"
	pathUpdateConf     = "transfer/update_configuration"
)

// SendDirectMsg is a transparent fee-taking transfer of the attached value.
type SendDirectMsg struct {
	TransferID string
	Recipient  custodia.Address
	Memo       string
}

var _ custodia.PayableMsg = (*SendDirectMsg)(nil)

func (SendDirectMsg) Path() string { return pathSendDirect }
func (SendDirectMsg) Payable()     {}

func (m *SendDirectMsg) Validate() error {
	if m.TransferID == "" {
		return errors.Wrap(errors.ErrEmpty, "transfer id")
	}
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	return nil
}

// ShieldDepositMsg moves the attached value into the shielded pool under a
// commitment.
type ShieldDepositMsg struct {
	NoteID     string
	Commitment string
}

var _ custodia.PayableMsg = (*ShieldDepositMsg)(nil)

func (ShieldDepositMsg) Path() string { return pathShieldDeposit }
func (ShieldDepositMsg) Payable()     {}

func (m *ShieldDepositMsg) Validate() error {
	if m.NoteID == "" {
		return errors.Wrap(errors.ErrEmpty, "note id")
	}
	if !isCommitment(m.Commitment) {
		return errors.Wrap(errors.ErrInput, "commitment must be 64 lowercase hex characters")
	}
	return nil
}

// ShieldTransferMsg spends a note inside the pool and creates the output
// note under a new commitment. Value never leaves the pool.
type ShieldTransferMsg struct {
	TransferID          string
	InputNoteID         string
	Nullifier           string
	NewCommitment       string
	RecipientCommitment string
	// Proof is the opaque zero-knowledge proof. The pool records it and
	// checks non-emptiness only; verification belongs to the host's
	// proving subsystem.
	Proof string
	Memo  string
}

var _ custodia.Msg = (*ShieldTransferMsg)(nil)

func (ShieldTransferMsg) Path() string { return pathShieldTransfer }

func (m *ShieldTransferMsg) Validate() error {
	if m.TransferID == "" {
		return errors.Wrap(errors.ErrEmpty, "transfer id")
	}
	if m.InputNoteID == "" {
		return errors.Wrap(errors.ErrEmpty, "input note id")
	}
	if !isCommitment(m.Nullifier) {
		return errors.Wrap(errors.ErrInput, "nullifier must be 64 lowercase hex characters")
	}
	if !isCommitment(m.NewCommitment) {
		return errors.Wrap(errors.ErrInput, "new commitment must be 64 lowercase hex characters")
	}
	if !isCommitment(m.RecipientCommitment) {
		return errors.Wrap(errors.ErrInput, "recipient commitment must be 64 lowercase hex characters")
	}
	if m.Proof == "" {
		return errors.Wrap(errors.ErrEmpty, "proof")
	}
	return nil
}

// ShieldWithdrawMsg spends a note out of the pool to a revealed recipient.
type ShieldWithdrawMsg struct {
	TransferID string
	NoteID     string
	Nullifier  string
	Recipient  custodia.Address
	Proof      string
}

var _ custodia.Msg = (*ShieldWithdrawMsg)(nil)

func (ShieldWithdrawMsg) Path() string { return pathShieldWithdraw }

func (m *ShieldWithdrawMsg) Validate() error {
	if m.TransferID == "" {
		return errors.Wrap(errors.ErrEmpty, "transfer id")
	}
	if m.NoteID == "" {
		return errors.Wrap(errors.ErrEmpty, "note id")
	}
	if !isCommitment(m.Nullifier) {
		return errors.Wrap(errors.ErrInput, "nullifier must be 64 lowercase hex characters")
	}
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if m.Proof == "" {
		return errors.Wrap(errors.ErrEmpty, "proof")
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
