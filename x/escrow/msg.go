package escrow

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

const (
	pathCreate         = "escrow/create"
	pathSubmitProof    = "escrow/submit_proof"
	pathVerifyProof    = "escrow/verify_proof"
	pathRelease        = "escrow/release"
	pathRefund         = "escrow/refund"
	pathRaiseDispute   = "escrow/raise_dispute"
	pathResolveDispute = "escrow/resolve_dispute"
	pathAddVerifier    = "escrow/add_verifier"
	pathRemoveVerifier = "escrow/remove_verifier"
)

// CreateEscrowMsg opens a new escrow funded by the attached value.
type CreateEscrowMsg struct {
	EscrowID    string
	Beneficiary custodia.Address
	ReleaseTime custodia.UnixNano
	Arbiter     custodia.Address
	Metadata    string
}

var _ custodia.PayableMsg = (*CreateEscrowMsg)(nil)

func (CreateEscrowMsg) Path() string { return pathCreate }
func (CreateEscrowMsg) Payable()     {}

func (m *CreateEscrowMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	if err := m.Beneficiary.Validate(); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if !m.Arbiter.IsEmpty() {
		if err := m.Arbiter.Validate(); err != nil {
			return errors.Wrap(err, "arbiter")
		}
	}
	if err := m.ReleaseTime.Validate(); err != nil {
		return errors.Wrap(err, "release time")
	}
	return nil
}

// SubmitProofMsg places an unverified cross-chain proof into the escrow's
// proof slot. Anyone may submit; verification is restricted.
type SubmitProofMsg struct {
	EscrowID    string
	ChainID     string
	TxHash      string
	BlockNumber uint64
	ProofData   string
}

var _ custodia.Msg = (*SubmitProofMsg)(nil)

func (SubmitProofMsg) Path() string { return pathSubmitProof }

func (m *SubmitProofMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	if m.ChainID == "" {
		return errors.Wrap(errors.ErrEmpty, "chain id")
	}
	if m.TxHash == "" {
		return errors.Wrap(errors.ErrEmpty, "tx hash")
	}
	return nil
}

// VerifyProofMsg marks the submitted proof as verified.
type VerifyProofMsg struct {
	EscrowID string
}

var _ custodia.Msg = (*VerifyProofMsg)(nil)

func (VerifyProofMsg) Path() string { return pathVerifyProof }

func (m *VerifyProofMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	return nil
}

// ReleaseMsg pays the escrowed amount out to the beneficiary.
type ReleaseMsg struct {
	EscrowID string
}

var _ custodia.Msg = (*ReleaseMsg)(nil)

func (ReleaseMsg) Path() string { return pathRelease }

func (m *ReleaseMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	return nil
}

// RefundMsg returns the escrowed amount to the depositor.
type RefundMsg struct {
	EscrowID string
}

var _ custodia.Msg = (*RefundMsg)(nil)

func (RefundMsg) Path() string { return pathRefund }

func (m *RefundMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	return nil
}

// RaiseDisputeMsg halts the escrow until the arbiter resolves it.
type RaiseDisputeMsg struct {
	EscrowID string
}

var _ custodia.Msg = (*RaiseDisputeMsg)(nil)

func (RaiseDisputeMsg) Path() string { return pathRaiseDispute }

func (m *RaiseDisputeMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	return nil
}

// DisputeOutcome selects where a resolved dispute sends the funds.
type DisputeOutcome uint8

const (
	OutcomeInvalid DisputeOutcome = iota
	// OutcomeRelease completes the escrow, paying the beneficiary.
	OutcomeRelease
	// OutcomeRefund refunds the escrow, paying the depositor.
	OutcomeRefund
)

func (o DisputeOutcome) String() string {
	switch o {
	case OutcomeRelease:
		return "Release"
	case OutcomeRefund:
		return "Refund"
	default:
		return "Invalid"
	}
}

// ResolveDisputeMsg is the arbiter's exit transition out of the Disputed
// state.
type ResolveDisputeMsg struct {
	EscrowID string
	Outcome  DisputeOutcome
}

var _ custodia.Msg = (*ResolveDisputeMsg)(nil)

func (ResolveDisputeMsg) Path() string { return pathResolveDispute }

func (m *ResolveDisputeMsg) Validate() error {
	if m.EscrowID == "" {
		return errors.Wrap(errors.ErrEmpty, "escrow id")
	}
	if m.Outcome != OutcomeRelease && m.Outcome != OutcomeRefund {
		return errors.Wrap(errors.ErrInput, "outcome")
	}
	return nil
}

// AddVerifierMsg extends the trusted verifier set. Owner only.
type AddVerifierMsg struct {
	Verifier custodia.Address
}

var _ custodia.Msg = (*AddVerifierMsg)(nil)

func (AddVerifierMsg) Path() string { return pathAddVerifier }

func (m *AddVerifierMsg) Validate() error {
	return m.Verifier.Validate()
}

// RemoveVerifierMsg shrinks the trusted verifier set. Owner only.
type RemoveVerifierMsg struct {
	Verifier custodia.Address
}

var _ custodia.Msg = (*RemoveVerifierMsg)(nil)

func (RemoveVerifierMsg) Path() string { return pathRemoveVerifier }

func (m *RemoveVerifierMsg) Validate() error {
	return m.Verifier.Validate()
}
