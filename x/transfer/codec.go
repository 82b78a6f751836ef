package transfer

import (
	"github.com/custodia-one/custodia"
)

// ShieldedParty is the sentinel account recorded in place of a hidden
// endpoint of a shielded-pool operation.
const ShieldedParty custodia.Address = "shielded"

// TransferType distinguishes transparent transfers from shielded-pool
// operations.
type TransferType uint8

const (
	TransferTypeInvalid TransferType = iota
	TransferTypeDirect
	TransferTypeShielded
)

func (t TransferType) String() string {
	switch t {
	case TransferTypeDirect:
		return "Direct"
	case TransferTypeShielded:
		return "Shielded"
	default:
		return "Invalid"
	}
}

// TransferStatus is the settlement state of a transfer record. Direct
// transfers are born Completed; the remaining statuses exist for host
// reconciliation.
type TransferStatus uint8

const (
	TransferStatusInvalid TransferStatus = iota
	TransferStatusPending
	TransferStatusCompleted
	TransferStatusFailed
	TransferStatusCancelled
)

func (s TransferStatus) String() string {
	switch s {
	case TransferStatusPending:
		return "Pending"
	case TransferStatusCompleted:
		return "Completed"
	case TransferStatusFailed:
		return "Failed"
	case TransferStatusCancelled:
		return "Cancelled"
	default:
		return "Invalid"
	}
}

// Transfer is one settled value movement. Amount is the gross value the
// sender committed, NetAmount what the recipient was paid after the fee;
// recording both keeps settlement reconstructible without knowing the fee
// rate at the time.
type Transfer struct {
	ID        string
	Sender    custodia.Address
	Recipient custodia.Address
	Amount    uint64
	NetAmount uint64
	Type      TransferType
	Status    TransferStatus
	// Commitment and Nullifier are set on shielded operations only.
	Commitment string
	Nullifier  string
	Memo       string
	Timestamp  custodia.UnixNano
}

// ShieldedNote is one unspent-or-spent entry of the shielded pool.
type ShieldedNote struct {
	ID         string
	Commitment string
	Amount     uint64
	Spent      bool
	// Nullifier is set exactly when the note is spent.
	Nullifier string
	CreatedAt custodia.UnixNano
}

// Configuration is the transfer module instance administration state.
type Configuration struct {
	Owner custodia.Address
	// FeePercentage in basis points, at most 500 (5%).
	FeePercentage uint32
	FeeRecipient  custodia.Address
}
