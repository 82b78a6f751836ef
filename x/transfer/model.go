package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
	"github.com/custodia-one/custodia/orm"
)

// maxFeePercentage caps the transfer fee at 5%.
const maxFeePercentage = 500

var isCommitment = regexp.MustCompile(`^[a-f0-9]{64}$`).MatchString

var _ orm.Model = (*Transfer)(nil)

func (t *Transfer) Validate() error {
	if t.ID == "" {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if err := t.Sender.Validate(); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := t.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if t.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	if t.NetAmount > t.Amount {
		return errors.Wrap(errors.ErrAmount, "net amount above gross")
	}
	if t.Type != TransferTypeDirect && t.Type != TransferTypeShielded {
		return errors.Wrap(errors.ErrInput, "transfer type")
	}
	if t.Status == TransferStatusInvalid {
		return errors.Wrap(errors.ErrState, "invalid status")
	}
	if err := t.Timestamp.Validate(); err != nil {
		return errors.Wrap(err, "timestamp")
	}
	return nil
}

var _ orm.Model = (*ShieldedNote)(nil)

func (n *ShieldedNote) Validate() error {
	if n.ID == "" {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if !isCommitment(n.Commitment) {
		return errors.Wrap(errors.ErrInput, "commitment must be 64 lowercase hex characters")
	}
	if n.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	if n.Spent != (n.Nullifier != "") {
		return errors.Wrap(errors.ErrState, "note is spent iff its nullifier is set")
	}
	if err := n.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "created at")
	}
	return nil
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) GetOwner() custodia.Address { return c.Owner }

func (c *Configuration) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if c.FeePercentage > maxFeePercentage {
		return errors.Wrapf(errors.ErrAmount, "fee percentage above %d basis points", maxFeePercentage)
	}
	if c.FeePercentage > 0 {
		if err := c.FeeRecipient.Validate(); err != nil {
			return errors.Wrap(err, "fee recipient")
		}
	}
	return nil
}

// usedNullifier is the global nullifier set entry, pointing back at the
// note it spent.
type usedNullifier struct {
	NoteID string
}

func (usedNullifier) Validate() error { return nil }

// commitmentRef points a recipient commitment at the shielded transfer
// that announced it.
type commitmentRef struct {
	TransferID string
}

func (commitmentRef) Validate() error { return nil }

var (
	transferBucket = orm.NewModelBucket("transfer")
	noteBucket     = orm.NewModelBucket("note")
	// nullifierBucket is the global used-nullifier set. Every shielded
	// operation consults it, so double spending is rejected even across
	// notes, and the lookup is a point read.
	nullifierBucket = orm.NewModelBucket("nullifier")
	// rcptBucket maps recipient commitments to the shielded transfer that
	// announced them.
	rcptBucket = orm.NewModelBucket("rcptcommit")

	accountIndex = orm.NewIDIndex("xferacct")
)

// GetTransfer loads the transfer with the given id, or ErrNotFound.
func GetTransfer(db custodia.ReadOnlyKVStore, id string) (*Transfer, error) {
	var t Transfer
	if err := transferBucket.One(db, []byte(id), &t); err != nil {
		return nil, errors.Wrapf(err, "transfer %q", id)
	}
	return &t, nil
}

// GetNote loads the shielded note with the given id, or ErrNotFound.
func GetNote(db custodia.ReadOnlyKVStore, id string) (*ShieldedNote, error) {
	var n ShieldedNote
	if err := noteBucket.One(db, []byte(id), &n); err != nil {
		return nil, errors.Wrapf(err, "note %q", id)
	}
	return &n, nil
}

// TransfersByAccount returns the ids of all transfers involving the
// account, oldest first.
func TransfersByAccount(db custodia.ReadOnlyKVStore, account custodia.Address) ([]string, error) {
	return accountIndex.All(db, account)
}

// IsNullifierUsed reports whether the nullifier was published before.
func IsNullifierUsed(db custodia.ReadOnlyKVStore, nullifier string) (bool, error) {
	return nullifierBucket.Has(db, []byte(nullifier))
}

// TransferByRecipientCommitment resolves a recipient commitment to the
// announcing transfer id, or ErrNotFound.
func TransferByRecipientCommitment(db custodia.ReadOnlyKVStore, commitment string) (string, error) {
	var ref commitmentRef
	if err := rcptBucket.One(db, []byte(commitment), &ref); err != nil {
		return "", errors.Wrapf(err, "recipient commitment %q", commitment)
	}
	return ref.TransferID, nil
}

// outputNoteID derives the id of the note a shielded transfer creates
// under its new commitment.
func outputNoteID(transferID, newCommitment string) string {
	digest := sha256.Sum256([]byte(transferID + newCommitment))
	return hex.EncodeToString(digest[:])
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "transfer", &conf); err != nil {
		return nil, errors.Wrap(err, "load transfer configuration")
	}
	return &conf, nil
}
