package aswap

import (
	"regexp"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
	"github.com/custodia-one/custodia/orm"
)

// maxFeePercentage caps the swap fee at 10%.
const maxFeePercentage = 1000

var isHashLock = regexp.MustCompile(`^[a-f0-9]{64}$`).MatchString

var _ orm.Model = (*AtomicSwap)(nil)

func (s *AtomicSwap) Validate() error {
	if s.ID == "" {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if err := s.Initiator.Validate(); err != nil {
		return errors.Wrap(err, "initiator")
	}
	if err := s.Participant.Validate(); err != nil {
		return errors.Wrap(err, "participant")
	}
	if s.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	if !isHashLock(s.HashLock) {
		return errors.Wrap(errors.ErrInput, "hash lock must be 64 lowercase hex characters")
	}
	if s.Algorithm != HashAlgorithmSHA256 && s.Algorithm != HashAlgorithmPoseidon {
		return errors.Wrap(errors.ErrInput, "hash algorithm")
	}
	if err := s.TimeLock.Validate(); err != nil {
		return errors.Wrap(err, "time lock")
	}
	if err := s.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "created at")
	}
	if s.Status == SwapStatusInvalid {
		return errors.Wrap(errors.ErrState, "invalid status")
	}
	if (s.Secret != "") != (s.Status == SwapStatusCompleted) {
		return errors.Wrap(errors.ErrState, "secret is recorded iff the swap completed")
	}
	if s.TargetChain == "" {
		return errors.Wrap(errors.ErrEmpty, "target chain")
	}
	if s.TargetAddress == "" {
		return errors.Wrap(errors.ErrEmpty, "target address")
	}
	return nil
}

var _ orm.Model = (*PoseidonVerification)(nil)

func (v *PoseidonVerification) Validate() error {
	if !isHashLock(v.PoseidonHash) {
		return errors.Wrap(errors.ErrInput, "poseidon hash must be 64 lowercase hex characters")
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
	if err := c.OracleAccount.Validate(); err != nil {
		return errors.Wrap(err, "oracle account")
	}
	if c.MinTimeLock == 0 || c.MaxTimeLock < c.MinTimeLock {
		return errors.Wrap(errors.ErrInput, "time lock bounds")
	}
	return nil
}

var (
	swapBucket   = orm.NewModelBucket("swap")
	oracleBucket = orm.NewModelBucket("poseidon")

	initiatorIndex   = orm.NewIDIndex("swapinit")
	participantIndex = orm.NewIDIndex("swappart")
)

// GetSwap loads the swap with the given id, or ErrNotFound.
func GetSwap(db custodia.ReadOnlyKVStore, id string) (*AtomicSwap, error) {
	var s AtomicSwap
	if err := swapBucket.One(db, []byte(id), &s); err != nil {
		return nil, errors.Wrapf(err, "swap %q", id)
	}
	return &s, nil
}

// SwapsByInitiator returns the ids of all swaps the account initiated,
// oldest first.
func SwapsByInitiator(db custodia.ReadOnlyKVStore, initiator custodia.Address) ([]string, error) {
	return initiatorIndex.All(db, initiator)
}

// SwapsByParticipant returns the ids of all swaps naming the account as
// participant, oldest first.
func SwapsByParticipant(db custodia.ReadOnlyKVStore, participant custodia.Address) ([]string, error) {
	return participantIndex.All(db, participant)
}

// OracleVerification loads the oracle attestation for the swap, or
// ErrNotFound when none was submitted.
func OracleVerification(db custodia.ReadOnlyKVStore, swapID string) (*PoseidonVerification, error) {
	var v PoseidonVerification
	if err := oracleBucket.One(db, []byte(swapID), &v); err != nil {
		return nil, errors.Wrapf(err, "verification for swap %q", swapID)
	}
	return &v, nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "aswap", &conf); err != nil {
		return nil, errors.Wrap(err, "load aswap configuration")
	}
	return &conf, nil
}
