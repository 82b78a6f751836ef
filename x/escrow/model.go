package escrow

import (
	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
	"github.com/custodia-one/custodia/orm"
)

var _ orm.Model = (*Escrow)(nil)

func (e *Escrow) Validate() error {
	if e.ID == "" {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if err := e.Depositor.Validate(); err != nil {
		return errors.Wrap(err, "depositor")
	}
	if err := e.Beneficiary.Validate(); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if !e.Arbiter.IsEmpty() {
		if err := e.Arbiter.Validate(); err != nil {
			return errors.Wrap(err, "arbiter")
		}
	}
	if e.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	if err := e.ReleaseTime.Validate(); err != nil {
		return errors.Wrap(err, "release time")
	}
	if err := e.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "created at")
	}
	if e.Status == EscrowStatusInvalid {
		return errors.Wrap(errors.ErrState, "invalid status")
	}
	return nil
}

// HasVerifiedProof returns true when the proof slot holds a verified proof.
func (e *Escrow) HasVerifiedProof() bool {
	return e.Proof != nil && e.Proof.Verified
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) GetOwner() custodia.Address { return c.Owner }

func (c *Configuration) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := custodia.ValidateAddresses(c.TrustedVerifiers...); err != nil {
		return errors.Wrap(err, "trusted verifiers")
	}
	return nil
}

// IsVerifier returns true when a may verify proofs for this instance.
func (c *Configuration) IsVerifier(a custodia.Address) bool {
	if c.Owner.Equals(a) {
		return true
	}
	for _, v := range c.TrustedVerifiers {
		if v.Equals(a) {
			return true
		}
	}
	return false
}

// verifiedProof marks a consumed external-chain event in the verification
// index.
type verifiedProof struct {
	EscrowID string
}

func (verifiedProof) Validate() error { return nil }

var (
	escrowBucket = orm.NewModelBucket("escrow")
	// proofBucket maps "<chain_id>:<tx_hash>" to the consuming escrow so
	// the "has this external event been consumed" query is a point lookup.
	proofBucket = orm.NewModelBucket("proofver")

	depositorIndex   = orm.NewIDIndex("escrowdep")
	beneficiaryIndex = orm.NewIDIndex("escrowben")
)

func proofKey(chainID, txHash string) []byte {
	return []byte(chainID + ":" + txHash)
}

// GetEscrow loads the escrow with the given id, or ErrNotFound.
func GetEscrow(db custodia.ReadOnlyKVStore, id string) (*Escrow, error) {
	var e Escrow
	if err := escrowBucket.One(db, []byte(id), &e); err != nil {
		return nil, errors.Wrapf(err, "escrow %q", id)
	}
	return &e, nil
}

// IsProofVerified returns true when a verified proof consumed the given
// external-chain event.
func IsProofVerified(db custodia.ReadOnlyKVStore, chainID, txHash string) (bool, error) {
	return proofBucket.Has(db, proofKey(chainID, txHash))
}

// EscrowsByDepositor returns the ids of all escrows the account deposited
// into, oldest first.
func EscrowsByDepositor(db custodia.ReadOnlyKVStore, depositor custodia.Address) ([]string, error) {
	return depositorIndex.All(db, depositor)
}

// EscrowsByBeneficiary returns the ids of all escrows naming the account as
// beneficiary, oldest first.
func EscrowsByBeneficiary(db custodia.ReadOnlyKVStore, beneficiary custodia.Address) ([]string, error) {
	return beneficiaryIndex.All(db, beneficiary)
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "escrow", &conf); err != nil {
		return nil, errors.Wrap(err, "load escrow configuration")
	}
	return &conf, nil
}
