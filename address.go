package custodia

import (
	"regexp"

	"github.com/custodia-one/custodia/errors"
)

// Address is the identity of an account on the host ledger. The host
// guarantees that every caller identity it reports is a registered account,
// so from the state machine perspective an address is an opaque, validated
// string.
type Address string

const (
	minAddressLength = 2
	maxAddressLength = 64
)

var isValidAddress = regexp.MustCompile(`^[a-z0-9]+([-_.][a-z0-9]+)*$`).MatchString

// Validate returns an error if this is not a well formed account identity.
func (a Address) Validate() error {
	if len(a) < minAddressLength || len(a) > maxAddressLength {
		return errors.Wrapf(errors.ErrInput, "address length must be between %d and %d characters", minAddressLength, maxAddressLength)
	}
	if !isValidAddress(string(a)) {
		return errors.Wrapf(errors.ErrInput, "address %q contains forbidden characters", a)
	}
	return nil
}

// Equals checks if two addresses refer to the same account.
func (a Address) Equals(other Address) bool {
	return a == other
}

// IsEmpty returns true for an unset address. Optional parties (an escrow
// without arbiter) are represented by an empty address.
func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) String() string {
	return string(a)
}

// ValidateAddresses returns an error if any of the given addresses does not
// validate. Empty addresses are considered valid here, callers enforce
// presence separately.
func ValidateAddresses(addrs ...Address) error {
	for _, a := range addrs {
		if !a.IsEmpty() {
			if err := a.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
