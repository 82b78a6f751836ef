package custodia

import (
	"math"

	"github.com/custodia-one/custodia/errors"
)

// Basis point arithmetic shared by all fee-taking modules. One basis point
// is one ten-thousandth; a fee of 30 bp on 10_000 quanta is 30 quanta.
const bpDenominator = 10_000

// FeeCut returns the fee portion of the amount at the given basis point
// rate, rounding down. The remainder (amount minus fee) always reaches the
// counterparty, so integer truncation only ever favors the paying party.
func FeeCut(amount uint64, basisPoints uint32) (uint64, error) {
	if basisPoints > bpDenominator {
		return 0, errors.Wrapf(errors.ErrAmount, "fee of %d bp exceeds the whole", basisPoints)
	}
	if basisPoints == 0 || amount == 0 {
		return 0, nil
	}
	if amount > math.MaxUint64/uint64(basisPoints) {
		return 0, errors.Wrapf(errors.ErrOverflow, "amount %d at %d bp", amount, basisPoints)
	}
	return amount * uint64(basisPoints) / bpDenominator, nil
}
