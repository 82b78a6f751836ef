package bank

import (
	"github.com/google/uuid"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/orm"
)

// Payout is a single pending native token transfer out of the contract
// account. Payouts are written together with the state transition that
// caused them and drained by the host after the transition is committed,
// so a failed transition never pays anyone.
type Payout struct {
	ID        string
	Recipient custodia.Address
	Amount    uint64
	// Origin names the operation that queued the transfer, for the audit
	// trail only.
	Origin string
}

var _ orm.Model = (*Payout)(nil)

func (p *Payout) Validate() error {
	if p.ID == "" {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if err := p.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if p.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	return nil
}

var (
	payoutBucket = orm.NewModelBucket("payout")
	payoutSeq    = orm.NewSequence("payout", "id")
)

// Enqueue registers a pending transfer of amount to recipient. The queue
// entry is persisted in the same store (and therefore the same atomic
// write) as the state transition that requested it.
func Enqueue(db custodia.KVStore, recipient custodia.Address, amount uint64, origin string) (*Payout, error) {
	p := &Payout{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Amount:    amount,
		Origin:    origin,
	}
	seq, err := payoutSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "payout sequence")
	}
	if err := payoutBucket.Put(db, seq, p); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return p, nil
}

// Pending returns all queued payouts in the order they were enqueued.
func Pending(db custodia.ReadOnlyKVStore) ([]Payout, error) {
	var payouts []Payout
	err := payoutBucket.Iterate(db, func(_ []byte, raw []byte) error {
		var p Payout
		if err := payoutBucket.Unmarshal(raw, &p); err != nil {
			return err
		}
		payouts = append(payouts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

// Drain removes all queued payouts and returns them in queue order. The
// host is expected to execute the returned transfers after the commit.
func Drain(db custodia.KVStore) ([]Payout, error) {
	var (
		payouts []Payout
		keys    [][]byte
	)
	err := payoutBucket.Iterate(db, func(key []byte, raw []byte) error {
		var p Payout
		if err := payoutBucket.Unmarshal(raw, &p); err != nil {
			return err
		}
		payouts = append(payouts, p)
		k := make([]byte, len(key))
		copy(k, key)
		keys = append(keys, k)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := payoutBucket.Delete(db, k); err != nil {
			return nil, err
		}
	}
	return payouts, nil
}
