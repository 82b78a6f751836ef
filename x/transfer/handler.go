package transfer

import (
	"fmt"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/bank"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

const (
	sendCost     int64 = 100
	shieldedCost int64 = 200
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r custodia.Registry) {
	r.Handle(pathSendDirect, sendDirectHandler{})
	r.Handle(pathShieldDeposit, shieldDepositHandler{})
	r.Handle(pathShieldTransfer, shieldTransferHandler{})
	r.Handle(pathShieldWithdraw, shieldWithdrawHandler{})
	r.Handle(pathUpdateConf, gconf.NewUpdateConfigurationHandler("transfer", &Configuration{}))
}

type sendDirectHandler struct{}

var _ custodia.Handler = sendDirectHandler{}

func (h sendDirectHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: sendCost}, nil
}

func (h sendDirectHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	sender := custodia.MustCaller(ctx)
	gross := custodia.AttachedValue(ctx)

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	fee, err := custodia.FeeCut(gross, conf.FeePercentage)
	if err != nil {
		return nil, errors.Wrap(err, "fee")
	}
	net := gross - fee

	t := &Transfer{
		ID:        m.TransferID,
		Sender:    sender,
		Recipient: m.Recipient,
		Amount:    gross,
		NetAmount: net,
		Type:      TransferTypeDirect,
		Status:    TransferStatusCompleted,
		Memo:      m.Memo,
		Timestamp: custodia.MustBlockTime(ctx),
	}
	if err := transferBucket.Put(db, []byte(t.ID), t); err != nil {
		return nil, errors.Wrap(err, "cannot store transfer")
	}
	if err := accountIndex.Append(db, sender, t.ID); err != nil {
		return nil, errors.Wrap(err, "sender index")
	}
	if err := accountIndex.Append(db, m.Recipient, t.ID); err != nil {
		return nil, errors.Wrap(err, "recipient index")
	}
	if fee > 0 {
		if _, err := bank.Enqueue(db, conf.FeeRecipient, fee, "transfer fee"); err != nil {
			return nil, errors.Wrap(err, "queue fee payout")
		}
	}
	if _, err := bank.Enqueue(db, m.Recipient, net, "direct transfer"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Data: []byte(t.ID),
		Log:  fmt.Sprintf("Direct transfer: %s | From: %s | To: %s | Amount: %d", t.ID, sender, m.Recipient, net),
	}, nil
}

func (h sendDirectHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*SendDirectMsg, error) {
	m, ok := msg.(*SendDirectMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if custodia.AttachedValue(ctx) == 0 {
		return nil, errors.Wrap(errors.ErrAmount, "attached value must be positive")
	}
	if _, ok := custodia.Caller(ctx); !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	switch ok, err := transferBucket.Has(db, []byte(m.TransferID)); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "transfer %q", m.TransferID)
	}
	return m, nil
}

type shieldDepositHandler struct{}

var _ custodia.Handler = shieldDepositHandler{}

func (h shieldDepositHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: shieldedCost}, nil
}

func (h shieldDepositHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	amount := custodia.AttachedValue(ctx)

	// deposits carry no fee, the full attached value enters the pool
	n := &ShieldedNote{
		ID:         m.NoteID,
		Commitment: m.Commitment,
		Amount:     amount,
		CreatedAt:  custodia.MustBlockTime(ctx),
	}
	if err := noteBucket.Put(db, []byte(n.ID), n); err != nil {
		return nil, errors.Wrap(err, "cannot store note")
	}
	return &custodia.DeliverResult{
		Data: []byte(n.ID),
		Log:  fmt.Sprintf("Shielded deposit: %s | Commitment: %s | Amount: %d", n.ID, n.Commitment, amount),
	}, nil
}

func (h shieldDepositHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*ShieldDepositMsg, error) {
	m, ok := msg.(*ShieldDepositMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if custodia.AttachedValue(ctx) == 0 {
		return nil, errors.Wrap(errors.ErrAmount, "attached value must be positive")
	}
	switch ok, err := noteBucket.Has(db, []byte(m.NoteID)); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "note %q", m.NoteID)
	}
	return m, nil
}

type shieldTransferHandler struct{}

var _ custodia.Handler = shieldTransferHandler{}

func (h shieldTransferHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: shieldedCost}, nil
}

func (h shieldTransferHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, note, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	now := custodia.MustBlockTime(ctx)

	note.Spent = true
	note.Nullifier = m.Nullifier
	if err := noteBucket.Put(db, []byte(note.ID), note); err != nil {
		return nil, errors.Wrap(err, "cannot store note")
	}
	if err := nullifierBucket.Put(db, []byte(m.Nullifier), &usedNullifier{NoteID: note.ID}); err != nil {
		return nil, errors.Wrap(err, "nullifier set")
	}

	t := &Transfer{
		ID:         m.TransferID,
		Sender:     ShieldedParty,
		Recipient:  ShieldedParty,
		Amount:     note.Amount,
		NetAmount:  note.Amount,
		Type:       TransferTypeShielded,
		Status:     TransferStatusCompleted,
		Commitment: m.RecipientCommitment,
		Nullifier:  m.Nullifier,
		Memo:       m.Memo,
		Timestamp:  now,
	}
	if err := transferBucket.Put(db, []byte(t.ID), t); err != nil {
		return nil, errors.Wrap(err, "cannot store transfer")
	}

	// The output note keeps the pool balanced: the full input amount
	// moves under the new commitment, no fee at transfer.
	out := &ShieldedNote{
		ID:         outputNoteID(m.TransferID, m.NewCommitment),
		Commitment: m.NewCommitment,
		Amount:     note.Amount,
		CreatedAt:  now,
	}
	if err := noteBucket.Put(db, []byte(out.ID), out); err != nil {
		return nil, errors.Wrap(err, "cannot store output note")
	}
	if err := rcptBucket.Put(db, []byte(m.RecipientCommitment), &commitmentRef{TransferID: t.ID}); err != nil {
		return nil, errors.Wrap(err, "recipient commitment index")
	}
	return &custodia.DeliverResult{
		Data: []byte(out.ID),
		Log:  fmt.Sprintf("Shielded transfer: %s | Nullifier: %s", t.ID, m.Nullifier),
	}, nil
}

func (h shieldTransferHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*ShieldTransferMsg, *ShieldedNote, error) {
	m, ok := msg.(*ShieldTransferMsg)
	if !ok {
		return nil, nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	switch ok, err := transferBucket.Has(db, []byte(m.TransferID)); {
	case err != nil:
		return nil, nil, err
	case ok:
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "transfer %q", m.TransferID)
	}
	note, err := GetNote(db, m.InputNoteID)
	if err != nil {
		return nil, nil, err
	}
	if note.Spent {
		return nil, nil, errors.Wrapf(errors.ErrState, "note %q already spent", note.ID)
	}
	switch used, err := IsNullifierUsed(db, m.Nullifier); {
	case err != nil:
		return nil, nil, err
	case used:
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "nullifier already used")
	}
	switch ok, err := noteBucket.Has(db, []byte(outputNoteID(m.TransferID, m.NewCommitment))); {
	case err != nil:
		return nil, nil, err
	case ok:
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "output note exists")
	}
	return m, note, nil
}

type shieldWithdrawHandler struct{}

var _ custodia.Handler = shieldWithdrawHandler{}

func (h shieldWithdrawHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: shieldedCost}, nil
}

func (h shieldWithdrawHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, note, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	fee, err := custodia.FeeCut(note.Amount, conf.FeePercentage)
	if err != nil {
		return nil, errors.Wrap(err, "fee")
	}
	payout := note.Amount - fee

	note.Spent = true
	note.Nullifier = m.Nullifier
	if err := noteBucket.Put(db, []byte(note.ID), note); err != nil {
		return nil, errors.Wrap(err, "cannot store note")
	}
	if err := nullifierBucket.Put(db, []byte(m.Nullifier), &usedNullifier{NoteID: note.ID}); err != nil {
		return nil, errors.Wrap(err, "nullifier set")
	}

	t := &Transfer{
		ID:        m.TransferID,
		Sender:    ShieldedParty,
		Recipient: m.Recipient,
		Amount:    note.Amount,
		NetAmount: payout,
		Type:      TransferTypeShielded,
		Status:    TransferStatusCompleted,
		Nullifier: m.Nullifier,
		Memo:      "Shielded withdrawal",
		Timestamp: custodia.MustBlockTime(ctx),
	}
	if err := transferBucket.Put(db, []byte(t.ID), t); err != nil {
		return nil, errors.Wrap(err, "cannot store transfer")
	}
	if err := accountIndex.Append(db, m.Recipient, t.ID); err != nil {
		return nil, errors.Wrap(err, "recipient index")
	}
	if fee > 0 {
		if _, err := bank.Enqueue(db, conf.FeeRecipient, fee, "withdraw fee"); err != nil {
			return nil, errors.Wrap(err, "queue fee payout")
		}
	}
	if _, err := bank.Enqueue(db, m.Recipient, payout, "shielded withdrawal"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Data: []byte(t.ID),
		Log:  fmt.Sprintf("Shielded withdrawal: %s | To: %s | Amount: %d", t.ID, m.Recipient, payout),
	}, nil
}

func (h shieldWithdrawHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*ShieldWithdrawMsg, *ShieldedNote, error) {
	m, ok := msg.(*ShieldWithdrawMsg)
	if !ok {
		return nil, nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	switch ok, err := transferBucket.Has(db, []byte(m.TransferID)); {
	case err != nil:
		return nil, nil, err
	case ok:
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "transfer %q", m.TransferID)
	}
	note, err := GetNote(db, m.NoteID)
	if err != nil {
		return nil, nil, err
	}
	if note.Spent {
		return nil, nil, errors.Wrapf(errors.ErrState, "note %q already spent", note.ID)
	}
	switch used, err := IsNullifierUsed(db, m.Nullifier); {
	case err != nil:
		return nil, nil, err
	case used:
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "nullifier already used")
	}
	return m, note, nil
}
