package escrow

import (
	"fmt"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/bank"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

const (
	createEscrowCost int64 = 300
	proofCost        int64 = 100
	settleCost       int64 = 0
	adminCost        int64 = 50
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r custodia.Registry) {
	r.Handle(pathCreate, createEscrowHandler{})
	r.Handle(pathSubmitProof, submitProofHandler{})
	r.Handle(pathVerifyProof, verifyProofHandler{})
	r.Handle(pathRelease, releaseEscrowHandler{})
	r.Handle(pathRefund, refundEscrowHandler{})
	r.Handle(pathRaiseDispute, raiseDisputeHandler{})
	r.Handle(pathResolveDispute, resolveDisputeHandler{})
	r.Handle(pathAddVerifier, updateVerifiersHandler{})
	r.Handle(pathRemoveVerifier, updateVerifiersHandler{})
}

type createEscrowHandler struct{}

var _ custodia.Handler = createEscrowHandler{}

func (h createEscrowHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: createEscrowCost}, nil
}

func (h createEscrowHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	depositor := custodia.MustCaller(ctx)
	amount := custodia.AttachedValue(ctx)

	e := &Escrow{
		ID:          m.EscrowID,
		Depositor:   depositor,
		Beneficiary: m.Beneficiary,
		Arbiter:     m.Arbiter,
		Amount:      amount,
		ReleaseTime: m.ReleaseTime,
		CreatedAt:   custodia.MustBlockTime(ctx),
		Status:      EscrowStatusActive,
		Metadata:    m.Metadata,
	}
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	if err := depositorIndex.Append(db, depositor, e.ID); err != nil {
		return nil, errors.Wrap(err, "depositor index")
	}
	if err := beneficiaryIndex.Append(db, e.Beneficiary, e.ID); err != nil {
		return nil, errors.Wrap(err, "beneficiary index")
	}
	return &custodia.DeliverResult{
		Data: []byte(e.ID),
		Log:  fmt.Sprintf("Escrow created: %s | Amount: %d | Beneficiary: %s", e.ID, amount, e.Beneficiary),
	}, nil
}

func (h createEscrowHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*CreateEscrowMsg, error) {
	m, ok := msg.(*CreateEscrowMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if custodia.AttachedValue(ctx) == 0 {
		return nil, errors.Wrap(errors.ErrAmount, "attached value must be positive")
	}
	if !custodia.InTheFuture(ctx, m.ReleaseTime) {
		return nil, errors.Wrap(errors.ErrInput, "release time must be in the future")
	}
	if _, ok := custodia.Caller(ctx); !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	switch ok, err := escrowBucket.Has(db, []byte(m.EscrowID)); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "escrow %q", m.EscrowID)
	}
	return m, nil
}

type submitProofHandler struct{}

var _ custodia.Handler = submitProofHandler{}

func (h submitProofHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: proofCost}, nil
}

func (h submitProofHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, e, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	e.Proof = &CrossChainProof{
		ChainID:     m.ChainID,
		TxHash:      m.TxHash,
		BlockNumber: m.BlockNumber,
		ProofData:   m.ProofData,
	}
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Cross-chain proof submitted for escrow: %s | TX: %s", e.ID, m.TxHash),
	}, nil
}

func (h submitProofHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*SubmitProofMsg, *Escrow, error) {
	m, ok := msg.(*SubmitProofMsg)
	if !ok {
		return nil, nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	e, err := GetEscrow(db, m.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if e.Status != EscrowStatusActive {
		return nil, nil, errors.Wrapf(errors.ErrState, "escrow must be active, is %s", e.Status)
	}
	// The slot is overwritable until verified, frozen afterwards.
	if e.HasVerifiedProof() {
		return nil, nil, errors.Wrap(errors.ErrImmutable, "proof already verified")
	}
	return m, e, nil
}

type verifyProofHandler struct{}

var _ custodia.Handler = verifyProofHandler{}

func (h verifyProofHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: proofCost}, nil
}

func (h verifyProofHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	e, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	e.Proof.Verified = true
	e.Proof.VerifiedAt = custodia.MustBlockTime(ctx)
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	key := proofKey(e.Proof.ChainID, e.Proof.TxHash)
	if err := proofBucket.Put(db, key, &verifiedProof{EscrowID: e.ID}); err != nil {
		return nil, errors.Wrap(err, "verification index")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Proof verified for escrow: %s", e.ID),
	}, nil
}

func (h verifyProofHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*Escrow, error) {
	m, ok := msg.(*VerifyProofMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !conf.IsVerifier(caller) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only trusted verifiers can verify proofs")
	}
	e, err := GetEscrow(db, m.EscrowID)
	if err != nil {
		return nil, err
	}
	if e.Status != EscrowStatusActive {
		return nil, errors.Wrapf(errors.ErrState, "escrow must be active, is %s", e.Status)
	}
	if e.Proof == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "no proof submitted")
	}
	if e.Proof.Verified {
		return nil, errors.Wrap(errors.ErrImmutable, "proof already verified")
	}
	return e, nil
}

type releaseEscrowHandler struct{}

var _ custodia.Handler = releaseEscrowHandler{}

func (h releaseEscrowHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: settleCost}, nil
}

func (h releaseEscrowHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	e, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	// The status write precedes queueing the payout.
	e.Status = EscrowStatusCompleted
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	if _, err := bank.Enqueue(db, e.Beneficiary, e.Amount, "escrow release"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Funds released from escrow: %s | Amount: %d", e.ID, e.Amount),
	}, nil
}

func (h releaseEscrowHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*Escrow, error) {
	m, ok := msg.(*ReleaseMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	e, err := GetEscrow(db, m.EscrowID)
	if err != nil {
		return nil, err
	}
	if e.Status != EscrowStatusActive {
		return nil, errors.Wrapf(errors.ErrState, "escrow must be active, is %s", e.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	switch {
	case !e.Arbiter.IsEmpty() && caller.Equals(e.Arbiter):
		// the arbiter bypasses the time and proof conditions
	case caller.Equals(e.Beneficiary):
		if !custodia.IsExpired(ctx, e.ReleaseTime) && !e.HasVerifiedProof() {
			return nil, errors.Wrap(errors.ErrState, "neither release time reached nor proof verified")
		}
	default:
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the beneficiary or the arbiter can release")
	}
	return e, nil
}

type refundEscrowHandler struct{}

var _ custodia.Handler = refundEscrowHandler{}

func (h refundEscrowHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: settleCost}, nil
}

func (h refundEscrowHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	e, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	e.Status = EscrowStatusRefunded
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	if _, err := bank.Enqueue(db, e.Depositor, e.Amount, "escrow refund"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Escrow refunded: %s", e.ID),
	}, nil
}

func (h refundEscrowHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*Escrow, error) {
	m, ok := msg.(*RefundMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	e, err := GetEscrow(db, m.EscrowID)
	if err != nil {
		return nil, err
	}
	if e.Status != EscrowStatusActive {
		return nil, errors.Wrapf(errors.ErrState, "escrow must be active, is %s", e.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !(caller.Equals(e.Depositor) || (!e.Arbiter.IsEmpty() && caller.Equals(e.Arbiter))) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the depositor or the arbiter can refund")
	}
	if !custodia.IsExpired(ctx, e.ReleaseTime) {
		return nil, errors.Wrap(errors.ErrState, "release time not reached")
	}
	if e.HasVerifiedProof() {
		return nil, errors.Wrap(errors.ErrState, "proof verified, funds belong to the beneficiary")
	}
	return e, nil
}

type raiseDisputeHandler struct{}

var _ custodia.Handler = raiseDisputeHandler{}

func (h raiseDisputeHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: adminCost}, nil
}

func (h raiseDisputeHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	e, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	e.Status = EscrowStatusDisputed
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Dispute raised for escrow: %s", e.ID),
	}, nil
}

func (h raiseDisputeHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*Escrow, error) {
	m, ok := msg.(*RaiseDisputeMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	e, err := GetEscrow(db, m.EscrowID)
	if err != nil {
		return nil, err
	}
	if e.Status != EscrowStatusActive {
		return nil, errors.Wrapf(errors.ErrState, "escrow must be active, is %s", e.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !(caller.Equals(e.Depositor) || caller.Equals(e.Beneficiary)) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the depositor or the beneficiary can dispute")
	}
	return e, nil
}

type resolveDisputeHandler struct{}

var _ custodia.Handler = resolveDisputeHandler{}

func (h resolveDisputeHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: settleCost}, nil
}

func (h resolveDisputeHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, e, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	var recipient custodia.Address
	switch m.Outcome {
	case OutcomeRelease:
		e.Status = EscrowStatusCompleted
		recipient = e.Beneficiary
	case OutcomeRefund:
		e.Status = EscrowStatusRefunded
		recipient = e.Depositor
	}
	if err := escrowBucket.Put(db, []byte(e.ID), e); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	if _, err := bank.Enqueue(db, recipient, e.Amount, "escrow dispute resolution"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Dispute resolved for escrow: %s | Outcome: %s", e.ID, m.Outcome),
	}, nil
}

func (h resolveDisputeHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*ResolveDisputeMsg, *Escrow, error) {
	m, ok := msg.(*ResolveDisputeMsg)
	if !ok {
		return nil, nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	e, err := GetEscrow(db, m.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if e.Status != EscrowStatusDisputed {
		return nil, nil, errors.Wrapf(errors.ErrState, "escrow must be disputed, is %s", e.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || e.Arbiter.IsEmpty() || !caller.Equals(e.Arbiter) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the arbiter can resolve a dispute")
	}
	return m, e, nil
}

type updateVerifiersHandler struct{}

var _ custodia.Handler = updateVerifiersHandler{}

func (h updateVerifiersHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: adminCost}, nil
}

func (h updateVerifiersHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	conf, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	var log string
	switch m := msg.(type) {
	case *AddVerifierMsg:
		for _, v := range conf.TrustedVerifiers {
			if v.Equals(m.Verifier) {
				return nil, errors.Wrapf(errors.ErrDuplicate, "verifier %s", m.Verifier)
			}
		}
		conf.TrustedVerifiers = append(conf.TrustedVerifiers, m.Verifier)
		log = fmt.Sprintf("Trusted verifier added: %s", m.Verifier)
	case *RemoveVerifierMsg:
		idx := -1
		for i, v := range conf.TrustedVerifiers {
			if v.Equals(m.Verifier) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, errors.Wrapf(errors.ErrNotFound, "verifier %s", m.Verifier)
		}
		conf.TrustedVerifiers = append(conf.TrustedVerifiers[:idx], conf.TrustedVerifiers[idx+1:]...)
		log = fmt.Sprintf("Trusted verifier removed: %s", m.Verifier)
	}
	if err := gconf.Save(db, "escrow", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	return &custodia.DeliverResult{Log: log}, nil
}

func (h updateVerifiersHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*Configuration, error) {
	switch msg.(type) {
	case *AddVerifierMsg, *RemoveVerifierMsg:
	default:
		return nil, errors.WrongMsgType(msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !conf.Owner.Equals(caller) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the owner can manage verifiers")
	}
	return conf, nil
}
