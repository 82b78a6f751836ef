package aswap

import (
	"fmt"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/bank"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

const (
	initiateSwapCost int64 = 300
	lockSwapCost     int64 = 50
	settleSwapCost   int64 = 0
	oracleCost       int64 = 100
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r custodia.Registry) {
	r.Handle(pathInitiate, initiateSwapHandler{})
	r.Handle(pathLock, lockSwapHandler{})
	r.Handle(pathComplete, completeSwapHandler{})
	r.Handle(pathSubmitOracle, submitOracleHandler{})
	r.Handle(pathRefund, refundSwapHandler{})
	r.Handle(pathCancel, cancelSwapHandler{})
	r.Handle(pathUpdateConf, gconf.NewUpdateConfigurationHandler("aswap", &Configuration{}))
}

type initiateSwapHandler struct{}

var _ custodia.Handler = initiateSwapHandler{}

func (h initiateSwapHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: initiateSwapCost}, nil
}

func (h initiateSwapHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	initiator := custodia.MustCaller(ctx)
	now := custodia.MustBlockTime(ctx)

	s := &AtomicSwap{
		ID:                 m.SwapID,
		Initiator:          initiator,
		Participant:        m.Participant,
		Amount:             custodia.AttachedValue(ctx),
		HashLock:           m.HashLock,
		Algorithm:          m.Algorithm,
		TimeLock:           now.Add(custodia.AsSeconds(m.TimeLockDuration)),
		CreatedAt:          now,
		Status:             SwapStatusInitiated,
		TargetChain:        m.TargetChain,
		TargetAddress:      m.TargetAddress,
		CounterpartySwapID: m.CounterpartySwapID,
	}
	if err := swapBucket.Put(db, []byte(s.ID), s); err != nil {
		return nil, errors.Wrap(err, "cannot store swap")
	}
	if err := initiatorIndex.Append(db, initiator, s.ID); err != nil {
		return nil, errors.Wrap(err, "initiator index")
	}
	if err := participantIndex.Append(db, s.Participant, s.ID); err != nil {
		return nil, errors.Wrap(err, "participant index")
	}
	return &custodia.DeliverResult{
		Data: []byte(s.ID),
		Log:  fmt.Sprintf("Swap initiated: %s", s.ID),
	}, nil
}

func (h initiateSwapHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*InitiateSwapMsg, error) {
	m, ok := msg.(*InitiateSwapMsg)
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
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if m.TimeLockDuration < conf.MinTimeLock || m.TimeLockDuration > conf.MaxTimeLock {
		return nil, errors.Wrapf(errors.ErrInput, "time lock duration outside [%d, %d] seconds",
			conf.MinTimeLock, conf.MaxTimeLock)
	}
	switch ok, err := swapBucket.Has(db, []byte(m.SwapID)); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "swap %q", m.SwapID)
	}
	return m, nil
}

type lockSwapHandler struct{}

var _ custodia.Handler = lockSwapHandler{}

func (h lockSwapHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: lockSwapCost}, nil
}

func (h lockSwapHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	s, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	s.Status = SwapStatusLocked
	if err := swapBucket.Put(db, []byte(s.ID), s); err != nil {
		return nil, errors.Wrap(err, "cannot store swap")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Swap locked: %s", s.ID),
	}, nil
}

func (h lockSwapHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*AtomicSwap, error) {
	m, ok := msg.(*LockSwapMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s, err := GetSwap(db, m.SwapID)
	if err != nil {
		return nil, err
	}
	if s.Status != SwapStatusInitiated {
		return nil, errors.Wrapf(errors.ErrState, "swap must be initiated, is %s", s.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !caller.Equals(s.Participant) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the participant can lock")
	}
	if custodia.IsExpired(ctx, s.TimeLock) {
		return nil, errors.Wrap(errors.ErrExpired, "time lock expired")
	}
	return s, nil
}

type completeSwapHandler struct{}

var _ custodia.Handler = completeSwapHandler{}

func (h completeSwapHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: settleSwapCost}, nil
}

func (h completeSwapHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, s, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	fee, err := custodia.FeeCut(s.Amount, conf.FeePercentage)
	if err != nil {
		return nil, errors.Wrap(err, "fee")
	}
	payout := s.Amount - fee

	s.Status = SwapStatusCompleted
	s.Secret = m.Secret
	if err := swapBucket.Put(db, []byte(s.ID), s); err != nil {
		return nil, errors.Wrap(err, "cannot store swap")
	}
	if fee > 0 {
		if _, err := bank.Enqueue(db, conf.FeeRecipient, fee, "swap fee"); err != nil {
			return nil, errors.Wrap(err, "queue fee payout")
		}
	}
	if _, err := bank.Enqueue(db, s.Participant, payout, "swap complete"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Swap completed: %s | Secret revealed: %s | Payout: %d", s.ID, m.Secret, payout),
	}, nil
}

func (h completeSwapHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*CompleteSwapMsg, *AtomicSwap, error) {
	m, ok := msg.(*CompleteSwapMsg)
	if !ok {
		return nil, nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	s, err := GetSwap(db, m.SwapID)
	if err != nil {
		return nil, nil, err
	}
	if s.Status != SwapStatusLocked {
		return nil, nil, errors.Wrapf(errors.ErrState, "swap must be locked, is %s", s.Status)
	}
	if custodia.IsExpired(ctx, s.TimeLock) {
		return nil, nil, errors.Wrap(errors.ErrExpired, "time lock expired, refund only")
	}
	verifier, err := secretVerifierFor(s.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	if err := verifier.VerifySecret(db, s, m.Secret); err != nil {
		return nil, nil, err
	}
	return m, s, nil
}

type submitOracleHandler struct{}

var _ custodia.Handler = submitOracleHandler{}

func (h submitOracleHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: oracleCost}, nil
}

func (h submitOracleHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	m, s, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	v := &PoseidonVerification{
		PoseidonHash:  m.PoseidonHash,
		SecretMatches: m.SecretMatches,
		VerifiedAt:    custodia.MustBlockTime(ctx),
	}
	if err := oracleBucket.Put(db, []byte(s.ID), v); err != nil {
		return nil, errors.Wrap(err, "cannot store verification")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Oracle verification recorded for swap: %s", s.ID),
	}, nil
}

func (h submitOracleHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*SubmitOracleVerificationMsg, *AtomicSwap, error) {
	m, ok := msg.(*SubmitOracleVerificationMsg)
	if !ok {
		return nil, nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !caller.Equals(conf.OracleAccount) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the oracle account can submit verifications")
	}
	s, err := GetSwap(db, m.SwapID)
	if err != nil {
		return nil, nil, err
	}
	if s.Algorithm != HashAlgorithmPoseidon {
		return nil, nil, errors.Wrapf(errors.ErrState, "swap %q is not a Poseidon swap", s.ID)
	}
	return m, s, nil
}

type refundSwapHandler struct{}

var _ custodia.Handler = refundSwapHandler{}

func (h refundSwapHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: settleSwapCost}, nil
}

func (h refundSwapHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	s, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	s.Status = SwapStatusRefunded
	if err := swapBucket.Put(db, []byte(s.ID), s); err != nil {
		return nil, errors.Wrap(err, "cannot store swap")
	}
	// refund returns the full principal, no fee
	if _, err := bank.Enqueue(db, s.Initiator, s.Amount, "swap refund"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Swap refunded: %s", s.ID),
	}, nil
}

func (h refundSwapHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*AtomicSwap, error) {
	m, ok := msg.(*RefundSwapMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s, err := GetSwap(db, m.SwapID)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return nil, errors.Wrapf(errors.ErrState, "swap already %s", s.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !caller.Equals(s.Initiator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the initiator can refund")
	}
	if !custodia.IsExpired(ctx, s.TimeLock) {
		return nil, errors.Wrap(errors.ErrState, "time lock not reached")
	}
	return s, nil
}

type cancelSwapHandler struct{}

var _ custodia.Handler = cancelSwapHandler{}

func (h cancelSwapHandler) Check(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, msg); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: settleSwapCost}, nil
}

func (h cancelSwapHandler) Deliver(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*custodia.DeliverResult, error) {
	s, err := h.validate(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	s.Status = SwapStatusCancelled
	if err := swapBucket.Put(db, []byte(s.ID), s); err != nil {
		return nil, errors.Wrap(err, "cannot store swap")
	}
	if _, err := bank.Enqueue(db, s.Initiator, s.Amount, "swap cancel"); err != nil {
		return nil, errors.Wrap(err, "queue payout")
	}
	return &custodia.DeliverResult{
		Log: fmt.Sprintf("Swap cancelled: %s", s.ID),
	}, nil
}

func (h cancelSwapHandler) validate(ctx custodia.Context, db custodia.KVStore, msg custodia.Msg) (*AtomicSwap, error) {
	m, ok := msg.(*CancelSwapMsg)
	if !ok {
		return nil, errors.WrongMsgType(msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s, err := GetSwap(db, m.SwapID)
	if err != nil {
		return nil, err
	}
	// once the participant locked, only complete-or-timeout applies
	if s.Status != SwapStatusInitiated {
		return nil, errors.Wrapf(errors.ErrState, "swap must be initiated, is %s", s.Status)
	}
	caller, ok := custodia.Caller(ctx)
	if !ok || !caller.Equals(s.Initiator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the initiator can cancel")
	}
	if custodia.IsExpired(ctx, s.TimeLock) {
		return nil, errors.Wrap(errors.ErrExpired, "time lock expired, use refund")
	}
	return s, nil
}
