package aswap

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/bank"
	"github.com/custodia-one/custodia/custodiatest"
	"github.com/custodia-one/custodia/errors"
	"github.com/custodia-one/custodia/gconf"
)

const (
	owner        custodia.Address = "owner.near"
	initiator    custodia.Address = "alice.near"
	participant  custodia.Address = "bob.near"
	feeRecipient custodia.Address = "fees.near"
	oracle       custodia.Address = "oracle.near"
	stranger     custodia.Address = "mallory.near"
)

var now0 = time.Unix(1_700_000_000, 0)

func hashLockOf(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}

func newSwapDB(t *testing.T) custodia.CacheableKVStore {
	t.Helper()
	db := custodiatest.NewStore()
	err := gconf.Save(db, "aswap", &Configuration{
		Owner:         owner,
		FeePercentage: 30,
		FeeRecipient:  feeRecipient,
		OracleAccount: oracle,
		MinTimeLock:   3600,
		MaxTimeLock:   86400,
	})
	require.NoError(t, err)
	return db
}

func initiateTestSwap(t *testing.T, db custodia.KVStore, alg HashAlgorithm, hashLock string, amount uint64) {
	t.Helper()
	ctx := custodiatest.Env{Caller: initiator, Now: now0, Attached: amount}.Ctx()
	_, err := initiateSwapHandler{}.Deliver(ctx, db, &InitiateSwapMsg{
		SwapID:           "swap-1",
		Participant:      participant,
		HashLock:         hashLock,
		Algorithm:        alg,
		TimeLockDuration: 3600,
		TargetChain:      "ethereum",
		TargetAddress:    "0xdeadbeef",
	})
	require.NoError(t, err)
}

func lockTestSwap(t *testing.T, db custodia.KVStore) {
	t.Helper()
	ctx := custodiatest.Env{Caller: participant, Now: now0.Add(time.Minute)}.Ctx()
	_, err := lockSwapHandler{}.Deliver(ctx, db, &LockSwapMsg{SwapID: "swap-1"})
	require.NoError(t, err)
}

func drainAndSum(t *testing.T, db custodia.KVStore) map[custodia.Address]uint64 {
	t.Helper()
	payouts, err := bank.Drain(db)
	require.NoError(t, err)
	sums := make(map[custodia.Address]uint64)
	for _, p := range payouts {
		sums[p.Recipient] += p.Amount
	}
	return sums
}

func TestInitiateSwap(t *testing.T) {
	valid := InitiateSwapMsg{
		SwapID:           "swap-1",
		Participant:      participant,
		HashLock:         hashLockOf("hello"),
		Algorithm:        HashAlgorithmSHA256,
		TimeLockDuration: 3600,
		TargetChain:      "ethereum",
		TargetAddress:    "0xdeadbeef",
	}

	cases := map[string]struct {
		mutate   func(m *InitiateSwapMsg)
		attached uint64
		wantErr  *errors.Error
	}{
		"happy path": {
			mutate:   func(m *InitiateSwapMsg) {},
			attached: 10_000,
		},
		"zero attached value": {
			mutate:   func(m *InitiateSwapMsg) {},
			attached: 0,
			wantErr:  errors.ErrAmount,
		},
		"duration below the minimum": {
			mutate:   func(m *InitiateSwapMsg) { m.TimeLockDuration = 3599 },
			attached: 10_000,
			wantErr:  errors.ErrInput,
		},
		"duration above the maximum": {
			mutate:   func(m *InitiateSwapMsg) { m.TimeLockDuration = 86401 },
			attached: 10_000,
			wantErr:  errors.ErrInput,
		},
		"hash lock too short": {
			mutate:   func(m *InitiateSwapMsg) { m.HashLock = "abcdef" },
			attached: 10_000,
			wantErr:  errors.ErrInput,
		},
		"hash lock not lowercase hex": {
			mutate:   func(m *InitiateSwapMsg) { m.HashLock = strings.ToUpper(hashLockOf("hello")) },
			attached: 10_000,
			wantErr:  errors.ErrInput,
		},
		"missing target chain": {
			mutate:   func(m *InitiateSwapMsg) { m.TargetChain = "" },
			attached: 10_000,
			wantErr:  errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newSwapDB(t)
			msg := valid
			tc.mutate(&msg)
			ctx := custodiatest.Env{Caller: initiator, Now: now0, Attached: tc.attached}.Ctx()
			_, err := initiateSwapHandler{}.Deliver(ctx, db, &msg)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)

			s, err := GetSwap(db, "swap-1")
			require.NoError(t, err)
			assert.Equal(t, SwapStatusInitiated, s.Status)
			assert.Equal(t, uint64(10_000), s.Amount)
			assert.Equal(t, custodia.AsUnixNano(now0.Add(time.Hour)), s.TimeLock)
			assert.Empty(t, s.Secret)

			ids, err := SwapsByInitiator(db, initiator)
			require.NoError(t, err)
			assert.Equal(t, []string{"swap-1"}, ids)
			ids, err = SwapsByParticipant(db, participant)
			require.NoError(t, err)
			assert.Equal(t, []string{"swap-1"}, ids)
		})
	}
}

func TestInitiateSwapDuplicateID(t *testing.T) {
	db := newSwapDB(t)
	initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)

	ctx := custodiatest.Env{Caller: initiator, Now: now0, Attached: 500}.Ctx()
	_, err := initiateSwapHandler{}.Deliver(ctx, db, &InitiateSwapMsg{
		SwapID:           "swap-1",
		Participant:      participant,
		HashLock:         hashLockOf("other"),
		Algorithm:        HashAlgorithmSHA256,
		TimeLockDuration: 3600,
		TargetChain:      "ethereum",
		TargetAddress:    "0xdeadbeef",
	})
	assert.True(t, errors.ErrDuplicate.Is(err))
}

func TestLockSwap(t *testing.T) {
	cases := map[string]struct {
		caller  custodia.Address
		now     time.Time
		wantErr *errors.Error
	}{
		"participant locks":        {caller: participant, now: now0.Add(time.Minute)},
		"initiator cannot lock":    {caller: initiator, now: now0.Add(time.Minute), wantErr: errors.ErrUnauthorized},
		"stranger cannot lock":     {caller: stranger, now: now0.Add(time.Minute), wantErr: errors.ErrUnauthorized},
		"expired lock is rejected": {caller: participant, now: now0.Add(time.Hour), wantErr: errors.ErrExpired},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newSwapDB(t)
			initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)

			ctx := custodiatest.Env{Caller: tc.caller, Now: tc.now}.Ctx()
			_, err := lockSwapHandler{}.Deliver(ctx, db, &LockSwapMsg{SwapID: "swap-1"})
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			s, err := GetSwap(db, "swap-1")
			require.NoError(t, err)
			assert.Equal(t, SwapStatusLocked, s.Status)
		})
	}
}

func TestCompleteSHA256Swap(t *testing.T) {
	db := newSwapDB(t)
	initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)
	lockTestSwap(t, db)

	ctx := custodiatest.Env{Caller: participant, Now: now0.Add(30 * time.Minute)}.Ctx()
	res, err := completeSwapHandler{}.Deliver(ctx, db, &CompleteSwapMsg{SwapID: "swap-1", Secret: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Swap completed: swap-1 | Secret revealed: hello | Payout: 9970", res.Log)

	s, err := GetSwap(db, "swap-1")
	require.NoError(t, err)
	assert.Equal(t, SwapStatusCompleted, s.Status)
	assert.Equal(t, "hello", s.Secret)

	sums := drainAndSum(t, db)
	assert.Equal(t, uint64(30), sums[feeRecipient], "30 bp of 10000")
	assert.Equal(t, uint64(9_970), sums[participant])
}

func TestCompleteSwapRejections(t *testing.T) {
	cases := map[string]struct {
		lock    bool
		now     time.Time
		secret  string
		wantErr *errors.Error
	}{
		"wrong secret": {
			lock: true, now: now0.Add(time.Minute),
			secret: "goodbye", wantErr: errors.ErrUnauthorized,
		},
		"not locked yet": {
			lock: false, now: now0.Add(time.Minute),
			secret: "hello", wantErr: errors.ErrState,
		},
		"after the time lock": {
			lock: true, now: now0.Add(time.Hour),
			secret: "hello", wantErr: errors.ErrExpired,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newSwapDB(t)
			initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)
			if tc.lock {
				lockTestSwap(t, db)
			}
			ctx := custodiatest.Env{Caller: participant, Now: tc.now}.Ctx()
			_, err := completeSwapHandler{}.Deliver(ctx, db, &CompleteSwapMsg{SwapID: "swap-1", Secret: tc.secret})
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)

			s, err := GetSwap(db, "swap-1")
			require.NoError(t, err)
			assert.NotEqual(t, SwapStatusCompleted, s.Status)
			assert.Empty(t, s.Secret)
		})
	}
}

func TestPoseidonSwap(t *testing.T) {
	poseidonHash := strings.Repeat("ab", 32)

	t.Run("completion requires a prior attestation", func(t *testing.T) {
		db := newSwapDB(t)
		initiateTestSwap(t, db, HashAlgorithmPoseidon, poseidonHash, 10_000)
		lockTestSwap(t, db)

		ctx := custodiatest.Env{Caller: participant, Now: now0.Add(time.Minute)}.Ctx()
		_, err := completeSwapHandler{}.Deliver(ctx, db, &CompleteSwapMsg{SwapID: "swap-1", Secret: "zk-secret"})
		assert.True(t, errors.ErrOracle.Is(err))
	})

	t.Run("only the oracle account can attest", func(t *testing.T) {
		db := newSwapDB(t)
		initiateTestSwap(t, db, HashAlgorithmPoseidon, poseidonHash, 10_000)

		ctx := custodiatest.Env{Caller: stranger, Now: now0.Add(time.Minute)}.Ctx()
		_, err := submitOracleHandler{}.Deliver(ctx, db, &SubmitOracleVerificationMsg{
			SwapID: "swap-1", PoseidonHash: poseidonHash, SecretMatches: true,
		})
		assert.True(t, errors.ErrUnauthorized.Is(err))
	})

	t.Run("attestation is rejected for a sha256 swap", func(t *testing.T) {
		db := newSwapDB(t)
		initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)

		ctx := custodiatest.Env{Caller: oracle, Now: now0.Add(time.Minute)}.Ctx()
		_, err := submitOracleHandler{}.Deliver(ctx, db, &SubmitOracleVerificationMsg{
			SwapID: "swap-1", PoseidonHash: poseidonHash, SecretMatches: true,
		})
		assert.True(t, errors.ErrState.Is(err))
	})

	t.Run("negative attestation blocks completion", func(t *testing.T) {
		db := newSwapDB(t)
		initiateTestSwap(t, db, HashAlgorithmPoseidon, poseidonHash, 10_000)
		lockTestSwap(t, db)

		octx := custodiatest.Env{Caller: oracle, Now: now0.Add(time.Minute)}.Ctx()
		_, err := submitOracleHandler{}.Deliver(octx, db, &SubmitOracleVerificationMsg{
			SwapID: "swap-1", PoseidonHash: poseidonHash, SecretMatches: false,
		})
		require.NoError(t, err)

		ctx := custodiatest.Env{Caller: participant, Now: now0.Add(2 * time.Minute)}.Ctx()
		_, err = completeSwapHandler{}.Deliver(ctx, db, &CompleteSwapMsg{SwapID: "swap-1", Secret: "zk-secret"})
		assert.True(t, errors.ErrOracle.Is(err))
	})

	t.Run("positive attestation allows completion, overwrite permitted", func(t *testing.T) {
		db := newSwapDB(t)
		initiateTestSwap(t, db, HashAlgorithmPoseidon, poseidonHash, 10_000)
		lockTestSwap(t, db)

		octx := custodiatest.Env{Caller: oracle, Now: now0.Add(time.Minute)}.Ctx()
		_, err := submitOracleHandler{}.Deliver(octx, db, &SubmitOracleVerificationMsg{
			SwapID: "swap-1", PoseidonHash: poseidonHash, SecretMatches: false,
		})
		require.NoError(t, err)
		// the oracle may overwrite its own attestation
		_, err = submitOracleHandler{}.Deliver(octx, db, &SubmitOracleVerificationMsg{
			SwapID: "swap-1", PoseidonHash: poseidonHash, SecretMatches: true,
		})
		require.NoError(t, err)

		v, err := OracleVerification(db, "swap-1")
		require.NoError(t, err)
		assert.True(t, v.SecretMatches)

		ctx := custodiatest.Env{Caller: participant, Now: now0.Add(2 * time.Minute)}.Ctx()
		_, err = completeSwapHandler{}.Deliver(ctx, db, &CompleteSwapMsg{SwapID: "swap-1", Secret: "zk-secret"})
		require.NoError(t, err)

		s, err := GetSwap(db, "swap-1")
		require.NoError(t, err)
		assert.Equal(t, SwapStatusCompleted, s.Status)
		assert.Equal(t, "zk-secret", s.Secret)
	})
}

func TestRefundSwap(t *testing.T) {
	cases := map[string]struct {
		caller  custodia.Address
		lock    bool
		now     time.Time
		wantErr *errors.Error
	}{
		"initiator at expiry, initiated":  {caller: initiator, now: now0.Add(time.Hour)},
		"initiator at expiry, locked":     {caller: initiator, lock: true, now: now0.Add(time.Hour)},
		"too early":                       {caller: initiator, now: now0.Add(59 * time.Minute), wantErr: errors.ErrState},
		"participant cannot refund":       {caller: participant, now: now0.Add(time.Hour), wantErr: errors.ErrUnauthorized},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newSwapDB(t)
			initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)
			if tc.lock {
				lockTestSwap(t, db)
			}
			ctx := custodiatest.Env{Caller: tc.caller, Now: tc.now}.Ctx()
			res, err := refundSwapHandler{}.Deliver(ctx, db, &RefundSwapMsg{SwapID: "swap-1"})
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Swap refunded: swap-1", res.Log)

			s, err := GetSwap(db, "swap-1")
			require.NoError(t, err)
			assert.Equal(t, SwapStatusRefunded, s.Status)
			// refund carries no fee
			sums := drainAndSum(t, db)
			assert.Equal(t, uint64(10_000), sums[initiator])
			assert.Zero(t, sums[feeRecipient])
		})
	}
}

func TestRefundTerminalSwap(t *testing.T) {
	db := newSwapDB(t)
	initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)

	ctx := custodiatest.Env{Caller: initiator, Now: now0.Add(time.Hour)}.Ctx()
	_, err := refundSwapHandler{}.Deliver(ctx, db, &RefundSwapMsg{SwapID: "swap-1"})
	require.NoError(t, err)

	_, err = refundSwapHandler{}.Deliver(ctx, db, &RefundSwapMsg{SwapID: "swap-1"})
	assert.True(t, errors.ErrState.Is(err))
}

func TestCancelSwap(t *testing.T) {
	cases := map[string]struct {
		caller  custodia.Address
		lock    bool
		now     time.Time
		wantErr *errors.Error
	}{
		"initiator before lock":    {caller: initiator, now: now0.Add(time.Minute)},
		"locked swap, use timeout": {caller: initiator, lock: true, now: now0.Add(time.Minute), wantErr: errors.ErrState},
		"after expiry, use refund": {caller: initiator, now: now0.Add(time.Hour), wantErr: errors.ErrExpired},
		"participant cannot":       {caller: participant, now: now0.Add(time.Minute), wantErr: errors.ErrUnauthorized},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newSwapDB(t)
			initiateTestSwap(t, db, HashAlgorithmSHA256, hashLockOf("hello"), 10_000)
			if tc.lock {
				lockTestSwap(t, db)
			}
			ctx := custodiatest.Env{Caller: tc.caller, Now: tc.now}.Ctx()
			res, err := cancelSwapHandler{}.Deliver(ctx, db, &CancelSwapMsg{SwapID: "swap-1"})
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Swap cancelled: swap-1", res.Log)

			s, err := GetSwap(db, "swap-1")
			require.NoError(t, err)
			assert.Equal(t, SwapStatusCancelled, s.Status)
			assert.Equal(t, uint64(10_000), drainAndSum(t, db)[initiator])

			// Cancelled is terminal
			_, err = lockSwapHandler{}.Deliver(ctx, db, &LockSwapMsg{SwapID: "swap-1"})
			assert.True(t, errors.ErrState.Is(err))
		})
	}
}

func TestUpdateConfiguration(t *testing.T) {
	db := newSwapDB(t)
	h := gconf.NewUpdateConfigurationHandler("aswap", &Configuration{})

	ctx := custodiatest.Env{Caller: owner, Now: now0}.Ctx()
	_, err := h.Deliver(ctx, db, &UpdateConfigurationMsg{Patch: Configuration{FeePercentage: 100}})
	require.NoError(t, err)

	conf, err := loadConf(db)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), conf.FeePercentage)
	assert.Equal(t, oracle, conf.OracleAccount, "unpatched fields keep their value")

	// the fee cap holds on update too
	_, err = h.Deliver(ctx, db, &UpdateConfigurationMsg{Patch: Configuration{FeePercentage: 1001}})
	assert.True(t, errors.ErrAmount.Is(err))

	sctx := custodiatest.Env{Caller: stranger, Now: now0}.Ctx()
	_, err = h.Deliver(sctx, db, &UpdateConfigurationMsg{Patch: Configuration{FeePercentage: 10}})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
