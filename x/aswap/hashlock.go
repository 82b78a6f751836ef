package aswap

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/custodia-one/custodia"
	"github.com/custodia-one/custodia/errors"
)

// SecretVerifier checks a revealed secret against a swap's hash lock. Two
// implementations exist: SHA256 locks are recomputed in-contract, Poseidon
// locks rely on a prior oracle attestation because the Poseidon permutation
// is not computable inside the contract.
type SecretVerifier interface {
	VerifySecret(db custodia.ReadOnlyKVStore, swap *AtomicSwap, secret string) error
}

// secretVerifierFor picks the verifier matching the swap's hash family.
func secretVerifierFor(alg HashAlgorithm) (SecretVerifier, error) {
	switch alg {
	case HashAlgorithmSHA256:
		return sha256Verifier{}, nil
	case HashAlgorithmPoseidon:
		return oracleVerifier{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "hash algorithm %d", alg)
	}
}

// sha256Verifier recomputes the digest of the revealed secret and compares
// it against the lock.
type sha256Verifier struct{}

func (sha256Verifier) VerifySecret(_ custodia.ReadOnlyKVStore, swap *AtomicSwap, secret string) error {
	digest := sha256.Sum256([]byte(secret))
	if hex.EncodeToString(digest[:]) != swap.HashLock {
		return errors.Wrap(errors.ErrUnauthorized, "secret does not match the hash lock")
	}
	return nil
}

// oracleVerifier gates completion on a positive attestation previously
// submitted by the configured oracle account. The revealed secret is
// recorded but not cryptographically checked in this path.
type oracleVerifier struct{}

func (oracleVerifier) VerifySecret(db custodia.ReadOnlyKVStore, swap *AtomicSwap, secret string) error {
	v, err := OracleVerification(db, swap.ID)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrap(errors.ErrOracle, "no oracle verification submitted")
		}
		return err
	}
	if !v.SecretMatches {
		return errors.Wrap(errors.ErrOracle, "oracle rejected the secret")
	}
	return nil
}
