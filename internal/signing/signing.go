// Package signing composes decoded key material with the curve backend to
// generate keys, derive public keys, sign and verify.
package signing

import (
	"errors"
	"time"

	"lukechampine.com/blake3"

	"github.com/zmlAEQ/bls-host/internal/bls381"
	"github.com/zmlAEQ/bls-host/internal/material"
	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/pkg/logger"
	"github.com/zmlAEQ/bls-host/pkg/metrics"
)

var (
	// ErrVerificationFailed means every input decoded but the pairing check
	// did not hold.
	ErrVerificationFailed = errors.New("signature verification failed")
	ErrEmptySeed          = errors.New("seed must not be empty")
)

// seedContext separates seeded key derivation from any other BLAKE3 use.
const seedContext = "bls-host 2024-01-01 seeded private key v1"

// maxKeygenAttempts bounds the redraw loop; a zero scalar from 64 uniform
// bytes has probability ~2^-255.
const maxKeygenAttempts = 8

var errKeygenExhausted = errors.New("key generation drew zero repeatedly")

// Service runs the signature operations. It is safe for concurrent use.
type Service struct {
	rng randomness.Provider
}

// New returns a Service drawing key entropy from rng.
func New(rng randomness.Provider) *Service { return &Service{rng: rng} }

func observe(op string, begin time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrVerificationFailed):
		result = "invalid"
	case material.IsDecodeError(err):
		result = "decode_error"
	case err != nil:
		result = "error"
	}
	metrics.Inc("bls_ops_total", map[string]string{"op": op, "result": result})
	metrics.ObserveSummary("bls_op_us", map[string]string{"op": op}, float64(time.Since(begin).Microseconds()))
	if err != nil && result != "invalid" {
		logger.ErrorJ("bls_op", map[string]any{"op": op, "result": result, "err": err.Error()})
	}
}

func keyFrom(p randomness.Provider) (*bls381.SecretKey, error) {
	var wide [bls381.WideScalarSize]byte
	defer clear(wide[:])
	for i := 0; i < maxKeygenAttempts; i++ {
		if err := p.Fill(wide[:]); err != nil {
			return nil, err
		}
		sk, err := bls381.SecretKeyFromWide(wide[:])
		if err != nil {
			return nil, err
		}
		if !sk.IsZero() {
			return sk, nil
		}
	}
	return nil, errKeygenExhausted
}

// GenerateKeySeeded derives a private key from seed. The same seed always
// yields the same key. Not meant for production secrets.
func (s *Service) GenerateKeySeeded(seed []byte) (out []byte, err error) {
	begin := time.Now()
	defer func() { observe("keygen_seed", begin, err) }()
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	var key [randomness.KeySize]byte
	blake3.DeriveKey(key[:], seedContext, seed)
	sk, err := keyFrom(randomness.NewSeeded(key))
	clear(key[:])
	if err != nil {
		return nil, err
	}
	defer sk.Zeroize()
	return sk.Bytes(), nil
}

// GenerateKeyRandom draws a fresh private key from the service's provider.
func (s *Service) GenerateKeyRandom() (out []byte, err error) {
	begin := time.Now()
	defer func() { observe("keygen_random", begin, err) }()
	sk, err := keyFrom(s.rng)
	if err != nil {
		return nil, err
	}
	defer sk.Zeroize()
	return sk.Bytes(), nil
}

// DerivePublicKey returns the 48-byte compressed public key of privateKey.
func (s *Service) DerivePublicKey(privateKey []byte) (out []byte, err error) {
	begin := time.Now()
	defer func() { observe("pubkey", begin, err) }()
	sk, err := material.DecodePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer sk.Zeroize()
	return sk.PublicKey().Compressed(), nil
}

// Sign returns the 96-byte compressed signature of msg. msg may be empty.
func (s *Service) Sign(privateKey, msg []byte) (out []byte, err error) {
	begin := time.Now()
	defer func() { observe("sign", begin, err) }()
	sk, err := material.DecodePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer sk.Zeroize()
	sig, err := sk.Sign(msg)
	if err != nil {
		return nil, err
	}
	return sig.Compressed(), nil
}

// Verify returns nil when sig is a valid signature of msg under publicKey,
// ErrVerificationFailed when the pairing check fails, and the decode error
// when any input is malformed. Inputs are decoded before any pairing work.
func (s *Service) Verify(publicKey, sig, msg []byte) (err error) {
	begin := time.Now()
	defer func() { observe("verify", begin, err) }()
	pk, err := material.DecodePublicKey(publicKey)
	if err != nil {
		return err
	}
	sg, err := material.DecodeSignature(sig)
	if err != nil {
		return err
	}
	ok, err := pk.Verify(sg, msg)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVerificationFailed
	}
	return nil
}
