// Package bls381 wraps the BLS12-381 primitives used by the signing facade:
// point (de)serialization, key derivation, hash-to-G2 signing and pairing
// verification for the minimal-pubkey-size scheme (keys in G1, signatures in G2).
//
// The default build runs on gnark-crypto (pure Go). Building with the "blst"
// tag moves all group operations onto supranational/blst. Scalar field
// handling always goes through gnark-crypto's fr package so that both builds
// agree on private key encodings.
package bls381

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Encoding sizes. Points use the big-endian ZCash serialization; scalars are
// little-endian.
const (
	G1CompressedSize   = 48
	G1UncompressedSize = 96
	G2CompressedSize   = 96
	G2UncompressedSize = 192
	ScalarSize         = fr.Bytes
	WideScalarSize     = 2 * fr.Bytes
)

// DST is the hash-to-curve domain separation tag of the basic ciphersuite.
var DST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// Errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidPoint  = errors.New("invalid point")
	ErrInvalidScalar = errors.New("invalid scalar")
)

// SecretKey is a scalar reduced modulo the subgroup order r.
type SecretKey struct {
	s fr.Element
}

// PublicKey is a G1 point that passed on-curve and subgroup checks.
type PublicKey struct {
	p g1Point
}

// Signature is a G2 point that passed on-curve and subgroup checks.
type Signature struct {
	p g2Point
}

// reversed returns a byte-reversed copy of b. Private keys travel
// little-endian; fr works big-endian.
func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// SecretKeyFromCanonical parses a 32-byte little-endian scalar. Values >= r
// are rejected; zero is accepted.
func SecretKeyFromCanonical(b []byte) (*SecretKey, error) {
	if len(b) != ScalarSize {
		return nil, ErrInvalidInput
	}
	be := reversed(b)
	defer clear(be)
	sk := new(SecretKey)
	if err := sk.s.SetBytesCanonical(be); err != nil {
		return nil, ErrInvalidScalar
	}
	return sk, nil
}

// SecretKeyFromWide reduces a 64-byte little-endian integer modulo r. Every
// input of the right length yields a key.
func SecretKeyFromWide(b []byte) (*SecretKey, error) {
	if len(b) != WideScalarSize {
		return nil, ErrInvalidInput
	}
	be := reversed(b)
	defer clear(be)
	sk := new(SecretKey)
	sk.s.SetBytes(be)
	return sk, nil
}

// Order returns the subgroup order r.
func Order() *big.Int { return fr.Modulus() }

// Bytes returns the canonical 32-byte little-endian encoding.
func (sk *SecretKey) Bytes() []byte {
	b := sk.s.Bytes()
	defer clear(b[:])
	return reversed(b[:])
}

// IsZero reports whether the scalar is zero.
func (sk *SecretKey) IsZero() bool { return sk.s.IsZero() }

// Equal reports whether both keys hold the same scalar.
func (sk *SecretKey) Equal(other *SecretKey) bool { return sk.s.Equal(&other.s) }

// Zeroize clears the scalar in place.
func (sk *SecretKey) Zeroize() { sk.s.SetZero() }

func (sk *SecretKey) bigInt() *big.Int {
	return sk.s.BigInt(new(big.Int))
}
