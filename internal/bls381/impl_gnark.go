//go:build !blst

package bls381

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

type (
	g1Point = bls12381.G1Affine
	g2Point = bls12381.G2Affine
)

// Backend names the curve implementation compiled into this binary.
const Backend = "gnark-crypto"

var g1Gen, negG1Gen bls12381.G1Affine

func init() {
	_, _, g1Gen, _ = bls12381.Generators()
	negG1Gen.Neg(&g1Gen)
}

// setG1 decodes buf and requires the encoding to consume all of it, so a
// compressed point padded to the uncompressed size is rejected.
func setG1(p *bls12381.G1Affine, buf []byte) error {
	n, err := p.SetBytes(buf)
	if err != nil || n != len(buf) {
		return ErrInvalidPoint
	}
	return nil
}

func setG2(p *bls12381.G2Affine, buf []byte) error {
	n, err := p.SetBytes(buf)
	if err != nil || n != len(buf) {
		return ErrInvalidPoint
	}
	return nil
}

// PublicKeyFromCompressed parses a 48-byte compressed G1 point.
func PublicKeyFromCompressed(b []byte) (*PublicKey, error) {
	if len(b) != G1CompressedSize {
		return nil, ErrInvalidInput
	}
	pk := new(PublicKey)
	if err := setG1(&pk.p, b); err != nil {
		return nil, err
	}
	return pk, nil
}

// PublicKeyFromUncompressed parses a 96-byte uncompressed G1 point.
func PublicKeyFromUncompressed(b []byte) (*PublicKey, error) {
	if len(b) != G1UncompressedSize {
		return nil, ErrInvalidInput
	}
	pk := new(PublicKey)
	if err := setG1(&pk.p, b); err != nil {
		return nil, err
	}
	return pk, nil
}

// SignatureFromCompressed parses a 96-byte compressed G2 point.
func SignatureFromCompressed(b []byte) (*Signature, error) {
	if len(b) != G2CompressedSize {
		return nil, ErrInvalidInput
	}
	sig := new(Signature)
	if err := setG2(&sig.p, b); err != nil {
		return nil, err
	}
	return sig, nil
}

// SignatureFromUncompressed parses a 192-byte uncompressed G2 point.
func SignatureFromUncompressed(b []byte) (*Signature, error) {
	if len(b) != G2UncompressedSize {
		return nil, ErrInvalidInput
	}
	sig := new(Signature)
	if err := setG2(&sig.p, b); err != nil {
		return nil, err
	}
	return sig, nil
}

// PublicKey computes sk·G1.
func (sk *SecretKey) PublicKey() *PublicKey {
	pk := new(PublicKey)
	pk.p.ScalarMultiplication(&g1Gen, sk.bigInt())
	return pk
}

// Sign computes sk·H(msg) with H the hash-to-G2 map under DST.
func (sk *SecretKey) Sign(msg []byte) (*Signature, error) {
	h, err := bls12381.HashToG2(msg, DST)
	if err != nil {
		return nil, err
	}
	sig := new(Signature)
	sig.p.ScalarMultiplication(&h, sk.bigInt())
	return sig, nil
}

// Verify checks e(pk, H(msg)) == e(G1, sig). The identity public key never
// verifies.
func (pk *PublicKey) Verify(sig *Signature, msg []byte) (bool, error) {
	if pk.p.IsInfinity() {
		return false, nil
	}
	h, err := bls12381.HashToG2(msg, DST)
	if err != nil {
		return false, err
	}
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{pk.p, negG1Gen},
		[]bls12381.G2Affine{h, sig.p},
	)
}

// Compressed returns the 48-byte compressed encoding.
func (pk *PublicKey) Compressed() []byte {
	b := pk.p.Bytes()
	return b[:]
}

// Uncompressed returns the 96-byte uncompressed encoding.
func (pk *PublicKey) Uncompressed() []byte {
	b := pk.p.RawBytes()
	return b[:]
}

// IsIdentity reports whether pk is the point at infinity.
func (pk *PublicKey) IsIdentity() bool { return pk.p.IsInfinity() }

// Equal reports whether both keys are the same point.
func (pk *PublicKey) Equal(other *PublicKey) bool { return pk.p.Equal(&other.p) }

// Compressed returns the 96-byte compressed encoding.
func (sig *Signature) Compressed() []byte {
	b := sig.p.Bytes()
	return b[:]
}

// Uncompressed returns the 192-byte uncompressed encoding.
func (sig *Signature) Uncompressed() []byte {
	b := sig.p.RawBytes()
	return b[:]
}

// Equal reports whether both signatures are the same point.
func (sig *Signature) Equal(other *Signature) bool { return sig.p.Equal(&other.p) }
