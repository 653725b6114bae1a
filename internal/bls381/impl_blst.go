//go:build blst

package bls381

import (
	blst "github.com/supranational/blst/bindings/go"
)

type (
	g1Point = blst.P1Affine
	g2Point = blst.P2Affine
)

// Backend names the curve implementation compiled into this binary.
const Backend = "blst"

// compressed flag of the ZCash encoding
const flagCompressed = 0x80

// PublicKeyFromCompressed parses a 48-byte compressed G1 point.
func PublicKeyFromCompressed(b []byte) (*PublicKey, error) {
	if len(b) != G1CompressedSize {
		return nil, ErrInvalidInput
	}
	pk := new(PublicKey)
	if pk.p.Uncompress(b) == nil || !pk.p.InG1() {
		return nil, ErrInvalidPoint
	}
	return pk, nil
}

// PublicKeyFromUncompressed parses a 96-byte uncompressed G1 point.
func PublicKeyFromUncompressed(b []byte) (*PublicKey, error) {
	if len(b) != G1UncompressedSize {
		return nil, ErrInvalidInput
	}
	// blst would accept a compressed point padded to 96 bytes
	if b[0]&flagCompressed != 0 {
		return nil, ErrInvalidPoint
	}
	pk := new(PublicKey)
	if pk.p.Deserialize(b) == nil || !pk.p.InG1() {
		return nil, ErrInvalidPoint
	}
	return pk, nil
}

// SignatureFromCompressed parses a 96-byte compressed G2 point.
func SignatureFromCompressed(b []byte) (*Signature, error) {
	if len(b) != G2CompressedSize {
		return nil, ErrInvalidInput
	}
	sig := new(Signature)
	if sig.p.Uncompress(b) == nil || !sig.p.InG2() {
		return nil, ErrInvalidPoint
	}
	return sig, nil
}

// SignatureFromUncompressed parses a 192-byte uncompressed G2 point.
func SignatureFromUncompressed(b []byte) (*Signature, error) {
	if len(b) != G2UncompressedSize {
		return nil, ErrInvalidInput
	}
	if b[0]&flagCompressed != 0 {
		return nil, ErrInvalidPoint
	}
	sig := new(Signature)
	if sig.p.Deserialize(b) == nil || !sig.p.InG2() {
		return nil, ErrInvalidPoint
	}
	return sig, nil
}

// blstKey converts the scalar for blst. blst refuses a zero secret key, so
// nil is returned for zero and callers fall back to the identity point.
func (sk *SecretKey) blstKey() *blst.SecretKey {
	b := sk.s.Bytes()
	return new(blst.SecretKey).Deserialize(b[:])
}

// PublicKey computes sk·G1.
func (sk *SecretKey) PublicKey() *PublicKey {
	pk := new(PublicKey)
	k := sk.blstKey()
	if k == nil {
		return pk
	}
	defer k.Zeroize()
	pk.p.From(k)
	return pk
}

// Sign computes sk·H(msg) with H the hash-to-G2 map under DST.
func (sk *SecretKey) Sign(msg []byte) (*Signature, error) {
	sig := new(Signature)
	k := sk.blstKey()
	if k == nil {
		return sig, nil
	}
	defer k.Zeroize()
	if sig.p.Sign(k, msg, DST) == nil {
		return nil, ErrInvalidInput
	}
	return sig, nil
}

// Verify checks e(pk, H(msg)) == e(G1, sig). Both points were group-checked
// on decode. The identity public key never verifies.
func (pk *PublicKey) Verify(sig *Signature, msg []byte) (bool, error) {
	return sig.p.Verify(false, &pk.p, false, msg, DST), nil
}

// Compressed returns the 48-byte compressed encoding.
func (pk *PublicKey) Compressed() []byte { return pk.p.Compress() }

// Uncompressed returns the 96-byte uncompressed encoding.
func (pk *PublicKey) Uncompressed() []byte { return pk.p.Serialize() }

// IsIdentity reports whether pk is the point at infinity.
func (pk *PublicKey) IsIdentity() bool {
	var inf blst.P1Affine
	return pk.p.Equals(&inf)
}

// Equal reports whether both keys are the same point.
func (pk *PublicKey) Equal(other *PublicKey) bool { return pk.p.Equals(&other.p) }

// Compressed returns the 96-byte compressed encoding.
func (sig *Signature) Compressed() []byte { return sig.p.Compress() }

// Uncompressed returns the 192-byte uncompressed encoding.
func (sig *Signature) Uncompressed() []byte { return sig.p.Serialize() }

// Equal reports whether both signatures are the same point.
func (sig *Signature) Equal(other *Signature) bool { return sig.p.Equals(&other.p) }
