// Package material turns caller-supplied byte buffers into validated BLS12-381
// keys and signatures. The encoding is chosen from the buffer length alone;
// compressed and uncompressed sizes never overlap within a group.
package material

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zmlAEQ/bls-host/internal/bls381"
)

// Accepted buffer sizes per material, compressed / canonical form first.
// LengthError carries a copy, so editing one never changes these.
var (
	PublicKeySizes  = []int{bls381.G1CompressedSize, bls381.G1UncompressedSize}
	PrivateKeySizes = []int{bls381.ScalarSize, bls381.WideScalarSize}
	SignatureSizes  = []int{bls381.G2CompressedSize, bls381.G2UncompressedSize}
)

func lengthError(k Kind, expected []int, actual int) error {
	return &LengthError{Material: k, Expected: slices.Clone(expected), Actual: actual}
}

// DecodePublicKey accepts a 48-byte compressed or 96-byte uncompressed G1
// point in the prime-order subgroup.
func DecodePublicKey(b []byte) (*bls381.PublicKey, error) {
	var (
		pk  *bls381.PublicKey
		err error
	)
	switch len(b) {
	case bls381.G1CompressedSize:
		pk, err = bls381.PublicKeyFromCompressed(b)
	case bls381.G1UncompressedSize:
		pk, err = bls381.PublicKeyFromUncompressed(b)
	default:
		return nil, lengthError(KindPublicKey, PublicKeySizes, len(b))
	}
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid g1 point: %w", KindPublicKey, ErrInvalidPoint)
	}
	return pk, nil
}

// DecodePrivateKey accepts a 32-byte canonical scalar (< r) or a 64-byte wide
// value that is reduced modulo r. The wide form cannot fail.
func DecodePrivateKey(b []byte) (*bls381.SecretKey, error) {
	switch len(b) {
	case bls381.ScalarSize:
		sk, err := bls381.SecretKeyFromCanonical(b)
		if err != nil {
			return nil, fmt.Errorf("%s must be a valid scalar: %w", KindPrivateKey, ErrInvalidScalar)
		}
		return sk, nil
	case bls381.WideScalarSize:
		return bls381.SecretKeyFromWide(b)
	default:
		return nil, lengthError(KindPrivateKey, PrivateKeySizes, len(b))
	}
}

// DecodeSignature accepts a 96-byte compressed or 192-byte uncompressed G2
// point in the prime-order subgroup.
func DecodeSignature(b []byte) (*bls381.Signature, error) {
	var (
		sig *bls381.Signature
		err error
	)
	switch len(b) {
	case bls381.G2CompressedSize:
		sig, err = bls381.SignatureFromCompressed(b)
	case bls381.G2UncompressedSize:
		sig, err = bls381.SignatureFromUncompressed(b)
	default:
		return nil, lengthError(KindSignature, SignatureSizes, len(b))
	}
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid g2 point: %w", KindSignature, ErrInvalidPoint)
	}
	return sig, nil
}

// IsDecodeError reports whether err came from one of the decoders.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrInvalidLength) || errors.Is(err, ErrInvalidPoint) || errors.Is(err, ErrInvalidScalar)
}
