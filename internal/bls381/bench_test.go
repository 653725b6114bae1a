package bls381

import (
	"math/big"
	"testing"
)

func benchKey(b *testing.B) *SecretKey {
	sk, err := SecretKeyFromCanonical(scalarBytes(big.NewInt(0x5eed), ScalarSize))
	if err != nil {
		b.Fatalf("key: %v", err)
	}
	return sk
}

func BenchmarkSign(b *testing.B) {
	sk := benchKey(b)
	msg := []byte("bench-msg")
	for i := 0; i < b.N; i++ {
		_, _ = sk.Sign(msg)
	}
}

func BenchmarkVerify(b *testing.B) {
	sk := benchKey(b)
	pk := sk.PublicKey()
	msg := []byte("bench-msg")
	sig, _ := sk.Sign(msg)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pk.Verify(sig, msg)
	}
}

func BenchmarkDecodeCompressedG1(b *testing.B) {
	enc := benchKey(b).PublicKey().Compressed()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = PublicKeyFromCompressed(enc)
	}
}
