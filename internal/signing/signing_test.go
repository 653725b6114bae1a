package signing

import (
	"bytes"
	"errors"
	"math/big"
	"slices"
	"strings"
	"testing"

	"github.com/zmlAEQ/bls-host/internal/bls381"
	"github.com/zmlAEQ/bls-host/internal/material"
	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/pkg/metrics"
)

type stubProvider struct{ err error }

func (s stubProvider) Fill([]byte) error { return s.err }

type zeroProvider struct{}

func (zeroProvider) Fill(p []byte) error {
	clear(p)
	return nil
}

func seeded(b byte) *randomness.Generator {
	var s [randomness.KeySize]byte
	s[0] = b
	return randomness.NewSeeded(s)
}

func TestSignVerify_Roundtrip(t *testing.T) {
	svc := New(randomness.Default())
	sk, err := svc.GenerateKeyRandom()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if len(sk) != 32 {
		t.Fatalf("key len %d", len(sk))
	}
	pk, err := svc.DerivePublicKey(sk)
	if err != nil || len(pk) != 48 {
		t.Fatalf("pubkey: len=%d err=%v", len(pk), err)
	}
	for _, msg := range [][]byte{{}, []byte("foo bar baz"), bytes.Repeat([]byte("x"), 1<<12)} {
		sig, err := svc.Sign(sk, msg)
		if err != nil || len(sig) != 96 {
			t.Fatalf("sign: len=%d err=%v", len(sig), err)
		}
		if err := svc.Verify(pk, sig, msg); err != nil {
			t.Fatalf("verify len=%d: %v", len(msg), err)
		}
	}
}

func TestVerify_UncompressedInputs(t *testing.T) {
	svc := New(seeded(1))
	skBytes, _ := svc.GenerateKeyRandom()
	sk, _ := material.DecodePrivateKey(skBytes)
	msg := []byte("m")
	sig, _ := sk.Sign(msg)
	if err := svc.Verify(sk.PublicKey().Uncompressed(), sig.Uncompressed(), msg); err != nil {
		t.Fatalf("verify uncompressed: %v", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	svc := New(seeded(2))
	sk, _ := svc.GenerateKeyRandom()
	pk, _ := svc.DerivePublicKey(sk)
	msg := []byte("tamper")
	sig, _ := svc.Sign(sk, msg)

	check := func(mut []byte, what string) {
		err := svc.Verify(pk, mut, msg)
		if err == nil {
			t.Fatalf("%s: tampered signature verified", what)
		}
		if !errors.Is(err, ErrVerificationFailed) && !errors.Is(err, material.ErrInvalidPoint) {
			t.Fatalf("%s: unexpected error %v", what, err)
		}
	}
	for i := range sig {
		mut := bytes.Clone(sig)
		mut[i] ^= 0x01
		check(mut, "byte")
	}
	for bit := 0; bit < 8; bit++ {
		mut := bytes.Clone(sig)
		mut[0] ^= 1 << bit
		check(mut, "flag")
	}
	// flipping the sign flag yields -sig, a valid point that must fail the pairing
	neg := bytes.Clone(sig)
	neg[0] ^= 0x20
	if err := svc.Verify(pk, neg, msg); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("negated signature: want ErrVerificationFailed, got %v", err)
	}
}

func TestVerify_CrossKey(t *testing.T) {
	svc := New(seeded(3))
	k1, _ := svc.GenerateKeyRandom()
	k2, _ := svc.GenerateKeyRandom()
	if bytes.Equal(k1, k2) {
		t.Fatalf("keys must differ")
	}
	pk2, _ := svc.DerivePublicKey(k2)
	sig, _ := svc.Sign(k1, []byte("m"))
	if err := svc.Verify(pk2, sig, []byte("m")); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("want ErrVerificationFailed, got %v", err)
	}
}

func TestVerify_DecodeErrorsAreDistinct(t *testing.T) {
	svc := New(seeded(4))
	sk, _ := svc.GenerateKeyRandom()
	pk, _ := svc.DerivePublicKey(sk)
	sig, _ := svc.Sign(sk, nil)

	err := svc.Verify(pk[:47], sig, nil)
	if !errors.Is(err, material.ErrInvalidLength) || errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("47-byte pk: got %v", err)
	}
	err = svc.Verify(pk, sig[:95], nil)
	if !errors.Is(err, material.ErrInvalidLength) {
		t.Fatalf("95-byte sig: got %v", err)
	}
	err = svc.Verify(bytes.Repeat([]byte{0xff}, 48), sig, nil)
	if !errors.Is(err, material.ErrInvalidPoint) {
		t.Fatalf("garbage pk: got %v", err)
	}
}

func TestGenerateKeySeeded_Deterministic(t *testing.T) {
	svc := New(stubProvider{err: errors.New("seeded keygen must not use the provider")})
	a, err := svc.GenerateKeySeeded([]byte("seed-1"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, _ := svc.GenerateKeySeeded([]byte("seed-1"))
	c, _ := svc.GenerateKeySeeded([]byte("seed-2"))
	if !bytes.Equal(a, b) {
		t.Fatalf("same seed gave different keys")
	}
	if bytes.Equal(a, c) {
		t.Fatalf("different seeds gave the same key")
	}
	if _, err := material.DecodePrivateKey(a); err != nil {
		t.Fatalf("seeded key must be canonical: %v", err)
	}
	one, err := svc.GenerateKeySeeded([]byte{0})
	if err != nil || len(one) != 32 {
		t.Fatalf("1-byte seed: %v", err)
	}
	if _, err := svc.GenerateKeySeeded(nil); !errors.Is(err, ErrEmptySeed) {
		t.Fatalf("empty seed: %v", err)
	}
}

func TestGenerateKeyRandom_InjectedProvider(t *testing.T) {
	a, _ := New(seeded(9)).GenerateKeyRandom()
	b, _ := New(seeded(9)).GenerateKeyRandom()
	if !bytes.Equal(a, b) {
		t.Fatalf("deterministic provider must give reproducible keys")
	}
	x, _ := New(randomness.Default()).GenerateKeyRandom()
	y, _ := New(randomness.Default()).GenerateKeyRandom()
	if bytes.Equal(x, y) {
		t.Fatalf("random keys repeated")
	}
}

func TestGenerateKeyRandom_ProviderErrors(t *testing.T) {
	svc := New(stubProvider{err: randomness.ErrLockUnavailable})
	if _, err := svc.GenerateKeyRandom(); !errors.Is(err, randomness.ErrLockUnavailable) {
		t.Fatalf("want ErrLockUnavailable, got %v", err)
	}
	if _, err := New(zeroProvider{}).GenerateKeyRandom(); !errors.Is(err, errKeygenExhausted) {
		t.Fatalf("zero provider: %v", err)
	}
}

func TestSign_WideKeyMatchesReduced(t *testing.T) {
	svc := New(seeded(5))
	r := bls381.Order()
	wide := make([]byte, 64)
	new(big.Int).Add(r, big.NewInt(77)).FillBytes(wide)
	slices.Reverse(wide)
	narrow := make([]byte, 32)
	narrow[0] = 77

	s1, err := svc.Sign(wide, []byte("m"))
	if err != nil {
		t.Fatalf("wide sign: %v", err)
	}
	s2, _ := svc.Sign(narrow, []byte("m"))
	if !bytes.Equal(s1, s2) {
		t.Fatalf("wide and reduced keys must sign identically")
	}
	p1, _ := svc.DerivePublicKey(wide)
	p2, _ := svc.DerivePublicKey(narrow)
	if !bytes.Equal(p1, p2) {
		t.Fatalf("wide and reduced keys must share a public key")
	}
}

func TestSign_RejectsBadKeysBeforeSigning(t *testing.T) {
	svc := New(seeded(6))
	if _, err := svc.Sign(make([]byte, 31), []byte("m")); !errors.Is(err, material.ErrInvalidLength) {
		t.Fatalf("short key: %v", err)
	}
	if _, err := svc.Sign(bytes.Repeat([]byte{0xff}, 32), []byte("m")); !errors.Is(err, material.ErrInvalidScalar) {
		t.Fatalf("non-canonical key: %v", err)
	}
	if _, err := svc.DerivePublicKey(nil); !errors.Is(err, material.ErrInvalidLength) {
		t.Fatalf("nil key: %v", err)
	}
}

func TestMetrics_ResultLabels(t *testing.T) {
	metrics.Reset()
	svc := New(seeded(7))
	sk, _ := svc.GenerateKeyRandom()
	pk, _ := svc.DerivePublicKey(sk)
	sig, _ := svc.Sign(sk, []byte("a"))
	_ = svc.Verify(pk, sig, []byte("a"))
	_ = svc.Verify(pk, sig, []byte("b"))
	_ = svc.Verify(pk[:1], sig, []byte("a"))

	dump := metrics.DumpProm()
	for _, want := range []string{
		`bls_ops_total{op="verify",result="ok"} 1`,
		`bls_ops_total{op="verify",result="invalid"} 1`,
		`bls_ops_total{op="verify",result="decode_error"} 1`,
		`bls_ops_total{op="sign",result="ok"} 1`,
	} {
		if !strings.Contains(dump, want) {
			t.Fatalf("missing %s in %q", want, dump)
		}
	}
}
