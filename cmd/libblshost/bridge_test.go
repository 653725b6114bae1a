package main

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/zmlAEQ/bls-host/internal/host"
	"github.com/zmlAEQ/bls-host/internal/randomness"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func newTestBridge(t *testing.T) *bridge {
	t.Helper()
	b, err := newBridge(context.Background(), randomness.New(bytes.NewReader(bytes.Repeat([]byte{3}, randomness.KeySize))))
	require.NoError(t, err)
	return b
}

func payload(t *testing.T, frame []byte) []byte {
	t.Helper()
	data, err := host.DecodeFrame(frame)
	require.NoError(t, err)
	return data
}

// region describes a Go slice the way the C exports describe caller memory.
func region(b []byte) buf {
	if len(b) == 0 {
		return buf{}
	}
	return buf{p: unsafe.Pointer(&b[0]), n: uint64(len(b))}
}

func TestBridge_RoundTripFrames(t *testing.T) {
	b := newTestBridge(t)

	f, st := b.generatePrivateKeySeed(region([]byte("seed")))
	require.Equal(t, host.StatusOK, st)
	sk := payload(t, f)
	require.Len(t, sk, 32)
	require.Equal(t, []byte{0, 0, 0, 32}, f[:4])

	f, st = b.getPublicKey(region(sk))
	require.Equal(t, host.StatusOK, st)
	pk := payload(t, f)
	require.Len(t, pk, 48)

	f, st = b.sign(region(sk), region([]byte("msg")))
	require.Equal(t, host.StatusOK, st)
	sig := payload(t, f)
	require.Len(t, sig, 96)

	f, st = b.sign(region(sk), buf{})
	require.Equal(t, host.StatusOK, st)
	emptySig := payload(t, f)
	require.Equal(t, host.StatusValid, b.verify(region(pk), region(emptySig), buf{}))

	require.Equal(t, host.StatusValid, b.verify(region(pk), region(sig), region([]byte("msg"))))
	require.Equal(t, host.StatusInvalid, b.verify(region(pk), region(sig), region([]byte("other"))))
	require.Equal(t, host.StatusInvalidLength, b.verify(region(pk[:47]), region(sig), region([]byte("msg"))))
}

func TestBridge_Failures(t *testing.T) {
	b := newTestBridge(t)

	f, st := b.generatePrivateKeySeed(buf{})
	require.Nil(t, f)
	require.Equal(t, host.StatusEmptySeed, st)

	f, st = b.getPublicKey(region(make([]byte, 31)))
	require.Nil(t, f)
	require.Equal(t, host.StatusInvalidLength, st)

	f, st = b.getRandom(math.MaxUint64)
	require.Nil(t, f)
	require.Equal(t, host.StatusInvalidCount, st)

	f, st = b.getRandom(1 << 40)
	require.Nil(t, f)
	require.Equal(t, host.StatusInvalidCount, st)
}

func TestInput_Bounds(t *testing.T) {
	src := []byte("payload")
	got, st := input(unsafe.Pointer(&src[0]), uint64(len(src)))
	require.Equal(t, host.StatusOK, st)
	require.Equal(t, src, got)
	got[0] = 'X'
	require.Equal(t, byte('p'), src[0], "input must copy, not alias")

	got, st = input(nil, 0)
	require.Equal(t, host.StatusOK, st)
	require.NotNil(t, got)
	require.Empty(t, got)

	_, st = input(nil, 16)
	require.Equal(t, host.StatusInvalidLength, st)

	// oversized lengths are rejected before memory is touched
	for _, n := range []uint64{maxInput + 1, 1<<32 + 5, math.MaxUint64} {
		_, st = input(unsafe.Pointer(&src[0]), n)
		require.Equal(t, host.StatusInvalidLength, st, "n=%d", n)
	}
}

func TestBridge_OversizedInputsNeverTruncate(t *testing.T) {
	b := newTestBridge(t)
	f, st := b.generatePrivateKeySeed(region([]byte("k")))
	require.Equal(t, host.StatusOK, st)
	sk := payload(t, f)
	msg := []byte("hello")
	huge := buf{p: unsafe.Pointer(&msg[0]), n: 1<<32 + uint64(len(msg))}

	f, st = b.sign(region(sk), huge)
	require.Nil(t, f)
	require.Equal(t, host.StatusInvalidLength, st)

	f, st = b.sign(region(sk), buf{n: 3})
	require.Nil(t, f)
	require.Equal(t, host.StatusInvalidLength, st)

	require.Equal(t, host.StatusInvalidLength, b.verify(buf{n: 48}, region(make([]byte, 96)), buf{}))
}

type panicking struct{}

func (panicking) Fill([]byte) error { panic("draw interrupted") }

func TestBridge_PanicBecomesInternal(t *testing.T) {
	b, err := newBridge(context.Background(), panicking{})
	require.NoError(t, err)

	var (
		f  []byte
		st host.Status
	)
	require.NotPanics(t, func() { f, st = b.getRandom(8) })
	require.Nil(t, f)
	require.Equal(t, host.StatusInternal, st)

	require.NotPanics(t, func() { f, st = b.generatePrivateKeyRandom() })
	require.Equal(t, host.StatusInternal, st)

	// the host keeps serving calls that do not need randomness
	sk := make([]byte, 32)
	sk[0] = 1
	f, st = b.getPublicKey(region(sk))
	require.Equal(t, host.StatusOK, st)
	require.Len(t, payload(t, f), 48)
}

func TestBridge_GetRandom(t *testing.T) {
	b := newTestBridge(t)
	f, st := b.getRandom(0)
	require.Equal(t, host.StatusOK, st)
	require.Empty(t, payload(t, f))

	f, st = b.getRandom(64)
	require.Equal(t, host.StatusOK, st)
	require.Len(t, payload(t, f), 64)
}

func TestBridge_InitFailsWithoutEntropy(t *testing.T) {
	_, err := newBridge(context.Background(), randomness.New(failingReader{}))
	require.Error(t, err)
	require.Equal(t, host.StatusEntropyUnavailable, initStatus(err))
	require.Equal(t, host.StatusInternal, initStatus(errors.New("other")))
}
