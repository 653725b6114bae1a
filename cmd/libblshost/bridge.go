package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/zmlAEQ/bls-host/internal/config"
	"github.com/zmlAEQ/bls-host/internal/host"
	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/pkg/lifecycle"
	"github.com/zmlAEQ/bls-host/pkg/logger"
)

// bridge turns host results into framed buffers and status bytes. It holds
// no cgo types so it can be tested directly.
type bridge struct {
	h *host.Host
}

var (
	bridgeOnce sync.Once
	bridgeInst *bridge
	bridgeErr  error
)

// shared returns the process bridge, built on first call from the
// environment.
func shared() (*bridge, error) {
	bridgeOnce.Do(func() {
		bridgeInst, bridgeErr = newBridge(context.Background(), randomness.Default())
	})
	return bridgeInst, bridgeErr
}

func newBridge(ctx context.Context, rng randomness.Provider) (*bridge, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LoggerOptions()); err != nil {
		return nil, err
	}
	h, err := host.New(cfg, rng)
	if err != nil {
		return nil, err
	}
	m := lifecycle.New()
	m.Add(h)
	if err := m.StartAll(ctx); err != nil {
		logger.ErrorJ("libblshost_init", map[string]any{"result": "error", "err": err.Error()})
		return nil, err
	}
	return &bridge{h: h}, nil
}

// initStatus is reported by every export when the bridge failed to build.
func initStatus(err error) host.Status {
	if errors.Is(err, randomness.ErrSeedUnavailable) {
		return host.StatusEntropyUnavailable
	}
	return host.StatusInternal
}

func framed(data []byte, err error) ([]byte, host.Status) {
	if err != nil {
		return nil, host.StatusOf(err)
	}
	f, err := host.EncodeFrame(data)
	if err != nil {
		return nil, host.StatusInternal
	}
	return f, host.StatusOK
}

// guard converts a panic escaping the host into StatusInternal; nothing may
// unwind across the C boundary.
func guard(st *host.Status) {
	if r := recover(); r != nil {
		logger.ErrorJ("libblshost_panic", map[string]any{"panic": fmt.Sprint(r)})
		*st = host.StatusInternal
	}
}

// maxInput bounds any caller buffer copied across the boundary.
const maxInput = math.MaxInt32

// input copies n bytes at p into Go memory. A nil p with a non-zero length
// and lengths above maxInput are rejected, never truncated.
func input(p unsafe.Pointer, n uint64) ([]byte, host.Status) {
	switch {
	case n > maxInput:
		return nil, host.StatusInvalidLength
	case n == 0:
		return []byte{}, host.StatusOK
	case p == nil:
		return nil, host.StatusInvalidLength
	}
	return bytes.Clone(unsafe.Slice((*byte)(p), int(n))), host.StatusOK
}

// buf is a caller-owned region as handed over by the C exports.
type buf struct {
	p unsafe.Pointer
	n uint64
}

// inputs copies every region, stopping at the first rejected one.
func inputs(bufs ...buf) ([][]byte, host.Status) {
	out := make([][]byte, len(bufs))
	for i, b := range bufs {
		in, st := input(b.p, b.n)
		if st != host.StatusOK {
			return nil, st
		}
		out[i] = in
	}
	return out, host.StatusOK
}

func (b *bridge) getRandom(n uint64) (out []byte, st host.Status) {
	defer guard(&st)
	if n > math.MaxInt {
		return nil, host.StatusInvalidCount
	}
	return framed(b.h.GetRandom(context.Background(), int(n)))
}

func (b *bridge) generatePrivateKeySeed(seed buf) (out []byte, st host.Status) {
	defer guard(&st)
	in, st := inputs(seed)
	if st != host.StatusOK {
		return nil, st
	}
	return framed(b.h.GeneratePrivateKeySeed(context.Background(), in[0]))
}

func (b *bridge) generatePrivateKeyRandom() (out []byte, st host.Status) {
	defer guard(&st)
	return framed(b.h.GeneratePrivateKeyRandom(context.Background()))
}

func (b *bridge) getPublicKey(sk buf) (out []byte, st host.Status) {
	defer guard(&st)
	in, st := inputs(sk)
	if st != host.StatusOK {
		return nil, st
	}
	defer clear(in[0])
	return framed(b.h.GetPublicKey(context.Background(), in[0]))
}

func (b *bridge) sign(sk, msg buf) (out []byte, st host.Status) {
	defer guard(&st)
	in, st := inputs(sk, msg)
	if st != host.StatusOK {
		return nil, st
	}
	defer clear(in[0])
	return framed(b.h.Sign(context.Background(), in[0], in[1]))
}

func (b *bridge) verify(pk, sig, msg buf) (st host.Status) {
	defer guard(&st)
	in, st := inputs(pk, sig, msg)
	if st != host.StatusOK {
		return st
	}
	st, _ = b.h.Verify(context.Background(), in[0], in[1], in[2])
	return st
}
