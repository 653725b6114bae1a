// Package host is the boundary adapter between a calling runtime and the
// signing core. Every operation takes and returns flat byte buffers, tags
// the call with a trace ID, and reports one status per call in logs and
// metrics. Errors keep their identity so StatusOf can map them to the
// one-byte codes a foreign caller sees.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zmlAEQ/bls-host/internal/config"
	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/internal/signing"
	"github.com/zmlAEQ/bls-host/pkg/lifecycle"
	"github.com/zmlAEQ/bls-host/pkg/logger"
	"github.com/zmlAEQ/bls-host/pkg/metrics"
	"github.com/zmlAEQ/bls-host/pkg/trace"
)

// ErrBusy is returned when the in-flight cap is reached.
var ErrBusy = errors.New("host: too many concurrent calls")

// Operation names as exported to the host runtime.
const (
	OpGetRandom                = "get_random"
	OpGeneratePrivateKeySeed   = "generate_private_key_seed"
	OpGeneratePrivateKeyRandom = "generate_private_key_random"
	OpGetPublicKey             = "get_public_key"
	OpSign                     = "sign"
	OpVerify                   = "verify"
)

type seeder interface{ Seed() error }

// Host serves boundary calls. It is safe for concurrent use.
type Host struct {
	cfg     config.Config
	rng     randomness.Provider
	svc     *signing.Service
	limiter *callLimiter
	calls   atomic.Uint64
	failed  atomic.Uint64
}

// New builds a Host drawing entropy from rng.
func New(cfg config.Config, rng randomness.Provider) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil randomness provider", config.ErrInvalidConfig)
	}
	return &Host{
		cfg:     cfg,
		rng:     rng,
		svc:     signing.New(rng),
		limiter: newCallLimiter(cfg.MaxInFlight),
	}, nil
}

func (h *Host) Name() string { return "bls_host" }

// Start seeds the randomness provider eagerly so the first call does not pay
// for it and a broken entropy source is reported at startup.
func (h *Host) Start(ctx context.Context) error {
	begin := time.Now()
	if s, ok := h.rng.(seeder); ok {
		if err := s.Seed(); err != nil {
			logger.ErrorJ("service_op", map[string]any{"service": h.Name(), "op": "start", "result": "error", "err": err.Error()})
			return err
		}
	}
	dur := time.Since(begin).Milliseconds()
	logger.InfoJ("service_op", map[string]any{"service": h.Name(), "op": "start", "result": "ok", "latency_ms": dur})
	metrics.ObserveSummary("service_op_ms", map[string]string{"service": h.Name(), "op": "start"}, float64(dur))
	return nil
}

func (h *Host) Stop(ctx context.Context) error {
	logger.InfoJ("service_op", map[string]any{
		"service": h.Name(), "op": "stop", "result": "ok",
		"calls": h.calls.Load(), "failed": h.failed.Load(), "inflight": h.limiter.InFlight(),
	})
	return nil
}

var _ lifecycle.Service = (*Host)(nil)

// call runs fn under the in-flight cap and records the outcome. A panic in
// fn releases its slot, is recorded as an internal failure and re-panics.
func (h *Host) call(ctx context.Context, op string, fn func() error) (err error) {
	_, tid := trace.Ensure(ctx)
	if !h.limiter.TryOpen(op) {
		h.record(tid, op, ErrBusy, 0)
		return ErrBusy
	}
	begin := time.Now()
	defer func() {
		h.limiter.Close()
		if r := recover(); r != nil {
			h.record(tid, op, fmt.Errorf("host: %s panicked: %v", op, r), time.Since(begin))
			panic(r)
		}
		h.record(tid, op, err, time.Since(begin))
	}()
	return fn()
}

func (h *Host) record(tid, op string, err error, dur time.Duration) {
	st := StatusOf(err)
	h.calls.Add(1)
	if st.IsError() {
		h.failed.Add(1)
	}
	metrics.Inc("host_calls_total", map[string]string{"op": op, "status": st.String()})
	fields := map[string]any{"trace_id": tid, "op": op, "status": st.String(), "latency_us": dur.Microseconds()}
	if st.IsError() {
		fields["err"] = err.Error()
		logger.ErrorJ("host_call", fields)
		return
	}
	logger.InfoJ("host_call", fields)
}

// GetRandom returns n bytes from the process generator.
func (h *Host) GetRandom(ctx context.Context, n int) (out []byte, err error) {
	err = h.call(ctx, OpGetRandom, func() error {
		if n < 0 || n > h.cfg.MaxRandom {
			return fmt.Errorf("%w: %d (max %d)", randomness.ErrInvalidCount, n, h.cfg.MaxRandom)
		}
		out, err = randomness.Draw(h.rng, n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GeneratePrivateKeySeed derives a 32-byte private key from seed.
func (h *Host) GeneratePrivateKeySeed(ctx context.Context, seed []byte) (out []byte, err error) {
	err = h.call(ctx, OpGeneratePrivateKeySeed, func() error {
		out, err = h.svc.GenerateKeySeeded(seed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GeneratePrivateKeyRandom returns a fresh 32-byte private key.
func (h *Host) GeneratePrivateKeyRandom(ctx context.Context) (out []byte, err error) {
	err = h.call(ctx, OpGeneratePrivateKeyRandom, func() error {
		out, err = h.svc.GenerateKeyRandom()
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetPublicKey returns the 48-byte compressed public key of a 32 or 64 byte
// private key.
func (h *Host) GetPublicKey(ctx context.Context, privateKey []byte) (out []byte, err error) {
	err = h.call(ctx, OpGetPublicKey, func() error {
		out, err = h.svc.DerivePublicKey(privateKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sign returns the 96-byte compressed signature of msg.
func (h *Host) Sign(ctx context.Context, privateKey, msg []byte) (out []byte, err error) {
	err = h.call(ctx, OpSign, func() error {
		out, err = h.svc.Sign(privateKey, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Verify returns StatusValid or StatusInvalid with a nil error when all
// inputs decode. Malformed inputs return their error and its failure status,
// never StatusInvalid.
func (h *Host) Verify(ctx context.Context, publicKey, sig, msg []byte) (Status, error) {
	err := h.call(ctx, OpVerify, func() error {
		return h.svc.Verify(publicKey, sig, msg)
	})
	switch {
	case err == nil:
		return StatusValid, nil
	case errors.Is(err, signing.ErrVerificationFailed):
		return StatusInvalid, nil
	default:
		return StatusOf(err), err
	}
}
