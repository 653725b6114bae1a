// Package randomness supplies cryptographically secure bytes to key
// generation and to callers asking for raw randomness.
//
// A Generator is a ChaCha20 keystream with fast key erasure: every draw
// emits the requested bytes plus a fresh key that replaces the current one,
// so earlier output cannot be recomputed from the state that remains. The
// process generator is seeded once from the OS on first use. Draws are
// serialized by a mutex; a draw that panics poisons the generator and every
// later draw fails with ErrLockUnavailable instead of reseeding.
package randomness

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/zmlAEQ/bls-host/pkg/logger"
	"github.com/zmlAEQ/bls-host/pkg/metrics"
)

var (
	ErrLockUnavailable = errors.New("randomness: generator unavailable")
	ErrSeedUnavailable = errors.New("randomness: entropy source unavailable")
	ErrInvalidCount    = errors.New("randomness: invalid byte count")
)

const (
	// KeySize is the seed / internal key size.
	KeySize = chacha20.KeySize
	// MaxDraw bounds a single Draw request.
	MaxDraw = 16 << 20

	// the key is replaced after every chunk of output
	chunkSize = 64 << 10
)

// Provider fills p with secure random bytes.
type Provider interface {
	Fill(p []byte) error
}

// Generator is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	once     sync.Once
	src      io.Reader
	seedErr  error
	key      [KeySize]byte
	poisoned bool

	// hook runs inside every held draw; tests use it to interrupt a draw.
	hook func()
}

var _ Provider = (*Generator)(nil)

// New returns a generator that seeds itself from src on first use.
func New(src io.Reader) *Generator { return &Generator{src: src} }

// NewSeeded returns a generator whose output is fully determined by seed.
func NewSeeded(seed [KeySize]byte) *Generator {
	g := &Generator{key: seed}
	g.once.Do(func() {})
	return g
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// Default returns the process-wide generator backed by crypto/rand.
func Default() *Generator {
	defaultOnce.Do(func() { defaultGen = New(rand.Reader) })
	return defaultGen
}

// Seed forces seeding now. It is a no-op once seeded.
func (g *Generator) Seed() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.poisoned {
		return ErrLockUnavailable
	}
	return g.seedLocked()
}

// poisonLocked wipes the key and fails every later draw.
func (g *Generator) poisonLocked(op string) {
	g.poisoned = true
	clear(g.key[:])
	metrics.Inc("rng_draws_total", map[string]string{"result": "poisoned"})
	logger.ErrorJ("rng", map[string]any{"op": op, "result": "poisoned"})
}

// seedLocked seeds once. A panic while reading the source poisons the
// generator; sync.Once would otherwise treat seeding as done with a zero key.
func (g *Generator) seedLocked() error {
	done := false
	defer func() {
		if !done {
			g.poisonLocked("seed")
		}
	}()
	g.once.Do(func() {
		if _, err := io.ReadFull(g.src, g.key[:]); err != nil {
			g.seedErr = fmt.Errorf("%w: %v", ErrSeedUnavailable, err)
			metrics.Inc("rng_seed_total", map[string]string{"result": "error"})
			logger.ErrorJ("rng", map[string]any{"op": "seed", "result": "error", "err": err.Error()})
			return
		}
		metrics.Inc("rng_seed_total", map[string]string{"result": "ok"})
		logger.InfoJ("rng", map[string]any{"op": "seed", "result": "ok"})
	})
	done = true
	return g.seedErr
}

// Fill overwrites p with keystream bytes.
func (g *Generator) Fill(p []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.poisoned {
		metrics.Inc("rng_draws_total", map[string]string{"result": "unavailable"})
		return ErrLockUnavailable
	}
	if err := g.seedLocked(); err != nil {
		metrics.Inc("rng_draws_total", map[string]string{"result": "unseeded"})
		return err
	}

	done := false
	defer func() {
		if !done {
			g.poisonLocked("fill")
		}
	}()
	if g.hook != nil {
		g.hook()
	}
	n := len(p)
	for len(p) > 0 {
		c := min(len(p), chunkSize)
		g.next(p[:c])
		p = p[c:]
	}
	done = true

	metrics.Inc("rng_draws_total", map[string]string{"result": "ok"})
	metrics.Add("rng_bytes_total", nil, float64(n))
	return nil
}

// Read implements io.Reader on top of Fill.
func (g *Generator) Read(p []byte) (int, error) {
	if err := g.Fill(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// next writes len(out) keystream bytes under the current key and rotates it.
// The key is used exactly once, so a fixed nonce is fine.
func (g *Generator) next(out []byte) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(g.key[:], nonce[:])
	if err != nil {
		panic(err) // key and nonce sizes are constants
	}
	var rekey [KeySize]byte
	c.XORKeyStream(rekey[:], rekey[:])
	clear(out)
	c.XORKeyStream(out, out)
	g.key = rekey
}

// Draw returns n fresh bytes from p.
func Draw(p Provider, n int) ([]byte, error) {
	if n < 0 || n > MaxDraw {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, n, MaxDraw)
	}
	out := make([]byte, n)
	if err := p.Fill(out); err != nil {
		return nil, err
	}
	return out, nil
}
