// Package lifecycle starts and stops process services in order.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/zmlAEQ/bls-host/pkg/logger"
)

// Service is a unit with an explicit start/stop.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Manager starts services in registration order and stops them in reverse.
type Manager struct {
	mu       sync.Mutex
	services []Service
	started  []Service
}

func New() *Manager { return &Manager{} }

// Add registers s. Services added after StartAll are not started.
func (m *Manager) Add(s Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, s)
}

// StartAll starts every service. On the first failure the services already
// started are stopped again and the combined error is returned.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.services {
		if err := s.Start(ctx); err != nil {
			logger.ErrorJ("lifecycle", map[string]any{"op": "start", "service": s.Name(), "result": "error", "err": err.Error()})
			err = fmt.Errorf("start %s: %w", s.Name(), err)
			return multierr.Append(err, m.stopLocked(ctx))
		}
		m.started = append(m.started, s)
	}
	return nil
}

// StopAll stops started services in reverse order and returns every error.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	var errs error
	for i := len(m.started) - 1; i >= 0; i-- {
		s := m.started[i]
		if err := s.Stop(ctx); err != nil {
			logger.ErrorJ("lifecycle", map[string]any{"op": "stop", "service": s.Name(), "result": "error", "err": err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("stop %s: %w", s.Name(), err))
		}
	}
	m.started = nil
	return errs
}
