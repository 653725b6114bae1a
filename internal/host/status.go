package host

import (
	"errors"

	"github.com/zmlAEQ/bls-host/internal/material"
	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/internal/signing"
)

// Status is the one-byte outcome handed back across the foreign-call
// boundary. 0 and 1 are the verify outcomes; every other value is a failure
// and never shares a code with a failed verification.
type Status uint8

const (
	StatusInvalid            Status = 0
	StatusValid              Status = 1
	StatusInvalidLength      Status = 2
	StatusInvalidPoint       Status = 3
	StatusInvalidScalar      Status = 4
	StatusLockUnavailable    Status = 5
	StatusEmptySeed          Status = 6
	StatusInvalidCount       Status = 7
	StatusBusy               Status = 8
	StatusEntropyUnavailable Status = 9
	StatusInternal           Status = 255

	// StatusOK reports success of a buffer-returning call.
	StatusOK = StatusValid
)

var statusNames = map[Status]string{
	StatusInvalid:            "invalid",
	StatusValid:              "ok",
	StatusInvalidLength:      "invalid_length",
	StatusInvalidPoint:       "invalid_point",
	StatusInvalidScalar:      "invalid_scalar",
	StatusLockUnavailable:    "lock_unavailable",
	StatusEmptySeed:          "empty_seed",
	StatusInvalidCount:       "invalid_count",
	StatusBusy:               "busy",
	StatusEntropyUnavailable: "entropy_unavailable",
	StatusInternal:           "internal",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsError reports whether s signals a failure rather than a verify outcome.
func (s Status) IsError() bool { return s != StatusInvalid && s != StatusValid }

// StatusOf maps an operation error onto its boundary status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, signing.ErrVerificationFailed):
		return StatusInvalid
	case errors.Is(err, material.ErrInvalidLength):
		return StatusInvalidLength
	case errors.Is(err, material.ErrInvalidPoint):
		return StatusInvalidPoint
	case errors.Is(err, material.ErrInvalidScalar):
		return StatusInvalidScalar
	case errors.Is(err, randomness.ErrLockUnavailable):
		return StatusLockUnavailable
	case errors.Is(err, randomness.ErrSeedUnavailable):
		return StatusEntropyUnavailable
	case errors.Is(err, randomness.ErrInvalidCount):
		return StatusInvalidCount
	case errors.Is(err, signing.ErrEmptySeed):
		return StatusEmptySeed
	case errors.Is(err, ErrBusy):
		return StatusBusy
	default:
		return StatusInternal
	}
}
