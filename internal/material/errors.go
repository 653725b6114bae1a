package material

import (
	"errors"
	"fmt"
)

// Decode failures. Callers match them with errors.Is.
var (
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidPoint  = errors.New("invalid point")
	ErrInvalidScalar = errors.New("invalid scalar")
)

// Kind names the material a buffer was decoded as.
type Kind string

const (
	KindPublicKey  Kind = "public key"
	KindPrivateKey Kind = "private key"
	KindSignature  Kind = "signature"
)

// LengthError reports a buffer whose size is not one of the accepted encodings.
type LengthError struct {
	Material Kind
	Expected []int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s must be exactly %s bytes, got %d", e.Material, joinSizes(e.Expected), e.Actual)
}

func (e *LengthError) Is(target error) bool { return target == ErrInvalidLength }

func joinSizes(sizes []int) string {
	switch len(sizes) {
	case 0:
		return "?"
	case 1:
		return fmt.Sprint(sizes[0])
	}
	s := ""
	for i, n := range sizes[:len(sizes)-1] {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(n)
	}
	return fmt.Sprintf("%s or %d", s, sizes[len(sizes)-1])
}
