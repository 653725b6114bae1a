package host

import (
	"encoding/binary"
	"errors"
	"math"
)

// FrameHeaderSize is the length prefix of a result frame.
const FrameHeaderSize = 4

var ErrFrame = errors.New("malformed frame")

// EncodeFrame lays out data as a 4-byte big-endian length followed by the
// bytes, which is what FFI hosts read back from a returned pointer.
func EncodeFrame(data []byte) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, ErrFrame
	}
	out := make([]byte, FrameHeaderSize+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(data)))
	copy(out[FrameHeaderSize:], data)
	return out, nil
}

// DecodeFrame returns the payload of a frame produced by EncodeFrame.
func DecodeFrame(frame []byte) ([]byte, error) {
	if len(frame) < FrameHeaderSize {
		return nil, ErrFrame
	}
	n := binary.BigEndian.Uint32(frame)
	if uint64(len(frame)-FrameHeaderSize) != uint64(n) {
		return nil, ErrFrame
	}
	return frame[FrameHeaderSize:], nil
}
