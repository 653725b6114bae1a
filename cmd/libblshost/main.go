// Command libblshost builds the BLS host as a C shared library:
//
//	go build -buildmode=c-shared -o libblshost.so ./cmd/libblshost
//
// Input buffers longer than 2^31-1 bytes, or NULL with a non-zero length,
// are rejected with status 2. Buffer-returning calls hand back a malloc'd
// frame (4-byte big-endian length, then data) and write a status byte to
// *status; a NULL frame means the status is a failure. Frames must be released with free_buffer. verify
// returns its status byte directly: 1 valid, 0 invalid, anything else an
// input or internal failure.
package main

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"unsafe"

	"github.com/zmlAEQ/bls-host/internal/host"
)

func main() {}

func region(p *C.uint8_t, n C.size_t) buf { return buf{p: unsafe.Pointer(p), n: uint64(n)} }

func output(frame []byte, st host.Status, status *C.uint8_t) *C.uint8_t {
	if status != nil {
		*status = C.uint8_t(st)
	}
	if st != host.StatusOK || len(frame) == 0 {
		return nil
	}
	out := C.malloc(C.size_t(len(frame)))
	if out == nil {
		if status != nil {
			*status = C.uint8_t(host.StatusInternal)
		}
		return nil
	}
	C.memcpy(out, unsafe.Pointer(&frame[0]), C.size_t(len(frame)))
	return (*C.uint8_t)(out)
}

func fail(st host.Status, status *C.uint8_t) *C.uint8_t { return output(nil, st, status) }

//export get_random
func get_random(n C.size_t, status *C.uint8_t) *C.uint8_t {
	b, err := shared()
	if err != nil {
		return fail(initStatus(err), status)
	}
	f, st := b.getRandom(uint64(n))
	return output(f, st, status)
}

//export generate_private_key_seed
func generate_private_key_seed(seed *C.uint8_t, seedLen C.size_t, status *C.uint8_t) *C.uint8_t {
	b, err := shared()
	if err != nil {
		return fail(initStatus(err), status)
	}
	f, st := b.generatePrivateKeySeed(region(seed, seedLen))
	return output(f, st, status)
}

//export generate_private_key_random
func generate_private_key_random(status *C.uint8_t) *C.uint8_t {
	b, err := shared()
	if err != nil {
		return fail(initStatus(err), status)
	}
	f, st := b.generatePrivateKeyRandom()
	return output(f, st, status)
}

//export get_public_key
func get_public_key(sk *C.uint8_t, skLen C.size_t, status *C.uint8_t) *C.uint8_t {
	b, err := shared()
	if err != nil {
		return fail(initStatus(err), status)
	}
	f, st := b.getPublicKey(region(sk, skLen))
	return output(f, st, status)
}

//export sign
func sign(sk *C.uint8_t, skLen C.size_t, msg *C.uint8_t, msgLen C.size_t, status *C.uint8_t) *C.uint8_t {
	b, err := shared()
	if err != nil {
		return fail(initStatus(err), status)
	}
	f, st := b.sign(region(sk, skLen), region(msg, msgLen))
	return output(f, st, status)
}

//export verify
func verify(pk *C.uint8_t, pkLen C.size_t, sig *C.uint8_t, sigLen C.size_t, msg *C.uint8_t, msgLen C.size_t) C.uint8_t {
	b, err := shared()
	if err != nil {
		return C.uint8_t(initStatus(err))
	}
	return C.uint8_t(b.verify(region(pk, pkLen), region(sig, sigLen), region(msg, msgLen)))
}

//export free_buffer
func free_buffer(p *C.uint8_t) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}
