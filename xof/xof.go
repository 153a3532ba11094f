// Package xof implements the extendable-output function Mastic uses for
// seed derivation and field-vector expansion.
//
// The Mastic spec treats the XOF as an external contract (derive_seed,
// expand_into_vec, domain separation, SEED_SIZE). This package supplies a
// concrete instantiation on top of golang.org/x/crypto/sha3's cSHAKE128,
// using the customization string as the domain-separation tag the spec
// calls `dst`.
package xof

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/luxfi/mastic/field"
)

// SeedSize is the size in bytes of a seed, key, or derived seed.
const SeedSize = 32

// XOF is a single domain-separated, seeded extendable-output stream.
type XOF struct {
	h sha3.ShakeHash
}

// New opens a new XOF stream seeded by seed, domain-separated by dst, and
// bound to binder (additional public context absorbed before any output
// is read).
func New(seed, dst, binder []byte) *XOF {
	h := sha3.NewCShake128(nil, dst)
	h.Write(seed)
	h.Write(binder)
	return &XOF{h: h}
}

// Next reads the next n bytes of output.
func (x *XOF) Next(n int) []byte {
	out := make([]byte, n)
	if _, err := x.h.Read(out); err != nil {
		// sha3.ShakeHash.Read never returns an error; a panic here would
		// indicate a broken hash implementation, not a caller mistake.
		panic(err)
	}
	return out
}

// NextVec reads n field elements from the stream, one SeedSize-sized
// chunk at a time (a simple, constant-cost rejection-free expansion:
// every chunk is reduced mod p by field.Decode).
func (x *XOF) NextVec(n int) field.Vector {
	out := make(field.Vector, n)
	for i := 0; i < n; i++ {
		e, err := field.Decode(x.Next(field.Size))
		if err != nil {
			panic(err) // field.Size bytes always decode
		}
		out[i] = e
	}
	return out
}

// DeriveSeed derives a new SeedSize-byte seed from seed, dst and binder.
func DeriveSeed(seed, dst, binder []byte) []byte {
	return New(seed, dst, binder).Next(SeedSize)
}

// ExpandIntoVec expands seed into a length-n field vector, domain
// separated by dst and bound to binder.
func ExpandIntoVec(seed, dst, binder []byte, n int) field.Vector {
	return New(seed, dst, binder).NextVec(n)
}

// ExpandBytes expands seed into n raw bytes, domain separated by dst and
// bound to binder, for callers that need raw seed or control-bit
// material rather than field elements.
func ExpandBytes(seed, dst, binder []byte, n int) []byte {
	return New(seed, dst, binder).Next(n)
}

// LE16 encodes n as 2 little-endian bytes, matching the spec's
// `to_le_bytes(i, 2)` used throughout the VIDPF transcript hashes.
func LE16(n uint16) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, n)
	return out
}

// BE16 encodes n as 2 big-endian bytes.
func BE16(n uint16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, n)
	return out
}

// BE32 encodes n as 4 big-endian bytes, used for the usage code in
// mastic's domain-separation tags.
func BE32(n uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, n)
	return out
}

// Zeros returns an all-zero seed, used as the joint-randomness-seed base
// key (spec §4.4: `derive_seed(0^SEED_SIZE, ...)`).
func Zeros() []byte {
	return make([]byte, SeedSize)
}
