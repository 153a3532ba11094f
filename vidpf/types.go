// Package vidpf implements the Verifiable Incremental Distributed Point
// Function at the core of Mastic: a tree-structured PRG with correction
// words, control bits, and one-hot/path proofs that let the two
// Aggregators confirm — without learning alpha — that a client's shares
// encode a single nonzero leaf.
//
// The tree/PRG construction follows the same shape as the optimized
// tree-based DPF in the retrieved pack (2018 Boyle/Gilboa/Ishai
// construction): per-level seed pair + control-bit pair, a correction
// word per level, and a `convert` step turning a seed into an output
// vector. Mastic additionally threads a running one-hot proof hash and a
// per-level "cs_proof" public commitment through every step.
package vidpf

import (
	"errors"

	"github.com/luxfi/mastic/field"
	"github.com/luxfi/mastic/xof"
)

// Shares is the number of VIDPF key shares generated per report.
const Shares = 2

// RandSize is the number of random bytes Gen consumes.
const RandSize = 2 * xof.SeedSize

// ProofSize is the size in bytes of a single-level one-hot proof
// (cs_proof), and of the running one-hot/path proof accumulators.
const ProofSize = 32

var (
	// ErrInvalidArg covers out-of-range agg_id/level/prefix lengths.
	ErrInvalidArg = errors.New("vidpf: invalid argument")
	// ErrDuplicatePrefix is raised when a candidate prefix set repeats an entry.
	ErrDuplicatePrefix = errors.New("vidpf: duplicate prefix")
)

// Bits is a fixed-order bit-string, index 0 is the most significant bit
// (spec §3: "big-endian bit order"). It is the type used for both alpha
// (always len == BITS) and a prefix (always len == level+1).
type Bits []bool

// Uint64 interprets the bit-string as a big-endian unsigned integer. Only
// valid for len(b) <= 64, which covers every realistic VIDPF depth.
func (b Bits) Uint64() uint64 {
	var v uint64
	for _, bit := range b {
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v
}

// BitsFromUint64 renders the low `length` bits of v (MSB-first) as Bits.
func BitsFromUint64(v uint64, length int) Bits {
	out := make(Bits, length)
	for i := 0; i < length; i++ {
		shift := uint(length - 1 - i)
		out[i] = (v>>shift)&1 == 1
	}
	return out
}

// CorrectionWord is the per-level public correction material described in
// spec §3: a seed XOR-mask, a pair of GF(2) control-bit corrections (left
// and right child), and a field-vector mask.
type CorrectionWord struct {
	SeedCW []byte // xof.SeedSize bytes
	CtrlCW [2]field.Elem2
	WCW    field.Vector
}

// PublicShare is the VIDPF public share: one correction word and one
// one-hot-proof mask per tree level.
type PublicShare struct {
	CorrectionWords []CorrectionWord
	CSProofs        [][ProofSize]byte
}

// BitLen returns the tree depth (BITS) this public share was generated for.
func (p PublicShare) BitLen() int {
	return len(p.CorrectionWords)
}

// EncodePublicShare renders the public share to its canonical byte
// encoding, used both as a test-vector artifact and (security-critically)
// as input to Mastic's joint-randomness-part binder (spec §4.6).
func EncodePublicShare(p PublicShare) []byte {
	out := make([]byte, 0)
	for _, cw := range p.CorrectionWords {
		out = append(out, cw.SeedCW...)
		out = append(out, ctrlByte(cw.CtrlCW[0]), ctrlByte(cw.CtrlCW[1]))
		out = append(out, field.EncodeVec(cw.WCW)...)
	}
	for _, proof := range p.CSProofs {
		out = append(out, proof[:]...)
	}
	return out
}

func ctrlByte(e field.Elem2) byte {
	if e.Bit() {
		return 1
	}
	return 0
}
