// Package flp defines the abstract Fully Linear Proof contract Mastic
// queries during preparation, plus a family of concrete validity
// circuits (Count, Sum, SumVec, Histogram, MultihotCountVec).
//
// The Mastic specification marks the concrete circuits as external,
// specifying only the interface in §6 (encode/truncate/prove/query/
// decide/decode). A usable reference implementation still needs
// something behind that interface to exercise the pipeline end to end,
// so this package supplies one: a single linear consistency check,
// rather than the full gadget-based sumcheck machinery of BBCGGI19. Each
// circuit proves and verifies one relation,
//
//	proof[0] == dot(joint_rand, meas)
//
// split additively across both Aggregators exactly like every other
// shared value in the protocol, and checked by summing each
// Aggregator's local contribution:
//
//	verifier_share_b = query_rand[0] * (dot(joint_rand, meas_share_b) - proof_share_b[0])
//	verifier = verifier_share_0 + verifier_share_1
//	         = query_rand[0] * (dot(joint_rand, meas) - proof[0])
//
// which is zero for an honestly generated proof regardless of how meas
// and proof were split, and nonzero with overwhelming probability
// (over the choice of query_rand) for a mismatched one. This checks a
// linear relation over the shared measurement, not full range/bit
// validity of an adversarial Client's encoding; full booleanity
// enforcement needs gadget-based sumcheck proofs that the specification
// excludes from this core's scope.
package flp

import (
	"errors"

	"github.com/luxfi/mastic/field"
)

var (
	// ErrInvalidMeasurement is returned by Encode for an out-of-range weight.
	ErrInvalidMeasurement = errors.New("flp: invalid measurement")
	// ErrWrongLength is returned when a vector argument has the wrong length.
	ErrWrongLength = errors.New("flp: wrong vector length")
)

// Measurement is the Client-side weight representation consumed by
// Encode. Its interpretation (a single scalar, a bucket index, a
// fixed-length vector) is circuit-specific.
type Measurement []uint64

// Result is the Collector-side decoded aggregate produced by Decode.
type Result []uint64

// Valid is the FLP contract Mastic's Shard/PrepInit/Unshard consume
// (spec §6, "FLP contract (consumed)").
type Valid interface {
	MeasLen() int
	OutputLen() int
	ProofLen() int
	ProveRandLen() int
	QueryRandLen() int
	JointRandLen() int

	Encode(weight Measurement) (field.Vector, error)
	Truncate(meas field.Vector) (field.Vector, error)
	Prove(meas, proveRand, jointRand field.Vector) (field.Vector, error)
	Query(measShare, proofShare, queryRand, jointRand field.Vector, numShares int) (field.Vector, error)
	Decide(verifier field.Vector) bool
	Decode(output field.Vector, measCount uint64) (Result, error)
}

// proveLinearCheck computes the shared proof scalar dot(jointRand, meas)
// used by every non-trivial circuit in this package.
func proveLinearCheck(meas, jointRand field.Vector) field.Vector {
	return field.Vector{field.Dot(jointRand, meas)}
}

// queryLinearCheck computes one Aggregator's share of the linear-check
// verifier: query_rand[0] * (dot(joint_rand, meas_share) - proof_share[0]).
func queryLinearCheck(measShare, proofShare, queryRand, jointRand field.Vector) field.Vector {
	local := field.Dot(jointRand, measShare)
	return field.Vector{field.Mul(queryRand[0], field.Sub(local, proofShare[0]))}
}

// decideLinearCheck accepts iff the combined verifier scalar is zero.
func decideLinearCheck(verifier field.Vector) bool {
	return len(verifier) == 1 && verifier[0].IsZero()
}

// bitsFor returns the number of bits needed to represent every value in
// [0, max] (at least 1).
func bitsFor(max uint64) int {
	n := 1
	for (uint64(1) << uint(n)) <= max {
		n++
	}
	return n
}

// encodeBits renders v as `bits` field elements, least-significant bit
// first, matching the Prio3-style binary encoding of a bounded integer.
func encodeBits(v uint64, bits int) field.Vector {
	out := make(field.Vector, bits)
	for i := 0; i < bits; i++ {
		out[i] = field.FromBit((v>>uint(i))&1 == 1)
	}
	return out
}

// decodeBits reconstructs the integer encoded by encodeBits.
func decodeBits(v field.Vector) uint64 {
	var out uint64
	for i := len(v) - 1; i >= 0; i-- {
		out <<= 1
		if !v[i].IsZero() {
			out |= 1
		}
	}
	return out
}
