package flp

import "github.com/luxfi/mastic/field"

// Histogram validates a one-hot bucket-indicator vector: exactly one of
// `length` entries is 1. chunkLength is carried from the wire parameters
// but, as in SumVec, has no role in this package's single-relation
// linear check.
type Histogram struct {
	length      int
	chunkLength int
}

// NewHistogram constructs a Histogram circuit with `length` buckets.
func NewHistogram(length, chunkLength int) *Histogram {
	return &Histogram{length: length, chunkLength: chunkLength}
}

func (h *Histogram) MeasLen() int      { return h.length }
func (h *Histogram) OutputLen() int    { return h.length }
func (h *Histogram) ProofLen() int     { return 1 }
func (h *Histogram) ProveRandLen() int { return 1 }
func (h *Histogram) QueryRandLen() int { return 1 }
func (h *Histogram) JointRandLen() int { return h.length }

func (h *Histogram) Encode(weight Measurement) (field.Vector, error) {
	if len(weight) != 1 || weight[0] >= uint64(h.length) {
		return nil, ErrInvalidMeasurement
	}
	out := field.Zeros(h.length)
	out[weight[0]] = field.One()
	return out, nil
}

func (h *Histogram) Truncate(meas field.Vector) (field.Vector, error) {
	if len(meas) != h.length {
		return nil, ErrWrongLength
	}
	return meas, nil
}

func (h *Histogram) Prove(meas, proveRand, jointRand field.Vector) (field.Vector, error) {
	if len(meas) != h.length || len(jointRand) != h.length {
		return nil, ErrWrongLength
	}
	return proveLinearCheck(meas, jointRand), nil
}

func (h *Histogram) Query(measShare, proofShare, queryRand, jointRand field.Vector, numShares int) (field.Vector, error) {
	if len(measShare) != h.length || len(jointRand) != h.length || len(proofShare) != 1 || len(queryRand) != 1 {
		return nil, ErrWrongLength
	}
	return queryLinearCheck(measShare, proofShare, queryRand, jointRand), nil
}

func (h *Histogram) Decide(verifier field.Vector) bool {
	return decideLinearCheck(verifier)
}

func (h *Histogram) Decode(output field.Vector, measCount uint64) (Result, error) {
	if len(output) != h.length {
		return nil, ErrWrongLength
	}
	out := make(Result, h.length)
	for i, e := range output {
		out[i] = e.Uint64()
	}
	return out, nil
}
