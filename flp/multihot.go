package flp

import "github.com/luxfi/mastic/field"

// MultihotCountVec validates a 0/1 indicator vector with at most
// maxWeight entries set, generalizing Histogram's one-hot constraint to
// a bounded multi-hot one. chunkLength, as elsewhere in this package, is
// a gadget-batching parameter of the full construction with no role in
// the simplified linear check.
type MultihotCountVec struct {
	length      int
	maxWeight   int
	chunkLength int
}

// NewMultihotCountVec constructs a MultihotCountVec circuit over
// `length` entries with at most maxWeight set.
func NewMultihotCountVec(length, maxWeight, chunkLength int) *MultihotCountVec {
	return &MultihotCountVec{length: length, maxWeight: maxWeight, chunkLength: chunkLength}
}

func (m *MultihotCountVec) MeasLen() int      { return m.length }
func (m *MultihotCountVec) OutputLen() int    { return m.length }
func (m *MultihotCountVec) ProofLen() int     { return 1 }
func (m *MultihotCountVec) ProveRandLen() int { return 1 }
func (m *MultihotCountVec) QueryRandLen() int { return 1 }
func (m *MultihotCountVec) JointRandLen() int { return m.length }

func (m *MultihotCountVec) Encode(weight Measurement) (field.Vector, error) {
	if len(weight) != m.length {
		return nil, ErrInvalidMeasurement
	}
	set := 0
	out := make(field.Vector, m.length)
	for i, w := range weight {
		if w > 1 {
			return nil, ErrInvalidMeasurement
		}
		if w == 1 {
			set++
		}
		out[i] = field.FromBit(w == 1)
	}
	if set > m.maxWeight {
		return nil, ErrInvalidMeasurement
	}
	return out, nil
}

func (m *MultihotCountVec) Truncate(meas field.Vector) (field.Vector, error) {
	if len(meas) != m.length {
		return nil, ErrWrongLength
	}
	return meas, nil
}

func (m *MultihotCountVec) Prove(meas, proveRand, jointRand field.Vector) (field.Vector, error) {
	if len(meas) != m.length || len(jointRand) != m.length {
		return nil, ErrWrongLength
	}
	return proveLinearCheck(meas, jointRand), nil
}

func (m *MultihotCountVec) Query(measShare, proofShare, queryRand, jointRand field.Vector, numShares int) (field.Vector, error) {
	if len(measShare) != m.length || len(jointRand) != m.length || len(proofShare) != 1 || len(queryRand) != 1 {
		return nil, ErrWrongLength
	}
	return queryLinearCheck(measShare, proofShare, queryRand, jointRand), nil
}

func (m *MultihotCountVec) Decide(verifier field.Vector) bool {
	return decideLinearCheck(verifier)
}

func (m *MultihotCountVec) Decode(output field.Vector, measCount uint64) (Result, error) {
	if len(output) != m.length {
		return nil, ErrWrongLength
	}
	out := make(Result, m.length)
	for i, e := range output {
		out[i] = e.Uint64()
	}
	return out, nil
}
