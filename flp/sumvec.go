package flp

import "github.com/luxfi/mastic/field"

// SumVec validates a fixed-length vector of bounded integers, each
// encoded as its own binary expansion (a batched Sum). chunkLength is
// carried from the wire parameters but unused by this circuit's linear
// check: in the full BBCGGI19 construction it sets the gadget-call
// batching granularity for the range-check sumcheck, which this
// simplified single-relation check has no analog of.
type SumVec struct {
	length      int
	bits        int
	chunkLength int
}

// NewSumVec constructs a SumVec circuit over `length` entries, each
// bounded to `bits` bits.
func NewSumVec(length, bits, chunkLength int) *SumVec {
	return &SumVec{length: length, bits: bits, chunkLength: chunkLength}
}

func (s *SumVec) MeasLen() int      { return s.length * s.bits }
func (s *SumVec) OutputLen() int    { return s.length }
func (s *SumVec) ProofLen() int     { return 1 }
func (s *SumVec) ProveRandLen() int { return 1 }
func (s *SumVec) QueryRandLen() int { return 1 }
func (s *SumVec) JointRandLen() int { return s.length * s.bits }

func (s *SumVec) Encode(weight Measurement) (field.Vector, error) {
	if len(weight) != s.length {
		return nil, ErrInvalidMeasurement
	}
	max := (uint64(1) << uint(s.bits)) - 1
	out := make(field.Vector, 0, s.MeasLen())
	for _, w := range weight {
		if w > max {
			return nil, ErrInvalidMeasurement
		}
		out = append(out, encodeBits(w, s.bits)...)
	}
	return out, nil
}

func (s *SumVec) Truncate(meas field.Vector) (field.Vector, error) {
	if len(meas) != s.MeasLen() {
		return nil, ErrWrongLength
	}
	out := make(field.Vector, s.length)
	for i := 0; i < s.length; i++ {
		out[i] = field.FromUint64(decodeBits(meas[i*s.bits : (i+1)*s.bits]))
	}
	return out, nil
}

func (s *SumVec) Prove(meas, proveRand, jointRand field.Vector) (field.Vector, error) {
	if len(meas) != s.MeasLen() || len(jointRand) != s.MeasLen() {
		return nil, ErrWrongLength
	}
	return proveLinearCheck(meas, jointRand), nil
}

func (s *SumVec) Query(measShare, proofShare, queryRand, jointRand field.Vector, numShares int) (field.Vector, error) {
	if len(measShare) != s.MeasLen() || len(jointRand) != s.MeasLen() || len(proofShare) != 1 || len(queryRand) != 1 {
		return nil, ErrWrongLength
	}
	return queryLinearCheck(measShare, proofShare, queryRand, jointRand), nil
}

func (s *SumVec) Decide(verifier field.Vector) bool {
	return decideLinearCheck(verifier)
}

func (s *SumVec) Decode(output field.Vector, measCount uint64) (Result, error) {
	if len(output) != s.length {
		return nil, ErrWrongLength
	}
	out := make(Result, s.length)
	for i, e := range output {
		out[i] = e.Uint64()
	}
	return out, nil
}
