package flp

import "github.com/luxfi/mastic/field"

// Count validates a single-bit weight (did this report happen at all).
// It needs no joint randomness or proof: the only "circuit" is the
// identity, so query/decide are trivially satisfied.
type Count struct{}

// NewCount constructs a Count validity circuit.
func NewCount() *Count { return &Count{} }

func (c *Count) MeasLen() int      { return 1 }
func (c *Count) OutputLen() int    { return 1 }
func (c *Count) ProofLen() int     { return 0 }
func (c *Count) ProveRandLen() int { return 0 }
func (c *Count) QueryRandLen() int { return 0 }
func (c *Count) JointRandLen() int { return 0 }

func (c *Count) Encode(weight Measurement) (field.Vector, error) {
	if len(weight) != 1 || weight[0] > 1 {
		return nil, ErrInvalidMeasurement
	}
	return field.Vector{field.FromBit(weight[0] == 1)}, nil
}

func (c *Count) Truncate(meas field.Vector) (field.Vector, error) {
	if len(meas) != 1 {
		return nil, ErrWrongLength
	}
	return meas, nil
}

func (c *Count) Prove(meas, proveRand, jointRand field.Vector) (field.Vector, error) {
	return field.Vector{}, nil
}

func (c *Count) Query(measShare, proofShare, queryRand, jointRand field.Vector, numShares int) (field.Vector, error) {
	return field.Vector{}, nil
}

func (c *Count) Decide(verifier field.Vector) bool {
	return len(verifier) == 0
}

func (c *Count) Decode(output field.Vector, measCount uint64) (Result, error) {
	if len(output) != 1 {
		return nil, ErrWrongLength
	}
	return Result{output[0].Uint64()}, nil
}
