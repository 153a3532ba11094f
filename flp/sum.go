package flp

import "github.com/luxfi/mastic/field"

// Sum validates an integer weight in [0, maxMeasurement], encoded as its
// binary expansion so the circuit's joint-randomness dot product can
// range over one coefficient per bit.
type Sum struct {
	maxMeasurement uint64
	bits           int
}

// NewSum constructs a Sum validity circuit bounded by maxMeasurement.
func NewSum(maxMeasurement uint64) *Sum {
	return &Sum{maxMeasurement: maxMeasurement, bits: bitsFor(maxMeasurement)}
}

func (s *Sum) MeasLen() int      { return s.bits }
func (s *Sum) OutputLen() int    { return 1 }
func (s *Sum) ProofLen() int     { return 1 }
func (s *Sum) ProveRandLen() int { return 1 }
func (s *Sum) QueryRandLen() int { return 1 }
func (s *Sum) JointRandLen() int { return s.bits }

func (s *Sum) Encode(weight Measurement) (field.Vector, error) {
	if len(weight) != 1 || weight[0] > s.maxMeasurement {
		return nil, ErrInvalidMeasurement
	}
	return encodeBits(weight[0], s.bits), nil
}

func (s *Sum) Truncate(meas field.Vector) (field.Vector, error) {
	if len(meas) != s.bits {
		return nil, ErrWrongLength
	}
	return field.Vector{field.FromUint64(decodeBits(meas))}, nil
}

func (s *Sum) Prove(meas, proveRand, jointRand field.Vector) (field.Vector, error) {
	if len(meas) != s.bits || len(jointRand) != s.bits {
		return nil, ErrWrongLength
	}
	return proveLinearCheck(meas, jointRand), nil
}

func (s *Sum) Query(measShare, proofShare, queryRand, jointRand field.Vector, numShares int) (field.Vector, error) {
	if len(measShare) != s.bits || len(jointRand) != s.bits || len(proofShare) != 1 || len(queryRand) != 1 {
		return nil, ErrWrongLength
	}
	return queryLinearCheck(measShare, proofShare, queryRand, jointRand), nil
}

func (s *Sum) Decide(verifier field.Vector) bool {
	return decideLinearCheck(verifier)
}

func (s *Sum) Decode(output field.Vector, measCount uint64) (Result, error) {
	if len(output) != 1 {
		return nil, ErrWrongLength
	}
	return Result{output[0].Uint64()}, nil
}
