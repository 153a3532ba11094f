// Package mastic implements the Mastic VDAF's sharding, preparation,
// aggregation, and unsharding algorithms: the orchestration layer that
// drives a vidpf.PublicShare/key pair and an flp.Valid circuit through
// one report's lifecycle under a sequence of aggregation parameters.
package mastic

import (
	"errors"

	"github.com/luxfi/mastic/field"
	"github.com/luxfi/mastic/flp"
	"github.com/luxfi/mastic/vidpf"
)

// NonceSize is the fixed size in bytes of a report's nonce.
const NonceSize = 16

// VerifyKeySize is the size in bytes of the shared verification key.
const VerifyKeySize = 32

// Shares is the number of Aggregators (and hence key/input shares).
const Shares = 2

// Leader and Helper identify the two Aggregator roles by agg_id.
const (
	Leader = 0
	Helper = 1
)

var (
	ErrInvalidArg          = errors.New("mastic: invalid argument")
	ErrDuplicatePrefix     = vidpf.ErrDuplicatePrefix
	ErrAggParamOrder       = errors.New("mastic: aggregation parameter ordering violated")
	ErrVidpfMismatch       = errors.New("mastic: vidpf eval proof mismatch")
	ErrFlpReject           = errors.New("mastic: flp rejected the verifier")
	ErrMissingVerifier     = errors.New("mastic: missing verifier share")
	ErrMissingJointRandPart = errors.New("mastic: missing joint randomness part")
	ErrMissingConfirmation = errors.New("mastic: missing joint randomness confirmation")
	ErrJointRandMismatch   = errors.New("mastic: joint randomness confirmation mismatch")
	ErrCardinality         = errors.New("mastic: expected exactly two prep shares")
)

// AggregationParam names the tree level and candidate prefix set one
// preparation round runs at, plus whether that round also checks weight
// validity. A report is processed under a sequence of these; see
// IsValid for the cross-call invariants the sequence must satisfy.
type AggregationParam struct {
	Level         uint16
	Prefixes      []vidpf.Bits
	DoWeightCheck bool
}

// PublicShare is the VIDPF public share plus, when the FLP circuit needs
// joint randomness, each Aggregator's joint-randomness part.
type PublicShare struct {
	CorrectionWords []vidpf.CorrectionWord
	CSProofs        [][vidpf.ProofSize]byte
	JointRandParts  [][]byte // nil if the circuit has JointRandLen() == 0; else length 2
}

func (p PublicShare) vidpfPublicShare() vidpf.PublicShare {
	return vidpf.PublicShare{CorrectionWords: p.CorrectionWords, CSProofs: p.CSProofs}
}

// HasJointRand reports whether this report carries joint-randomness parts.
func (p PublicShare) HasJointRand() bool {
	return p.JointRandParts != nil
}

// InputShare is one Aggregator's share of a report. The leader
// (AggID == Leader) carries an explicit ProofShare and, when the FLP
// circuit needs joint randomness, a Seed used to reconstruct its own
// joint-rand part during PrepInit. The helper (AggID == Helper) carries
// only a Seed, from which its proof share is expanded.
type InputShare struct {
	AggID      int
	Key        []byte
	ProofShare field.Vector // present (len>0) only when AggID == Leader
	Seed       []byte       // present for Helper always, and for Leader iff joint rand is used
	BetaShare  field.Vector
}

// PrepState is per-Aggregator state carried from PrepInit to PrepNext.
type PrepState struct {
	TruncatedOutShare field.Vector
	JointRandSeed     []byte // nil unless this circuit needs joint randomness
}

// PrepShare is what one Aggregator contributes to PrepSharesToPrep.
type PrepShare struct {
	EvalProof     [2 * vidpf.ProofSize]byte
	VerifierShare field.Vector // nil unless DoWeightCheck
	JointRandPart []byte       // nil unless DoWeightCheck and the circuit needs joint randomness
}
