package mastic

import (
	"bytes"

	"github.com/luxfi/mastic/field"
	"github.com/luxfi/mastic/flp"
	"github.com/luxfi/mastic/vidpf"
	"github.com/luxfi/mastic/xof"
)

// Mastic drives one FLP validity circuit's Shard/PrepInit/.../Unshard
// lifecycle over a fixed-depth VIDPF tree.
type Mastic struct {
	FLP  flp.Valid
	Bits int
}

// New constructs a Mastic instance for a BITS-deep VIDPF tree and the
// given validity circuit.
func New(f flp.Valid, bits int) *Mastic {
	return &Mastic{FLP: f, Bits: bits}
}

// Measurement is a Client's report: the path alpha and its weight.
type Measurement struct {
	Alpha  vidpf.Bits
	Weight flp.Measurement
}

// RandSize is the number of random bytes Shard consumes: the VIDPF's own
// randomness, plus one seed each for prove-rand, the helper's proof
// share, and the helper's beta share, plus one more for the leader's
// joint-rand seed when the circuit needs joint randomness.
//
// This follows the concrete sequence of seeds actually split out of
// `rand` (vidpf_rand, prove_rand_seed, [leader_seed], helper_seed,
// beta_helper_seed) rather than a separately stated byte-count formula
// that double-counts against it; see DESIGN.md.
func (m *Mastic) RandSize() int {
	n := vidpf.RandSize + 3*xof.SeedSize
	if m.FLP.JointRandLen() > 0 {
		n += xof.SeedSize
	}
	return n
}

// vidpfValueLen is the length of the vector VIDPF.Gen/Eval carry per
// node: a leading per-report counter (always 1 for an honest report)
// followed by the circuit's truncated weight. Summing this vector
// across both Aggregators at the matching prefix recovers
// (matching_report_count, FLP.truncate(FLP.encode(weight))) — see spec
// Testable Property 1.
func (m *Mastic) vidpfValueLen() int {
	return 1 + m.FLP.OutputLen()
}

// Shard splits measurement into a public share and two input shares.
func (m *Mastic) Shard(ctx []byte, measurement Measurement, nonce, rnd []byte) (PublicShare, [2]InputShare, error) {
	var pub PublicShare
	var shares [2]InputShare

	if len(measurement.Alpha) != m.Bits {
		return pub, shares, ErrInvalidArg
	}
	if len(nonce) != NonceSize {
		return pub, shares, ErrInvalidArg
	}
	if len(rnd) != m.RandSize() {
		return pub, shares, ErrInvalidArg
	}

	rest := rnd
	var vidpfRand, proveRandSeed, leaderSeed, helperSeed, betaHelperSeed []byte
	vidpfRand, rest = rest[:vidpf.RandSize], rest[vidpf.RandSize:]
	proveRandSeed, rest = rest[:xof.SeedSize], rest[xof.SeedSize:]
	if m.FLP.JointRandLen() > 0 {
		leaderSeed, rest = rest[:xof.SeedSize], rest[xof.SeedSize:]
	}
	helperSeed, rest = rest[:xof.SeedSize], rest[xof.SeedSize:]
	betaHelperSeed, rest = rest[:xof.SeedSize], rest[xof.SeedSize:]
	if len(rest) != 0 {
		return pub, shares, ErrInvalidArg
	}

	beta, err := m.FLP.Encode(measurement.Weight)
	if err != nil {
		return pub, shares, err
	}
	betaTrunc, err := m.FLP.Truncate(beta)
	if err != nil {
		return pub, shares, err
	}
	betaForVIDPF := append(field.Vector{field.One()}, betaTrunc...)

	binder := append(append([]byte(nil), ctx...), nonce...)
	initSeeds, vpub, err := vidpf.Gen(measurement.Alpha, betaForVIDPF, binder, vidpfRand)
	if err != nil {
		return pub, shares, err
	}

	var jointRand field.Vector
	var jointRandParts [][]byte
	if m.FLP.JointRandLen() > 0 {
		part0 := m.jointRandPart(ctx, Leader, leaderSeed, initSeeds[0], vpub, nonce)
		part1 := m.jointRandPart(ctx, Helper, helperSeed, initSeeds[1], vpub, nonce)
		jointRandParts = [][]byte{part0, part1}
		seed := m.jointRandSeed(ctx, jointRandParts)
		jointRand = xof.ExpandIntoVec(seed, dst(ctx, UsageJointRand), nil, m.FLP.JointRandLen())
	} else {
		jointRand = field.Vector{}
	}

	proveRand := xof.ExpandIntoVec(proveRandSeed, dst(ctx, UsageProveRand), nil, m.FLP.ProveRandLen())
	proof, err := m.FLP.Prove(beta, proveRand, jointRand)
	if err != nil {
		return pub, shares, err
	}

	helperProofShare := xof.ExpandIntoVec(helperSeed, dst(ctx, UsageProofShare), nil, m.FLP.ProofLen())
	leaderProofShare := field.VecSub(proof, helperProofShare)

	betaHelperShare := xof.ExpandIntoVec(betaHelperSeed, dst(ctx, UsageBetaShare), nil, m.FLP.MeasLen())
	betaLeaderShare := field.VecSub(beta, betaHelperShare)

	pub = PublicShare{CorrectionWords: vpub.CorrectionWords, CSProofs: vpub.CSProofs, JointRandParts: jointRandParts}
	shares[Leader] = InputShare{AggID: Leader, Key: initSeeds[0], ProofShare: leaderProofShare, Seed: leaderSeed, BetaShare: betaLeaderShare}
	shares[Helper] = InputShare{AggID: Helper, Key: initSeeds[1], Seed: helperSeed, BetaShare: betaHelperShare}
	return pub, shares, nil
}

// PrepInit evaluates the VIDPF at agg_param and, if requested, queries
// the FLP on the weight share, returning this Aggregator's prep state
// and prep share.
func (m *Mastic) PrepInit(verifyKey, ctx []byte, aggID int, agg AggregationParam, nonce []byte, pub PublicShare, share InputShare) (PrepState, PrepShare, error) {
	var state PrepState
	var out PrepShare

	if aggID != Leader && aggID != Helper {
		return state, out, ErrInvalidArg
	}
	if len(nonce) != NonceSize {
		return state, out, ErrInvalidArg
	}

	proofShare := share.ProofShare
	if aggID == Helper {
		proofShare = xof.ExpandIntoVec(share.Seed, dst(ctx, UsageProofShare), nil, m.FLP.ProofLen())
	}

	binder := append(append([]byte(nil), ctx...), nonce...)
	_, outShare, evalProof, err := vidpf.Eval(aggID, pub.vidpfPublicShare(), share.Key, int(agg.Level), agg.Prefixes, binder)
	if err != nil {
		return state, out, err
	}

	var verifierShare field.Vector
	var jointRandPart []byte
	var jointRandSeed []byte
	if agg.DoWeightCheck {
		queryRandBinder := append(append([]byte(nil), nonce...), xof.LE16(agg.Level)...)
		queryRand := xof.ExpandIntoVec(verifyKey, dst(ctx, UsageQueryRand), queryRandBinder, m.FLP.QueryRandLen())

		jointRand := field.Vector{}
		if m.FLP.JointRandLen() > 0 {
			part := m.jointRandPart(ctx, aggID, share.Seed, share.Key, pub.vidpfPublicShare(), nonce)
			parts := make([][]byte, 2)
			copy(parts, pub.JointRandParts)
			parts[aggID] = part
			jointRandPart = part
			jointRandSeed = m.jointRandSeed(ctx, parts)
			jointRand = xof.ExpandIntoVec(jointRandSeed, dst(ctx, UsageJointRand), nil, m.FLP.JointRandLen())
		}

		verifierShare, err = m.FLP.Query(share.BetaShare, proofShare, queryRand, jointRand, Shares)
		if err != nil {
			return state, out, err
		}
	}

	truncatedOutShare := make(field.Vector, 0, len(agg.Prefixes)*m.vidpfValueLen())
	for _, valShare := range outShare {
		truncatedOutShare = append(truncatedOutShare, valShare[0])
		truncatedOutShare = append(truncatedOutShare, valShare[1:]...)
	}

	state = PrepState{TruncatedOutShare: truncatedOutShare, JointRandSeed: jointRandSeed}
	out = PrepShare{EvalProof: evalProof, VerifierShare: verifierShare, JointRandPart: jointRandPart}
	return state, out, nil
}

// PrepSharesToPrep combines the two Aggregators' prep shares, verifying
// VIDPF agreement and (if applicable) FLP acceptance, and returns the
// prep message (joint-randomness confirmation) or nil.
func (m *Mastic) PrepSharesToPrep(ctx []byte, agg AggregationParam, shares []PrepShare) ([]byte, error) {
	if len(shares) != Shares {
		return nil, ErrCardinality
	}
	if !bytes.Equal(shares[0].EvalProof[:], shares[1].EvalProof[:]) {
		return nil, ErrVidpfMismatch
	}
	if !agg.DoWeightCheck {
		return nil, nil
	}
	if shares[0].VerifierShare == nil || shares[1].VerifierShare == nil {
		return nil, ErrMissingVerifier
	}
	verifier := field.VecAdd(shares[0].VerifierShare, shares[1].VerifierShare)
	if !m.FLP.Decide(verifier) {
		return nil, ErrFlpReject
	}
	if m.FLP.JointRandLen() == 0 {
		return nil, nil
	}
	if shares[0].JointRandPart == nil || shares[1].JointRandPart == nil {
		return nil, ErrMissingJointRandPart
	}
	return m.jointRandSeed(ctx, [][]byte{shares[0].JointRandPart, shares[1].JointRandPart}), nil
}

// PrepNext checks the joint-randomness confirmation (if applicable) and
// returns this Aggregator's truncated output share.
func (m *Mastic) PrepNext(state PrepState, msg []byte) (field.Vector, error) {
	if state.JointRandSeed != nil {
		if msg == nil {
			return nil, ErrMissingConfirmation
		}
		if !bytes.Equal(msg, state.JointRandSeed) {
			return nil, ErrJointRandMismatch
		}
	}
	return state.TruncatedOutShare, nil
}

// AggInit returns a zero aggregate-share vector sized for agg_param.
func (m *Mastic) AggInit(agg AggregationParam) field.Vector {
	return field.Zeros(len(agg.Prefixes) * m.vidpfValueLen())
}

// AggUpdate adds an output share into an aggregate share.
func (m *Mastic) AggUpdate(aggShare, outShare field.Vector) field.Vector {
	return field.VecAdd(aggShare, outShare)
}

// Merge combines aggregate shares from multiple collection batches.
func (m *Mastic) Merge(agg AggregationParam, aggShares []field.Vector) field.Vector {
	total := m.AggInit(agg)
	for _, share := range aggShares {
		total = field.VecAdd(total, share)
	}
	return total
}

// Unshard decodes the merged aggregate shares into one result per
// prefix, in agg_param's prefix order.
func (m *Mastic) Unshard(agg AggregationParam, aggShares []field.Vector, numMeasurements uint64) ([]flp.Result, error) {
	chunkLen := m.vidpfValueLen()
	for _, share := range aggShares {
		if len(share) != len(agg.Prefixes)*chunkLen {
			return nil, ErrInvalidArg
		}
	}
	combined := m.Merge(agg, aggShares)

	results := make([]flp.Result, len(agg.Prefixes))
	for i := range agg.Prefixes {
		chunk := combined[i*chunkLen : (i+1)*chunkLen]
		measCount := chunk[0].Uint64()
		result, err := m.FLP.Decode(chunk[1:], measCount)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// IsValid reports whether agg_param may legally follow previous in one
// report's aggregation-parameter sequence: the weight check occurs
// exactly once, and level is strictly increasing. An agg_param that
// requests the weight check is accepted only when previous is empty; one
// that does not request it is accepted only when some entry of previous
// did. previous itself is not re-checked: which of its entries did the
// check, and how many did, does not matter beyond there being at least
// one.
func IsValid(agg AggregationParam, previous []AggregationParam) bool {
	weightChecked := agg.DoWeightCheck && len(previous) == 0
	if !agg.DoWeightCheck {
		for _, p := range previous {
			if p.DoWeightCheck {
				weightChecked = true
				break
			}
		}
	}

	levelIncreased := len(previous) == 0 || agg.Level > previous[len(previous)-1].Level
	return weightChecked && levelIncreased
}

// CheckAggParamOrder wraps IsValid for callers that want a typed failure
// (spec §7's AggParamOrder kind) instead of a bare bool.
func CheckAggParamOrder(agg AggregationParam, previous []AggregationParam) error {
	if !IsValid(agg, previous) {
		return ErrAggParamOrder
	}
	return nil
}

func (m *Mastic) jointRandPart(ctx []byte, aggID int, seed, key []byte, pub vidpf.PublicShare, nonce []byte) []byte {
	binder := make([]byte, 0, 1+len(nonce)+len(key))
	binder = append(binder, byte(aggID))
	binder = append(binder, nonce...)
	binder = append(binder, key...)
	binder = append(binder, vidpf.EncodePublicShare(pub)...)
	return xof.DeriveSeed(seed, dst(ctx, UsageJointRandPart), binder)
}

func (m *Mastic) jointRandSeed(ctx []byte, parts [][]byte) []byte {
	binder := make([]byte, 0)
	for _, p := range parts {
		binder = append(binder, p...)
	}
	return xof.DeriveSeed(xof.Zeros(), dst(ctx, UsageJointRandSeed), binder)
}
