package mastic

import "github.com/luxfi/mastic/xof"

// Usage codes identify the purpose of a derived seed or expansion within
// one Mastic context (spec §4.6). Each is folded into the XOF's
// domain-separation tag together with the caller-supplied ctx bytes.
const (
	UsageProofShare    uint32 = 1
	UsageProveRand     uint32 = 2
	UsageQueryRand     uint32 = 3
	UsageJointRandPart uint32 = 4
	UsageJointRandSeed uint32 = 5
	UsageJointRand     uint32 = 6

	// UsageBetaShare reuses UsageProofShare's code. The source this
	// specification was distilled from does the same for both the
	// helper's proof-share expansion and the beta-share-from-seed
	// expansion; preserved here bit-for-bit for wire compatibility rather
	// than split into a distinct code, per the open design note calling
	// this out as deliberate-or-latent and telling implementers not to
	// guess.
	UsageBetaShare = UsageProofShare
)

// dst builds the domain-separation tag for one (ctx, usage) pair: the
// 4-byte big-endian usage code followed by the context bytes.
func dst(ctx []byte, usage uint32) []byte {
	out := make([]byte, 0, 4+len(ctx))
	out = append(out, xof.BE32(usage)...)
	out = append(out, ctx...)
	return out
}
