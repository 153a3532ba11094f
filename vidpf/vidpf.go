package vidpf

import (
	"strconv"

	"golang.org/x/crypto/sha3"

	"github.com/luxfi/mastic/field"
)

// Domain-separation tags for the two PRG steps. Unlike the field-vector
// XOF (package xof), these never vary by tree level: the level is instead
// folded into the transcript hashes below, exactly where the underlying
// construction puts it.
var (
	dstExtend  = []byte("mastic-vidpf-extend")
	dstConvert = []byte("mastic-vidpf-convert")
)

// rootProof is the fixed starting value of the one-hot proof accumulator:
// the SHA3-256 hash of the empty string.
func rootProof() [ProofSize]byte {
	return sha3.Sum256(nil)
}

// nodeEntry is the per-(node,level) memoized state produced by evalNext:
// the node's seed and control bit (for continuing the walk), its output
// share, and the one-hot proof accumulated along the path to this node.
type nodeEntry struct {
	seed  []byte
	ctrl  field.Elem2
	y     field.Vector
	proof [ProofSize]byte
}

type nodeKey struct {
	node  uint64
	level int
}

// Gen generates a VIDPF key pair that secret-shares a point function
// mapping alpha to beta (and every other input to the zero vector).
// rand must be exactly RandSize bytes.
func Gen(alpha Bits, beta field.Vector, binder, rnd []byte) (initSeeds [2][]byte, pub PublicShare, err error) {
	bits := len(alpha)
	if bits == 0 {
		return initSeeds, pub, ErrInvalidArg
	}
	if len(rnd) != RandSize {
		return initSeeds, pub, ErrInvalidArg
	}

	initSeeds[0] = append([]byte(nil), rnd[:xof32]...)
	initSeeds[1] = append([]byte(nil), rnd[xof32:]...)

	seed := [2][]byte{initSeeds[0], initSeeds[1]}
	ctrl := [2]field.Elem2{field.Zero2(), field.One2()}

	pub.CorrectionWords = make([]CorrectionWord, bits)
	pub.CSProofs = make([][ProofSize]byte, bits)

	var node uint64
	for i := 0; i < bits; i++ {
		bit := alpha[i]
		node = (node << 1)
		if bit {
			node |= 1
		}

		// keep the child on the alpha path, lose the sibling.
		keep, lose := 0, 1
		if bit {
			keep, lose = 1, 0
		}

		s0, t0 := extend(seed[0], binder)
		s1, t1 := extend(seed[1], binder)

		seedCW := xorBytes(s0[lose], s1[lose])
		ctrlCW := [2]field.Elem2{
			t0[0].Add(t1[0]).Add(field.One2()).Add(field.NewElem2(bit)),
			t0[1].Add(t1[1]).Add(field.NewElem2(bit)),
		}

		correctedSeed0 := correctBytes(s0[keep], seedCW, ctrl[0])
		correctedSeed1 := correctBytes(s1[keep], seedCW, ctrl[1])
		nextSeed0, w0 := convert(correctedSeed0, binder, len(beta))
		nextSeed1, w1 := convert(correctedSeed1, binder, len(beta))
		seed[0], seed[1] = nextSeed0, nextSeed1

		ctrl[0] = correctElem2(t0[keep], ctrlCW[keep], ctrl[0])
		ctrl[1] = correctElem2(t1[keep], ctrlCW[keep], ctrl[1])

		wCW := field.VecAdd(field.VecSub(beta, w0), w1)
		// mask = 1 - 2*ctrl[1]: +1 if ctrl[1]==0, -1 if ctrl[1]==1.
		mask := field.Sub(field.One(), field.Mul(field.FromUint64(2), field.FromBit(ctrl[1].Bit())))
		wCW = field.VecScalarMul(wCW, mask)

		proof0 := hashProof(node, i, seed[0])
		proof1 := hashProof(node, i, seed[1])

		pub.CorrectionWords[i] = CorrectionWord{SeedCW: seedCW, CtrlCW: ctrlCW, WCW: wCW}
		pub.CSProofs[i] = xorProof(proof0, proof1)
	}

	return initSeeds, pub, nil
}

// Eval computes one Aggregator's share of the output at every prefix in
// prefixes (all of length level+1), plus that Aggregator's share of beta
// and a one-hot/path proof to be compared against the other Aggregator's.
func Eval(aggID int, pub PublicShare, initSeed []byte, level int, prefixes []Bits, binder []byte) (betaShare field.Vector, outShare []field.Vector, proof [2 * ProofSize]byte, err error) {
	if aggID < 0 || aggID >= Shares {
		return nil, nil, proof, ErrInvalidArg
	}
	bits := pub.BitLen()
	if level < 0 || level >= bits {
		return nil, nil, proof, ErrInvalidArg
	}

	seen := make(map[uint64]bool, len(prefixes))
	for _, p := range prefixes {
		if len(p) != level+1 {
			return nil, nil, proof, ErrInvalidArg
		}
		v := p.Uint64()
		if seen[v] {
			return nil, nil, proof, ErrDuplicatePrefix
		}
		seen[v] = true
	}

	memo := make(map[nodeKey]nodeEntry)
	piProof := rootProof()

	for _, prefix := range prefixes {
		pv := prefix.Uint64()
		seed := initSeed
		ctrl := field.NewElem2(aggID == 1)
		for curLevel := 0; curLevel <= level; curLevel++ {
			node := pv >> uint(level-curLevel)
			for s := uint64(0); s < 2; s++ {
				key := nodeKey{node ^ s, curLevel}
				if _, ok := memo[key]; !ok {
					memo[key] = evalNext(seed, ctrl, pub.CorrectionWords[curLevel], pub.CSProofs[curLevel], curLevel, node^s, piProof, binder)
				}
			}
			e := memo[nodeKey{node, curLevel}]
			seed, ctrl, piProof = e.seed, e.ctrl, e.proof
		}
	}

	pathHash := sha3.New256()
	for _, prefix := range prefixes {
		pv := prefix.Uint64()
		for curLevel := 0; curLevel < level; curLevel++ {
			node := pv >> uint(level-curLevel)
			y := memo[nodeKey{node, curLevel}].y
			y0 := memo[nodeKey{node << 1, curLevel + 1}].y
			y1 := memo[nodeKey{(node << 1) | 1, curLevel + 1}].y
			pathHash.Write(field.EncodeVec(field.VecSub(y, field.VecAdd(y0, y1))))
		}
	}
	var pathProof [ProofSize]byte
	copy(pathProof[:], pathHash.Sum(nil))

	outShare = make([]field.Vector, len(prefixes))
	for i, prefix := range prefixes {
		y := memo[nodeKey{prefix.Uint64(), level}].y
		if aggID == 1 {
			y = field.VecNeg(y)
		}
		outShare[i] = y
	}

	y0 := memo[nodeKey{0, 0}].y
	y1 := memo[nodeKey{1, 0}].y
	betaShare = field.VecAdd(y0, y1)
	if aggID == 1 {
		betaShare = field.VecNeg(betaShare)
	}

	copy(proof[:ProofSize], piProof[:])
	copy(proof[ProofSize:], pathProof[:])
	return betaShare, outShare, proof, nil
}

// evalNext walks one tree level from (prevSeed, prevCtrl) towards `node`,
// returning the new seed/ctrl/output-share and the updated one-hot proof.
func evalNext(prevSeed []byte, prevCtrl field.Elem2, cw CorrectionWord, csProof [ProofSize]byte, currentLevel int, node uint64, piProof [ProofSize]byte, binder []byte) nodeEntry {
	s0, t0 := extend(prevSeed, binder)
	s := [2][]byte{
		xorBytes(s0[0], condSelectBytes(prevCtrl, cw.SeedCW)),
		xorBytes(s0[1], condSelectBytes(prevCtrl, cw.SeedCW)),
	}
	t := [2]field.Elem2{
		t0[0].Add(cw.CtrlCW[0].Mul(prevCtrl)),
		t0[1].Add(cw.CtrlCW[1].Mul(prevCtrl)),
	}

	bit := 0
	if node&1 == 1 {
		bit = 1
	}
	nextCtrl := t[bit]
	nextSeed, w := convert(s[bit], binder, len(cw.WCW))

	mask := field.FromBit(nextCtrl.Bit())
	y := field.VecAdd(w, field.VecScalarMul(cw.WCW, mask))

	piPrime := hashProof(node, currentLevel, nextSeed)

	var h2 [ProofSize]byte
	if nextCtrl.Bit() {
		h2 = xorProof(piProof, xorProof(piPrime, csProof))
	} else {
		h2 = xorProof(piProof, piPrime)
	}
	newPiProof := xorProof(piProof, sha3.Sum256(h2[:]))

	return nodeEntry{seed: nextSeed, ctrl: nextCtrl, y: y, proof: newPiProof}
}

const xof32 = 32

// extend runs the tree PRG, splitting a parent seed into a left/right
// child seed pair and a left/right child control-bit pair.
func extend(seed, binder []byte) (s [2][]byte, t [2]field.Elem2) {
	out := expand(seed, dstExtend, binder, 2*xof32+1)
	s[0] = out[:xof32]
	s[1] = out[xof32 : 2*xof32]
	b := out[2*xof32]
	t[0] = field.NewElem2(b&1 == 1)
	t[1] = field.NewElem2((b>>1)&1 == 1)
	return s, t
}

// convert turns a seed into the next-level seed plus a pseudorandom
// output vector of length outLen.
func convert(seed, binder []byte, outLen int) (nextSeed []byte, w field.Vector) {
	out := expand(seed, dstConvert, binder, xof32)
	nextSeed = out
	w = make(field.Vector, outLen)
	// Derive the output vector from a second, distinguishable expansion of
	// the same seed so that next_seed and w are independent outputs of one
	// PRG call, matching the two-output `convert` contract.
	vecBytes := expand(seed, append(append([]byte(nil), dstConvert...), 0x01), binder, outLen*field.Size)
	for i := 0; i < outLen; i++ {
		e, err := field.Decode(vecBytes[i*field.Size : (i+1)*field.Size])
		if err != nil {
			panic(err)
		}
		w[i] = e
	}
	return nextSeed, w
}

func expand(seed, dst, binder []byte, n int) []byte {
	h := sha3.NewCShake128(nil, dst)
	h.Write(seed)
	h.Write(binder)
	out := make([]byte, n)
	if _, err := h.Read(out); err != nil {
		panic(err)
	}
	return out
}

func hashProof(node uint64, level int, seed []byte) [ProofSize]byte {
	h := sha3.New256()
	h.Write([]byte(strconv.FormatUint(node, 10)))
	h.Write(le16(uint16(level)))
	h.Write(seed)
	var out [ProofSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

func le16(n uint16) []byte {
	return []byte{byte(n), byte(n >> 8)}
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func xorProof(a, b [ProofSize]byte) [ProofSize]byte {
	var out [ProofSize]byte
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// condSelectBytes returns b if ctrl is set, else a same-length all-zero
// slice. The byte mask is chosen by one check on ctrl; the per-byte
// masking that follows does not branch.
func condSelectBytes(ctrl field.Elem2, b []byte) []byte {
	var mask byte
	if ctrl.Bit() {
		mask = 0xFF
	}
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] & mask
	}
	return out
}

// correctBytes implements the `correct` helper from the underlying VIDPF
// construction for byte-string keys: k0 if ctrl==0, else xor(k0,k1).
func correctBytes(k0, k1 []byte, ctrl field.Elem2) []byte {
	return xorBytes(k0, condSelectBytes(ctrl, k1))
}

// correctElem2 implements `correct` for GF(2) keys: k0 + ctrl*k1.
func correctElem2(k0, k1, ctrl field.Elem2) field.Elem2 {
	return k0.Add(ctrl.Mul(k1))
}
