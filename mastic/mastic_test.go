package mastic

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/mastic/field"
	"github.com/luxfi/mastic/flp"
	"github.com/luxfi/mastic/vidpf"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

// runReport shards one report and runs both Aggregators through
// PrepInit/PrepSharesToPrep/PrepNext, returning their two output shares.
func runReport(t *testing.T, m *Mastic, ctx, verifyKey []byte, meas Measurement, nonce []byte, agg AggregationParam) (field.Vector, field.Vector) {
	t.Helper()

	pub, shares, err := m.Shard(ctx, meas, nonce, randBytes(t, m.RandSize()))
	if err != nil {
		t.Fatalf("Shard: %v", err)
	}

	state0, share0, err := m.PrepInit(verifyKey, ctx, Leader, agg, nonce, pub, shares[Leader])
	if err != nil {
		t.Fatalf("PrepInit(leader): %v", err)
	}
	state1, share1, err := m.PrepInit(verifyKey, ctx, Helper, agg, nonce, pub, shares[Helper])
	if err != nil {
		t.Fatalf("PrepInit(helper): %v", err)
	}

	msg, err := m.PrepSharesToPrep(ctx, agg, []PrepShare{share0, share1})
	if err != nil {
		t.Fatalf("PrepSharesToPrep: %v", err)
	}

	out0, err := m.PrepNext(state0, msg)
	if err != nil {
		t.Fatalf("PrepNext(leader): %v", err)
	}
	out1, err := m.PrepNext(state1, msg)
	if err != nil {
		t.Fatalf("PrepNext(helper): %v", err)
	}
	return out0, out1
}

func bitsFromString(s string) vidpf.Bits {
	out := make(vidpf.Bits, len(s))
	for i, c := range s {
		out[i] = c == '1'
	}
	return out
}

// S1: Count, BITS=2, counts per top-level prefix.
func TestScenarioS1CountShallow(t *testing.T) {
	m := New(flp.NewCount(), 2)
	ctx := []byte("s1")
	verifyKey := randBytes(t, VerifyKeySize)
	agg := AggregationParam{Level: 0, Prefixes: []vidpf.Bits{bitsFromString("0"), bitsFromString("1")}, DoWeightCheck: true}

	alphas := []string{"10", "00", "11", "01", "11"}
	total := field.Zeros(len(agg.Prefixes) * 2)
	for _, a := range alphas {
		nonce := randBytes(t, NonceSize)
		meas := Measurement{Alpha: bitsFromString(a), Weight: flp.Measurement{1}}
		out0, out1 := runReport(t, m, ctx, verifyKey, meas, nonce, agg)
		total = field.VecAdd(total, field.VecAdd(out0, out1))
	}

	results, err := m.Unshard(agg, []field.Vector{total}, uint64(len(alphas)))
	if err != nil {
		t.Fatalf("Unshard: %v", err)
	}
	if results[0][0] != 2 {
		t.Errorf("prefix 0 count = %d, want 2", results[0][0])
	}
	if results[1][0] != 3 {
		t.Errorf("prefix 1 count = %d, want 3", results[1][0])
	}
}

// S3: Sum, max=255, BITS=8, single report.
func TestScenarioS3Sum(t *testing.T) {
	m := New(flp.NewSum(255), 8)
	ctx := []byte("s3")
	verifyKey := randBytes(t, VerifyKeySize)
	alpha := bitsFromString("10101011") // 0xAB
	agg := AggregationParam{Level: 7, Prefixes: []vidpf.Bits{alpha}, DoWeightCheck: true}
	nonce := randBytes(t, NonceSize)

	meas := Measurement{Alpha: alpha, Weight: flp.Measurement{42}}
	out0, out1 := runReport(t, m, ctx, verifyKey, meas, nonce, agg)
	total := field.VecAdd(out0, out1)

	results, err := m.Unshard(agg, []field.Vector{total}, 1)
	if err != nil {
		t.Fatalf("Unshard: %v", err)
	}
	if results[0][0] != 42 {
		t.Errorf("sum decode = %d, want 42", results[0][0])
	}
}

// S4: Histogram, length=4, BITS=2.
func TestScenarioS4Histogram(t *testing.T) {
	m := New(flp.NewHistogram(4, 2), 2)
	ctx := []byte("s4")
	verifyKey := randBytes(t, VerifyKeySize)
	leaves := []string{"00", "01", "10", "11"}
	prefixes := make([]vidpf.Bits, len(leaves))
	for i, l := range leaves {
		prefixes[i] = bitsFromString(l)
	}
	agg := AggregationParam{Level: 1, Prefixes: prefixes, DoWeightCheck: true}

	reports := []string{"00", "00", "01", "10", "11", "11", "11"}
	want := map[string]int{"00": 2, "01": 1, "10": 1, "11": 3}

	total := field.Zeros(len(prefixes) * 5)
	for _, a := range reports {
		nonce := randBytes(t, NonceSize)
		meas := Measurement{Alpha: bitsFromString(a), Weight: flp.Measurement{2}}
		out0, out1 := runReport(t, m, ctx, verifyKey, meas, nonce, agg)
		total = field.VecAdd(total, field.VecAdd(out0, out1))
	}

	results, err := m.Unshard(agg, []field.Vector{total}, uint64(len(reports)))
	if err != nil {
		t.Fatalf("Unshard: %v", err)
	}
	for i, l := range leaves {
		if results[i][2] != uint64(want[l]) {
			t.Errorf("leaf %s bucket-2 count = %d, want %d", l, results[i][2], want[l])
		}
	}
}

// S5: tampering with the helper's key breaks VIDPF agreement.
func TestScenarioS5Tamper(t *testing.T) {
	m := New(flp.NewCount(), 2)
	ctx := []byte("s5")
	verifyKey := randBytes(t, VerifyKeySize)
	agg := AggregationParam{Level: 0, Prefixes: []vidpf.Bits{bitsFromString("0"), bitsFromString("1")}, DoWeightCheck: true}
	nonce := randBytes(t, NonceSize)

	pub, shares, err := m.Shard(ctx, Measurement{Alpha: bitsFromString("10"), Weight: flp.Measurement{1}}, nonce, randBytes(t, m.RandSize()))
	if err != nil {
		t.Fatalf("Shard: %v", err)
	}
	shares[Helper].Key[0] ^= 0x01

	_, share0, err := m.PrepInit(verifyKey, ctx, Leader, agg, nonce, pub, shares[Leader])
	if err != nil {
		t.Fatalf("PrepInit(leader): %v", err)
	}
	_, share1, err := m.PrepInit(verifyKey, ctx, Helper, agg, nonce, pub, shares[Helper])
	if err != nil {
		t.Fatalf("PrepInit(helper): %v", err)
	}

	if _, err := m.PrepSharesToPrep(ctx, agg, []PrepShare{share0, share1}); err != ErrVidpfMismatch {
		t.Errorf("expected ErrVidpfMismatch, got %v", err)
	}
}

// S6: a second weight-check in the same report sequence is invalid.
func TestScenarioS6WeightCheckTwice(t *testing.T) {
	first := AggregationParam{Level: 0, Prefixes: []vidpf.Bits{bitsFromString("0")}, DoWeightCheck: true}
	second := AggregationParam{Level: 1, Prefixes: []vidpf.Bits{bitsFromString("00")}, DoWeightCheck: true}

	if !IsValid(first, nil) {
		t.Errorf("first agg_param with weight check should be valid")
	}
	if err := CheckAggParamOrder(first, nil); err != nil {
		t.Errorf("CheckAggParamOrder(first, nil) = %v, want nil", err)
	}
	if IsValid(second, []AggregationParam{first}) {
		t.Errorf("second weight check in the same sequence should be invalid")
	}
	if err := CheckAggParamOrder(second, []AggregationParam{first}); err != ErrAggParamOrder {
		t.Errorf("CheckAggParamOrder(second, [first]) = %v, want ErrAggParamOrder", err)
	}
}

func TestPrepSharesToPrepRejectsWrongCardinality(t *testing.T) {
	m := New(flp.NewCount(), 2)
	agg := AggregationParam{Level: 0, Prefixes: []vidpf.Bits{bitsFromString("0")}, DoWeightCheck: false}
	if _, err := m.PrepSharesToPrep([]byte("ctx"), agg, []PrepShare{{}}); err != ErrCardinality {
		t.Errorf("expected ErrCardinality for 1 share, got %v", err)
	}
	if _, err := m.PrepSharesToPrep([]byte("ctx"), agg, []PrepShare{{}, {}, {}}); err != ErrCardinality {
		t.Errorf("expected ErrCardinality for 3 shares, got %v", err)
	}
}

func TestIsValidLevelMustIncrease(t *testing.T) {
	first := AggregationParam{Level: 3, Prefixes: []vidpf.Bits{bitsFromString("0001")}, DoWeightCheck: true}
	sameLevel := AggregationParam{Level: 3, Prefixes: []vidpf.Bits{bitsFromString("0001")}, DoWeightCheck: false}

	if IsValid(sameLevel, []AggregationParam{first}) {
		t.Errorf("non-increasing level should be invalid")
	}
}

func TestEncodeDecodeAggParamRoundTrip(t *testing.T) {
	agg := AggregationParam{
		Level:         2,
		Prefixes:      []vidpf.Bits{bitsFromString("010"), bitsFromString("111")},
		DoWeightCheck: true,
	}
	encoded := EncodeAggParam(agg)
	decoded, err := DecodeAggParam(encoded)
	if err != nil {
		t.Fatalf("DecodeAggParam: %v", err)
	}
	if decoded.Level != agg.Level || decoded.DoWeightCheck != agg.DoWeightCheck || len(decoded.Prefixes) != len(agg.Prefixes) {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, agg)
	}
	for i := range agg.Prefixes {
		for j := range agg.Prefixes[i] {
			if decoded.Prefixes[i][j] != agg.Prefixes[i][j] {
				t.Errorf("prefix %d bit %d mismatch", i, j)
			}
		}
	}
}

func TestSumTamperedWeightFailsFlpDecide(t *testing.T) {
	m := New(flp.NewSum(255), 8)
	ctx := []byte("tamper-weight")
	verifyKey := randBytes(t, VerifyKeySize)
	alpha := bitsFromString("00000001")
	agg := AggregationParam{Level: 7, Prefixes: []vidpf.Bits{alpha}, DoWeightCheck: true}
	nonce := randBytes(t, NonceSize)

	pub, shares, err := m.Shard(ctx, Measurement{Alpha: alpha, Weight: flp.Measurement{5}}, nonce, randBytes(t, m.RandSize()))
	if err != nil {
		t.Fatalf("Shard: %v", err)
	}
	shares[Leader].BetaShare[0] = field.Add(shares[Leader].BetaShare[0], field.One())

	_, share0, err := m.PrepInit(verifyKey, ctx, Leader, agg, nonce, pub, shares[Leader])
	if err != nil {
		t.Fatalf("PrepInit(leader): %v", err)
	}
	_, share1, err := m.PrepInit(verifyKey, ctx, Helper, agg, nonce, pub, shares[Helper])
	if err != nil {
		t.Fatalf("PrepInit(helper): %v", err)
	}

	if _, err := m.PrepSharesToPrep(ctx, agg, []PrepShare{share0, share1}); err != ErrFlpReject {
		t.Errorf("expected ErrFlpReject, got %v", err)
	}
}
