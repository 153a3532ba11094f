package field

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	a := FromUint64(42)
	b := FromUint64(17)

	sum := Add(a, b)
	back := Sub(sum, b)
	if !Equal(back, a) {
		t.Errorf("Sub(Add(a,b),b) != a")
	}
}

func TestNegIsAdditiveInverse(t *testing.T) {
	a := FromUint64(123456789)
	if !Add(a, Neg(a)).IsZero() {
		t.Errorf("a + (-a) should be zero")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := FromUint64(987654321)
	encoded := a.Encode()
	if len(encoded) != Size {
		t.Fatalf("expected %d bytes, got %d", Size, len(encoded))
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !Equal(a, decoded) {
		t.Errorf("round-tripped element does not match original")
	}
}

func TestZerosIsAllZero(t *testing.T) {
	v := Zeros(8)
	for i, e := range v {
		if !e.IsZero() {
			t.Errorf("Zeros()[%d] is not zero", i)
		}
	}
}

func TestVecAddSubNeg(t *testing.T) {
	a := Vector{FromUint64(1), FromUint64(2), FromUint64(3)}
	b := Vector{FromUint64(4), FromUint64(5), FromUint64(6)}

	sum := VecAdd(a, b)
	back := VecSub(sum, b)
	for i := range a {
		if !Equal(back[i], a[i]) {
			t.Errorf("index %d: VecSub(VecAdd(a,b),b) != a", i)
		}
	}

	neg := VecNeg(a)
	for i := range a {
		if !Add(a[i], neg[i]).IsZero() {
			t.Errorf("index %d: a + (-a) should be zero", i)
		}
	}
}

func TestConditionalSelect(t *testing.T) {
	a := FromUint64(10)
	b := FromUint64(20)
	if !Equal(ConditionalSelect(false, a, b), a) {
		t.Errorf("ConditionalSelect(false,...) should return a")
	}
	if !Equal(ConditionalSelect(true, a, b), b) {
		t.Errorf("ConditionalSelect(true,...) should return b")
	}
}

func TestEncodeVecDecodeVec(t *testing.T) {
	v := Vector{FromUint64(1), FromUint64(2), FromUint64(3)}
	encoded := EncodeVec(v)
	decoded, err := DecodeVec(encoded, len(v))
	if err != nil {
		t.Fatalf("DecodeVec failed: %v", err)
	}
	for i := range v {
		if !Equal(v[i], decoded[i]) {
			t.Errorf("index %d mismatch after EncodeVec/DecodeVec", i)
		}
	}
}

func TestElem2XorAnd(t *testing.T) {
	zero, one := Zero2(), One2()
	if one.Add(one).Bit() != false {
		t.Errorf("1 xor 1 should be 0")
	}
	if zero.Add(one).Bit() != true {
		t.Errorf("0 xor 1 should be 1")
	}
	if one.Mul(one).Bit() != true {
		t.Errorf("1 and 1 should be 1")
	}
	if one.Mul(zero).Bit() != false {
		t.Errorf("1 and 0 should be 0")
	}
}
