package xof

import (
	"bytes"
	"testing"
)

func TestDeriveSeedDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x01}, SeedSize)
	dst := []byte("test-dst")
	binder := []byte("binder")

	a := DeriveSeed(seed, dst, binder)
	b := DeriveSeed(seed, dst, binder)
	if !bytes.Equal(a, b) {
		t.Errorf("DeriveSeed is not deterministic")
	}
	if len(a) != SeedSize {
		t.Errorf("expected %d bytes, got %d", SeedSize, len(a))
	}
}

func TestDomainSeparationChangesOutput(t *testing.T) {
	seed := bytes.Repeat([]byte{0x02}, SeedSize)
	a := DeriveSeed(seed, []byte("dst-a"), nil)
	b := DeriveSeed(seed, []byte("dst-b"), nil)
	if bytes.Equal(a, b) {
		t.Errorf("different dst tags produced the same output")
	}
}

func TestBinderChangesOutput(t *testing.T) {
	seed := bytes.Repeat([]byte{0x03}, SeedSize)
	dst := []byte("dst")
	a := DeriveSeed(seed, dst, []byte("binder-a"))
	b := DeriveSeed(seed, dst, []byte("binder-b"))
	if bytes.Equal(a, b) {
		t.Errorf("different binders produced the same output")
	}
}

func TestExpandIntoVecLength(t *testing.T) {
	seed := bytes.Repeat([]byte{0x04}, SeedSize)
	v := ExpandIntoVec(seed, []byte("dst"), nil, 5)
	if len(v) != 5 {
		t.Fatalf("expected 5 elements, got %d", len(v))
	}
}

func TestLE16BE16RoundTripOrder(t *testing.T) {
	le := LE16(0x0102)
	be := BE16(0x0102)
	if le[0] != 0x02 || le[1] != 0x01 {
		t.Errorf("LE16 encoding wrong: %x", le)
	}
	if be[0] != 0x01 || be[1] != 0x02 {
		t.Errorf("BE16 encoding wrong: %x", be)
	}
}
