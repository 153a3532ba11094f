// Package field provides the prime-field arithmetic Mastic is built over.
//
// The Mastic specification treats field arithmetic as an external
// contract (a prime field of size >= 2^63, with vector add/sub/neg,
// scalar multiply, constant-time zero-init, and little-endian bulk
// encode/decode). This package supplies one concrete instantiation of
// that contract, backed by gnark-crypto's bls12-381 scalar field rather
// than a hand-rolled big.Int reduction.
package field

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Size is the encoded byte length of a single field element.
const Size = fr.Bytes

// ErrShortBuffer indicates a byte slice was too small to decode from.
var ErrShortBuffer = errors.New("field: buffer too short")

// Element is a single element of the field.
type Element struct {
	v fr.Element
}

// Zero returns the additive identity.
func Zero() Element {
	var e Element
	e.v.SetZero()
	return e
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.v.SetOne()
	return e
}

// FromUint64 embeds a small unsigned integer into the field.
func FromUint64(n uint64) Element {
	var e Element
	e.v.SetUint64(n)
	return e
}

// FromBit embeds a GF(2) bit (0 or 1) into the field.
func FromBit(bit bool) Element {
	if bit {
		return One()
	}
	return Zero()
}

// Add returns a+b.
func Add(a, b Element) Element {
	var out Element
	out.v.Add(&a.v, &b.v)
	return out
}

// Sub returns a-b.
func Sub(a, b Element) Element {
	var out Element
	out.v.Sub(&a.v, &b.v)
	return out
}

// Neg returns -a.
func Neg(a Element) Element {
	var out Element
	out.v.Neg(&a.v)
	return out
}

// Mul returns a*b.
func Mul(a, b Element) Element {
	var out Element
	out.v.Mul(&a.v, &b.v)
	return out
}

// ConditionalSelect returns b if ctrl is true, else a. The result is the
// linear combination a + ctrl*(b-a); ctrl is embedded into the field via
// FromBit, which checks ctrl once.
func ConditionalSelect(ctrl bool, a, b Element) Element {
	mask := FromBit(ctrl)
	// a + ctrl*(b-a): equals a when ctrl=0, b when ctrl=1.
	return Add(a, Mul(mask, Sub(b, a)))
}

// IsZero reports whether the element is the additive identity.
func (e Element) IsZero() bool {
	return e.v.IsZero()
}

// Equal reports whether two elements are the same.
func Equal(a, b Element) bool {
	return a.v.Equal(&b.v)
}

// Uint64 returns the element's value truncated to 64 bits, matching the
// spec's `as_unsigned()` used to read small scalars (e.g. a per-prefix
// count) back out of a field element.
func (e Element) Uint64() uint64 {
	return e.v.Uint64()
}

// Encode writes the element as Size little-endian bytes.
func (e Element) Encode() []byte {
	be := e.v.Bytes() // big-endian, fixed width
	out := make([]byte, Size)
	for i := range be {
		out[i] = be[Size-1-i]
	}
	return out
}

// Decode reads an element from Size little-endian bytes, reducing mod p.
func Decode(b []byte) (Element, error) {
	if len(b) < Size {
		return Element{}, ErrShortBuffer
	}
	be := make([]byte, Size)
	for i := 0; i < Size; i++ {
		be[i] = b[Size-1-i]
	}
	var e Element
	e.v.SetBytes(be)
	return e, nil
}

// Vector is a fixed-length tuple of field elements.
type Vector []Element

// Zeros returns a zero-initialized vector of length n.
func Zeros(n int) Vector {
	return make(Vector, n)
}

// VecAdd returns the componentwise sum of two equal-length vectors.
func VecAdd(a, b Vector) Vector {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = Add(a[i], b[i])
	}
	return out
}

// VecSub returns the componentwise difference of two equal-length vectors.
func VecSub(a, b Vector) Vector {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = Sub(a[i], b[i])
	}
	return out
}

// VecNeg returns the componentwise negation of a vector.
func VecNeg(a Vector) Vector {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = Neg(a[i])
	}
	return out
}

// VecScalarMul multiplies every component of a vector by a scalar.
func VecScalarMul(a Vector, s Element) Vector {
	out := make(Vector, len(a))
	for i := range a {
		out[i] = Mul(a[i], s)
	}
	return out
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b Vector) Element {
	sum := Zero()
	for i := range a {
		sum = Add(sum, Mul(a[i], b[i]))
	}
	return sum
}

// EncodeVec bulk-encodes a vector to little-endian bytes.
func EncodeVec(v Vector) []byte {
	out := make([]byte, 0, len(v)*Size)
	for _, e := range v {
		out = append(out, e.Encode()...)
	}
	return out
}

// DecodeVec bulk-decodes a vector of n elements from little-endian bytes.
func DecodeVec(b []byte, n int) (Vector, error) {
	if len(b) < n*Size {
		return nil, ErrShortBuffer
	}
	out := make(Vector, n)
	for i := 0; i < n; i++ {
		e, err := Decode(b[i*Size : (i+1)*Size])
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Elem2 is an element of GF(2), used for VIDPF control bits.
type Elem2 struct {
	bit bool
}

// Zero2 returns the GF(2) zero.
func Zero2() Elem2 { return Elem2{false} }

// One2 returns the GF(2) one.
func One2() Elem2 { return Elem2{true} }

// NewElem2 builds a GF(2) element from a bit.
func NewElem2(bit bool) Elem2 { return Elem2{bit} }

// Add is GF(2) addition (XOR).
func (a Elem2) Add(b Elem2) Elem2 { return Elem2{a.bit != b.bit} }

// Mul is GF(2) multiplication (AND).
func (a Elem2) Mul(b Elem2) Elem2 { return Elem2{a.bit && b.bit} }

// Bit reports the element's value as a bool.
func (a Elem2) Bit() bool { return a.bit }

// AsElement embeds the GF(2) element into the main field (0 or 1).
func (a Elem2) AsElement() Element { return FromBit(a.bit) }
