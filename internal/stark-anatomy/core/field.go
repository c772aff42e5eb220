package core

import (
	"fmt"
	"io"
	"math/big"
)

// Field represents a finite field with modular arithmetic operations
type Field struct {
	modulus *big.Int
}

// FieldElement represents an element in the finite field, stored
// canonically in [0, p)
type FieldElement struct {
	field *Field
	value *big.Int
}

var (
	// defaultPrime is 1 + 407 * 2^119, the prime used throughout the
	// proof system. Its multiplicative group contains a subgroup of
	// order 2^119.
	defaultPrime = new(big.Int).Add(
		new(big.Int).Lsh(big.NewInt(407), 119),
		big.NewInt(1),
	)

	// defaultGenerator generates the order-2^119 subgroup of the
	// default prime field.
	defaultGenerator, _ = new(big.Int).SetString("85408008396924667383611388730472331217", 10)

	// maxRootOrder is the order of the default generator
	maxRootOrder = new(big.Int).Lsh(big.NewInt(1), 119)
)

// sampleByteLength is the number of random bytes folded into one
// uniformly sampled field element. One byte beyond the 16-byte modulus
// keeps the modular bias negligible.
const sampleByteLength = 17

// NewField creates a new finite field with the given modulus
func NewField(modulus *big.Int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// DefaultField returns the field of order 1 + 407 * 2^119
func DefaultField() *Field {
	return &Field{modulus: new(big.Int).Set(defaultPrime)}
}

// Modulus returns the field modulus
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// NewElement creates a new field element from a big.Int, reduced into
// canonical form
func (f *Field) NewElement(value *big.Int) *FieldElement {
	normalized := new(big.Int).Mod(value, f.modulus)
	if normalized.Sign() < 0 {
		normalized.Add(normalized, f.modulus)
	}
	return &FieldElement{
		field: f,
		value: normalized,
	}
}

// NewElementFromInt64 creates a new field element from an int64
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// Zero returns the additive identity
func (f *Field) Zero() *FieldElement {
	return f.NewElement(big.NewInt(0))
}

// One returns the multiplicative identity
func (f *Field) One() *FieldElement {
	return f.NewElement(big.NewInt(1))
}

// Equals checks if two fields have the same modulus
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// Generator returns a generator of the order-2^119 multiplicative
// subgroup. Only known for the default field.
func (f *Field) Generator() (*FieldElement, error) {
	if f.modulus.Cmp(defaultPrime) != 0 {
		return nil, fmt.Errorf("generator is only known for the field of order 1+407*2^119")
	}
	return f.NewElement(defaultGenerator), nil
}

// PrimitiveNthRoot returns a primitive nth root of unity, for n a power
// of two not exceeding 2^119. The root is obtained by repeatedly
// squaring the subgroup generator until its order equals n.
func (f *Field) PrimitiveNthRoot(n int) (*FieldElement, error) {
	if f.modulus.Cmp(defaultPrime) != 0 {
		return nil, fmt.Errorf("roots of unity are only known for the field of order 1+407*2^119")
	}
	bigN := big.NewInt(int64(n))
	if bigN.Cmp(maxRootOrder) > 0 || n < 1 || n&(n-1) != 0 {
		return nil, fmt.Errorf("field has no %dth root of unity: n must be a power of two not exceeding 2^119", n)
	}

	root := f.NewElement(defaultGenerator)
	order := new(big.Int).Set(maxRootOrder)
	for order.Cmp(bigN) != 0 {
		root = root.Mul(root)
		order.Rsh(order, 1)
	}
	return root, nil
}

// Sample folds an arbitrary-length byte string into a field element.
// Bytes are accumulated big-endian, one byte at a time, and the result
// is reduced modulo p. There is no rejection sampling: callers feed
// uniformly random cryptographic digests.
func (f *Field) Sample(seed []byte) *FieldElement {
	acc := new(big.Int)
	for _, b := range seed {
		acc.Lsh(acc, 8)
		acc.Xor(acc, big.NewInt(int64(b)))
	}
	return f.NewElement(acc)
}

// RandomElement samples a uniform field element from the given source
func (f *Field) RandomElement(random io.Reader) (*FieldElement, error) {
	buf := make([]byte, sampleByteLength)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}
	return f.Sample(buf), nil
}

// Big returns the value as a big.Int
func (fe *FieldElement) Big() *big.Int {
	return new(big.Int).Set(fe.value)
}

// Field returns the field this element belongs to
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Add performs field addition
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot add elements from different fields")
	}
	result := new(big.Int).Add(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Sub performs field subtraction
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot subtract elements from different fields")
	}
	result := new(big.Int).Sub(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Neg returns the additive inverse of the field element
func (fe *FieldElement) Neg() *FieldElement {
	result := new(big.Int).Neg(fe.value)
	return fe.field.NewElement(result)
}

// Mul performs field multiplication
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot multiply elements from different fields")
	}
	result := new(big.Int).Mul(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Inverse computes the multiplicative inverse using the extended
// Euclidean algorithm
func (fe *FieldElement) Inverse() (*FieldElement, error) {
	if fe.value.Sign() == 0 {
		return nil, fmt.Errorf("cannot invert zero")
	}

	gcd := new(big.Int)
	x := new(big.Int)
	y := new(big.Int)
	gcd.GCD(x, y, fe.value, fe.field.modulus)

	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("inverse does not exist")
	}

	return fe.field.NewElement(x), nil
}

// Div performs field division
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	if !fe.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot divide elements from different fields")
	}
	inv, err := other.Inverse()
	if err != nil {
		return nil, fmt.Errorf("division failed: %w", err)
	}
	return fe.Mul(inv), nil
}

// Exp performs exponentiation by a non-negative integer, by
// square-and-multiply over the binary expansion of the exponent
func (fe *FieldElement) Exp(exponent *big.Int) *FieldElement {
	if exponent.Sign() < 0 {
		panic("negative exponents are not supported")
	}

	acc := fe.field.One()
	for i := exponent.BitLen() - 1; i >= 0; i-- {
		acc = acc.Mul(acc)
		if exponent.Bit(i) == 1 {
			acc = acc.Mul(fe)
		}
	}
	return acc
}

// ExpInt is Exp for exponents that fit a machine word
func (fe *FieldElement) ExpInt(exponent int) *FieldElement {
	if exponent < 0 {
		panic("negative exponents are not supported")
	}
	return fe.Exp(big.NewInt(int64(exponent)))
}

// Equal checks if two field elements are equal
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero checks if the element is zero
func (fe *FieldElement) IsZero() bool {
	return fe.value.Sign() == 0
}

// IsOne checks if the element is one
func (fe *FieldElement) IsOne() bool {
	return fe.value.Cmp(big.NewInt(1)) == 0
}

// String returns a string representation of the field element
func (fe *FieldElement) String() string {
	return fe.value.String()
}

// Bytes returns the canonical byte encoding of the field element: a
// fixed-width big-endian encoding of the canonical residue. The width
// is the byte length of the modulus, so encodings are injective and
// directly comparable.
func (fe *FieldElement) Bytes() []byte {
	width := (fe.field.modulus.BitLen() + 7) / 8
	buf := make([]byte, width)
	fe.value.FillBytes(buf)
	return buf
}
