package core

import (
	"fmt"
)

// Polynomial represents a dense univariate polynomial with coefficients
// in a finite field, ordered low to high. The coefficient slice never
// carries trailing zeros; the zero polynomial has no coefficients and
// degree -1.
type Polynomial struct {
	field        *Field
	coefficients []*FieldElement
}

// NewPolynomial creates a new polynomial from field elements, trimming
// trailing zero coefficients
func NewPolynomial(field *Field, coefficients []*FieldElement) *Polynomial {
	end := len(coefficients)
	for end > 0 && coefficients[end-1].IsZero() {
		end--
	}
	trimmed := make([]*FieldElement, end)
	copy(trimmed, coefficients[:end])
	return &Polynomial{field: field, coefficients: trimmed}
}

// NewPolynomialFromInt64 creates a polynomial from int64 coefficients
func NewPolynomialFromInt64(field *Field, coefficients []int64) *Polynomial {
	fieldCoeffs := make([]*FieldElement, len(coefficients))
	for i, coeff := range coefficients {
		fieldCoeffs[i] = field.NewElementFromInt64(coeff)
	}
	return NewPolynomial(field, fieldCoeffs)
}

// ZeroPolynomial returns the zero polynomial over the given field
func ZeroPolynomial(field *Field) *Polynomial {
	return &Polynomial{field: field}
}

// X returns the monomial x over the given field
func X(field *Field) *Polynomial {
	return NewPolynomial(field, []*FieldElement{field.Zero(), field.One()})
}

// ConstantPolynomial returns the degree-0 (or zero) polynomial with the
// given constant term
func ConstantPolynomial(value *FieldElement) *Polynomial {
	return NewPolynomial(value.Field(), []*FieldElement{value})
}

// Degree returns the degree of the polynomial, -1 for the zero
// polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero checks if the polynomial is the zero polynomial
func (p *Polynomial) IsZero() bool {
	return len(p.coefficients) == 0
}

// Field returns the field the polynomial is defined over
func (p *Polynomial) Field() *Field {
	return p.field
}

// Coefficient returns the coefficient of the given degree
func (p *Polynomial) Coefficient(degree int) *FieldElement {
	if degree < 0 || degree >= len(p.coefficients) {
		return p.field.Zero()
	}
	return p.coefficients[degree]
}

// Coefficients returns a copy of the coefficient slice
func (p *Polynomial) Coefficients() []*FieldElement {
	coeffs := make([]*FieldElement, len(p.coefficients))
	copy(coeffs, p.coefficients)
	return coeffs
}

// LeadingCoefficient returns the coefficient of the highest-degree term,
// or zero for the zero polynomial
func (p *Polynomial) LeadingCoefficient() *FieldElement {
	if p.IsZero() {
		return p.field.Zero()
	}
	return p.coefficients[len(p.coefficients)-1]
}

// Equal checks coefficient-wise equality on canonical form
func (p *Polynomial) Equal(other *Polynomial) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Neg returns the additive inverse of the polynomial
func (p *Polynomial) Neg() *Polynomial {
	coefficients := make([]*FieldElement, len(p.coefficients))
	for i, coeff := range p.coefficients {
		coefficients[i] = coeff.Neg()
	}
	return &Polynomial{field: p.field, coefficients: coefficients}
}

// Add adds two polynomials
func (p *Polynomial) Add(other *Polynomial) *Polynomial {
	maxLen := len(p.coefficients)
	if len(other.coefficients) > maxLen {
		maxLen = len(other.coefficients)
	}

	coefficients := make([]*FieldElement, maxLen)
	for i := 0; i < maxLen; i++ {
		coefficients[i] = p.Coefficient(i).Add(other.Coefficient(i))
	}
	return NewPolynomial(p.field, coefficients)
}

// Sub subtracts two polynomials
func (p *Polynomial) Sub(other *Polynomial) *Polynomial {
	return p.Add(other.Neg())
}

// Mul multiplies two polynomials with schoolbook multiplication
func (p *Polynomial) Mul(other *Polynomial) *Polynomial {
	if p.IsZero() || other.IsZero() {
		return ZeroPolynomial(p.field)
	}

	coefficients := make([]*FieldElement, len(p.coefficients)+len(other.coefficients)-1)
	for i := range coefficients {
		coefficients[i] = p.field.Zero()
	}
	for i, lhs := range p.coefficients {
		if lhs.IsZero() {
			continue
		}
		for j, rhs := range other.coefficients {
			coefficients[i+j] = coefficients[i+j].Add(lhs.Mul(rhs))
		}
	}
	return NewPolynomial(p.field, coefficients)
}

// MulScalar multiplies the polynomial by a scalar
func (p *Polynomial) MulScalar(scalar *FieldElement) *Polynomial {
	coefficients := make([]*FieldElement, len(p.coefficients))
	for i, coeff := range p.coefficients {
		coefficients[i] = coeff.Mul(scalar)
	}
	return NewPolynomial(p.field, coefficients)
}

// DivMod computes the quotient and remainder of polynomial long
// division. Division by the zero polynomial fails.
func (p *Polynomial) DivMod(other *Polynomial) (*Polynomial, *Polynomial, error) {
	if other.IsZero() {
		return nil, nil, fmt.Errorf("cannot divide by zero polynomial")
	}
	if p.Degree() < other.Degree() {
		return ZeroPolynomial(p.field), p, nil
	}

	remainder := p.Coefficients()
	quotient := make([]*FieldElement, p.Degree()-other.Degree()+1)
	for i := range quotient {
		quotient[i] = p.field.Zero()
	}

	leading := other.LeadingCoefficient()
	for len(remainder)-1 >= other.Degree() && len(remainder) > 0 {
		coefficient, err := remainder[len(remainder)-1].Div(leading)
		if err != nil {
			return nil, nil, fmt.Errorf("long division failed: %w", err)
		}
		shift := len(remainder) - 1 - other.Degree()
		quotient[shift] = coefficient

		// remainder -= coefficient * x^shift * other
		for j, c := range other.coefficients {
			remainder[shift+j] = remainder[shift+j].Sub(coefficient.Mul(c))
		}
		for len(remainder) > 0 && remainder[len(remainder)-1].IsZero() {
			remainder = remainder[:len(remainder)-1]
		}
	}

	return NewPolynomial(p.field, quotient), NewPolynomial(p.field, remainder), nil
}

// Div performs exact polynomial division; a non-zero remainder is an
// error
func (p *Polynomial) Div(other *Polynomial) (*Polynomial, error) {
	quotient, remainder, err := p.DivMod(other)
	if err != nil {
		return nil, err
	}
	if !remainder.IsZero() {
		return nil, fmt.Errorf("cannot perform polynomial division because remainder is not zero")
	}
	return quotient, nil
}

// Mod computes the remainder of polynomial long division
func (p *Polynomial) Mod(other *Polynomial) (*Polynomial, error) {
	_, remainder, err := p.DivMod(other)
	if err != nil {
		return nil, err
	}
	return remainder, nil
}

// Pow raises the polynomial to a non-negative integer power by
// square-and-multiply
func (p *Polynomial) Pow(exponent int) *Polynomial {
	if exponent < 0 {
		panic("negative exponents are not supported")
	}
	if p.IsZero() {
		return ZeroPolynomial(p.field)
	}
	if exponent == 0 {
		return ConstantPolynomial(p.field.One())
	}

	acc := ConstantPolynomial(p.field.One())
	for i := bitLen(exponent) - 1; i >= 0; i-- {
		acc = acc.Mul(acc)
		if exponent&(1<<i) != 0 {
			acc = acc.Mul(p)
		}
	}
	return acc
}

func bitLen(n int) int {
	length := 0
	for n > 0 {
		n >>= 1
		length++
	}
	return length
}

// Eval evaluates the polynomial at the given point by Horner-style
// accumulation
func (p *Polynomial) Eval(point *FieldElement) *FieldElement {
	value := p.field.Zero()
	xi := p.field.One()
	for i, coeff := range p.coefficients {
		if i > 0 {
			xi = xi.Mul(point)
		}
		value = value.Add(coeff.Mul(xi))
	}
	return value
}

// EvalDomain evaluates the polynomial at every point of the domain
func (p *Polynomial) EvalDomain(domain []*FieldElement) []*FieldElement {
	values := make([]*FieldElement, len(domain))
	for i, point := range domain {
		values[i] = p.Eval(point)
	}
	return values
}

// Scale returns the polynomial Q with Q(x) = P(factor * x), computed by
// multiplying coefficient i by factor^i
func (p *Polynomial) Scale(factor *FieldElement) *Polynomial {
	coefficients := make([]*FieldElement, len(p.coefficients))
	power := p.field.One()
	for i, coeff := range p.coefficients {
		if i > 0 {
			power = power.Mul(factor)
		}
		coefficients[i] = coeff.Mul(power)
	}
	return NewPolynomial(p.field, coefficients)
}

// String returns a string representation of the polynomial
func (p *Polynomial) String() string {
	result := "["
	for i, coeff := range p.coefficients {
		if i > 0 {
			result += ","
		}
		result += coeff.String()
	}
	return result + "]"
}

// Interpolate computes the unique polynomial of degree < len(domain)
// that maps domain[i] to values[i], with Lagrange interpolation
func Interpolate(field *Field, domain, values []*FieldElement) (*Polynomial, error) {
	if len(domain) != len(values) {
		return nil, fmt.Errorf("number of elements in domain does not match number of values -- cannot interpolate")
	}
	if len(domain) == 0 {
		return nil, fmt.Errorf("cannot interpolate between zero points")
	}

	x := X(field)
	acc := ZeroPolynomial(field)
	for i := range domain {
		prod := ConstantPolynomial(values[i])
		for j := range domain {
			if j == i {
				continue
			}
			denominator, err := field.One().Div(domain[i].Sub(domain[j]))
			if err != nil {
				return nil, fmt.Errorf("domain must contain unique elements: %w", err)
			}
			prod = prod.Mul(x.Sub(ConstantPolynomial(domain[j])).MulScalar(denominator))
		}
		acc = acc.Add(prod)
	}
	return acc, nil
}

// ZerofierDomain computes the polynomial that vanishes exactly on the
// given domain, as the product of (x - d) over all domain points
func ZerofierDomain(field *Field, domain []*FieldElement) *Polynomial {
	x := X(field)
	acc := ConstantPolynomial(field.One())
	for _, d := range domain {
		acc = acc.Mul(x.Sub(ConstantPolynomial(d)))
	}
	return acc
}

// Point is an (x, y) pair for interpolation
type Point struct {
	X *FieldElement
	Y *FieldElement
}

// IsColinear returns true iff the interpolant through the points has
// degree exactly 1
func IsColinear(field *Field, points []Point) bool {
	domain := make([]*FieldElement, len(points))
	values := make([]*FieldElement, len(points))
	for i, point := range points {
		domain[i] = point.X
		values[i] = point.Y
	}
	polynomial, err := Interpolate(field, domain, values)
	if err != nil {
		return false
	}
	return polynomial.Degree() == 1
}
