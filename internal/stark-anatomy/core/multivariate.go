package core

import (
	"fmt"
	"strconv"
	"strings"
)

// MPolynomial represents a sparse multivariate polynomial: a mapping
// from exponent vectors to non-zero field coefficients. All exponent
// vectors within one polynomial have the same length, which is the
// number of variables. The empty polynomial is the zero polynomial with
// zero variables.
//
// For example f(x,y,z) = 17 + 2xy + 42z - 19x^6*y^3*z^12 is stored as
//
//	(0,0,0) => 17
//	(1,1,0) => 2
//	(0,0,1) => 42
//	(6,3,12) => -19
type MPolynomial struct {
	field *Field
	terms map[string]mterm
}

type mterm struct {
	exponents   []int
	coefficient *FieldElement
}

// exponentKey encodes an exponent vector as a canonical map key
func exponentKey(exponents []int) string {
	parts := make([]string, len(exponents))
	for i, e := range exponents {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

// NewMPolynomial creates a multivariate polynomial from a list of terms.
// Exponent vectors must all have the same length; zero coefficients are
// omitted and coefficients of repeated exponent vectors are summed.
func NewMPolynomial(field *Field, exponents [][]int, coefficients []*FieldElement) (*MPolynomial, error) {
	if len(exponents) != len(coefficients) {
		return nil, fmt.Errorf("number of exponent vectors does not match number of coefficients")
	}

	p := &MPolynomial{field: field, terms: make(map[string]mterm)}
	numVariables := -1
	for i, exponent := range exponents {
		if numVariables == -1 {
			numVariables = len(exponent)
		} else if len(exponent) != numVariables {
			return nil, fmt.Errorf("all exponent vectors must have the same length")
		}
		p.addTerm(exponent, coefficients[i])
	}
	return p, nil
}

// MPolynomialZero returns the zero multivariate polynomial
func MPolynomialZero(field *Field) *MPolynomial {
	return &MPolynomial{field: field, terms: make(map[string]mterm)}
}

// MPolynomialConstant returns the constant multivariate polynomial with
// a single variable
func MPolynomialConstant(value *FieldElement) *MPolynomial {
	p := MPolynomialZero(value.Field())
	p.addTerm([]int{0}, value)
	return p
}

// Variables creates the n degree-1 monomial polynomials over n
// variables: Variables(3, f) returns [x, y, z] where x has exponent
// vector (1,0,0) and so on
func Variables(numVariables int, field *Field) []*MPolynomial {
	variables := make([]*MPolynomial, numVariables)
	for i := range variables {
		exponent := make([]int, numVariables)
		exponent[i] = 1
		p := MPolynomialZero(field)
		p.addTerm(exponent, field.One())
		variables[i] = p
	}
	return variables
}

// Lift embeds a univariate polynomial as a multivariate polynomial over
// variableIndex+1 variables, acting only on variable variableIndex
func Lift(polynomial *Polynomial, variableIndex int) *MPolynomial {
	p := MPolynomialZero(polynomial.Field())
	for i, coefficient := range polynomial.Coefficients() {
		exponent := make([]int, variableIndex+1)
		exponent[variableIndex] = i
		p.addTerm(exponent, coefficient)
	}
	return p
}

// addTerm accumulates a term into the polynomial, preserving the
// no-zero-coefficients invariant
func (p *MPolynomial) addTerm(exponents []int, coefficient *FieldElement) {
	key := exponentKey(exponents)
	if existing, ok := p.terms[key]; ok {
		coefficient = existing.coefficient.Add(coefficient)
	}
	if coefficient.IsZero() {
		delete(p.terms, key)
		return
	}
	held := make([]int, len(exponents))
	copy(held, exponents)
	p.terms[key] = mterm{exponents: held, coefficient: coefficient}
}

// NumVariables returns the common length of the exponent vectors, zero
// for the zero polynomial
func (p *MPolynomial) NumVariables() int {
	for _, term := range p.terms {
		return len(term.exponents)
	}
	return 0
}

// IsZero checks if the polynomial has no terms
func (p *MPolynomial) IsZero() bool {
	return len(p.terms) == 0
}

// Field returns the field the polynomial is defined over
func (p *MPolynomial) Field() *Field {
	return p.field
}

// Terms calls fn for every term of the polynomial
func (p *MPolynomial) Terms(fn func(exponents []int, coefficient *FieldElement)) {
	for _, term := range p.terms {
		fn(term.exponents, term.coefficient)
	}
}

func padExponents(exponents []int, numVariables int) []int {
	if len(exponents) == numVariables {
		return exponents
	}
	padded := make([]int, numVariables)
	copy(padded, exponents)
	return padded
}

// Add adds two multivariate polynomials, padding exponent vectors to the
// larger variable count
func (p *MPolynomial) Add(other *MPolynomial) *MPolynomial {
	numVariables := p.NumVariables()
	if other.NumVariables() > numVariables {
		numVariables = other.NumVariables()
	}

	result := MPolynomialZero(p.field)
	for _, term := range p.terms {
		result.addTerm(padExponents(term.exponents, numVariables), term.coefficient)
	}
	for _, term := range other.terms {
		result.addTerm(padExponents(term.exponents, numVariables), term.coefficient)
	}
	return result
}

// Neg returns the additive inverse
func (p *MPolynomial) Neg() *MPolynomial {
	result := MPolynomialZero(p.field)
	for _, term := range p.terms {
		result.addTerm(term.exponents, term.coefficient.Neg())
	}
	return result
}

// Sub subtracts two multivariate polynomials
func (p *MPolynomial) Sub(other *MPolynomial) *MPolynomial {
	return p.Add(other.Neg())
}

// Mul multiplies two multivariate polynomials
func (p *MPolynomial) Mul(other *MPolynomial) *MPolynomial {
	numVariables := p.NumVariables()
	if other.NumVariables() > numVariables {
		numVariables = other.NumVariables()
	}

	result := MPolynomialZero(p.field)
	for _, lhs := range p.terms {
		for _, rhs := range other.terms {
			exponent := make([]int, numVariables)
			for k, e := range lhs.exponents {
				exponent[k] += e
			}
			for k, e := range rhs.exponents {
				exponent[k] += e
			}
			result.addTerm(exponent, lhs.coefficient.Mul(rhs.coefficient))
		}
	}
	return result
}

// Pow raises the polynomial to a non-negative integer power by
// square-and-multiply
func (p *MPolynomial) Pow(exponent int) *MPolynomial {
	if exponent < 0 {
		panic("negative exponents are not supported")
	}
	if p.IsZero() {
		return MPolynomialZero(p.field)
	}

	one := MPolynomialZero(p.field)
	one.addTerm(make([]int, p.NumVariables()), p.field.One())
	if exponent == 0 {
		return one
	}

	acc := one
	for i := bitLen(exponent) - 1; i >= 0; i-- {
		acc = acc.Mul(acc)
		if exponent&(1<<i) != 0 {
			acc = acc.Mul(p)
		}
	}
	return acc
}

// Equal checks equality on canonical form
func (p *MPolynomial) Equal(other *MPolynomial) bool {
	if len(p.terms) != len(other.terms) {
		return false
	}
	for key, term := range p.terms {
		otherTerm, ok := other.terms[key]
		if !ok || !term.coefficient.Equal(otherTerm.coefficient) {
			return false
		}
	}
	return true
}

// Evaluate folds a point into a field element
func (p *MPolynomial) Evaluate(point []*FieldElement) (*FieldElement, error) {
	if len(point) == 0 {
		return nil, fmt.Errorf("point must have at least one variable")
	}
	if !p.IsZero() && len(point) != p.NumVariables() {
		return nil, fmt.Errorf("number of variables in point does not match number of variables in polynomial")
	}

	acc := p.field.Zero()
	for _, term := range p.terms {
		prod := term.coefficient
		for i, e := range term.exponents {
			prod = prod.Mul(point[i].ExpInt(e))
		}
		acc = acc.Add(prod)
	}
	return acc, nil
}

// EvaluateSymbolic substitutes univariate polynomials for the variables,
// yielding a univariate polynomial. This is how AIR constraints are
// lifted over trace polynomials.
func (p *MPolynomial) EvaluateSymbolic(point []*Polynomial) (*Polynomial, error) {
	if !p.IsZero() && len(point) < p.NumVariables() {
		return nil, fmt.Errorf("number of polynomials in point does not match number of variables in polynomial")
	}

	acc := ZeroPolynomial(p.field)
	for _, term := range p.terms {
		prod := ConstantPolynomial(term.coefficient)
		for i, e := range term.exponents {
			prod = prod.Mul(point[i].Pow(e))
		}
		acc = acc.Add(prod)
	}
	return acc, nil
}
