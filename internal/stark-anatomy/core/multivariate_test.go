package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomMPolynomial draws a sparse polynomial over the given number of
// variables
func randomMPolynomial(t *testing.T, rnd *rand.Rand, field *Field, numVariables, numTerms int) *MPolynomial {
	t.Helper()
	p := MPolynomialZero(field)
	for i := 0; i < numTerms; i++ {
		exponents := make([]int, numVariables)
		for j := range exponents {
			exponents[j] = rnd.Intn(4)
		}
		p.addTerm(exponents, randomElement(t, rnd, field))
	}
	return p
}

func randomPoint(t *testing.T, rnd *rand.Rand, field *Field, numVariables int) []*FieldElement {
	t.Helper()
	point := make([]*FieldElement, numVariables)
	for i := range point {
		point[i] = randomElement(t, rnd, field)
	}
	return point
}

func TestMPolynomialDistributivity(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(20))

	for i := 0; i < 5; i++ {
		a := randomMPolynomial(t, rnd, field, 3, 4)
		b := randomMPolynomial(t, rnd, field, 3, 4)
		c := randomMPolynomial(t, rnd, field, 3, 4)

		require.True(t, a.Mul(b.Add(c)).Equal(a.Mul(b).Add(a.Mul(c))))
	}
}

func TestMPolynomialEvaluateHomomorphism(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(21))

	for i := 0; i < 5; i++ {
		f := randomMPolynomial(t, rnd, field, 3, 4)
		g := randomMPolynomial(t, rnd, field, 3, 4)
		point := randomPoint(t, rnd, field, 3)

		fgSum, err := f.Add(g).Evaluate(point)
		require.NoError(t, err)
		fValue, err := f.Evaluate(point)
		require.NoError(t, err)
		gValue, err := g.Evaluate(point)
		require.NoError(t, err)
		require.True(t, fgSum.Equal(fValue.Add(gValue)))

		fgProduct, err := f.Mul(g).Evaluate(point)
		require.NoError(t, err)
		require.True(t, fgProduct.Equal(fValue.Mul(gValue)))
	}
}

func TestMPolynomialLift(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(22))

	p := randomPolynomial(t, rnd, field, 6)
	x := randomElement(t, rnd, field)

	for variableIndex := 0; variableIndex < 3; variableIndex++ {
		lifted := Lift(p, variableIndex)
		require.Equal(t, variableIndex+1, lifted.NumVariables())

		point := make([]*FieldElement, variableIndex+1)
		for i := range point {
			point[i] = x
		}
		value, err := lifted.Evaluate(point)
		require.NoError(t, err)
		require.True(t, value.Equal(p.Eval(x)))
	}
}

func TestMPolynomialVariables(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(23))

	variables := Variables(4, field)
	require.Len(t, variables, 4)

	point := randomPoint(t, rnd, field, 4)
	for i, variable := range variables {
		value, err := variable.Evaluate(point)
		require.NoError(t, err)
		require.True(t, value.Equal(point[i]))
	}
}

func TestMPolynomialEvaluateSymbolic(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(24))

	f := randomMPolynomial(t, rnd, field, 3, 4)
	polyPoint := []*Polynomial{
		randomPolynomial(t, rnd, field, 3),
		randomPolynomial(t, rnd, field, 3),
		randomPolynomial(t, rnd, field, 3),
	}

	composed, err := f.EvaluateSymbolic(polyPoint)
	require.NoError(t, err)

	x := randomElement(t, rnd, field)
	point := make([]*FieldElement, len(polyPoint))
	for i, p := range polyPoint {
		point[i] = p.Eval(x)
	}
	expected, err := f.Evaluate(point)
	require.NoError(t, err)
	require.True(t, composed.Eval(x).Equal(expected))
}

func TestMPolynomialPow(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(25))

	p := randomMPolynomial(t, rnd, field, 2, 3)
	require.True(t, p.Pow(3).Equal(p.Mul(p).Mul(p)))
	require.True(t, MPolynomialZero(field).Pow(4).IsZero())
}

func TestMPolynomialZeroHandling(t *testing.T) {
	field := DefaultField()

	zero := MPolynomialZero(field)
	require.True(t, zero.IsZero())
	require.Equal(t, 0, zero.NumVariables())

	constant := MPolynomialConstant(field.NewElementFromInt64(7))
	require.True(t, zero.Add(constant).Equal(constant))
	require.True(t, constant.Sub(constant).IsZero())
	require.True(t, zero.Mul(constant).IsZero())
}
