package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomPolynomial draws a polynomial of at most the given degree
func randomPolynomial(t *testing.T, rnd *rand.Rand, field *Field, maxDegree int) *Polynomial {
	t.Helper()
	coefficients := make([]*FieldElement, maxDegree+1)
	for i := range coefficients {
		coefficients[i] = randomElement(t, rnd, field)
	}
	return NewPolynomial(field, coefficients)
}

func TestPolynomialCanonicalForm(t *testing.T) {
	field := DefaultField()

	zero := NewPolynomial(field, []*FieldElement{field.Zero(), field.Zero()})
	require.True(t, zero.IsZero())
	require.Equal(t, -1, zero.Degree())

	trimmed := NewPolynomialFromInt64(field, []int64{1, 2, 0, 0})
	require.Equal(t, 1, trimmed.Degree())
	require.True(t, trimmed.Equal(NewPolynomialFromInt64(field, []int64{1, 2})))
}

func TestPolynomialDistributivity(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(10))

	for i := 0; i < 10; i++ {
		a := randomPolynomial(t, rnd, field, rnd.Intn(16))
		b := randomPolynomial(t, rnd, field, rnd.Intn(16))
		c := randomPolynomial(t, rnd, field, rnd.Intn(16))

		require.True(t, a.Mul(b.Add(c)).Equal(a.Mul(b).Add(a.Mul(c))))
	}
}

func TestPolynomialDivisionRoundTrip(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(11))

	for i := 0; i < 10; i++ {
		a := randomPolynomial(t, rnd, field, rnd.Intn(16))
		b := randomPolynomial(t, rnd, field, rnd.Intn(16))
		if b.IsZero() {
			continue
		}

		quotient, err := a.Mul(b).Div(b)
		require.NoError(t, err)
		require.True(t, quotient.Equal(a))
	}
}

func TestPolynomialDivMod(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(12))

	a := randomPolynomial(t, rnd, field, 20)
	b := randomPolynomial(t, rnd, field, 7)

	quotient, remainder, err := a.DivMod(b)
	require.NoError(t, err)
	require.Less(t, remainder.Degree(), b.Degree())
	require.True(t, quotient.Mul(b).Add(remainder).Equal(a))

	_, _, err = a.DivMod(ZeroPolynomial(field))
	require.Error(t, err)

	_, err = a.Div(b.Add(ConstantPolynomial(field.One())))
	if err == nil {
		// exact division of random polynomials almost surely fails
		t.Skip("unexpectedly divisible")
	}
}

func TestPolynomialInterpolateExactness(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(13))

	domain := make([]*FieldElement, 12)
	for i := range domain {
		domain[i] = field.NewElementFromInt64(int64(i))
	}
	values := make([]*FieldElement, len(domain))
	for i := range values {
		values[i] = randomElement(t, rnd, field)
	}

	interpolant, err := Interpolate(field, domain, values)
	require.NoError(t, err)
	require.Less(t, interpolant.Degree(), len(domain))
	for i := range domain {
		require.True(t, interpolant.Eval(domain[i]).Equal(values[i]))
	}

	_, err = Interpolate(field, nil, nil)
	require.Error(t, err)
	_, err = Interpolate(field, domain[:2], values[:3])
	require.Error(t, err)
}

func TestZerofierDomain(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(14))

	domain := make([]*FieldElement, 8)
	for i := range domain {
		domain[i] = randomElement(t, rnd, field)
	}

	zerofier := ZerofierDomain(field, domain)
	require.Equal(t, len(domain), zerofier.Degree())
	for _, d := range domain {
		require.True(t, zerofier.Eval(d).IsZero())
	}
	require.False(t, zerofier.Eval(field.NewElementFromInt64(-1)).IsZero())
}

func TestPolynomialScale(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(15))

	p := randomPolynomial(t, rnd, field, 10)
	factor := randomElement(t, rnd, field)
	x := randomElement(t, rnd, field)

	require.True(t, p.Scale(factor).Eval(x).Equal(p.Eval(factor.Mul(x))))
}

func TestPolynomialPow(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(16))

	p := randomPolynomial(t, rnd, field, 4)
	require.True(t, p.Pow(3).Equal(p.Mul(p).Mul(p)))
	require.True(t, p.Pow(0).Equal(ConstantPolynomial(field.One())))
	require.True(t, ZeroPolynomial(field).Pow(5).IsZero())
}

func TestIsColinear(t *testing.T) {
	field := DefaultField()

	// y = 2x + 1
	line := func(x int64) Point {
		return Point{
			X: field.NewElementFromInt64(x),
			Y: field.NewElementFromInt64(2*x + 1),
		}
	}
	require.True(t, IsColinear(field, []Point{line(0), line(1), line(5)}))

	bent := []Point{line(0), line(1), {X: field.NewElementFromInt64(5), Y: field.NewElementFromInt64(12)}}
	require.False(t, IsColinear(field, bent))

	// duplicate x-coordinates cannot be colinear
	require.False(t, IsColinear(field, []Point{line(1), line(1), line(2)}))
}
