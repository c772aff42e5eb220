package core

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomElement draws a deterministic pseudo-random field element
func randomElement(t *testing.T, rnd *rand.Rand, field *Field) *FieldElement {
	t.Helper()
	buf := make([]byte, sampleByteLength)
	_, err := rnd.Read(buf)
	require.NoError(t, err)
	return field.Sample(buf)
}

func TestFieldAxioms(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		a := randomElement(t, rnd, field)
		b := randomElement(t, rnd, field)
		c := randomElement(t, rnd, field)

		t.Run("commutativity", func(t *testing.T) {
			require.True(t, a.Add(b).Equal(b.Add(a)))
			require.True(t, a.Mul(b).Equal(b.Mul(a)))
		})

		t.Run("associativity", func(t *testing.T) {
			require.True(t, a.Add(b).Add(c).Equal(a.Add(b.Add(c))))
			require.True(t, a.Mul(b).Mul(c).Equal(a.Mul(b.Mul(c))))
		})

		t.Run("distributivity", func(t *testing.T) {
			require.True(t, a.Mul(b.Add(c)).Equal(a.Mul(b).Add(a.Mul(c))))
		})

		t.Run("inverses", func(t *testing.T) {
			require.True(t, a.Add(a.Neg()).IsZero())
			if !a.IsZero() {
				inverse, err := a.Inverse()
				require.NoError(t, err)
				require.True(t, a.Mul(inverse).IsOne())
			}
		})
	}
}

func TestFieldExpMatchesBigInt(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(2))

	for i := 0; i < 10; i++ {
		a := randomElement(t, rnd, field)
		exponent := big.NewInt(int64(rnd.Intn(10000)))

		expected := new(big.Int).Exp(a.Big(), exponent, field.Modulus())
		require.Zero(t, a.Exp(exponent).Big().Cmp(expected))
	}
}

func TestFieldFermat(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(3))

	for i := 0; i < 5; i++ {
		a := randomElement(t, rnd, field)
		require.True(t, a.Exp(field.Modulus()).Equal(a))
	}
}

func TestFieldArithmeticErrors(t *testing.T) {
	field := DefaultField()

	_, err := field.Zero().Inverse()
	require.Error(t, err)

	_, err = field.One().Div(field.Zero())
	require.Error(t, err)
}

func TestFieldSample(t *testing.T) {
	field := DefaultField()

	require.True(t, field.Sample(nil).IsZero())
	require.True(t, field.Sample([]byte{1, 0}).Equal(field.NewElementFromInt64(256)))
	require.True(t, field.Sample([]byte{0xff}).Equal(field.NewElementFromInt64(255)))
}

func TestPrimitiveNthRoot(t *testing.T) {
	field := DefaultField()

	root, err := field.PrimitiveNthRoot(16)
	require.NoError(t, err)
	require.True(t, root.ExpInt(16).IsOne())
	require.False(t, root.ExpInt(8).IsOne())

	_, err = field.PrimitiveNthRoot(3)
	require.Error(t, err)

	_, err = field.PrimitiveNthRoot(0)
	require.Error(t, err)
}

func TestGeneratorOrder(t *testing.T) {
	field := DefaultField()

	generator, err := field.Generator()
	require.NoError(t, err)

	order := new(big.Int).Lsh(big.NewInt(1), 119)
	require.True(t, generator.Exp(order).IsOne())
	require.False(t, generator.Exp(new(big.Int).Rsh(order, 1)).IsOne())
}

func TestFieldElementBytes(t *testing.T) {
	field := DefaultField()
	rnd := rand.New(rand.NewSource(4))

	for i := 0; i < 10; i++ {
		a := randomElement(t, rnd, field)
		encoded := a.Bytes()
		require.Len(t, encoded, 16)
		require.True(t, field.Sample(encoded).Equal(a))
	}
}

func TestNewFieldRejectsSmallModulus(t *testing.T) {
	_, err := NewField(big.NewInt(2))
	require.Error(t, err)
}
