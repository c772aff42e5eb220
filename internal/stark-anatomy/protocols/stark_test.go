package protocols_test

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/protocols"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/rescue"
)

// starkTestSetup builds a Rescue-Prime proof instance with small test
// parameters and a seeded random tape
func starkTestSetup(t *testing.T, seed int64) (*rescue.RescuePrime, *protocols.Stark, *protocols.Preprocessed, []*core.MPolynomial) {
	t.Helper()
	rp := rescue.NewRescuePrime()

	stark, err := protocols.NewStark(
		rp.Field(),
		4, // expansion factor
		2, // colinearity checks
		2, // security level
		rp.StateWidth(),
		rp.NumRounds()+1,
		protocols.DefaultTransitionConstraintsDegree,
		rand.New(rand.NewSource(seed)),
	)
	require.NoError(t, err)

	preprocessed, err := stark.Preprocess()
	require.NoError(t, err)

	air, err := rp.TransitionConstraints(stark.Omicron())
	require.NoError(t, err)

	return rp, stark, preprocessed, air
}

func rescueInputElement(t *testing.T, field *core.Field) *core.FieldElement {
	t.Helper()
	value, ok := new(big.Int).SetString("57322816861100832358702415967512842988", 10)
	require.True(t, ok)
	return field.NewElement(value)
}

func TestStarkRescuePrimeProof(t *testing.T) {
	rp, stark, preprocessed, air := starkTestSetup(t, 100)

	inputElement := rescueInputElement(t, rp.Field())
	outputElement := rp.Hash(inputElement)

	trace := rp.Trace(inputElement)
	boundary := rp.BoundaryConstraints(outputElement)

	proof, err := stark.Prove(trace, air, boundary, preprocessed, nil)
	require.NoError(t, err)

	verdict, err := stark.Verify(proof, air, boundary, preprocessed.TransitionZerofierRoot, nil)
	require.NoError(t, err)
	require.True(t, verdict, "valid stark proof fails to verify")

	// verify the same proof against a false claim
	wrongOutput := outputElement.Add(rp.Field().One())
	wrongBoundary := rp.BoundaryConstraints(wrongOutput)
	verdict, err = stark.Verify(proof, air, wrongBoundary, preprocessed.TransitionZerofierRoot, nil)
	require.Error(t, err)
	require.False(t, verdict, "invalid stark proof verifies")
}

func TestStarkFalseWitness(t *testing.T) {
	rp, stark, preprocessed, air := starkTestSetup(t, 101)
	field := rp.Field()

	inputElement := rescueInputElement(t, field)
	outputElement := rp.Hash(inputElement)

	trace := rp.Trace(inputElement)
	boundary := rp.BoundaryConstraints(outputElement)

	// perturb one cell of the trace by a non-zero element
	perturbation := field.Sample([]byte("false witness perturbation"))
	require.False(t, perturbation.IsZero())
	trace[22][1] = trace[22][1].Add(perturbation)

	// either proving aborts because a quotient no longer divides, or
	// the resulting proof fails to verify
	proof, err := stark.Prove(trace, air, boundary, preprocessed, nil)
	if err != nil {
		return
	}
	verdict, _ := stark.Verify(proof, air, boundary, preprocessed.TransitionZerofierRoot, nil)
	require.False(t, verdict, "STARK produced from false witness verifies")
}

func TestStarkDeterministicUnderFixedTape(t *testing.T) {
	firstRp, firstStark, firstPreprocessed, firstAir := starkTestSetup(t, 7)
	secondRp, secondStark, secondPreprocessed, secondAir := starkTestSetup(t, 7)

	input := rescueInputElement(t, firstRp.Field())

	firstProof, err := firstStark.Prove(
		firstRp.Trace(input), firstAir,
		firstRp.BoundaryConstraints(firstRp.Hash(input)),
		firstPreprocessed, nil,
	)
	require.NoError(t, err)

	secondProof, err := secondStark.Prove(
		secondRp.Trace(input), secondAir,
		secondRp.BoundaryConstraints(secondRp.Hash(input)),
		secondPreprocessed, nil,
	)
	require.NoError(t, err)

	require.Equal(t, firstProof, secondProof, "same inputs and random tape must give byte-identical proofs")
}

func TestStarkConstructorValidation(t *testing.T) {
	field := core.DefaultField()

	// security level beyond the field size
	_, err := protocols.NewStark(field, 4, 80, 160, 2, 28, 2, nil)
	require.Error(t, err)

	// expansion factor not a power of two
	_, err = protocols.NewStark(field, 6, 2, 2, 2, 28, 2, nil)
	require.Error(t, err)

	// expansion factor too small
	_, err = protocols.NewStark(field, 2, 2, 2, 2, 28, 2, nil)
	require.Error(t, err)

	// too few colinearity checks for the security level
	_, err = protocols.NewStark(field, 4, 2, 80, 2, 28, 2, nil)
	require.Error(t, err)

	// degenerate dimensions
	_, err = protocols.NewStark(field, 4, 2, 2, 0, 28, 2, nil)
	require.Error(t, err)
	_, err = protocols.NewStark(field, 4, 2, 2, 2, 0, 2, nil)
	require.Error(t, err)
}

func TestStarkDegreeBounds(t *testing.T) {
	rp, stark, _, air := starkTestSetup(t, 102)

	transitionBounds := stark.TransitionDegreeBounds(air)
	require.Len(t, transitionBounds, rp.StateWidth())

	quotientBounds := stark.TransitionQuotientDegreeBounds(air)
	for i := range transitionBounds {
		require.Equal(t, transitionBounds[i]-(rp.NumRounds()+1-1), quotientBounds[i])
	}

	maxDegree := stark.MaxDegree(air)
	// smallest 2^k - 1 at least the largest quotient bound
	require.GreaterOrEqual(t, maxDegree, quotientBounds[0])
	require.Less(t, maxDegree>>1, quotientBounds[0])
	require.Equal(t, 0, (maxDegree+1)&maxDegree)
}
