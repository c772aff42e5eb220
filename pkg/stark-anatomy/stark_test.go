package starkanatomy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/rescue"
)

func TestDefaultField(t *testing.T) {
	field := DefaultField()
	require.Equal(t, 128, field.Modulus().BitLen())
}

func TestFacadeEndToEnd(t *testing.T) {
	rp := rescue.NewRescuePrime()

	stark, err := NewStark(
		DefaultField(), 4, 2, 2,
		rp.StateWidth(), rp.NumRounds()+1,
		DefaultTransitionConstraintsDegree,
		rand.New(rand.NewSource(70)),
	)
	require.NoError(t, err)

	preprocessed, err := stark.Preprocess()
	require.NoError(t, err)
	air, err := rp.TransitionConstraints(stark.Omicron())
	require.NoError(t, err)

	input := DefaultField().NewElementFromInt64(0xdeadbeef)
	output := rp.Hash(input)

	proof, err := stark.Prove(rp.Trace(input), air, rp.BoundaryConstraints(output), preprocessed, nil)
	require.NoError(t, err)

	verdict, err := stark.Verify(proof, air, rp.BoundaryConstraints(output), preprocessed.TransitionZerofierRoot, nil)
	require.NoError(t, err)
	require.True(t, verdict)
}

func TestClassify(t *testing.T) {
	field := DefaultField()
	omega, err := field.PrimitiveNthRoot(256)
	require.NoError(t, err)
	offset, err := field.Generator()
	require.NoError(t, err)

	fri, err := NewFri(offset, omega, 256, 4, 17)
	require.NoError(t, err)

	// an empty transcript exhausts immediately
	_, err = fri.Verify(NewProofStream())
	require.Error(t, err)
	require.Equal(t, ErrProofStream, Classify(err))
}
