package rescue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatureScheme(t *testing.T) {
	// scaled-down soundness to keep the test fast; the flow is the
	// same as with the production parameters
	scheme, err := newSignatureScheme(2, 2, rand.New(rand.NewSource(60)))
	require.NoError(t, err)

	sk, pk, err := scheme.KeyGen()
	require.NoError(t, err)
	require.True(t, scheme.rp.Hash(sk).Equal(pk))

	document := []byte("Hello, world!")
	signature, err := scheme.Sign(sk, document)
	require.NoError(t, err)

	ok, err := scheme.Verify(pk, document, signature)
	require.NoError(t, err)
	require.True(t, ok)

	// a signature does not transfer to another document
	ok, _ = scheme.Verify(pk, []byte("Byebye."), signature)
	require.False(t, ok)

	// nor to another public key
	ok, _ = scheme.Verify(pk.Add(scheme.field.One()), document, signature)
	require.False(t, ok)
}

func TestSignatureSchemeParameters(t *testing.T) {
	scheme, err := NewSignatureScheme(rand.New(rand.NewSource(61)))
	require.NoError(t, err)
	require.NotNil(t, scheme.preprocessed.TransitionZerofierRoot)
	require.Len(t, scheme.air, scheme.rp.StateWidth())
}
