package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
)

func TestProofStreamPushPull(t *testing.T) {
	field := core.DefaultField()
	ps := NewProofStream()

	root := make([]byte, core.DigestLength)
	root[0] = 0xab
	ps.PushMerkleRoot(root)
	ps.PushLeaf(field.NewElementFromInt64(42))
	ps.PushCodeword([]*core.FieldElement{field.One(), field.Zero()})

	pulledRoot, err := ps.PullMerkleRoot()
	require.NoError(t, err)
	require.Equal(t, root, pulledRoot)

	leaf, err := ps.PullLeaf(field)
	require.NoError(t, err)
	require.True(t, leaf.Equal(field.NewElementFromInt64(42)))

	codeword, err := ps.PullCodeword(field)
	require.NoError(t, err)
	require.Len(t, codeword, 2)
	require.True(t, codeword[0].IsOne())
	require.True(t, codeword[1].IsZero())

	_, err = ps.Pull()
	require.Error(t, err)
	var psErr ProofStreamError
	require.ErrorAs(t, err, &psErr)
	require.Equal(t, ProofStreamErrorEmptyQueue, psErr.Type)
}

func TestProofStreamPullWrongKind(t *testing.T) {
	field := core.DefaultField()
	ps := NewProofStream()
	ps.PushLeaf(field.One())

	_, err := ps.PullMerkleRoot()
	require.Error(t, err)
}

func TestProofStreamSerializeRoundTrip(t *testing.T) {
	field := core.DefaultField()
	ps := NewProofStream()

	root := make([]byte, core.DigestLength)
	for i := range root {
		root[i] = byte(i)
	}
	ps.PushMerkleRoot(root)
	ps.PushColinearityCheck(&ColinearityCheck{
		AY:    field.NewElementFromInt64(1).Bytes(),
		BY:    field.NewElementFromInt64(2).Bytes(),
		CY:    field.NewElementFromInt64(3).Bytes(),
		APath: [][]byte{root},
		BPath: [][]byte{root},
		CPath: [][]byte{root},
	})
	ps.PushPath([][]byte{root, root})

	serialized, err := ps.Serialize()
	require.NoError(t, err)

	recovered, err := Deserialize(serialized)
	require.NoError(t, err)
	require.Equal(t, ps.Items(), recovered.Items())

	reserialized, err := recovered.Serialize()
	require.NoError(t, err)
	require.Equal(t, serialized, reserialized)

	pulledRoot, err := recovered.PullMerkleRoot()
	require.NoError(t, err)
	require.Equal(t, root, pulledRoot)
	check, err := recovered.PullColinearityCheck()
	require.NoError(t, err)
	require.True(t, core.DefaultField().Sample(check.BY).Equal(field.NewElementFromInt64(2)))
}

func TestProofStreamFiatShamirEmptyStream(t *testing.T) {
	first, err := NewProofStream().ProverFiatShamir()
	require.NoError(t, err)
	require.Len(t, first, FiatShamirChallengeLength)

	second, err := NewProofStream().ProverFiatShamir()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestProofStreamFiatShamirSymmetry(t *testing.T) {
	field := core.DefaultField()

	prover := NewProofStream()
	prover.PushLeaf(field.NewElementFromInt64(7))
	challenge, err := prover.ProverFiatShamir()
	require.NoError(t, err)
	prover.PushLeaf(field.NewElementFromInt64(8))

	serialized, err := prover.Serialize()
	require.NoError(t, err)
	verifier, err := Deserialize(serialized)
	require.NoError(t, err)

	// before consuming anything the verifier sees an empty prefix
	before, err := verifier.VerifierFiatShamir()
	require.NoError(t, err)
	require.NotEqual(t, challenge, before)

	_, err = verifier.Pull()
	require.NoError(t, err)
	after, err := verifier.VerifierFiatShamir()
	require.NoError(t, err)
	require.Equal(t, challenge, after)
}

func TestProofStreamPrefixBindsChallenges(t *testing.T) {
	plain, err := NewProofStream().ProverFiatShamir()
	require.NoError(t, err)

	bound, err := NewProofStreamWithPrefix([]byte("document")).ProverFiatShamir()
	require.NoError(t, err)
	require.NotEqual(t, plain, bound)
}
