package rescue

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/protocols"
)

// SignatureScheme signs documents with a STARK proof of Rescue-Prime
// preimage knowledge: the secret key is a field element, the public key
// is its hash, and a signature is a proof of the hash trace whose
// Fiat-Shamir challenges are bound to the signed document.
type SignatureScheme struct {
	field        *core.Field
	rp           *RescuePrime
	stark        *protocols.Stark
	preprocessed *protocols.Preprocessed
	air          []*core.MPolynomial
	random       io.Reader
}

// signature parameters: 64 colinearity checks give 128-bit conjectured
// soundness
const (
	signatureExpansionFactor      = 4
	signatureNumColinearityChecks = 64
	signatureSecurityLevel        = 2 * signatureNumColinearityChecks
)

// NewSignatureScheme builds the scheme over the fixed Rescue-Prime
// instance. The random source may be nil, in which case crypto/rand is
// used.
func NewSignatureScheme(random io.Reader) (*SignatureScheme, error) {
	return newSignatureScheme(signatureNumColinearityChecks, signatureSecurityLevel, random)
}

func newSignatureScheme(numColinearityChecks, soundnessLevel int, random io.Reader) (*SignatureScheme, error) {
	if random == nil {
		random = rand.Reader
	}
	rp := NewRescuePrime()

	stark, err := protocols.NewStark(
		rp.Field(),
		signatureExpansionFactor,
		numColinearityChecks,
		soundnessLevel,
		rp.StateWidth(),
		rp.NumRounds()+1,
		protocols.DefaultTransitionConstraintsDegree,
		random,
	)
	if err != nil {
		return nil, err
	}
	preprocessed, err := stark.Preprocess()
	if err != nil {
		return nil, err
	}
	air, err := rp.TransitionConstraints(stark.Omicron())
	if err != nil {
		return nil, err
	}

	return &SignatureScheme{
		field:        rp.Field(),
		rp:           rp,
		stark:        stark,
		preprocessed: preprocessed,
		air:          air,
		random:       random,
	}, nil
}

// KeyGen samples a secret key and derives the public key as its hash
func (ss *SignatureScheme) KeyGen() (*core.FieldElement, *core.FieldElement, error) {
	sk, err := ss.field.RandomElement(ss.random)
	if err != nil {
		return nil, nil, err
	}
	return sk, ss.rp.Hash(sk), nil
}

// documentStream returns a transcript whose challenges are bound to the
// document through its Blake2b digest
func documentStream(document []byte) *protocols.ProofStream {
	prefix := blake2b.Sum512(document)
	return protocols.NewProofStreamWithPrefix(prefix[:])
}

// Sign proves knowledge of the public key's preimage, bound to the
// document
func (ss *SignatureScheme) Sign(sk *core.FieldElement, document []byte) ([]byte, error) {
	trace := ss.rp.Trace(sk)
	boundary := ss.rp.BoundaryConstraints(ss.rp.Hash(sk))
	return ss.stark.Prove(trace, ss.air, boundary, ss.preprocessed, documentStream(document))
}

// Verify checks a signature against the public key and the document
func (ss *SignatureScheme) Verify(pk *core.FieldElement, document []byte, signature []byte) (bool, error) {
	boundary := ss.rp.BoundaryConstraints(pk)
	return ss.stark.Verify(signature, ss.air, boundary, ss.preprocessed.TransitionZerofierRoot, documentStream(document))
}
