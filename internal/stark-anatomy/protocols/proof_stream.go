package protocols

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
)

// ProofStreamError represents errors that can occur during proof stream
// operations
type ProofStreamError struct {
	Type    ProofStreamErrorType
	Message string
}

type ProofStreamErrorType int

const (
	ProofStreamErrorEmptyQueue ProofStreamErrorType = iota
	ProofStreamErrorInvalidItem
	ProofStreamErrorEncodingFailed
	ProofStreamErrorDecodingFailed
)

func (e ProofStreamError) Error() string {
	return fmt.Sprintf("ProofStream error [%d]: %s", e.Type, e.Message)
}

// ProofItemKind discriminates the committed object set
type ProofItemKind uint8

const (
	// ItemMerkleRoot is a 64-byte Merkle root
	ItemMerkleRoot ProofItemKind = iota + 1
	// ItemCodeword is a list of field elements (the final FRI codeword)
	ItemCodeword
	// ItemColinearityCheck is three opened values with their paths
	ItemColinearityCheck
	// ItemLeaf is a single opened field element
	ItemLeaf
	// ItemPath is a Merkle authentication path
	ItemPath
)

// ColinearityCheck carries the three codeword values and the three
// authentication paths of one FRI colinearity test. Field elements are
// in canonical byte encoding.
type ColinearityCheck struct {
	AY    []byte   `cbor:"1,keyasint"`
	BY    []byte   `cbor:"2,keyasint"`
	CY    []byte   `cbor:"3,keyasint"`
	APath [][]byte `cbor:"4,keyasint"`
	BPath [][]byte `cbor:"5,keyasint"`
	CPath [][]byte `cbor:"6,keyasint"`
}

// ProofItem is one opaque object of the transcript: a tagged union over
// the committed object set. Exactly the field selected by Kind is
// populated.
type ProofItem struct {
	Kind     ProofItemKind     `cbor:"1,keyasint"`
	Root     []byte            `cbor:"2,keyasint,omitempty"`
	Codeword [][]byte          `cbor:"3,keyasint,omitempty"`
	Check    *ColinearityCheck `cbor:"4,keyasint,omitempty"`
	Leaf     []byte            `cbor:"5,keyasint,omitempty"`
	Path     [][]byte          `cbor:"6,keyasint,omitempty"`
}

// FiatShamirChallengeLength is the byte length of extracted challenges
const FiatShamirChallengeLength = 32

// encMode is the canonical CBOR encoder shared by serialization and
// challenge extraction. Core deterministic encoding keeps the transcript
// injective over the committed object set.
var encMode, _ = cbor.CanonicalEncOptions().EncMode()

// ProofStream is the append-only transcript with Fiat-Shamir challenge
// extraction. The prover only pushes; the verifier only pulls
// sequentially. Challenges are derived from the serialized prefix: the
// full stream on the prover side, the prefix up to the read cursor on
// the verifier side.
type ProofStream struct {
	items     []ProofItem
	readIndex int

	// fiatShamirPrefix is folded into every challenge. Empty for plain
	// proofs; the signature scheme binds the signed document here.
	fiatShamirPrefix []byte
}

// NewProofStream creates a new empty proof stream
func NewProofStream() *ProofStream {
	return &ProofStream{}
}

// NewProofStreamWithPrefix creates a proof stream whose Fiat-Shamir
// challenges are additionally bound to the given prefix
func NewProofStreamWithPrefix(prefix []byte) *ProofStream {
	held := make([]byte, len(prefix))
	copy(held, prefix)
	return &ProofStream{fiatShamirPrefix: held}
}

// Push appends an item to the transcript
func (ps *ProofStream) Push(item ProofItem) {
	ps.items = append(ps.items, item)
}

// Pull reads the item at the cursor and advances
func (ps *ProofStream) Pull() (ProofItem, error) {
	if ps.readIndex >= len(ps.items) {
		return ProofItem{}, ProofStreamError{
			Type:    ProofStreamErrorEmptyQueue,
			Message: "cannot pull object; queue empty",
		}
	}
	item := ps.items[ps.readIndex]
	ps.readIndex++
	return item, nil
}

// Items returns the number of items in the transcript
func (ps *ProofStream) Items() int {
	return len(ps.items)
}

// Serialize produces the canonical byte encoding of the full object
// sequence
func (ps *ProofStream) Serialize() ([]byte, error) {
	return ps.serializePrefix(len(ps.items))
}

func (ps *ProofStream) serializePrefix(index int) ([]byte, error) {
	items := ps.items[:index]
	if items == nil {
		items = []ProofItem{}
	}
	data, err := encMode.Marshal(items)
	if err != nil {
		return nil, ProofStreamError{
			Type:    ProofStreamErrorEncodingFailed,
			Message: fmt.Sprintf("failed to encode proof items: %v", err),
		}
	}
	return data, nil
}

// Deserialize reconstructs a proof stream from its serialized form,
// with the read cursor at the start
func Deserialize(data []byte) (*ProofStream, error) {
	ps := NewProofStream()
	if err := ps.LoadItems(data); err != nil {
		return nil, err
	}
	return ps, nil
}

// LoadItems replaces the object sequence with the decoded data, keeping
// the stream's Fiat-Shamir prefix and resetting the read cursor
func (ps *ProofStream) LoadItems(data []byte) error {
	var items []ProofItem
	if err := cbor.Unmarshal(data, &items); err != nil {
		return ProofStreamError{
			Type:    ProofStreamErrorDecodingFailed,
			Message: fmt.Sprintf("failed to decode proof items: %v", err),
		}
	}
	ps.items = items
	ps.readIndex = 0
	return nil
}

// fiatShamir hashes the serialized prefix of the transcript down to a
// challenge with SHAKE-256
func (ps *ProofStream) fiatShamir(index int) ([]byte, error) {
	data, err := ps.serializePrefix(index)
	if err != nil {
		return nil, err
	}
	shake := sha3.NewShake256()
	shake.Write(ps.fiatShamirPrefix)
	shake.Write(data)
	challenge := make([]byte, FiatShamirChallengeLength)
	shake.Read(challenge)
	return challenge, nil
}

// ProverFiatShamir extracts a challenge from the full transcript. The
// prover commits before sampling.
func (ps *ProofStream) ProverFiatShamir() ([]byte, error) {
	return ps.fiatShamir(len(ps.items))
}

// VerifierFiatShamir extracts a challenge from the prefix up to the
// read cursor: the verifier samples only after having seen the same
// prefix the prover committed to
func (ps *ProofStream) VerifierFiatShamir() ([]byte, error) {
	return ps.fiatShamir(ps.readIndex)
}

// fieldElementFromBytes decodes a canonical field element encoding
func fieldElementFromBytes(field *core.Field, data []byte) *core.FieldElement {
	return field.Sample(data)
}

// PushMerkleRoot appends a Merkle root
func (ps *ProofStream) PushMerkleRoot(root []byte) {
	ps.Push(ProofItem{Kind: ItemMerkleRoot, Root: root})
}

// PullMerkleRoot reads a Merkle root
func (ps *ProofStream) PullMerkleRoot() ([]byte, error) {
	item, err := ps.Pull()
	if err != nil {
		return nil, err
	}
	if item.Kind != ItemMerkleRoot || len(item.Root) != core.DigestLength {
		return nil, ProofStreamError{
			Type:    ProofStreamErrorInvalidItem,
			Message: "expected a Merkle root",
		}
	}
	return item.Root, nil
}

// PushCodeword appends a codeword of field elements
func (ps *ProofStream) PushCodeword(codeword []*core.FieldElement) {
	words := make([][]byte, len(codeword))
	for i, word := range codeword {
		words[i] = word.Bytes()
	}
	ps.Push(ProofItem{Kind: ItemCodeword, Codeword: words})
}

// PullCodeword reads a codeword of field elements
func (ps *ProofStream) PullCodeword(field *core.Field) ([]*core.FieldElement, error) {
	item, err := ps.Pull()
	if err != nil {
		return nil, err
	}
	if item.Kind != ItemCodeword {
		return nil, ProofStreamError{
			Type:    ProofStreamErrorInvalidItem,
			Message: "expected a codeword",
		}
	}
	codeword := make([]*core.FieldElement, len(item.Codeword))
	for i, word := range item.Codeword {
		codeword[i] = fieldElementFromBytes(field, word)
	}
	return codeword, nil
}

// PushColinearityCheck appends a colinearity record
func (ps *ProofStream) PushColinearityCheck(check *ColinearityCheck) {
	ps.Push(ProofItem{Kind: ItemColinearityCheck, Check: check})
}

// PullColinearityCheck reads a colinearity record
func (ps *ProofStream) PullColinearityCheck() (*ColinearityCheck, error) {
	item, err := ps.Pull()
	if err != nil {
		return nil, err
	}
	if item.Kind != ItemColinearityCheck || item.Check == nil {
		return nil, ProofStreamError{
			Type:    ProofStreamErrorInvalidItem,
			Message: "expected a colinearity check",
		}
	}
	return item.Check, nil
}

// PushLeaf appends a single opened field element
func (ps *ProofStream) PushLeaf(leaf *core.FieldElement) {
	ps.Push(ProofItem{Kind: ItemLeaf, Leaf: leaf.Bytes()})
}

// PullLeaf reads a single opened field element
func (ps *ProofStream) PullLeaf(field *core.Field) (*core.FieldElement, error) {
	item, err := ps.Pull()
	if err != nil {
		return nil, err
	}
	if item.Kind != ItemLeaf {
		return nil, ProofStreamError{
			Type:    ProofStreamErrorInvalidItem,
			Message: "expected an opened leaf",
		}
	}
	return fieldElementFromBytes(field, item.Leaf), nil
}

// PushPath appends a Merkle authentication path
func (ps *ProofStream) PushPath(path [][]byte) {
	ps.Push(ProofItem{Kind: ItemPath, Path: path})
}

// PullPath reads a Merkle authentication path
func (ps *ProofStream) PullPath() ([][]byte, error) {
	item, err := ps.Pull()
	if err != nil {
		return nil, err
	}
	if item.Kind != ItemPath {
		return nil, ProofStreamError{
			Type:    ProofStreamErrorInvalidItem,
			Message: "expected an authentication path",
		}
	}
	return item.Path, nil
}
