package protocols

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/utils"
)

// FriFailureReason identifies why a FRI proof was rejected
type FriFailureReason int

const (
	// FriMalformedLastCodeword: the transmitted final codeword does not
	// match its Merkle root, or its domain is inconsistent
	FriMalformedLastCodeword FriFailureReason = iota
	// FriHighDegreeLastCodeword: the final codeword interpolates to a
	// polynomial above the degree bound
	FriHighDegreeLastCodeword
	// FriColinearityFailure: a queried triple is not colinear
	FriColinearityFailure
	// FriMerklePathFailure: an authentication path does not verify
	FriMerklePathFailure
)

// FriError is the rejection verdict of the FRI verifier, carrying the
// specific reason
type FriError struct {
	Reason  FriFailureReason
	Message string
}

func (e FriError) Error() string {
	return fmt.Sprintf("FRI failure [%d]: %s", e.Reason, e.Message)
}

func friError(reason FriFailureReason, format string, args ...interface{}) FriError {
	return FriError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Fri is the low-degree test: an iterated fold-and-commit phase
// followed by colinearity spot checks at Fiat-Shamir-sampled indices.
// The evaluation domain is the coset offset * <omega> of the given
// length.
type Fri struct {
	offset              *core.FieldElement
	omega               *core.FieldElement
	domainLength        int
	field               *core.Field
	expansionFactor     int
	numColinearityTests int
}

// IndexedValue is a (domain index, codeword value) pair of the
// top-level codeword, returned to the caller as evidence
type IndexedValue struct {
	Index int
	Value *core.FieldElement
}

// NewFri validates the parameters and creates a FRI instance
func NewFri(offset, omega *core.FieldElement, domainLength, expansionFactor, numColinearityTests int) (*Fri, error) {
	fri := &Fri{
		offset:              offset,
		omega:               omega,
		domainLength:        domainLength,
		field:               omega.Field(),
		expansionFactor:     expansionFactor,
		numColinearityTests: numColinearityTests,
	}

	if !utils.IsPowerOfTwo(domainLength) {
		return nil, fmt.Errorf("domain length must be a power of two")
	}
	if fri.NumRounds() < 1 {
		return nil, fmt.Errorf("cannot do FRI with less than one round")
	}
	if !omega.ExpInt(domainLength).IsOne() {
		return nil, fmt.Errorf("omega does not have the right order")
	}
	if domainLength <= expansionFactor {
		return nil, fmt.Errorf("domain length must be at least expansion factor")
	}
	if domainLength <= 4*numColinearityTests {
		return nil, fmt.Errorf("domain length must be at least 4 * num_colinearity_tests")
	}
	return fri, nil
}

// NumRounds computes the number of folding rounds: each round halves
// the domain until it reaches max(expansion factor, 4 * number of
// colinearity tests)
func (fri *Fri) NumRounds() int {
	rounds := 0
	length := fri.domainLength
	floor := fri.expansionFactor
	if 4*fri.numColinearityTests > floor {
		floor = 4 * fri.numColinearityTests
	}
	for length > floor {
		length /= 2
		rounds++
	}
	return rounds
}

// DomainLength returns the length of the initial evaluation domain
func (fri *Fri) DomainLength() int {
	return fri.domainLength
}

// Domain returns the initial evaluation domain offset * omega^i
func (fri *Fri) Domain() []*core.FieldElement {
	domain := make([]*core.FieldElement, fri.domainLength)
	point := fri.offset
	for i := range domain {
		domain[i] = point
		point = point.Mul(fri.omega)
	}
	return domain
}

// sampleIndex folds a seed into an index below size
func sampleIndex(seed []byte, size int) int {
	acc := new(big.Int)
	for _, b := range seed {
		acc.Lsh(acc, 8)
		acc.Xor(acc, big.NewInt(int64(b)))
	}
	return int(acc.Mod(acc, big.NewInt(int64(size))).Int64())
}

// SampleIndices samples `number` distinct indices below `size` whose
// reductions modulo `reducedSize` are also distinct, by iterated
// Blake2b over seed and a counter. Collisions modulo the final codeword
// length are rejected to spread entropy across the last layer.
func SampleIndices(seed []byte, size, reducedSize, number int) ([]int, error) {
	if number > reducedSize {
		return nil, fmt.Errorf("cannot sample more indices than available in last codeword; requested: %d, available: %d", number, reducedSize)
	}

	indices := make([]int, 0, number)
	reducedIndices := make(map[int]struct{}, number)
	counter := uint64(0)
	for len(indices) < number {
		var counterBytes [8]byte
		binary.BigEndian.PutUint64(counterBytes[:], counter)
		digest := blake2b.Sum512(append(append([]byte{}, seed...), counterBytes[:]...))
		index := sampleIndex(digest[:], size)
		counter++

		reduced := index % reducedSize
		if _, ok := reducedIndices[reduced]; !ok {
			indices = append(indices, index)
			reducedIndices[reduced] = struct{}{}
		}
	}
	return indices, nil
}

// Commit runs the fold phase: for every round, push the Merkle root of
// the current codeword, sample the folding challenge, and halve the
// codeword by combining each value with its additive-inverse partner.
// The final (shortest committed) codeword is pushed in full. Returns
// all committed codewords, one per round.
//
// The fold of f at challenge alpha is
//
//	f*(omega^(2i)) = 1/2 ((1 + alpha/omega^i) f(omega^i) + (1 - alpha/omega^i) f(-omega^i))
//
// and -omega^i = omega^(n/2+i), so both partners are weighted by
// (1 + alpha/x) at their own domain point and averaged.
func (fri *Fri) Commit(codeword []*core.FieldElement, proofStream *ProofStream) ([][]*core.FieldElement, error) {
	if fri.domainLength != len(codeword) {
		return nil, fmt.Errorf("initial codeword length does not match domain length")
	}

	domain := fri.Domain()
	codewords := make([][]*core.FieldElement, 0, fri.NumRounds())

	for round := 0; round < fri.NumRounds(); round++ {
		codewords = append(codewords, codeword)

		root, err := MerkleCommitCodeword(codeword)
		if err != nil {
			return nil, err
		}
		proofStream.PushMerkleRoot(root)

		challenge, err := proofStream.ProverFiatShamir()
		if err != nil {
			return nil, err
		}
		alpha := fri.field.Sample(challenge)

		weights := make([]*core.FieldElement, len(codeword))
		for i, word := range codeword {
			ratio, err := alpha.Div(domain[i])
			if err != nil {
				return nil, err
			}
			weights[i] = ratio.Add(fri.field.One()).Mul(word)
		}

		halved := make([]*core.FieldElement, 0, len(domain)/2)
		for i := 0; i < len(domain); i += 2 {
			halved = append(halved, domain[i])
		}
		domain = halved

		two := fri.field.NewElementFromInt64(2)
		n := len(domain)
		folded := make([]*core.FieldElement, n)
		for i := 0; i < n; i++ {
			folded[i], err = weights[i].Add(weights[n+i]).Div(two)
			if err != nil {
				return nil, err
			}
		}
		codeword = folded
	}

	proofStream.PushCodeword(codewords[len(codewords)-1])
	return codewords, nil
}

// Query pushes, for every index, the colinearity record for the
// current/next codeword pair: the three values
//
//	A = (omega^i, f(omega^i))
//	B = (omega^(n/2+i), f(omega^(n/2+i)))
//	C = (alpha, f*(omega^(2i)))
//
// together with the three authentication paths. A and C share the index
// i while B is offset by n/2 because -1 = omega^(n/2).
func (fri *Fri) Query(currentCodeword, nextCodeword []*core.FieldElement, cIndices []int, proofStream *ProofStream) error {
	half := len(currentCodeword) / 2
	for _, i := range cIndices {
		aPath, err := MerkleOpenCodeword(i, currentCodeword)
		if err != nil {
			return err
		}
		bPath, err := MerkleOpenCodeword(i+half, currentCodeword)
		if err != nil {
			return err
		}
		cPath, err := MerkleOpenCodeword(i, nextCodeword)
		if err != nil {
			return err
		}
		proofStream.PushColinearityCheck(&ColinearityCheck{
			AY:    currentCodeword[i].Bytes(),
			BY:    currentCodeword[i+half].Bytes(),
			CY:    nextCodeword[i].Bytes(),
			APath: aPath,
			BPath: bPath,
			CPath: cPath,
		})
	}
	return nil
}

// Prove commits the codeword and pushes the colinearity records for
// every round, returning the sampled top-level indices
func (fri *Fri) Prove(codeword []*core.FieldElement, proofStream *ProofStream) ([]int, error) {
	codewords, err := fri.Commit(codeword, proofStream)
	if err != nil {
		return nil, err
	}

	seed, err := proofStream.ProverFiatShamir()
	if err != nil {
		return nil, err
	}
	topLevelIndices, err := SampleIndices(
		seed,
		len(codewords[0])/2,
		len(codewords[len(codewords)-1]),
		fri.numColinearityTests,
	)
	if err != nil {
		return nil, err
	}

	indices := append([]int{}, topLevelIndices...)
	for round := 0; round+1 < len(codewords); round++ {
		if err := fri.Query(codewords[round], codewords[round+1], indices, proofStream); err != nil {
			return nil, err
		}
		for j, index := range indices {
			indices[j] = index % (len(codewords[round+1]) / 2)
		}
	}

	return topLevelIndices, nil
}

// Verify walks the transcript in the prover's order, recomputing every
// challenge from the consumed prefix: pull the round roots, pull and
// check the final codeword, re-derive the query indices, and check
// colinearity and authentication paths for every round. Returns the
// top-layer (index, value) pairs as evidence for the caller.
func (fri *Fri) Verify(proofStream *ProofStream) ([]IndexedValue, error) {
	numRounds := fri.NumRounds()

	roots := make([][]byte, 0, numRounds)
	alphas := make([]*core.FieldElement, 0, numRounds)
	for round := 0; round < numRounds; round++ {
		root, err := proofStream.PullMerkleRoot()
		if err != nil {
			return nil, err
		}
		challenge, err := proofStream.VerifierFiatShamir()
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
		alphas = append(alphas, fri.field.Sample(challenge))
	}

	lastCodeword, err := proofStream.PullCodeword(fri.field)
	if err != nil {
		return nil, err
	}

	lastRoot, err := MerkleCommitCodeword(lastCodeword)
	if err != nil || !bytes.Equal(roots[numRounds-1], lastRoot) {
		return nil, friError(FriMalformedLastCodeword, "last codeword is not well formed")
	}

	// Commit halves the domain by stride 2, so every layer keeps the
	// offset and only omega is squared from one round to the next
	lastOmega := fri.omega.ExpInt(1 << (numRounds - 1))
	lastOffset := fri.offset
	if !lastOmega.ExpInt(len(lastCodeword)).IsOne() {
		return nil, friError(FriMalformedLastCodeword, "omega does not have right order")
	}

	lastDomain := make([]*core.FieldElement, len(lastCodeword))
	point := lastOffset
	for i := range lastDomain {
		lastDomain[i] = point
		point = point.Mul(lastOmega)
	}
	interpolant, err := core.Interpolate(fri.field, lastDomain, lastCodeword)
	if err != nil {
		return nil, friError(FriMalformedLastCodeword, "cannot interpolate last codeword: %v", err)
	}
	if interpolant.Degree() > len(lastCodeword)/fri.expansionFactor-1 {
		return nil, friError(FriHighDegreeLastCodeword, "last codeword does not correspond to polynomial of low enough degree")
	}

	seed, err := proofStream.VerifierFiatShamir()
	if err != nil {
		return nil, err
	}
	topLevelIndices, err := SampleIndices(
		seed,
		fri.domainLength>>1,
		fri.domainLength>>(numRounds-1),
		fri.numColinearityTests,
	)
	if err != nil {
		return nil, err
	}

	omega := fri.omega
	offset := fri.offset
	domainLength := fri.domainLength
	var polynomialValues []IndexedValue

	for round := 0; round < numRounds-1; round++ {
		cIndices := make([]int, len(topLevelIndices))
		bIndices := make([]int, len(topLevelIndices))
		for j, index := range topLevelIndices {
			cIndices[j] = index % (domainLength / 2)
			bIndices[j] = cIndices[j] + domainLength/2
		}
		aIndices := cIndices

		for s := 0; s < fri.numColinearityTests; s++ {
			check, err := proofStream.PullColinearityCheck()
			if err != nil {
				return nil, err
			}
			ay := fri.field.Sample(check.AY)
			by := fri.field.Sample(check.BY)
			cy := fri.field.Sample(check.CY)

			ax := offset.Mul(omega.ExpInt(aIndices[s]))
			bx := offset.Mul(omega.ExpInt(bIndices[s]))
			cx := alphas[round]

			if !core.IsColinear(fri.field, []core.Point{{X: ax, Y: ay}, {X: bx, Y: by}, {X: cx, Y: cy}}) {
				return nil, friError(FriColinearityFailure, "colinearity check failure")
			}

			if ok, err := core.MerkleVerify(roots[round], aIndices[s], check.APath, ay); err != nil || !ok {
				return nil, friError(FriMerklePathFailure, "merkle authentication path verification fails for a")
			}
			if ok, err := core.MerkleVerify(roots[round], bIndices[s], check.BPath, by); err != nil || !ok {
				return nil, friError(FriMerklePathFailure, "merkle authentication path verification fails for b")
			}
			if ok, err := core.MerkleVerify(roots[round+1], cIndices[s], check.CPath, cy); err != nil || !ok {
				return nil, friError(FriMerklePathFailure, "merkle authentication path verification fails for c")
			}

			if round == 0 {
				polynomialValues = append(polynomialValues,
					IndexedValue{Index: aIndices[s], Value: ay},
					IndexedValue{Index: bIndices[s], Value: by},
				)
			}
		}

		omega = omega.Mul(omega)
		domainLength /= 2
	}

	return polynomialValues, nil
}

// MerkleCommitCodeword commits to a codeword of field elements
func MerkleCommitCodeword(codeword []*core.FieldElement) ([]byte, error) {
	return core.MerkleCommit(codewordLeaves(codeword))
}

// MerkleOpenCodeword opens one position of a codeword of field elements
func MerkleOpenCodeword(index int, codeword []*core.FieldElement) ([][]byte, error) {
	return core.MerkleOpen(index, codewordLeaves(codeword))
}

func codewordLeaves(codeword []*core.FieldElement) []core.Byteser {
	leaves := make([]core.Byteser, len(codeword))
	for i, word := range codeword {
		leaves[i] = word
	}
	return leaves
}
