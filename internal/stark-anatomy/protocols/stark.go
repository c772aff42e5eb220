package protocols

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/utils"
)

// DefaultTransitionConstraintsDegree is the maximum transition
// constraint degree assumed when deriving the omicron domain
const DefaultTransitionConstraintsDegree = 2

// BoundaryConstraint pins register Register to Value at row Cycle of
// the trace
type BoundaryConstraint struct {
	Cycle    int
	Register int
	Value    *core.FieldElement
}

// Stark holds the immutable derived parameters of one proof system
// instance and orchestrates randomization, interpolation, quotienting,
// the nonlinear combination, FRI and the authenticated openings.
type Stark struct {
	field                 *core.Field
	expansionFactor       int
	numColinearityChecks  int
	securityLevel         int
	numRandomizers        int
	numRegisters          int
	originalTraceLength   int
	randomizedTraceLength int
	omicronDomainLength   int
	friDomainLength       int

	generator     *core.FieldElement
	omega         *core.FieldElement
	omicron       *core.FieldElement
	omicronDomain []*core.FieldElement

	fri *Fri

	// random feeds the trace randomizers and the randomizer
	// polynomial; injected so proofs are reproducible under a fixed
	// tape
	random io.Reader
}

// Preprocessed is the public (polynomial, codeword, root) triple of the
// transition zerofier, reusable across proofs with the same parameters
type Preprocessed struct {
	TransitionZerofier         *core.Polynomial
	TransitionZerofierCodeword []*core.FieldElement
	TransitionZerofierRoot     []byte
}

// NewStark validates the parameters and derives the proof system
// instance. The random source may be nil, in which case crypto/rand is
// used.
func NewStark(
	field *core.Field,
	expansionFactor int,
	numColinearityChecks int,
	securityLevel int,
	numRegisters int,
	numCycles int,
	transitionConstraintsDegree int,
	random io.Reader,
) (*Stark, error) {
	if field.Modulus().BitLen() < securityLevel {
		return nil, fmt.Errorf("p must have at least as many bits as security level")
	}
	if !utils.IsPowerOfTwo(expansionFactor) {
		return nil, fmt.Errorf("expansion factor must be a power of 2")
	}
	if expansionFactor < 4 {
		return nil, fmt.Errorf("expansion factor must be 4 or greater")
	}
	if numColinearityChecks*2 < securityLevel {
		return nil, fmt.Errorf("number of colinearity checks must be at least half of security level")
	}
	if numRegisters < 1 {
		return nil, fmt.Errorf("number of registers must be positive")
	}
	if numCycles < 1 {
		return nil, fmt.Errorf("number of cycles must be positive")
	}
	if transitionConstraintsDegree < 1 {
		return nil, fmt.Errorf("transition constraints degree must be positive")
	}
	if random == nil {
		random = rand.Reader
	}

	s := &Stark{
		field:                field,
		expansionFactor:      expansionFactor,
		numColinearityChecks: numColinearityChecks,
		securityLevel:        securityLevel,
		numRandomizers:       4 * numColinearityChecks,
		numRegisters:         numRegisters,
		originalTraceLength:  numCycles,
		random:               random,
	}
	s.randomizedTraceLength = s.originalTraceLength + s.numRandomizers
	s.omicronDomainLength = utils.NextPowerOfTwo(s.randomizedTraceLength * transitionConstraintsDegree)
	s.friDomainLength = s.omicronDomainLength * expansionFactor

	var err error
	if s.generator, err = field.Generator(); err != nil {
		return nil, err
	}
	if s.omega, err = field.PrimitiveNthRoot(s.friDomainLength); err != nil {
		return nil, err
	}
	if s.omicron, err = field.PrimitiveNthRoot(s.omicronDomainLength); err != nil {
		return nil, err
	}

	s.omicronDomain = make([]*core.FieldElement, s.omicronDomainLength)
	point := field.One()
	for i := range s.omicronDomain {
		s.omicronDomain[i] = point
		point = point.Mul(s.omicron)
	}

	if s.fri, err = NewFri(s.generator, s.omega, s.friDomainLength, expansionFactor, numColinearityChecks); err != nil {
		return nil, err
	}
	return s, nil
}

// Field returns the field the instance works over
func (s *Stark) Field() *core.Field {
	return s.field
}

// Omicron returns the generator of the trace evaluation subgroup
func (s *Stark) Omicron() *core.FieldElement {
	return s.omicron
}

// Omega returns the generator of the FRI evaluation subgroup
func (s *Stark) Omega() *core.FieldElement {
	return s.omega
}

// Preprocess computes the transition zerofier, its codeword on the FRI
// coset, and the codeword's Merkle root. The triple is public and
// shared between prover and verifier.
func (s *Stark) Preprocess() (*Preprocessed, error) {
	transitionZerofier, err := core.FastZerofier(
		s.omicronDomain[:s.originalTraceLength-1],
		s.omicron,
		s.omicronDomainLength,
	)
	if err != nil {
		return nil, err
	}
	codeword, err := core.FastCosetEvaluate(transitionZerofier, s.generator, s.omega, s.friDomainLength)
	if err != nil {
		return nil, err
	}
	root, err := MerkleCommitCodeword(codeword)
	if err != nil {
		return nil, err
	}
	return &Preprocessed{
		TransitionZerofier:         transitionZerofier,
		TransitionZerofierCodeword: codeword,
		TransitionZerofierRoot:     root,
	}, nil
}

// TransitionDegreeBounds computes, for every transition constraint, the
// degree it reaches when evaluated over trace polynomials: the maximum
// over its monomials of the inner product of the exponent vector with
// the point degrees [1, rt-1, ..., rt-1]
func (s *Stark) TransitionDegreeBounds(transitionConstraints []*core.MPolynomial) []int {
	pointDegrees := make([]int, 1+2*s.numRegisters)
	pointDegrees[0] = 1
	for i := 1; i < len(pointDegrees); i++ {
		pointDegrees[i] = s.randomizedTraceLength - 1
	}

	bounds := make([]int, len(transitionConstraints))
	for a, constraint := range transitionConstraints {
		maxDegree := 0
		constraint.Terms(func(exponents []int, _ *core.FieldElement) {
			degree := 0
			for i, e := range exponents {
				degree += e * pointDegrees[i]
			}
			if degree > maxDegree {
				maxDegree = degree
			}
		})
		bounds[a] = maxDegree
	}
	return bounds
}

// TransitionQuotientDegreeBounds subtracts the transition zerofier
// degree from every transition degree bound
func (s *Stark) TransitionQuotientDegreeBounds(transitionConstraints []*core.MPolynomial) []int {
	bounds := s.TransitionDegreeBounds(transitionConstraints)
	for i, d := range bounds {
		bounds[i] = d - (s.originalTraceLength - 1)
	}
	return bounds
}

// MaxDegree returns the smallest value of the form 2^k - 1 at least the
// maximum transition quotient degree bound; this is the shared target
// degree every term of the combination is shifted to
func (s *Stark) MaxDegree(transitionConstraints []*core.MPolynomial) int {
	md := 0
	for _, d := range s.TransitionQuotientDegreeBounds(transitionConstraints) {
		if d > md {
			md = d
		}
	}
	return 1<<bits.Len(uint(md)) - 1
}

// BoundaryZerofiers computes, per register, the polynomial vanishing on
// the omicron powers of that register's boundary cycles
func (s *Stark) BoundaryZerofiers(boundaryConstraints []BoundaryConstraint) []*core.Polynomial {
	zerofiers := make([]*core.Polynomial, s.numRegisters)
	for r := 0; r < s.numRegisters; r++ {
		var points []*core.FieldElement
		for _, condition := range boundaryConstraints {
			if condition.Register == r {
				points = append(points, s.omicron.ExpInt(condition.Cycle))
			}
		}
		zerofiers[r] = core.ZerofierDomain(s.field, points)
	}
	return zerofiers
}

// BoundaryInterpolants computes, per register, the polynomial passing
// through that register's boundary points
func (s *Stark) BoundaryInterpolants(boundaryConstraints []BoundaryConstraint) ([]*core.Polynomial, error) {
	interpolants := make([]*core.Polynomial, s.numRegisters)
	for r := 0; r < s.numRegisters; r++ {
		var domain, values []*core.FieldElement
		for _, condition := range boundaryConstraints {
			if condition.Register == r {
				domain = append(domain, s.omicron.ExpInt(condition.Cycle))
				values = append(values, condition.Value)
			}
		}
		interpolant, err := core.Interpolate(s.field, domain, values)
		if err != nil {
			return nil, fmt.Errorf("register %d: %w", r, err)
		}
		interpolants[r] = interpolant
	}
	return interpolants, nil
}

// BoundaryQuotientDegreeBounds computes, per register, the randomized
// trace degree minus the boundary zerofier degree
func (s *Stark) BoundaryQuotientDegreeBounds(randomizedTraceLength int, boundaryConstraints []BoundaryConstraint) []int {
	randomizedTraceDegree := randomizedTraceLength - 1
	zerofiers := s.BoundaryZerofiers(boundaryConstraints)
	bounds := make([]int, len(zerofiers))
	for i, zerofier := range zerofiers {
		bounds[i] = randomizedTraceDegree - zerofier.Degree()
	}
	return bounds
}

// SampleWeights derives the combination weights from a Fiat-Shamir
// seed, one Blake2b evaluation per weight
func (s *Stark) SampleWeights(number int, randomness []byte) []*core.FieldElement {
	weights := make([]*core.FieldElement, number)
	for i := range weights {
		var counter [8]byte
		binary.BigEndian.PutUint64(counter[:], uint64(i))
		digest := blake2b.Sum512(append(append([]byte{}, randomness...), counter[:]...))
		weights[i] = s.field.Sample(digest[:])
	}
	return weights
}

// Prove generates a proof that the trace satisfies the transition and
// boundary constraints. The transition zerofier and its codeword come
// from Preprocess. A nil proof stream starts an empty transcript;
// passing one allows the caller to bind extra context into the
// Fiat-Shamir challenges.
func (s *Stark) Prove(
	trace [][]*core.FieldElement,
	transitionConstraints []*core.MPolynomial,
	boundaryConstraints []BoundaryConstraint,
	preprocessed *Preprocessed,
	proofStream *ProofStream,
) ([]byte, error) {
	if preprocessed == nil {
		return nil, fmt.Errorf("missing preprocessed transition zerofier")
	}
	if proofStream == nil {
		proofStream = NewProofStream()
	}
	for c, row := range trace {
		if len(row) != s.numRegisters {
			return nil, fmt.Errorf("trace row %d has %d registers, expected %d", c, len(row), s.numRegisters)
		}
	}

	// concatenate randomizers
	extended := make([][]*core.FieldElement, 0, len(trace)+s.numRandomizers)
	extended = append(extended, trace...)
	for i := 0; i < s.numRandomizers; i++ {
		row := make([]*core.FieldElement, s.numRegisters)
		for r := range row {
			element, err := s.field.RandomElement(s.random)
			if err != nil {
				return nil, err
			}
			row[r] = element
		}
		extended = append(extended, row)
	}

	// interpolate the columns over the omicron domain
	traceDomain := s.omicronDomain[:len(extended)]
	tracePolynomials := make([]*core.Polynomial, s.numRegisters)
	for r := 0; r < s.numRegisters; r++ {
		column := make([]*core.FieldElement, len(extended))
		for c := range extended {
			column[c] = extended[c][r]
		}
		polynomial, err := core.FastInterpolate(traceDomain, column, s.omicron, s.omicronDomainLength)
		if err != nil {
			return nil, err
		}
		tracePolynomials[r] = polynomial
	}

	// subtract boundary interpolants and divide out boundary zerofiers
	interpolants, err := s.BoundaryInterpolants(boundaryConstraints)
	if err != nil {
		return nil, err
	}
	zerofiers := s.BoundaryZerofiers(boundaryConstraints)
	boundaryQuotients := make([]*core.Polynomial, s.numRegisters)
	for r := 0; r < s.numRegisters; r++ {
		quotient, err := tracePolynomials[r].Sub(interpolants[r]).Div(zerofiers[r])
		if err != nil {
			return nil, fmt.Errorf("boundary quotient %d: %w", r, err)
		}
		boundaryQuotients[r] = quotient
	}

	// commit to boundary quotients
	boundaryQuotientCodewords := make([][]*core.FieldElement, s.numRegisters)
	for r := 0; r < s.numRegisters; r++ {
		codeword, err := core.FastCosetEvaluate(boundaryQuotients[r], s.generator, s.omega, s.friDomainLength)
		if err != nil {
			return nil, err
		}
		boundaryQuotientCodewords[r] = codeword
		root, err := MerkleCommitCodeword(codeword)
		if err != nil {
			return nil, err
		}
		proofStream.PushMerkleRoot(root)
	}

	// symbolically evaluate transition constraints over
	// [x, t_0(x), ..., t_0(omicron x), ...]
	point := make([]*core.Polynomial, 0, 1+2*s.numRegisters)
	point = append(point, core.X(s.field))
	point = append(point, tracePolynomials...)
	for _, tp := range tracePolynomials {
		point = append(point, tp.Scale(s.omicron))
	}
	transitionPolynomials := make([]*core.Polynomial, len(transitionConstraints))
	for i, constraint := range transitionConstraints {
		polynomial, err := constraint.EvaluateSymbolic(point)
		if err != nil {
			return nil, err
		}
		transitionPolynomials[i] = polynomial
	}

	// divide out the transition zerofier
	transitionQuotients := make([]*core.Polynomial, len(transitionPolynomials))
	for i, tp := range transitionPolynomials {
		quotient, err := core.FastCosetDivide(tp, preprocessed.TransitionZerofier, s.generator, s.omicron, s.omicronDomainLength)
		if err != nil {
			return nil, fmt.Errorf("transition quotient %d: %w", i, err)
		}
		transitionQuotients[i] = quotient
	}

	// commit to the randomizer polynomial
	maxDegree := s.MaxDegree(transitionConstraints)
	randomizerCoefficients := make([]*core.FieldElement, maxDegree+1)
	for i := range randomizerCoefficients {
		element, err := s.field.RandomElement(s.random)
		if err != nil {
			return nil, err
		}
		randomizerCoefficients[i] = element
	}
	randomizerPolynomial := core.NewPolynomial(s.field, randomizerCoefficients)
	randomizerCodeword, err := core.FastCosetEvaluate(randomizerPolynomial, s.generator, s.omega, s.friDomainLength)
	if err != nil {
		return nil, err
	}
	randomizerRoot, err := MerkleCommitCodeword(randomizerCodeword)
	if err != nil {
		return nil, err
	}
	proofStream.PushMerkleRoot(randomizerRoot)

	// sample weights: one for the randomizer, two per transition
	// quotient, two per boundary quotient
	seed, err := proofStream.ProverFiatShamir()
	if err != nil {
		return nil, err
	}
	weights := s.SampleWeights(1+2*len(transitionQuotients)+2*len(boundaryQuotients), seed)

	transitionQuotientDegreeBounds := s.TransitionQuotientDegreeBounds(transitionConstraints)
	for i, quotient := range transitionQuotients {
		if quotient.Degree() != transitionQuotientDegreeBounds[i] {
			return nil, fmt.Errorf("transition quotient degrees do not match with expectation")
		}
	}

	// compute the terms of the nonlinear combination polynomial: every
	// term is paired with a shifted twin of the common maximum degree,
	// so one low-degree test covers every individual bound
	x := core.X(s.field)
	boundaryQuotientDegreeBounds := s.BoundaryQuotientDegreeBounds(len(extended), boundaryConstraints)
	terms := make([]*core.Polynomial, 0, 1+2*len(transitionQuotients)+2*s.numRegisters)
	terms = append(terms, randomizerPolynomial)
	for i, quotient := range transitionQuotients {
		terms = append(terms, quotient)
		shift := maxDegree - transitionQuotientDegreeBounds[i]
		terms = append(terms, x.Pow(shift).Mul(quotient))
	}
	for r := 0; r < s.numRegisters; r++ {
		terms = append(terms, boundaryQuotients[r])
		shift := maxDegree - boundaryQuotientDegreeBounds[r]
		terms = append(terms, x.Pow(shift).Mul(boundaryQuotients[r]))
	}

	combination := core.ZeroPolynomial(s.field)
	for i, term := range terms {
		combination = combination.Add(term.MulScalar(weights[i]))
	}
	combinedCodeword, err := core.FastCosetEvaluate(combination, s.generator, s.omega, s.friDomainLength)
	if err != nil {
		return nil, err
	}

	// prove low degree of the combination and collect the query indices
	indices, err := s.fri.Prove(combinedCodeword, proofStream)
	if err != nil {
		return nil, err
	}

	// the verifier needs the current and next rows at every index, and
	// the FRI partner of each
	duplicatedIndices := make([]int, 0, 2*len(indices))
	duplicatedIndices = append(duplicatedIndices, indices...)
	for _, i := range indices {
		duplicatedIndices = append(duplicatedIndices, (i+s.expansionFactor)%s.friDomainLength)
	}
	quadrupledIndices := make([]int, 0, 2*len(duplicatedIndices))
	quadrupledIndices = append(quadrupledIndices, duplicatedIndices...)
	for _, i := range duplicatedIndices {
		quadrupledIndices = append(quadrupledIndices, (i+s.friDomainLength/2)%s.friDomainLength)
	}
	sort.Ints(quadrupledIndices)

	// open the indicated positions in the boundary quotient codewords,
	// the randomizer codeword and the transition zerofier codeword
	openCodeword := func(codeword []*core.FieldElement) error {
		for _, i := range quadrupledIndices {
			proofStream.PushLeaf(codeword[i])
			path, err := MerkleOpenCodeword(i, codeword)
			if err != nil {
				return err
			}
			proofStream.PushPath(path)
		}
		return nil
	}
	for _, codeword := range boundaryQuotientCodewords {
		if err := openCodeword(codeword); err != nil {
			return nil, err
		}
	}
	if err := openCodeword(randomizerCodeword); err != nil {
		return nil, err
	}
	if err := openCodeword(preprocessed.TransitionZerofierCodeword); err != nil {
		return nil, err
	}

	return proofStream.Serialize()
}

// Verify checks a proof against the constraints and the transition
// zerofier root. Every failure, including malformed transcripts, is a
// negative verdict with the reason as error.
func (s *Stark) Verify(
	proof []byte,
	transitionConstraints []*core.MPolynomial,
	boundaryConstraints []BoundaryConstraint,
	transitionZerofierRoot []byte,
	proofStream *ProofStream,
) (bool, error) {
	if err := s.verify(proof, transitionConstraints, boundaryConstraints, transitionZerofierRoot, proofStream); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Stark) verify(
	proof []byte,
	transitionConstraints []*core.MPolynomial,
	boundaryConstraints []BoundaryConstraint,
	transitionZerofierRoot []byte,
	proofStream *ProofStream,
) error {
	// infer the trace length from the boundary conditions
	if len(boundaryConstraints) == 0 {
		return fmt.Errorf("cannot verify without boundary constraints")
	}
	originalTraceLength := 0
	for _, condition := range boundaryConstraints {
		if condition.Cycle+1 > originalTraceLength {
			originalTraceLength = condition.Cycle + 1
		}
	}
	randomizedTraceLength := originalTraceLength + s.numRandomizers

	if proofStream == nil {
		proofStream = NewProofStream()
	}
	if err := proofStream.LoadItems(proof); err != nil {
		return err
	}

	// get the Merkle roots of the boundary quotient codewords and of
	// the randomizer polynomial
	boundaryQuotientRoots := make([][]byte, s.numRegisters)
	for r := range boundaryQuotientRoots {
		root, err := proofStream.PullMerkleRoot()
		if err != nil {
			return err
		}
		boundaryQuotientRoots[r] = root
	}
	randomizerRoot, err := proofStream.PullMerkleRoot()
	if err != nil {
		return err
	}

	// sample the combination weights from the same prefix the prover
	// committed to
	seed, err := proofStream.VerifierFiatShamir()
	if err != nil {
		return err
	}
	weights := s.SampleWeights(1+2*len(transitionConstraints)+2*s.numRegisters, seed)

	// verify low degree of the combination polynomial
	polynomialValues, err := s.fri.Verify(proofStream)
	if err != nil {
		return err
	}
	sort.Slice(polynomialValues, func(i, j int) bool {
		return polynomialValues[i].Index < polynomialValues[j].Index
	})
	indices := make([]int, len(polynomialValues))
	values := make([]*core.FieldElement, len(polynomialValues))
	for i, iv := range polynomialValues {
		indices[i] = iv.Index
		values[i] = iv.Value
	}

	duplicatedIndices := make([]int, 0, 2*len(indices))
	duplicatedIndices = append(duplicatedIndices, indices...)
	for _, i := range indices {
		duplicatedIndices = append(duplicatedIndices, (i+s.expansionFactor)%s.friDomainLength)
	}
	sort.Ints(duplicatedIndices)

	// read and verify the opened leaves of every committed codeword
	pullOpenings := func(root []byte) (map[int]*core.FieldElement, error) {
		leafs := make(map[int]*core.FieldElement, len(duplicatedIndices))
		for _, i := range duplicatedIndices {
			leaf, err := proofStream.PullLeaf(s.field)
			if err != nil {
				return nil, err
			}
			path, err := proofStream.PullPath()
			if err != nil {
				return nil, err
			}
			ok, err := core.MerkleVerify(root, i, path, leaf)
			if err != nil || !ok {
				return nil, fmt.Errorf("merkle authentication path verification fails for leaf %d", i)
			}
			leafs[i] = leaf
		}
		return leafs, nil
	}

	boundaryQuotientLeafs := make([]map[int]*core.FieldElement, s.numRegisters)
	for r := 0; r < s.numRegisters; r++ {
		if boundaryQuotientLeafs[r], err = pullOpenings(boundaryQuotientRoots[r]); err != nil {
			return fmt.Errorf("boundary quotient %d: %w", r, err)
		}
	}
	randomizerLeafs, err := pullOpenings(randomizerRoot)
	if err != nil {
		return fmt.Errorf("randomizer: %w", err)
	}
	transitionZerofierLeafs, err := pullOpenings(transitionZerofierRoot)
	if err != nil {
		return fmt.Errorf("transition zerofier: %w", err)
	}

	zerofiers := s.BoundaryZerofiers(boundaryConstraints)
	interpolants, err := s.BoundaryInterpolants(boundaryConstraints)
	if err != nil {
		return err
	}
	transitionQuotientDegreeBounds := s.TransitionQuotientDegreeBounds(transitionConstraints)
	boundaryQuotientDegreeBounds := s.BoundaryQuotientDegreeBounds(randomizedTraceLength, boundaryConstraints)
	maxDegree := s.MaxDegree(transitionConstraints)

	// verify the leaves of the combination polynomial
	for i, currentIndex := range indices {
		domainCurrentIndex := s.generator.Mul(s.omega.ExpInt(currentIndex))
		nextIndex := (currentIndex + s.expansionFactor) % s.friDomainLength
		domainNextIndex := s.generator.Mul(s.omega.ExpInt(nextIndex))

		// reconstruct the trace values from the boundary quotient
		// openings: t_s(x) = q_s(x) * z_s(x) + b_s(x)
		currentTrace := make([]*core.FieldElement, s.numRegisters)
		nextTrace := make([]*core.FieldElement, s.numRegisters)
		for r := 0; r < s.numRegisters; r++ {
			currentTrace[r] = boundaryQuotientLeafs[r][currentIndex].
				Mul(zerofiers[r].Eval(domainCurrentIndex)).
				Add(interpolants[r].Eval(domainCurrentIndex))
			nextTrace[r] = boundaryQuotientLeafs[r][nextIndex].
				Mul(zerofiers[r].Eval(domainNextIndex)).
				Add(interpolants[r].Eval(domainNextIndex))
		}

		point := make([]*core.FieldElement, 0, 1+2*s.numRegisters)
		point = append(point, domainCurrentIndex)
		point = append(point, currentTrace...)
		point = append(point, nextTrace...)

		terms := make([]*core.FieldElement, 0, 1+2*len(transitionConstraints)+2*s.numRegisters)
		terms = append(terms, randomizerLeafs[currentIndex])
		for c, constraint := range transitionConstraints {
			value, err := constraint.Evaluate(point)
			if err != nil {
				return err
			}
			quotient, err := value.Div(transitionZerofierLeafs[currentIndex])
			if err != nil {
				return err
			}
			terms = append(terms, quotient)
			shift := maxDegree - transitionQuotientDegreeBounds[c]
			terms = append(terms, quotient.Mul(domainCurrentIndex.ExpInt(shift)))
		}
		for r := 0; r < s.numRegisters; r++ {
			bqv := boundaryQuotientLeafs[r][currentIndex]
			terms = append(terms, bqv)
			shift := maxDegree - boundaryQuotientDegreeBounds[r]
			terms = append(terms, bqv.Mul(domainCurrentIndex.ExpInt(shift)))
		}

		combination := s.field.Zero()
		for j, term := range terms {
			combination = combination.Add(term.Mul(weights[j]))
		}

		if !combination.Equal(values[i]) {
			return fmt.Errorf("combination mismatch at index %d", currentIndex)
		}
	}

	return nil
}
