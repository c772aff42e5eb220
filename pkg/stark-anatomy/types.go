package starkanatomy

import (
	"io"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/protocols"
)

// Field represents a finite field
type Field = core.Field

// FieldElement represents an element in the finite field
type FieldElement = core.FieldElement

// Polynomial represents a dense univariate polynomial
type Polynomial = core.Polynomial

// MPolynomial represents a sparse multivariate polynomial
type MPolynomial = core.MPolynomial

// ProofStream is the Fiat-Shamir transcript
type ProofStream = protocols.ProofStream

// Fri is the low-degree test
type Fri = protocols.Fri

// Stark is the proof system instance
type Stark = protocols.Stark

// Preprocessed is the public transition zerofier triple
type Preprocessed = protocols.Preprocessed

// BoundaryConstraint pins a register to a value at a trace row
type BoundaryConstraint = protocols.BoundaryConstraint

// DefaultTransitionConstraintsDegree is the assumed maximum transition
// constraint degree
const DefaultTransitionConstraintsDegree = protocols.DefaultTransitionConstraintsDegree

// DefaultField returns the field of order 1 + 407 * 2^119
func DefaultField() *Field {
	return core.DefaultField()
}

// NewStark validates the parameters and derives a proof system
// instance
func NewStark(
	field *Field,
	expansionFactor int,
	numColinearityChecks int,
	securityLevel int,
	numRegisters int,
	numCycles int,
	transitionConstraintsDegree int,
	random io.Reader,
) (*Stark, error) {
	return protocols.NewStark(
		field, expansionFactor, numColinearityChecks, securityLevel,
		numRegisters, numCycles, transitionConstraintsDegree, random,
	)
}

// NewFri validates the parameters and creates a FRI instance
func NewFri(offset, omega *FieldElement, domainLength, expansionFactor, numColinearityTests int) (*Fri, error) {
	return protocols.NewFri(offset, omega, domainLength, expansionFactor, numColinearityTests)
}

// NewProofStream creates a new empty transcript
func NewProofStream() *ProofStream {
	return protocols.NewProofStream()
}
