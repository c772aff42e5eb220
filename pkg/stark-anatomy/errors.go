package starkanatomy

import (
	"errors"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/protocols"
)

// ErrorCode classifies a failure of the proof system
type ErrorCode int

const (
	// ErrUnknown represents an unclassified error
	ErrUnknown ErrorCode = iota

	// ErrInvalidArgument: a parameter violates a stated precondition
	ErrInvalidArgument

	// ErrArithmetic: division by zero or inversion of zero in the field
	ErrArithmetic

	// ErrProofStream: the transcript was exhausted or malformed
	ErrProofStream

	// ErrFRIFailure: the FRI low-degree test rejected the proof
	ErrFRIFailure

	// ErrVerificationFailure: a degree or combination mismatch at a
	// queried index
	ErrVerificationFailure
)

// FriFailureReason re-exports the FRI rejection reasons
type FriFailureReason = protocols.FriFailureReason

const (
	FriMalformedLastCodeword  = protocols.FriMalformedLastCodeword
	FriHighDegreeLastCodeword = protocols.FriHighDegreeLastCodeword
	FriColinearityFailure     = protocols.FriColinearityFailure
	FriMerklePathFailure      = protocols.FriMerklePathFailure
)

// Classify maps an error returned by the prover or verifier to an
// error code: FRI rejections to ErrFRIFailure, transcript errors to
// ErrProofStream, and every other non-nil error to
// ErrVerificationFailure. It never returns ErrInvalidArgument or
// ErrArithmetic; a nil error yields ErrUnknown.
func Classify(err error) ErrorCode {
	if err == nil {
		return ErrUnknown
	}
	var friErr protocols.FriError
	if errors.As(err, &friErr) {
		return ErrFRIFailure
	}
	var psErr protocols.ProofStreamError
	if errors.As(err, &psErr) {
		return ErrProofStream
	}
	return ErrVerificationFailure
}
