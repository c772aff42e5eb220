// Package rescue provides the Rescue-Prime hash function together with
// its algebraic execution trace and AIR, the example collaborator that
// feeds the STARK prover, and a signature scheme built on top of it.
package rescue

import (
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/core"
	"github.com/ClementWalter/stark-anatomy/internal/stark-anatomy/protocols"
)

// RescuePrime is the m=2, 27-round, alpha=3 Rescue-Prime permutation
// over the default field, in sponge mode with rate 1 and capacity 1
type RescuePrime struct {
	field    *core.Field
	m        int
	capacity int
	N        int
	alpha    *big.Int
	alphaInv *big.Int

	mds    [][]*core.FieldElement
	mdsInv [][]*core.FieldElement

	// roundConstants holds 2*m*N elements: m injections after each of
	// the two half-rounds of every round
	roundConstants []*core.FieldElement
}

// securityLevel is the targeted security of the permutation, folded
// into the round constant derivation
const securityLevel = 128

// NewRescuePrime constructs the fixed Rescue-Prime instance
func NewRescuePrime() *RescuePrime {
	field := core.DefaultField()
	rp := &RescuePrime{
		field:    field,
		m:        2,
		capacity: 1,
		N:        27,
		alpha:    big.NewInt(3),
	}

	// alpha must be invertible modulo p-1 for the backward half-round
	pMinusOne := new(big.Int).Sub(field.Modulus(), big.NewInt(1))
	rp.alphaInv = new(big.Int).ModInverse(rp.alpha, pMinusOne)

	rp.mds = [][]*core.FieldElement{
		{field.NewElementFromInt64(-3), field.NewElementFromInt64(4)},
		{field.NewElementFromInt64(-12), field.NewElementFromInt64(13)},
	}
	// exact inverse of the 2x2 matrix above: determinant 9
	ninth, err := field.One().Div(field.NewElementFromInt64(9))
	if err != nil {
		panic("9 is not invertible: " + err.Error())
	}
	rp.mdsInv = [][]*core.FieldElement{
		{field.NewElementFromInt64(13).Mul(ninth), field.NewElementFromInt64(-4).Mul(ninth)},
		{field.NewElementFromInt64(12).Mul(ninth), field.NewElementFromInt64(-3).Mul(ninth)},
	}

	rp.roundConstants = deriveRoundConstants(field, rp.m, rp.capacity, rp.N)
	return rp
}

// deriveRoundConstants squeezes the round constants out of SHAKE-256
// of the instance description, following the Rescue-XLIX convention
func deriveRoundConstants(field *core.Field, m, capacity, rounds int) []*core.FieldElement {
	description := fmt.Sprintf("Rescue-XLIX(%s,%d,%d,%d)", field.Modulus().String(), m, capacity, securityLevel)
	shake := sha3.NewShake256()
	shake.Write([]byte(description))

	constants := make([]*core.FieldElement, 2*m*rounds)
	buf := make([]byte, 17)
	for i := range constants {
		if _, err := io.ReadFull(shake, buf); err != nil {
			panic("shake read failed: " + err.Error())
		}
		constants[i] = field.Sample(buf)
	}
	return constants
}

// Field returns the field the permutation works over
func (rp *RescuePrime) Field() *core.Field {
	return rp.field
}

// StateWidth returns the number of registers of the trace
func (rp *RescuePrime) StateWidth() int {
	return rp.m
}

// NumRounds returns the number of rounds; the trace has NumRounds+1
// rows
func (rp *RescuePrime) NumRounds() int {
	return rp.N
}

// applyRound returns the state after one round, leaving the input
// state untouched: power map, MDS mix and constant injection, then the
// inverse power map, MDS mix and the second constant injection
func (rp *RescuePrime) applyRound(state []*core.FieldElement, round int) []*core.FieldElement {
	state = rp.halfRound(state, rp.alpha, rp.roundConstants[2*round*rp.m:])
	return rp.halfRound(state, rp.alphaInv, rp.roundConstants[2*round*rp.m+rp.m:])
}

func (rp *RescuePrime) halfRound(state []*core.FieldElement, power *big.Int, constants []*core.FieldElement) []*core.FieldElement {
	powered := make([]*core.FieldElement, rp.m)
	for i, s := range state {
		powered[i] = s.Exp(power)
	}
	mixed := make([]*core.FieldElement, rp.m)
	for i := 0; i < rp.m; i++ {
		acc := rp.field.Zero()
		for k := 0; k < rp.m; k++ {
			acc = acc.Add(rp.mds[i][k].Mul(powered[k]))
		}
		mixed[i] = acc.Add(constants[i])
	}
	return mixed
}

// Hash absorbs a single field element and squeezes one out
func (rp *RescuePrime) Hash(input *core.FieldElement) *core.FieldElement {
	state := []*core.FieldElement{input, rp.field.Zero()}
	for round := 0; round < rp.N; round++ {
		state = rp.applyRound(state, round)
	}
	return state[0]
}

// Trace records the state before the first round and after every
// round: N+1 rows of m registers
func (rp *RescuePrime) Trace(input *core.FieldElement) [][]*core.FieldElement {
	state := []*core.FieldElement{input, rp.field.Zero()}
	trace := make([][]*core.FieldElement, 0, rp.N+1)
	trace = append(trace, state)
	for round := 0; round < rp.N; round++ {
		state = rp.applyRound(state, round)
		trace = append(trace, state)
	}
	return trace
}

// RoundConstantsPolynomials interpolates the round constants over the
// powers of omicron: for each register, one polynomial through the
// first-half constants and one through the second-half constants,
// lifted to act on the cycle variable
func (rp *RescuePrime) RoundConstantsPolynomials(omicron *core.FieldElement) ([]*core.MPolynomial, []*core.MPolynomial, error) {
	domain := make([]*core.FieldElement, rp.N)
	for r := range domain {
		domain[r] = omicron.ExpInt(r)
	}

	firstStep := make([]*core.MPolynomial, rp.m)
	secondStep := make([]*core.MPolynomial, rp.m)
	for i := 0; i < rp.m; i++ {
		firstValues := make([]*core.FieldElement, rp.N)
		secondValues := make([]*core.FieldElement, rp.N)
		for r := 0; r < rp.N; r++ {
			firstValues[r] = rp.roundConstants[2*r*rp.m+i]
			secondValues[r] = rp.roundConstants[2*r*rp.m+rp.m+i]
		}

		firstInterpolant, err := core.Interpolate(rp.field, domain, firstValues)
		if err != nil {
			return nil, nil, err
		}
		secondInterpolant, err := core.Interpolate(rp.field, domain, secondValues)
		if err != nil {
			return nil, nil, err
		}
		firstStep[i] = core.Lift(firstInterpolant, 0)
		secondStep[i] = core.Lift(secondInterpolant, 0)
	}
	return firstStep, secondStep, nil
}

// TransitionConstraints arithmetizes one round: with mid the state
// after the forward half-round,
//
//	mid = MDS * previous^alpha + C1(x)
//	mid = (MDSinv * (next - C2(x)))^alpha
//
// so each register yields one constraint lhs - rhs over the variables
// (x, previous_state, next_state) that vanishes on consecutive trace
// rows
func (rp *RescuePrime) TransitionConstraints(omicron *core.FieldElement) ([]*core.MPolynomial, error) {
	firstStepConstants, secondStepConstants, err := rp.RoundConstantsPolynomials(omicron)
	if err != nil {
		return nil, err
	}

	variables := core.Variables(1+2*rp.m, rp.field)
	previousState := variables[1 : 1+rp.m]
	nextState := variables[1+rp.m : 1+2*rp.m]
	alpha := int(rp.alpha.Int64())

	air := make([]*core.MPolynomial, 0, rp.m)
	for i := 0; i < rp.m; i++ {
		lhs := core.MPolynomialZero(rp.field)
		for k := 0; k < rp.m; k++ {
			lhs = lhs.Add(core.MPolynomialConstant(rp.mds[i][k]).Mul(previousState[k].Pow(alpha)))
		}
		lhs = lhs.Add(firstStepConstants[i])

		rhs := core.MPolynomialZero(rp.field)
		for k := 0; k < rp.m; k++ {
			rhs = rhs.Add(core.MPolynomialConstant(rp.mdsInv[i][k]).Mul(nextState[k].Sub(secondStepConstants[k])))
		}
		rhs = rhs.Pow(alpha)

		air = append(air, lhs.Sub(rhs))
	}
	return air, nil
}

// BoundaryConstraints pins the capacity register to zero before the
// first round and the rate register to the digest after the last
func (rp *RescuePrime) BoundaryConstraints(output *core.FieldElement) []protocols.BoundaryConstraint {
	return []protocols.BoundaryConstraint{
		{Cycle: 0, Register: 1, Value: rp.field.Zero()},
		{Cycle: rp.N, Register: 0, Value: output},
	}
}
