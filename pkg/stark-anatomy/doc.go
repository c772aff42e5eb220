// Package starkanatomy provides a STARK prover and verifier over a
// single 128-bit prime field.
//
// A STARK (Scalable Transparent ARgument of Knowledge) attests to the
// correct execution of an algebraic execution trace against declared
// transition and boundary constraints. The proof system is
// non-interactive via the Fiat-Shamir transform and publicly
// verifiable; no trusted setup is required.
//
// # Components
//
// - Prime field arithmetic over p = 1 + 407 * 2^119
// - Dense univariate and sparse multivariate polynomial algebra
// - An NTT toolkit: coset evaluation, subproduct-tree zerofiers and
// batch evaluation, divide-and-conquer interpolation, coset division
// - Merkle commitments with Blake2b-512 over field-element codewords
// - The FRI low-degree test (fold phase plus colinearity spot checks)
// - A STARK orchestration layer composing the above
//
// # Quick Start
//
// Proving and verifying a Rescue-Prime hash trace:
//
//	stark, err := starkanatomy.NewStark(
//		starkanatomy.DefaultField(), 4, 64, 128, stateWidth, numCycles,
//		starkanatomy.DefaultTransitionConstraintsDegree, nil,
//	)
//	if err != nil {
//		return err
//	}
//	preprocessed, err := stark.Preprocess()
//	if err != nil {
//		return err
//	}
//
//	proof, err := stark.Prove(trace, air, boundary, preprocessed, nil)
//	if err != nil {
//		return err
//	}
//
//	ok, err := stark.Verify(proof, air, boundary,
//		preprocessed.TransitionZerofierRoot, nil)
//
// The trace, the transition constraints (multivariate polynomials over
// 1+2w variables) and the boundary constraints (cycle, register, value)
// come from an external collaborator; the rescue package ships the
// Rescue-Prime example AIR.
package starkanatomy
