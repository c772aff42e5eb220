package core

import (
	"fmt"
)

// The NTT toolkit: radix-2 number theoretic transforms plus the
// subproduct-tree algorithms built on them (batch evaluation, batch
// interpolation, zerofiers, coset evaluation and coset division).

// schoolbookThreshold is the degree below which the quadratic
// algorithms beat the transform-based ones
const schoolbookThreshold = 8

// checkRootOrder verifies that root is a primitive root of unity of
// exactly the supplied order
func checkRootOrder(root *FieldElement, order int) error {
	if !root.ExpInt(order).IsOne() {
		return fmt.Errorf("supplied root does not have supplied order")
	}
	if order > 1 && root.ExpInt(order/2).IsOne() {
		return fmt.Errorf("supplied root is not primitive root of supplied order")
	}
	return nil
}

// NTT computes the number theoretic transform of a power-of-two-length
// sequence of field elements: the evaluations of the polynomial with
// the given coefficients on the subgroup generated by root. Uses
// recursive radix-2 decimation in time.
func NTT(root *FieldElement, coefficients []*FieldElement) ([]*FieldElement, error) {
	n := len(coefficients)
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("cannot compute ntt of non-power-of-two sequence")
	}
	if n <= 1 {
		return coefficients, nil
	}

	field := root.Field()
	if !root.ExpInt(n).IsOne() {
		return nil, fmt.Errorf("primitive root must be nth root of unity, where n is len(coefficients)")
	}
	if root.ExpInt(n / 2).IsOne() {
		return nil, fmt.Errorf("primitive root is not primitive nth root of unity, where n is len(coefficients)")
	}

	half := n / 2
	evenCoeffs := make([]*FieldElement, half)
	oddCoeffs := make([]*FieldElement, half)
	for i := 0; i < half; i++ {
		evenCoeffs[i] = coefficients[2*i]
		oddCoeffs[i] = coefficients[2*i+1]
	}

	rootSquared := root.Mul(root)
	evens, err := NTT(rootSquared, evenCoeffs)
	if err != nil {
		return nil, err
	}
	odds, err := NTT(rootSquared, oddCoeffs)
	if err != nil {
		return nil, err
	}

	result := make([]*FieldElement, n)
	power := field.One()
	for i := 0; i < n; i++ {
		if i > 0 {
			power = power.Mul(root)
		}
		result[i] = evens[i%half].Add(power.Mul(odds[i%half]))
	}
	return result, nil
}

// INTT computes the inverse number theoretic transform: the transform
// at the inverse root, with every element divided by the length
func INTT(root *FieldElement, values []*FieldElement) ([]*FieldElement, error) {
	n := len(values)
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("cannot compute intt of non-power-of-two sequence")
	}
	if n == 1 {
		return values, nil
	}

	field := root.Field()
	rootInverse, err := root.Inverse()
	if err != nil {
		return nil, fmt.Errorf("cannot invert root: %w", err)
	}
	transformed, err := NTT(rootInverse, values)
	if err != nil {
		return nil, err
	}

	nInverse, err := field.NewElementFromInt64(int64(n)).Inverse()
	if err != nil {
		return nil, fmt.Errorf("cannot invert length: %w", err)
	}
	result := make([]*FieldElement, n)
	for i, value := range transformed {
		result[i] = value.Mul(nInverse)
	}
	return result, nil
}

// padCoefficients zero-pads a coefficient slice to the given length
func padCoefficients(field *Field, coefficients []*FieldElement, length int) []*FieldElement {
	padded := make([]*FieldElement, length)
	copy(padded, coefficients)
	for i := len(coefficients); i < length; i++ {
		padded[i] = field.Zero()
	}
	return padded
}

// FastMultiply computes the product of two polynomials by transforming
// to point-value form, multiplying elementwise and transforming back.
// The root order must exceed the product degree; the transform length
// is shrunk to the smallest sufficient power of two.
func FastMultiply(lhs, rhs *Polynomial, root *FieldElement, rootOrder int) (*Polynomial, error) {
	if err := checkRootOrder(root, rootOrder); err != nil {
		return nil, err
	}
	if rootOrder <= lhs.Degree()+rhs.Degree() {
		return nil, fmt.Errorf("supplied root order is less than the degree of the product")
	}

	if lhs.IsZero() || rhs.IsZero() {
		return ZeroPolynomial(lhs.Field()), nil
	}

	degree := lhs.Degree() + rhs.Degree()
	if degree < schoolbookThreshold {
		return lhs.Mul(rhs), nil
	}

	field := lhs.Field()
	order := rootOrder
	for degree < order/2 {
		root = root.Mul(root)
		order /= 2
	}

	lhsCodeword, err := NTT(root, padCoefficients(field, lhs.Coefficients(), order))
	if err != nil {
		return nil, err
	}
	rhsCodeword, err := NTT(root, padCoefficients(field, rhs.Coefficients(), order))
	if err != nil {
		return nil, err
	}

	hadamard := make([]*FieldElement, order)
	for i := range hadamard {
		hadamard[i] = lhsCodeword[i].Mul(rhsCodeword[i])
	}

	productCoefficients, err := INTT(root, hadamard)
	if err != nil {
		return nil, err
	}
	return NewPolynomial(field, productCoefficients), nil
}

// FastZerofier computes the vanishing polynomial of a domain with a
// subproduct tree: zerofy both halves, multiply with FastMultiply
func FastZerofier(domain []*FieldElement, root *FieldElement, rootOrder int) (*Polynomial, error) {
	if err := checkRootOrder(root, rootOrder); err != nil {
		return nil, err
	}

	field := root.Field()
	if len(domain) == 0 {
		return ZeroPolynomial(field), nil
	}
	if len(domain) == 1 {
		return NewPolynomial(field, []*FieldElement{domain[0].Neg(), field.One()}), nil
	}

	half := len(domain) / 2
	left, err := FastZerofier(domain[:half], root, rootOrder)
	if err != nil {
		return nil, err
	}
	right, err := FastZerofier(domain[half:], root, rootOrder)
	if err != nil {
		return nil, err
	}
	return FastMultiply(left, right, root, rootOrder)
}

// FastEvaluate evaluates a polynomial on a domain with a subproduct
// tree: reduce modulo the zerofier of each half, then recurse
func FastEvaluate(polynomial *Polynomial, domain []*FieldElement, root *FieldElement, rootOrder int) ([]*FieldElement, error) {
	if err := checkRootOrder(root, rootOrder); err != nil {
		return nil, err
	}

	if len(domain) == 0 {
		return []*FieldElement{}, nil
	}
	if len(domain) == 1 {
		return []*FieldElement{polynomial.Eval(domain[0])}, nil
	}

	half := len(domain) / 2
	leftZerofier, err := FastZerofier(domain[:half], root, rootOrder)
	if err != nil {
		return nil, err
	}
	rightZerofier, err := FastZerofier(domain[half:], root, rootOrder)
	if err != nil {
		return nil, err
	}

	leftRemainder, err := polynomial.Mod(leftZerofier)
	if err != nil {
		return nil, err
	}
	rightRemainder, err := polynomial.Mod(rightZerofier)
	if err != nil {
		return nil, err
	}

	left, err := FastEvaluate(leftRemainder, domain[:half], root, rootOrder)
	if err != nil {
		return nil, err
	}
	right, err := FastEvaluate(rightRemainder, domain[half:], root, rootOrder)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

// FastInterpolate computes the polynomial interpolating values over a
// domain of unique points with a dual subquotient tree: divide the
// values by the opposite half's zerofier evaluations, recurse, and
// recombine as left*rightZerofier + right*leftZerofier
func FastInterpolate(domain, values []*FieldElement, root *FieldElement, rootOrder int) (*Polynomial, error) {
	if err := checkRootOrder(root, rootOrder); err != nil {
		return nil, err
	}
	if len(domain) != len(values) {
		return nil, fmt.Errorf("interpolate needs domain length %d == values length %d", len(domain), len(values))
	}
	seen := make(map[string]struct{}, len(domain))
	for _, d := range domain {
		key := d.String()
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("domain must contain unique elements")
		}
		seen[key] = struct{}{}
	}

	field := root.Field()
	if len(domain) == 0 {
		return ZeroPolynomial(field), nil
	}
	if len(domain) == 1 {
		return ConstantPolynomial(values[0]), nil
	}

	half := len(domain) / 2
	leftDomain := domain[:half]
	rightDomain := domain[half:]

	leftZerofier, err := FastZerofier(leftDomain, root, rootOrder)
	if err != nil {
		return nil, err
	}
	rightZerofier, err := FastZerofier(rightDomain, root, rootOrder)
	if err != nil {
		return nil, err
	}

	leftOffset, err := FastEvaluate(rightZerofier, leftDomain, root, rootOrder)
	if err != nil {
		return nil, err
	}
	rightOffset, err := FastEvaluate(leftZerofier, rightDomain, root, rootOrder)
	if err != nil {
		return nil, err
	}

	leftTargets := make([]*FieldElement, half)
	for i := range leftTargets {
		if leftTargets[i], err = values[i].Div(leftOffset[i]); err != nil {
			return nil, err
		}
	}
	rightTargets := make([]*FieldElement, len(rightDomain))
	for i := range rightTargets {
		if rightTargets[i], err = values[half+i].Div(rightOffset[i]); err != nil {
			return nil, err
		}
	}

	leftInterpolant, err := FastInterpolate(leftDomain, leftTargets, root, rootOrder)
	if err != nil {
		return nil, err
	}
	rightInterpolant, err := FastInterpolate(rightDomain, rightTargets, root, rootOrder)
	if err != nil {
		return nil, err
	}

	return leftInterpolant.Mul(rightZerofier).Add(rightInterpolant.Mul(leftZerofier)), nil
}

// FastCosetEvaluate evaluates a polynomial on the coset
// offset * <generator> by transforming the offset-scaled polynomial
func FastCosetEvaluate(polynomial *Polynomial, offset, generator *FieldElement, order int) ([]*FieldElement, error) {
	if err := checkRootOrder(generator, order); err != nil {
		return nil, err
	}
	if len(polynomial.Coefficients()) > order {
		return nil, fmt.Errorf("polynomial degree exceeds domain order")
	}

	scaled := polynomial.Scale(offset)
	return NTT(generator, padCoefficients(polynomial.Field(), scaled.Coefficients(), order))
}

// FastCosetDivide divides lhs by rhs exactly, in point-value form on
// the coset offset * <root>. The coset avoids zero divisors when rhs
// vanishes only on the untranslated subgroup, as the transition
// zerofier does.
func FastCosetDivide(lhs, rhs *Polynomial, offset, root *FieldElement, rootOrder int) (*Polynomial, error) {
	if err := checkRootOrder(root, rootOrder); err != nil {
		return nil, err
	}
	if rhs.IsZero() {
		return nil, fmt.Errorf("cannot divide by zero polynomial")
	}
	if lhs.IsZero() {
		return ZeroPolynomial(lhs.Field()), nil
	}
	if rhs.Degree() > lhs.Degree() {
		return nil, fmt.Errorf("cannot divide by polynomial of larger degree")
	}

	degree := lhs.Degree()
	if degree < schoolbookThreshold {
		return lhs.Div(rhs)
	}

	field := lhs.Field()
	order := rootOrder
	for degree < order/2 {
		root = root.Mul(root)
		order /= 2
	}
	if degree >= order {
		return nil, fmt.Errorf("supplied root order is less than the dividend degree")
	}

	lhsCodeword, err := NTT(root, padCoefficients(field, lhs.Scale(offset).Coefficients(), order))
	if err != nil {
		return nil, err
	}
	rhsCodeword, err := NTT(root, padCoefficients(field, rhs.Scale(offset).Coefficients(), order))
	if err != nil {
		return nil, err
	}

	quotientCodeword := make([]*FieldElement, order)
	for i := range quotientCodeword {
		if quotientCodeword[i], err = lhsCodeword[i].Div(rhsCodeword[i]); err != nil {
			return nil, fmt.Errorf("divisor vanishes on the coset: %w", err)
		}
	}

	scaledQuotientCoefficients, err := INTT(root, quotientCodeword)
	if err != nil {
		return nil, err
	}
	scaledQuotient := NewPolynomial(field, scaledQuotientCoefficients[:lhs.Degree()-rhs.Degree()+1])

	offsetInverse, err := offset.Inverse()
	if err != nil {
		return nil, err
	}
	return scaledQuotient.Scale(offsetInverse), nil
}
