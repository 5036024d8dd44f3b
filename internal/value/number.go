package value

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"
)

// bigMulThreshold is the operand bit length above which multiplying
// the two numerators/denominators routes through the FFT-based
// multiplier instead of big.Int's schoolbook Mul. Comprehension-heavy
// policies that accumulate large integer counts are the case this
// guards against; below the threshold the constant overhead of an FFT
// loses to schoolbook multiplication.
const bigMulThreshold = 1 << 12

func fastMulInt(a, b *big.Int) *big.Int {
	if a.BitLen() > bigMulThreshold && b.BitLen() > bigMulThreshold {
		return bigfft.Mul(a, b)
	}
	return new(big.Int).Mul(a, b)
}

// mulRat multiplies two rationals using the fast integer multiply for
// their numerator/denominator products. big.Rat has no public hook to
// swap its multiplier, so the numerator and denominator products are
// computed directly and the result normalised through SetFrac.
func mulRat(a, b *big.Rat) *big.Rat {
	num := fastMulInt(a.Num(), b.Num())
	den := fastMulInt(a.Denom(), b.Denom())
	return new(big.Rat).SetFrac(num, den)
}

// Add, Sub, Mul, Div, Mod implement the numeric operations over the
// rational representation. Div and Mod report division by zero via
// their bool return rather than panicking or erroring, matching the
// engine's non-strict arithmetic: the caller turns a false result into
// Undefined.
func Add(a, b Value) Value {
	return Value{kind: KindNumber, num: new(big.Rat).Add(a.num, b.num)}
}

func Sub(a, b Value) Value {
	return Value{kind: KindNumber, num: new(big.Rat).Sub(a.num, b.num)}
}

func Mul(a, b Value) Value {
	return Value{kind: KindNumber, num: mulRat(a.num, b.num)}
}

// Div returns (quotient, true) or (zero, false) if b is zero.
func Div(a, b Value) (Value, bool) {
	if b.num.Sign() == 0 {
		return Value{}, false
	}
	return Value{kind: KindNumber, num: new(big.Rat).Quo(a.num, b.num)}, true
}

// Mod returns (remainder, true) for integer operands, or (zero, false)
// if b is zero. Callers must check IsInteger on both operands first,
// as the dispatcher does (ModuloOnFloat is raised before Mod is ever
// called); given a non-integer operand, Mod uses only its numerator.
func Mod(a, b Value) (Value, bool) {
	bi := b.num.Num()
	if bi.Sign() == 0 {
		return Value{}, false
	}
	ai := a.num.Num()
	r := new(big.Int).Mod(ai, bi)
	// big.Int.Mod always returns a non-negative result (Euclidean); the
	// engine's modulo follows the same convention.
	return Value{kind: KindNumber, num: new(big.Rat).SetInt(r)}, true
}

// Neg returns -a.
func Neg(a Value) Value {
	return Value{kind: KindNumber, num: new(big.Rat).Neg(a.num)}
}
