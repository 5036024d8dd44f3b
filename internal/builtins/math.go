package builtins

import (
	"math/big"

	"rvmcore/internal/value"
)

var half = big.NewRat(1, 2)

// floorRat returns the greatest integer <= r. big.Rat always stores a
// positive denominator, so Euclidean division (non-negative remainder)
// of the numerator by the denominator is exactly floor division.
func floorRat(r *big.Rat) *big.Rat {
	if r.IsInt() {
		return new(big.Rat).Set(r)
	}
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	return new(big.Rat).SetInt(q)
}

func ceilRat(r *big.Rat) *big.Rat {
	neg := new(big.Rat).Neg(r)
	return new(big.Rat).Neg(floorRat(neg))
}

// roundRat rounds half away from zero.
func roundRat(r *big.Rat) *big.Rat {
	if r.Sign() >= 0 {
		return floorRat(new(big.Rat).Add(r, half))
	}
	return new(big.Rat).Neg(floorRat(new(big.Rat).Add(new(big.Rat).Neg(r), half)))
}

func registerMathFuncs(t map[string]entry) {
	registerGlobal(t, "abs", 1, func(args []value.Value) (value.Value, error) {
		n, err := wantNumber(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Number(new(big.Rat).Abs(n.AsNumber())), nil
	})
	registerGlobal(t, "floor", 1, func(args []value.Value) (value.Value, error) {
		n, err := wantNumber(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Number(floorRat(n.AsNumber())), nil
	})
	registerGlobal(t, "ceil", 1, func(args []value.Value) (value.Value, error) {
		n, err := wantNumber(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Number(ceilRat(n.AsNumber())), nil
	})
	registerGlobal(t, "round", 1, func(args []value.Value) (value.Value, error) {
		n, err := wantNumber(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Number(roundRat(n.AsNumber())), nil
	})
}
