package evaluator

import (
	"math"
	"math/big"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
)

func numAsFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case float64:
		return n, true
	}
	return 0, false
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case *big.Int, float64:
		return true
	}
	return false
}

func anyFloat(args []interface{}) bool {
	for _, a := range args {
		if _, ok := a.(float64); ok {
			return true
		}
	}
	return false
}

func checkNumeric(src coreast.Node, name string, args []interface{}) *errs.Error {
	for _, a := range args {
		if !isNumber(a) {
			return typeErr(src, "%s requires numeric arguments, got %T", name, a)
		}
	}
	return nil
}

func init() {
	register("+", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if err := checkNumeric(src, "+", args); err != nil {
			return nil, err
		}
		if anyFloat(args) {
			sum := 0.0
			for _, a := range args {
				f, _ := numAsFloat(a)
				sum += f
			}
			return sum, nil
		}
		sum := big.NewInt(0)
		for _, a := range args {
			i, _ := asInt(a)
			sum.Add(sum, i)
		}
		return sum, nil
	})

	register("-", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) == 0 {
			return nil, arityErr(src, "-", "at least 1", 0)
		}
		if err := checkNumeric(src, "-", args); err != nil {
			return nil, err
		}
		if anyFloat(args) {
			f0, _ := numAsFloat(args[0])
			if len(args) == 1 {
				return -f0, nil
			}
			for _, a := range args[1:] {
				f, _ := numAsFloat(a)
				f0 -= f
			}
			return f0, nil
		}
		i0, _ := asInt(args[0])
		result := new(big.Int).Set(i0)
		if len(args) == 1 {
			return result.Neg(result), nil
		}
		for _, a := range args[1:] {
			i, _ := asInt(a)
			result.Sub(result, i)
		}
		return result, nil
	})

	register("*", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if err := checkNumeric(src, "*", args); err != nil {
			return nil, err
		}
		if anyFloat(args) {
			prod := 1.0
			for _, a := range args {
				f, _ := numAsFloat(a)
				prod *= f
			}
			return prod, nil
		}
		prod := big.NewInt(1)
		for _, a := range args {
			i, _ := asInt(a)
			prod.Mul(prod, i)
		}
		return prod, nil
	})

	register("/", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) == 0 {
			return nil, arityErr(src, "/", "at least 1", 0)
		}
		if err := checkNumeric(src, "/", args); err != nil {
			return nil, err
		}
		vals := make([]float64, len(args))
		for i, a := range args {
			vals[i], _ = numAsFloat(a)
		}
		if len(vals) == 1 {
			if vals[0] == 0 {
				return nil, errAt(src, errs.ArithmeticError, "division by zero")
			}
			return 1 / vals[0], nil
		}
		result := vals[0]
		for _, v := range vals[1:] {
			if v == 0 {
				return nil, errAt(src, errs.ArithmeticError, "division by zero")
			}
			result /= v
		}
		return result, nil
	})

	register("mod", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "mod", "2", len(args))
		}
		if err := checkNumeric(src, "mod", args); err != nil {
			return nil, err
		}
		if anyFloat(args) {
			a, _ := numAsFloat(args[0])
			b, _ := numAsFloat(args[1])
			if b == 0 {
				return nil, errAt(src, errs.ArithmeticError, "division by zero")
			}
			return math.Mod(a, b), nil
		}
		a, _ := asInt(args[0])
		b, _ := asInt(args[1])
		if b.Sign() == 0 {
			return nil, errAt(src, errs.ArithmeticError, "division by zero")
		}
		result := new(big.Int).Mod(a, b)
		return result, nil
	})

	register("inc", unaryNumeric("inc", func(f float64) float64 { return f + 1 }, func(i *big.Int) *big.Int { return new(big.Int).Add(i, big.NewInt(1)) }))
	register("dec", unaryNumeric("dec", func(f float64) float64 { return f - 1 }, func(i *big.Int) *big.Int { return new(big.Int).Sub(i, big.NewInt(1)) }))
	register("abs", unaryNumeric("abs", math.Abs, func(i *big.Int) *big.Int { return new(big.Int).Abs(i) }))

	register("max", variadicExtreme("max", func(a, b float64) bool { return a > b }))
	register("min", variadicExtreme("min", func(a, b float64) bool { return a < b }))

	register("floor", roundingFn("floor", math.Floor))
	register("ceil", roundingFn("ceil", math.Ceil))
	register("round", roundingFn("round", math.Round))
	register("trunc", roundingFn("trunc", math.Trunc))
}

func unaryNumeric(name string, ffn func(float64) float64, ifn func(*big.Int) *big.Int) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, name, "1", len(args))
		}
		if i, ok := asInt(args[0]); ok {
			return ifn(i), nil
		}
		if f, ok := asFloatStrict(args[0]); ok {
			return ffn(f), nil
		}
		return nil, typeErr(src, "%s requires a numeric argument, got %T", name, args[0])
	}
}

func variadicExtreme(name string, better func(a, b float64) bool) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) == 0 {
			return nil, arityErr(src, name, "at least 1", 0)
		}
		if err := checkNumeric(src, name, args); err != nil {
			return nil, err
		}
		bestIdx := 0
		bestF, _ := numAsFloat(args[0])
		for i := 1; i < len(args); i++ {
			f, _ := numAsFloat(args[i])
			if better(f, bestF) {
				bestF = f
				bestIdx = i
			}
		}
		return args[bestIdx], nil
	}
}

func roundingFn(name string, fn func(float64) float64) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, name, "1", len(args))
		}
		if i, ok := asInt(args[0]); ok {
			return i, nil
		}
		f, ok := asFloatStrict(args[0])
		if !ok {
			return nil, typeErr(src, "%s requires a numeric argument, got %T", name, args[0])
		}
		r := fn(f)
		bi, _ := big.NewFloat(r).Int(nil)
		return bi, nil
	}
}
