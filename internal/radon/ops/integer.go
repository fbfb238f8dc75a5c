package ops

import (
	"math/big"

	"radon-engine/internal/radon/value"
)

// i128 bounds the Integer kind to a signed 128-bit range (spec §4.A:
// "i128-equivalent"). Arithmetic that would escape this range fails with
// Overflow/Underflow rather than silently growing arbitrarily, since two
// witnesses must agree on when a computation becomes invalid, not just on
// its value while it stays valid.
var (
	i128Max = func() *big.Int {
		max := new(big.Int).Lsh(big.NewInt(1), 127)
		return max.Sub(max, big.NewInt(1))
	}()
	i128Min = func() *big.Int {
		min := new(big.Int).Lsh(big.NewInt(1), 127)
		return min.Neg(min)
	}()
)

func init() {
	Register(value.KindInteger, Identity, integerIdentity)
	Register(value.KindInteger, IntegerAbsolute, integerAbsolute)
	Register(value.KindInteger, IntegerAsFloat, integerAsFloat)
	Register(value.KindInteger, IntegerAsString, integerAsString)
	Register(value.KindInteger, IntegerGreaterThan, integerGreaterThan)
	Register(value.KindInteger, IntegerLessThan, integerLessThan)
	Register(value.KindInteger, IntegerModulo, integerModulo)
	Register(value.KindInteger, IntegerMultiply, integerMultiply)
	Register(value.KindInteger, IntegerNegate, integerNegate)
	Register(value.KindInteger, IntegerPower, integerPower)
	Register(value.KindInteger, IntegerAsMixed, integerAsMixed)
}

func integerIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func checkRange(result *big.Int) *value.Error {
	if result.Cmp(i128Max) > 0 {
		return value.NewError(value.Overflow, value.StageAggregate, 0, "integer result exceeds i128 range")
	}
	if result.Cmp(i128Min) < 0 {
		return value.NewError(value.Underflow, value.StageAggregate, 0, "integer result below i128 range")
	}
	return nil
}

func firstIntArg(args []value.Value) (value.Integer, *value.Error) {
	if len(args) == 0 {
		return value.Integer{}, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
			"missing required integer argument")
	}
	return value.AsInteger(args[0])
}

func integerAbsolute(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	result := new(big.Int).Abs(i.V)
	if errv := checkRange(result); errv != nil {
		return nil, errv
	}
	return value.Integer{V: result}, nil
}

func integerAsFloat(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	f, errv := value.AsFloat(receiver)
	if errv != nil {
		return nil, errv
	}
	return f, nil
}

func integerAsString(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	s, errv := value.AsString(receiver)
	if errv != nil {
		return nil, errv
	}
	return s, nil
}

func integerGreaterThan(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	other, errv := firstIntArg(args)
	if errv != nil {
		return nil, errv
	}
	return value.Boolean(i.V.Cmp(other.V) > 0), nil
}

func integerLessThan(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	other, errv := firstIntArg(args)
	if errv != nil {
		return nil, errv
	}
	return value.Boolean(i.V.Cmp(other.V) < 0), nil
}

func integerModulo(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	other, errv := firstIntArg(args)
	if errv != nil {
		return nil, errv
	}
	if other.V.Sign() == 0 {
		return nil, value.NewError(value.DivisionByZero, value.StageAggregate, 0, "modulo by zero")
	}
	result := new(big.Int).Mod(i.V, other.V)
	return value.Integer{V: result}, nil
}

func integerMultiply(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	other, errv := firstIntArg(args)
	if errv != nil {
		return nil, errv
	}
	result := new(big.Int).Mul(i.V, other.V)
	if errv := checkRange(result); errv != nil {
		return nil, errv
	}
	return value.Integer{V: result}, nil
}

func integerNegate(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	result := new(big.Int).Neg(i.V)
	if errv := checkRange(result); errv != nil {
		return nil, errv
	}
	return value.Integer{V: result}, nil
}

func integerPower(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	i := receiver.(value.Integer)
	exp, errv := firstIntArg(args)
	if errv != nil {
		return nil, errv
	}
	if exp.V.Sign() < 0 {
		return nil, value.NewError(value.MathDomain, value.StageAggregate, 0, "negative exponent on Integer power")
	}
	if !exp.V.IsInt64() {
		return nil, value.NewError(value.Overflow, value.StageAggregate, 0, "exponent too large")
	}
	result := new(big.Int).Exp(i.V, exp.V, nil)
	if errv := checkRange(result); errv != nil {
		return nil, errv
	}
	return value.Integer{V: result}, nil
}

func integerAsMixed(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	data, err := value.Encode(receiver)
	if err != nil {
		return nil, value.NewError(value.WrongMixedCast, value.StageAggregate, 0, err.Error())
	}
	return value.NewMixed(data), nil
}
