package ops

import (
	"testing"

	"radon-engine/internal/radon/value"
)

type noopEvaluator struct{}

func (noopEvaluator) Eval(seed value.Value, calls []Call) (value.Value, *value.Error) {
	return seed, nil
}
func (noopEvaluator) Reduce(input value.Array, code int64) (value.Value, *value.Error) {
	return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "not used in this test")
}

func TestDispatchUnknownOpcodeIsUnsupportedOperator(t *testing.T) {
	_, errv := Dispatch(value.Boolean(true), Opcode(0x99), nil, noopEvaluator{})
	if errv == nil || errv.ErrorKind != value.UnsupportedOperator {
		t.Fatalf("unknown opcode should fail UnsupportedOperator, got %v", errv)
	}
}

func TestIntegerPowerOverflow(t *testing.T) {
	huge := value.NewInteger(2)
	result, errv := Dispatch(huge, IntegerPower, []value.Value{value.NewInteger(200)}, noopEvaluator{})
	if errv == nil || errv.ErrorKind != value.Overflow {
		t.Fatalf("2^200 should overflow the i128 range, got %v / %v", result, errv)
	}
}

func TestIntegerModuloByZero(t *testing.T) {
	_, errv := Dispatch(value.NewInteger(5), IntegerModulo, []value.Value{value.NewInteger(0)}, noopEvaluator{})
	if errv == nil || errv.ErrorKind != value.DivisionByZero {
		t.Fatalf("modulo by zero should fail DivisionByZero, got %v", errv)
	}
}

func TestArrayGetOutOfRange(t *testing.T) {
	arr := value.Array{value.NewInteger(1)}
	_, errv := Dispatch(arr, ArrayGet, []value.Value{value.NewInteger(5)}, noopEvaluator{})
	if errv == nil || errv.ErrorKind != value.ArrayIndexNotFound {
		t.Fatalf("out-of-range ArrayGet should fail ArrayIndexNotFound, got %v", errv)
	}
}

func TestMapGetKeyNotFound(t *testing.T) {
	m := value.NewMap()
	m.Set("a", value.NewInteger(1))
	_, errv := Dispatch(m, MapGet, []value.Value{value.String("missing")}, noopEvaluator{})
	if errv == nil || errv.ErrorKind != value.MapKeyNotFound {
		t.Fatalf("missing key should fail MapKeyNotFound, got %v", errv)
	}
}

func TestArraySortPrimitivesAscending(t *testing.T) {
	arr := value.Array{value.NewInteger(3), value.NewInteger(1), value.NewInteger(2)}
	result, errv := Dispatch(arr, ArraySort, []value.Value{value.Array{}, value.Boolean(true)}, noopEvaluator{})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	out := result.(value.Array)
	want := []int64{1, 2, 3}
	for i, w := range want {
		if out[i].(value.Integer).V.Int64() != w {
			t.Fatalf("sorted = %v, want %v at %d", out, w, i)
		}
	}
}

func TestArraySortPrimitivesDescending(t *testing.T) {
	arr := value.Array{value.NewInteger(3), value.NewInteger(1), value.NewInteger(2)}
	result, errv := Dispatch(arr, ArraySort, []value.Value{value.Array{}, value.Boolean(false)}, noopEvaluator{})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	out := result.(value.Array)
	want := []int64{3, 2, 1}
	for i, w := range want {
		if out[i].(value.Integer).V.Int64() != w {
			t.Fatalf("sorted = %v, want %v at %d", out, w, i)
		}
	}
}

func TestArraySortMapsByKeyTupleWithMissingKey(t *testing.T) {
	low := value.NewMap()
	low.Set("rank", value.NewInteger(1))
	noRank := value.NewMap()
	noRank.Set("name", value.String("unranked"))
	high := value.NewMap()
	high.Set("rank", value.NewInteger(5))

	arr := value.Array{high, low, noRank}
	keys := value.Array{value.String("rank")}
	result, errv := Dispatch(arr, ArraySort, []value.Value{keys, value.Boolean(true)}, noopEvaluator{})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	out := result.(value.Array)
	if out[0] != value.Value(noRank) || out[1] != value.Value(low) || out[2] != value.Value(high) {
		t.Fatalf("a Map missing the sort key should sort first, got %v", out)
	}
}

func TestArraySortNonEmptyKeysRequiresMapArray(t *testing.T) {
	arr := value.Array{value.NewInteger(1)}
	_, errv := Dispatch(arr, ArraySort, []value.Value{value.Array{value.String("k")}, value.Boolean(true)}, noopEvaluator{})
	if errv == nil || errv.ErrorKind != value.UnsupportedOpNonHomogeneous {
		t.Fatalf("non-Map elements with non-empty keys should fail UnsupportedOpNonHomogeneous, got %v", errv)
	}
}

func TestStringMatchReturnsCaseValue(t *testing.T) {
	cases := value.NewMap()
	cases.Set("up", value.NewInteger(1))
	cases.Set("down", value.NewInteger(-1))
	result, errv := Dispatch(value.String("up"), StringMatch, []value.Value{cases, value.NewInteger(0)}, noopEvaluator{})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if result.(value.Integer).V.Int64() != 1 {
		t.Fatalf("StringMatch(up) = %v, want 1", result)
	}
}

func TestStringMatchFallsBackToDefault(t *testing.T) {
	cases := value.NewMap()
	cases.Set("up", value.NewInteger(1))
	result, errv := Dispatch(value.String("sideways"), StringMatch, []value.Value{cases, value.NewInteger(0)}, noopEvaluator{})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if result.(value.Integer).V.Int64() != 0 {
		t.Fatalf("StringMatch(sideways) = %v, want default 0", result)
	}
}

func TestStringLengthCountsRunes(t *testing.T) {
	result, errv := Dispatch(value.String("héllo"), StringLength, nil, noopEvaluator{})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if result.(value.Integer).V.Int64() != 5 {
		t.Fatalf("StringLength(héllo) = %v, want 5", result)
	}
}
