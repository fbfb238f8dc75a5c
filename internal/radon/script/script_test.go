package script

import (
	"testing"

	"radon-engine/internal/radon/ops"
	"radon-engine/internal/radon/reducers"
	"radon-engine/internal/radon/value"
)

func newInterpreter(t *testing.T, reducerCtx reducers.Context) *Interpreter {
	t.Helper()
	in, err := New(64, 8, 65535, 16, reducerCtx)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return in
}

func encodeScript(t *testing.T, calls value.Array) []byte {
	t.Helper()
	data, err := value.Encode(calls)
	if err != nil {
		t.Fatalf("encode script: %v", err)
	}
	return data
}

func call(op ops.Opcode, args ...value.Value) value.Array {
	out := make(value.Array, 0, len(args)+1)
	out = append(out, value.NewInteger(int64(op)))
	out = append(out, args...)
	return out
}

func TestExecuteArrayCount(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	seed := value.Array{value.NewInteger(1), value.NewInteger(2), value.NewInteger(3)}
	script := encodeScript(t, value.Array{call(ops.ArrayCount)})

	result, _ := in.Execute(script, seed, value.StageAggregate)
	i, ok := result.(value.Integer)
	if !ok || i.V.Int64() != 3 {
		t.Fatalf("ArrayCount result = %v, want Integer(3)", result)
	}
}

func TestExecuteReduceAverageMean(t *testing.T) {
	ctx := reducers.Context{ReturnPolicy: reducers.PreserveFloat}
	in := newInterpreter(t, ctx)
	seed := value.Array{value.Float(1), value.Float(2)}
	script := encodeScript(t, value.Array{call(ops.ArrayReduce, value.NewInteger(int64(reducers.AverageMean)))})

	result, _ := in.Execute(script, seed, value.StageTally)
	f, ok := result.(value.Float)
	if !ok || f != 1.5 {
		t.Fatalf("AverageMean result = %v, want Float(1.5)", result)
	}
}

func TestExecuteArrayMapWithSubscript(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	seed := value.Array{value.NewInteger(2), value.NewInteger(6)}
	subscript := call(ops.IntegerGreaterThan, value.NewInteger(4))
	script := encodeScript(t, value.Array{call(ops.ArrayMap, subscript)})

	result, _ := in.Execute(script, seed, value.StageAggregate)
	arr, ok := result.(value.Array)
	if !ok || len(arr) != 2 {
		t.Fatalf("ArrayMap result = %v, want a 2-element Array", result)
	}
	if bool(arr[0].(value.Boolean)) != false || bool(arr[1].(value.Boolean)) != true {
		t.Fatalf("ArrayMap result = %v, want [false true]", arr)
	}
}

func TestExecuteArrayFilterRejectsNonBoolSubscript(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	seed := value.Array{value.NewInteger(1)}
	subscript := call(ops.IntegerAsString)
	script := encodeScript(t, value.Array{call(ops.ArrayFilter, subscript)})

	result, _ := in.Execute(script, seed, value.StageAggregate)
	errv, ok := result.(*value.Error)
	if !ok || errv.ErrorKind != value.UnsupportedOperator {
		t.Fatalf("ArrayFilter with non-boolean subscript should fail UnsupportedOperator, got %v", result)
	}
}

func TestExecuteModeFloat(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	seed := value.Array{value.Float(1), value.Float(2), value.Float(2)}
	script := encodeScript(t, value.Array{call(ops.ArrayReduce, value.NewInteger(int64(reducers.Mode)))})

	result, _ := in.Execute(script, seed, value.StageTally)
	if f, ok := result.(value.Float); !ok || f != 2 {
		t.Fatalf("Mode result = %v, want Float(2)", result)
	}
}

func TestExecuteNonHomogeneousReduceFails(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	seed := value.Array{value.Float(1), value.String("x")}
	script := encodeScript(t, value.Array{call(ops.ArrayReduce, value.NewInteger(int64(reducers.AverageMean)))})

	result, _ := in.Execute(script, seed, value.StageTally)
	errv, ok := result.(*value.Error)
	if !ok || errv.ErrorKind != value.UnsupportedOpNonHomogeneous {
		t.Fatalf("reduce over non-homogeneous array should fail UnsupportedOpNonHomogeneous, got %v", result)
	}
}

func TestExecuteTooManyCallsFails(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	calls := make(value.Array, 0, 65)
	for i := 0; i < 65; i++ {
		calls = append(calls, call(ops.Identity))
	}
	script := encodeScript(t, calls)

	result, _ := in.Execute(script, value.NewInteger(1), value.StageRetrieve)
	errv, ok := result.(*value.Error)
	if !ok || errv.ErrorKind != value.ScriptTooManyCalls {
		t.Fatalf("65-call script should fail ScriptTooManyCalls, got %v", result)
	}
}

func TestExecuteErrorPropagatesUnchanged(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	seed := value.NewInteger(0)
	script := encodeScript(t, value.Array{
		call(ops.IntegerModulo, value.NewInteger(0)),
		call(ops.IntegerAbsolute),
	})

	result, trace := in.Execute(script, seed, value.StageRetrieve)
	errv, ok := result.(*value.Error)
	if !ok || errv.ErrorKind != value.DivisionByZero {
		t.Fatalf("modulo-by-zero should produce DivisionByZero, got %v", result)
	}
	if len(trace) != 1 {
		t.Fatalf("execution should stop at the failing call, got %d trace entries", len(trace))
	}
}

func TestExecuteRejectsOversizedString(t *testing.T) {
	in, err := New(64, 8, 4, 16, reducers.Context{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	seed := value.String("hello")
	script := encodeScript(t, value.Array{call(ops.Identity)})

	result, _ := in.Execute(script, seed, value.StageRetrieve)
	errv, ok := result.(*value.Error)
	if !ok || errv.ErrorKind != value.ResourceLimit {
		t.Fatalf("a 5-byte String over a 4-byte limit should fail ResourceLimit, got %v", result)
	}
}

func TestExecuteAllowsStringWithinLimit(t *testing.T) {
	in, err := New(64, 8, 5, 16, reducers.Context{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	seed := value.String("hello")
	script := encodeScript(t, value.Array{call(ops.Identity)})

	result, _ := in.Execute(script, seed, value.StageRetrieve)
	if _, isErr := result.(*value.Error); isErr {
		t.Fatalf("a 5-byte String at the limit should not fail, got %v", result)
	}
}

// TestExecuteTagsErrorWithActualStage asserts that the Stage field on a
// failing script's Error reflects the stage Execute is asked to run as,
// not whatever placeholder stage the failing operator hardcoded at
// construction time (spec §4.F per-stage error tagging).
func TestExecuteTagsErrorWithActualStage(t *testing.T) {
	in := newInterpreter(t, reducers.Context{})
	script := encodeScript(t, value.Array{call(ops.IntegerModulo, value.NewInteger(0))})

	for _, stage := range []value.Stage{value.StageRetrieve, value.StageAggregate, value.StageTally} {
		result, _ := in.Execute(script, value.NewInteger(5), stage)
		errv, ok := result.(*value.Error)
		if !ok {
			t.Fatalf("expected an Error result for stage %s, got %v", stage, result)
		}
		if errv.Stage != stage {
			t.Fatalf("Error.Stage = %s, want %s", errv.Stage, stage)
		}
	}
}
