package ops

import (
	"fmt"
	"sync"

	"radon-engine/internal/radon/value"
)

// Call is a single script instruction: an opcode plus its literal
// arguments. Higher-order operators (ArrayMap, ArrayFilter) receive their
// subscript as a sequence of Calls parsed from their own argument list.
type Call struct {
	Op   Opcode
	Args []value.Value
}

// Evaluator lets an operator re-enter the script interpreter. It is
// implemented by internal/radon/script so that ops never imports script
// (script imports ops, not the other way around).
type Evaluator interface {
	// Eval runs calls over seed and returns the final result.
	Eval(seed value.Value, calls []Call) (value.Value, *value.Error)
	// Reduce applies the reducer identified by code to input.
	Reduce(input value.Array, code int64) (value.Value, *value.Error)
}

// Func is the concrete implementation of one (Kind, Opcode) pair.
type Func func(receiver value.Value, args []value.Value, ev Evaluator) (value.Value, *value.Error)

type key struct {
	kind value.Kind
	op   Opcode
}

var (
	mu       sync.RWMutex
	registry = make(map[key]Func, 64)
)

// Register binds an operator function to a (Kind, Opcode) pair. It panics
// on a duplicate registration: two operators claiming the same pair is a
// programming error that must never reach production, exactly like a
// consensus-critical opcode collision.
func Register(kind value.Kind, op Opcode, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	k := key{kind, op}
	if _, exists := registry[k]; exists {
		panic(fmt.Sprintf("ops: duplicate registration for %s.%s", kind, op))
	}
	registry[k] = fn
}

// Dispatch resolves and invokes the operator bound to (receiver.Kind(), op).
// An unbound pair is not a Go error: it is the RADON UnsupportedOperator
// Error value, since the Retrieve/Aggregate/Tally pipeline must keep
// running and report the failure through the normal Error-propagation path.
func Dispatch(receiver value.Value, op Opcode, args []value.Value, ev Evaluator) (value.Value, *value.Error) {
	mu.RLock()
	fn, ok := registry[key{receiver.Kind(), op}]
	mu.RUnlock()

	if !ok {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
			fmt.Sprintf("opcode %s not supported for kind %s", op, receiver.Kind())).
			WithField("opcode", op.String()).
			WithField("kind", receiver.Kind().String())
	}
	return fn(receiver, args, ev)
}

// ParseCall interprets v as a nested [opcode, arg...] RADON array, the wire
// shape of a single script instruction (spec §4.D).
func ParseCall(v value.Value) (Call, *value.Error) {
	arr, ok := v.(value.Array)
	if !ok || len(arr) == 0 {
		return Call{}, value.NewError(value.SourceScriptNotRADON, value.StageAggregate, 0,
			"call must be a non-empty array of [opcode, args...]")
	}
	opInt, errv := value.AsInteger(arr[0])
	if errv != nil {
		return Call{}, value.NewError(value.SourceScriptNotRADON, value.StageAggregate, 0,
			"call opcode must be an integer")
	}
	return Call{Op: Opcode(opInt.V.Int64()), Args: arr[1:]}, nil
}

// ParseScript interprets v as a RADON script: an array of calls.
func ParseScript(v value.Value) ([]Call, *value.Error) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, value.NewError(value.SourceScriptNotArray, value.StageAggregate, 0,
			"script must be an array of calls")
	}
	calls := make([]Call, 0, len(arr))
	for _, item := range arr {
		c, errv := ParseCall(item)
		if errv != nil {
			return nil, errv
		}
		calls = append(calls, c)
	}
	return calls, nil
}
