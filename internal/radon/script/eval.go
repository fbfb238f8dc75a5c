package script

import (
	"strconv"

	"radon-engine/internal/radon/ops"
	"radon-engine/internal/radon/reducers"
	"radon-engine/internal/radon/value"
)

// checkStringBytes enforces the String/Bytes size bound (spec §5) on v,
// returning a ResourceLimit Error when it is exceeded. limit <= 0 disables
// the check — a caller that never set it is not asking for enforcement.
func checkStringBytes(v value.Value, limit int) *value.Error {
	if limit <= 0 {
		return nil
	}
	var n int
	switch t := v.(type) {
	case value.String:
		n = len(string(t))
	case value.Bytes:
		n = len(t)
	default:
		return nil
	}
	if n <= limit {
		return nil
	}
	return value.NewError(value.ResourceLimit, 0, 0, "value exceeds the maximum string/bytes size").
		WithField("kind", "string_bytes_size").
		WithField("limit", strconv.Itoa(limit)).
		WithField("observed", strconv.Itoa(n))
}

// execState is the mutable state of a single top-level Execute call. It
// implements ops.Evaluator so higher-order operators that take a script
// argument (ArrayMap, ArrayFilter) can re-enter the interpreter for their
// subscripts, and ArrayReduce can reach the reducers — ArraySort takes a
// keys/asc argument pair instead of a subscript, so it never calls back
// into Evaluator.
type execState struct {
	interp        *Interpreter
	stage         value.Stage
	depth         int
	trace         []CallTrace
	nextCallIndex uint32
}

// run executes calls over seed at the current depth. An Error produced by
// any call propagates unchanged: once current becomes an Error, remaining
// calls are skipped rather than dispatched against it (spec §7 — Error is
// a terminal Value, not something operators transform further). Whatever
// Stage an operator happened to hardcode when constructing the Error is
// overwritten here with the stage this execState actually runs in: Stage
// is part of the deterministic wire encoding (spec §4.F), so it must
// reflect where the failure was observed, not a dispatch-time placeholder.
// The seed and every call result are also checked against the configured
// String/Bytes size bound (spec §5), failing ResourceLimit in place of
// whatever the call would otherwise have produced.
func (e *execState) run(seed value.Value, calls []ops.Call) value.Value {
	current := seed
	if sizeErr := checkStringBytes(current, e.interp.maxStringBytes); sizeErr != nil {
		sizeErr.Stage = e.stage
		return sizeErr
	}

	for _, c := range calls {
		if _, isErr := current.(*value.Error); isErr {
			break
		}

		callIndex := e.nextCallIndex
		e.nextCallIndex++

		result, errv := ops.Dispatch(current, c.Op, c.Args, e)
		if errv != nil {
			errv.CallIndex = callIndex
			errv.Stage = e.stage
			current = errv
			e.trace = append(e.trace, CallTrace{CallIndex: callIndex, Opcode: c.Op, Kind: current.Kind(), Result: current})
			break
		}
		if sizeErr := checkStringBytes(result, e.interp.maxStringBytes); sizeErr != nil {
			sizeErr.CallIndex = callIndex
			sizeErr.Stage = e.stage
			current = sizeErr
			e.trace = append(e.trace, CallTrace{CallIndex: callIndex, Opcode: c.Op, Kind: current.Kind(), Result: current})
			break
		}
		current = result
		e.trace = append(e.trace, CallTrace{CallIndex: callIndex, Opcode: c.Op, Kind: current.Kind(), Result: current})
	}
	return current
}

// Eval implements ops.Evaluator: it re-enters run one depth level down,
// refusing to go past the configured bound (spec §4.D: depth bound 8).
func (e *execState) Eval(seed value.Value, calls []ops.Call) (value.Value, *value.Error) {
	e.depth++
	defer func() { e.depth-- }()

	if e.depth > e.interp.maxDepth {
		return nil, value.NewError(value.ResourceLimit, e.stage, 0, "script recursion depth exceeded").
			WithField("kind", "recursion_depth")
	}

	sub := &execState{interp: e.interp, stage: e.stage, depth: e.depth, nextCallIndex: e.nextCallIndex}
	result := sub.run(seed, calls)
	e.trace = append(e.trace, sub.trace...)
	e.nextCallIndex = sub.nextCallIndex
	if errv, isErr := result.(*value.Error); isErr {
		return nil, errv
	}
	return result, nil
}

// Reduce implements ops.Evaluator by delegating to the reducers package
// with this execution's configured WIP/return-policy context.
func (e *execState) Reduce(input value.Array, code int64) (value.Value, *value.Error) {
	return reducers.Reduce(input, reducers.Code(code), e.interp.reducerCtx)
}
