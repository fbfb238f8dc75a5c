// Package script implements the RADON Script Interpreter: linear execution
// of a call list over a seed Value, with bounded-depth re-entry for the
// subscripts of the higher-order Array operators (map, filter); Array's
// reduce reaches the reducers through the same Evaluator.
//
// Scripts do not represent intermediate state as Go closures over the
// engine's internals — a Call is pure data (opcode + arguments), decoded
// once and then reused, which is what makes the decoded-script cache in
// this package sound: caching decoded structure never caches a result.
package script

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"radon-engine/internal/radon/ops"
	"radon-engine/internal/radon/reducers"
	"radon-engine/internal/radon/value"
)

// CallTrace records one executed Call for the Report (spec §4.F).
type CallTrace struct {
	CallIndex uint32
	Opcode    ops.Opcode
	Kind      value.Kind
	Result    value.Value
}

// Interpreter holds the configuration and decode cache shared across every
// script execution. It is safe for concurrent use: each Execute call
// allocates its own execution state.
type Interpreter struct {
	maxScriptCalls int
	maxDepth       int
	maxStringBytes int
	reducerCtx     reducers.Context
	cache          *lru.Cache[string, []ops.Call]
}

// New builds an Interpreter. cacheSize bounds the number of distinct
// top-level scripts whose decoded call list is kept around; a cache miss
// just re-decodes, it is never a correctness issue. maxStringBytes bounds
// the size of any String or Bytes value the seed carries or any call
// produces (spec §5: 65535 bytes/value); 0 or negative disables the check.
func New(maxScriptCalls, maxDepth, maxStringBytes, cacheSize int, reducerCtx reducers.Context) (*Interpreter, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, []ops.Call](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Interpreter{
		maxScriptCalls: maxScriptCalls,
		maxDepth:       maxDepth,
		maxStringBytes: maxStringBytes,
		reducerCtx:     reducerCtx,
		cache:          cache,
	}, nil
}

// Execute decodes scriptBytes as a RADON script and runs it over seed in
// the given pipeline stage. The returned Value is always non-nil: a
// failure is represented by returning an *value.Error as the Value itself
// (spec §7), never as a Go error, and its Stage field always identifies
// the stage passed here regardless of what stage a failing operator
// happened to hardcode at construction (spec §4.F per-stage error
// tagging). The CallTrace slice records every Call that was actually
// dispatched, in execution order, for the caller to fold into a Report.
func (in *Interpreter) Execute(scriptBytes []byte, seed value.Value, stage value.Stage) (value.Value, []CallTrace) {
	calls, errv := in.decode(scriptBytes, stage)
	if errv != nil {
		return errv, nil
	}
	if len(calls) > in.maxScriptCalls {
		return value.NewError(value.ScriptTooManyCalls, stage, 0, "script exceeds the maximum call count").
			WithField("limit", strconv.Itoa(in.maxScriptCalls)).
			WithField("observed", strconv.Itoa(len(calls))), nil
	}

	state := &execState{interp: in, stage: stage}
	result := state.run(seed, calls)
	return result, state.trace
}

func (in *Interpreter) decode(scriptBytes []byte, stage value.Stage) ([]ops.Call, *value.Error) {
	key := string(scriptBytes)
	if cached, ok := in.cache.Get(key); ok {
		return cached, nil
	}

	decoded, err := value.DecodeAny(scriptBytes)
	if err != nil {
		return nil, value.NewError(value.SourceScriptNotCBOR, stage, 0, "script is not valid CBOR: "+err.Error())
	}
	calls, errv := ops.ParseScript(decoded)
	if errv != nil {
		errv.Stage = stage
		return nil, errv
	}

	in.cache.Add(key, calls)
	return calls, nil
}
