// Package report implements the RADON Report: the record of one script
// execution's result, its call-by-call trace, and whether it represents a
// partial failure of a larger multi-source request (spec §4.F).
package report

import (
	"github.com/google/uuid"

	"radon-engine/internal/radon/ops"
	"radon-engine/internal/radon/script"
	"radon-engine/internal/radon/value"
)

// CallTrace is the public, stage-tagged form of script.CallTrace.
type CallTrace struct {
	Stage     value.Stage
	CallIndex uint32
	Opcode    ops.Opcode
	Kind      value.Kind
	Result    value.Value
}

// Report is the outcome of running one or more scripts (one per pipeline
// stage) over a single source or over the aggregated array of sources.
type Report struct {
	// ExecutionID is a random UUID that New assigns to every Report,
	// including each per-stage Report stage.Runner builds. It takes no part
	// in Result. cmd/radonsrv does not read it: it generates its own
	// per-request execution_id for its response and logs.
	ExecutionID uuid.UUID

	// Result is the final Value produced by the last stage that ran. If
	// any stage produced an Error, Result is that Error.
	Result value.Value

	// Trace lists every Call dispatched across every stage, in order.
	Trace []CallTrace

	// PartialFailure is set by AppendStage when the stage's result is an
	// Error, so a failed per-source or Aggregate Report carries it. On the
	// Tally Report, stage.Runner.Run sets it to whether at least one source
	// failed while the tally result is not an Error (spec §4.F).
	PartialFailure bool

	// Liars lists the positions whose reveal did not match consensus
	// (spec §4.E step 4). Only ever set on the Report produced by the
	// Tally stage; a per-source or Aggregate Report leaves it nil.
	Liars []int
}

// New builds an empty Report with a freshly assigned ExecutionID.
func New() *Report {
	return &Report{ExecutionID: uuid.New()}
}

// AppendStage folds one stage's outcome into the report: its resulting
// Value becomes the new Result, and its call trace is appended tagged with
// the given Stage.
func (r *Report) AppendStage(stage value.Stage, result value.Value, trace []script.CallTrace) {
	r.Result = result
	for _, t := range trace {
		r.Trace = append(r.Trace, CallTrace{
			Stage:     stage,
			CallIndex: t.CallIndex,
			Opcode:    t.Opcode,
			Kind:      t.Kind,
			Result:    t.Result,
		})
	}
	if _, isErr := result.(*value.Error); isErr {
		r.PartialFailure = true
	}
}

// Failed reports whether the report's final Result is an Error value.
func (r *Report) Failed() bool {
	_, isErr := r.Result.(*value.Error)
	return isErr
}
