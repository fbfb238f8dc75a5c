package stage

import (
	"testing"

	radoncontext "radon-engine/internal/radon/context"
	"radon-engine/internal/radon/ops"
	"radon-engine/internal/radon/reducers"
	"radon-engine/internal/radon/value"
)

func call(op ops.Opcode, args ...value.Value) value.Array {
	out := make(value.Array, 0, len(args)+1)
	out = append(out, value.NewInteger(int64(op)))
	out = append(out, args...)
	return out
}

func encode(t *testing.T, v value.Value) []byte {
	t.Helper()
	data, err := value.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	ctx := radoncontext.Context{AverageMeanReturnPolicy: "preserve_float"}
	r, err := New(64, 8, 65535, 16, ctx, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func TestRunEndToEndAverageMean(t *testing.T) {
	r := newRunner(t)

	// All three sources agree exactly, so the consensus filter has
	// nothing to mark: this test exercises the plumbing, not the filter.
	identity := encode(t, value.Array{call(ops.Identity)})
	req := Request{
		Sources: []Source{
			{Script: identity, Seed: value.Float(11)},
			{Script: identity, Seed: value.Float(11)},
			{Script: identity, Seed: value.Float(11)},
		},
		AggregateScript: identity,
		TallyScript:     encode(t, value.Array{call(ops.ArrayReduce, value.NewInteger(int64(reducers.AverageMean)))}),
	}

	outcome, err := r.Run(req)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if outcome.TallyReport.Failed() {
		t.Fatalf("tally failed: %v", outcome.TallyReport.Result)
	}
	f, ok := outcome.TallyReport.Result.(value.Float)
	if !ok {
		t.Fatalf("tally result = %v, want Float", outcome.TallyReport.Result)
	}
	if f < 10.9 || f > 11.1 {
		t.Fatalf("tally mean = %v, want ~11", f)
	}
	if len(outcome.Liars) != 0 {
		t.Fatalf("unanimous sources should produce no liars, got %v", outcome.Liars)
	}
}

func TestRunRetrieveFailureRetainedAtOriginalPosition(t *testing.T) {
	r := newRunner(t)

	identity := encode(t, value.Array{call(ops.Identity)})
	failing := encode(t, value.Array{call(ops.IntegerModulo, value.NewInteger(0))})
	req := Request{
		Sources: []Source{
			{Script: identity, Seed: value.Float(10)},
			{Script: failing, Seed: value.NewInteger(5)},
		},
		AggregateScript: identity,
		TallyScript:     encode(t, value.Array{call(ops.ArrayReduce, value.NewInteger(int64(reducers.AverageMean)))}),
	}

	outcome, err := r.Run(req)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !outcome.SourceReports[1].Failed() {
		t.Fatal("second source should have failed")
	}

	arr, ok := outcome.AggregateReport.Result.(value.Array)
	if !ok || len(arr) != 2 {
		t.Fatalf("aggregate input should stay len(sources)-long with errors retained in place, got %v", outcome.AggregateReport.Result)
	}
	if _, isFloat := arr[0].(value.Float); !isFloat {
		t.Fatalf("surviving source should remain at its original position, got %v", arr[0])
	}
	if _, isErr := arr[1].(*value.Error); !isErr {
		t.Fatalf("failed source should remain an Error at its original position, got %v", arr[1])
	}

	if len(outcome.Liars) != 1 || outcome.Liars[0] != 1 {
		t.Fatalf("position 1 should be marked a liar, got %v", outcome.Liars)
	}
	// The tally reducer requires a homogeneous array; a retained Error
	// alongside a Float is not homogeneous, so the tally itself fails —
	// a script meant to tolerate partial failure must filter first.
	if !outcome.TallyReport.Failed() {
		t.Fatalf("tally over a non-homogeneous array should fail, got %v", outcome.TallyReport.Result)
	}
}

func TestFilterConsensusMarksOutlierInPlace(t *testing.T) {
	r := newRunner(t)

	arr := value.Array{value.Float(10), value.Float(11), value.Float(1000)}
	out, ratio, liars := r.filterConsensus(arr)
	if len(out) != len(arr) {
		t.Fatalf("filterConsensus must preserve length, got %d want %d", len(out), len(arr))
	}
	if len(liars) != 1 || liars[0] != 2 {
		t.Fatalf("expected position 2 marked as the sole liar, got %v", liars)
	}
	errv, ok := out[2].(*value.Error)
	if !ok || errv.ErrorKind != value.OutlierReveal {
		t.Fatalf("position 2 should be Error(OutlierReveal), got %v", out[2])
	}
	if out[0] != value.Float(10) || out[1] != value.Float(11) {
		t.Fatalf("in-consensus positions must be left untouched, got %v", out)
	}
	if ratio < 0.66 || ratio > 0.67 {
		t.Fatalf("consensus ratio = %v, want ~2/3", ratio)
	}
}

func TestRunFromYAMLScenario(t *testing.T) {
	s, err := loadScenario("testdata/average_mean.yaml")
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}

	ctx := radoncontext.Context{AverageMeanReturnPolicy: s.ReturnPolicy}
	r, err := New(64, 8, 65535, 16, ctx, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	identity := encode(t, value.Array{call(ops.Identity)})
	sources := make([]Source, len(s.Seeds))
	for i, seed := range s.Seeds {
		sources[i] = Source{Script: identity, Seed: value.Float(seed)}
	}

	outcome, err := r.Run(Request{
		Sources:         sources,
		AggregateScript: identity,
		TallyScript:     encode(t, value.Array{call(ops.ArrayReduce, value.NewInteger(int64(reducers.AverageMean)))}),
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if outcome.TallyReport.Failed() {
		t.Fatalf("tally failed: %v", outcome.TallyReport.Result)
	}
	f, ok := outcome.TallyReport.Result.(value.Float)
	if !ok {
		t.Fatalf("tally result = %v, want Float", outcome.TallyReport.Result)
	}
	if f < 10.9 || f > 11.1 {
		t.Fatalf("tally mean = %v, want ~11", f)
	}
}

func TestNewRejectsAmbiguousReturnPolicy(t *testing.T) {
	ctx := radoncontext.Context{}
	_, err := New(64, 8, 65535, 16, ctx, nil)
	if err != ErrAmbiguousReturnPolicy {
		t.Fatalf("New() with no return policy should fail with ErrAmbiguousReturnPolicy, got %v", err)
	}
}
