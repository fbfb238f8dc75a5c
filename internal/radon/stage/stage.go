// Package stage implements the Stage Runner: the Retrieve → Aggregate →
// Filter (consensus) → Tally pipeline that reduces a set of per-source
// results into a single tally value (spec §4.E).
package stage

import (
	"errors"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	radoncontext "radon-engine/internal/radon/context"
	"radon-engine/internal/radon/reducers"
	"radon-engine/internal/radon/report"
	"radon-engine/internal/radon/script"
	"radon-engine/internal/radon/value"
)

// ErrAmbiguousReturnPolicy is returned by New when the context's
// AverageMeanReturnPolicy is empty or is neither "round_to_integer" nor
// "preserve_float". It is a Go error, not a RADON Error value: this is a
// malformed configuration, not a protocol-level computation failure, so
// the Runner is refused before any script ever runs.
var ErrAmbiguousReturnPolicy = errors.New("stage: AverageMeanReturnPolicy must be set by the request or the runtime config")

// Source is one data source contributing to a request: its retrieve
// script and the seed Value built from whatever was already fetched. The
// engine never performs the fetch itself (spec Non-goals: HTTP transport
// is an external interface) — Seed is always ready to execute against.
type Source struct {
	Script []byte
	Seed   value.Value
}

// Request describes one full retrieve/aggregate/tally run.
type Request struct {
	Sources         []Source
	AggregateScript []byte
	TallyScript     []byte

	// MinConsensusPercentage is the minimum fraction (0..1) of sources
	// that must agree (i.e. not be filtered as outliers) for the tally
	// to proceed; below it, the tally still runs but the caller should
	// treat the result as non-consensual.
	MinConsensusPercentage float64
}

// Outcome is the result of running a full Request through the pipeline.
type Outcome struct {
	SourceReports   []*report.Report
	AggregateReport *report.Report
	TallyReport     *report.Report
	ConsensusRatio  float64

	// Liars lists the positions, in the filtered array handed to the
	// tally script, whose reveal does not match consensus: either it was
	// already an Error carried forward from an earlier stage, or the
	// consensus filter marked it Error(OutlierReveal) (spec §4.E step 4).
	Liars []int
}

// Runner executes requests. It owns one script.Interpreter, reused across
// every stage and every source of every request it runs.
type Runner struct {
	interp *script.Interpreter
	log    *logrus.Logger
}

// New builds a Runner. ctx fixes the WIPs and AverageMean return policy
// for every execution this Runner performs; build a new Runner per
// distinct configuration rather than mutating one in place. maxStringBytes
// bounds every String/Bytes value flowing through any stage (spec §5); 0
// disables the check.
func New(maxScriptCalls, maxDepth, maxStringBytes, cacheSize int, ctx radoncontext.Context, log *logrus.Logger) (*Runner, error) {
	policy, err := resolveReturnPolicy(ctx.AverageMeanReturnPolicy)
	if err != nil {
		return nil, err
	}
	reducerCtx := reducers.Context{ActiveWips: ctx.ActiveWips, ReturnPolicy: policy}
	interp, err := script.New(maxScriptCalls, maxDepth, maxStringBytes, cacheSize, reducerCtx)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{interp: interp, log: log}, nil
}

func resolveReturnPolicy(policy string) (reducers.ReturnPolicy, error) {
	switch policy {
	case "round_to_integer", "":
		if policy == "" {
			return 0, ErrAmbiguousReturnPolicy
		}
		return reducers.RoundToInteger, nil
	case "preserve_float":
		return reducers.PreserveFloat, nil
	default:
		return 0, ErrAmbiguousReturnPolicy
	}
}

// Run executes the full Retrieve → Aggregate → Filter → Tally pipeline.
func (r *Runner) Run(req Request) (*Outcome, error) {
	sourceReports := make([]*report.Report, len(req.Sources))
	for i, src := range req.Sources {
		sourceReports[i] = r.runRetrieve(src)
	}

	aggregateInput := collectResults(sourceReports)
	successful := 0
	for _, rep := range sourceReports {
		if !rep.Failed() {
			successful++
		}
	}
	r.log.WithFields(logrus.Fields{
		"stage":      "retrieve",
		"sources":    len(req.Sources),
		"successful": successful,
	}).Debug("retrieve stage complete")

	aggregateReport := r.runStage(value.StageAggregate, req.AggregateScript, value.Array(aggregateInput))
	if aggregateReport.Failed() {
		r.log.WithFields(logrus.Fields{"stage": "aggregate", "error": aggregateReport.Result.String()}).Warn("aggregate stage failed")
		return &Outcome{SourceReports: sourceReports, AggregateReport: aggregateReport}, nil
	}

	filtered, ratio, liars := r.filterConsensus(aggregateReport.Result)
	r.log.WithFields(logrus.Fields{"stage": "filter", "consensus_ratio": ratio, "liars": len(liars)}).Debug("consensus filter complete")

	var tallyInput value.Value = value.Array(filtered)
	if _, isArr := aggregateReport.Result.(value.Array); !isArr {
		tallyInput = aggregateReport.Result
	}
	tallyReport := r.runStage(value.StageTally, req.TallyScript, tallyInput)
	tallyReport.Liars = liars
	tallyReport.PartialFailure = successful < len(req.Sources) && !tallyReport.Failed()
	if tallyReport.Failed() {
		r.log.WithFields(logrus.Fields{"stage": "tally", "error": tallyReport.Result.String()}).Warn("tally stage failed")
	}

	return &Outcome{
		SourceReports:   sourceReports,
		AggregateReport: aggregateReport,
		TallyReport:     tallyReport,
		ConsensusRatio:  ratio,
		Liars:           liars,
	}, nil
}

func (r *Runner) runRetrieve(src Source) *report.Report {
	return r.runStage(value.StageRetrieve, src.Script, src.Seed)
}

func (r *Runner) runStage(stage value.Stage, scriptBytes []byte, seed value.Value) *report.Report {
	rep := report.New()
	result, trace := r.interp.Execute(scriptBytes, seed, stage)
	rep.AppendStage(stage, result, trace)
	return rep
}

// collectResults builds the Aggregate stage's input array at the same
// length as reports: a failed source's Error value is kept at its
// original position rather than dropped, since errors do not abort the
// stage (spec §4.E step 1) — the Aggregate script itself is responsible
// for whatever it does with a position that is an Error.
func collectResults(reports []*report.Report) []value.Value {
	out := make([]value.Value, len(reports))
	for i, rep := range reports {
		out[i] = rep.Result
	}
	return out
}

// filterConsensus marks elements of a numeric aggregate-result array that
// lie more than one population standard deviation from the mean as
// Error(OutlierReveal), preserving the array's length and positions so it
// still lines up with the witness list (spec §4.E step 3). A position
// that already carries an Error from an earlier stage is a liar without
// needing a distance check. A non-Array aggregate result yields a nil slice
// (Run then hands that result to the tally unchanged), and an array with no
// numeric elements at all is returned as an unmarked copy: there is nothing
// to measure distance from.
func (r *Runner) filterConsensus(aggregateResult value.Value) ([]value.Value, float64, []int) {
	arr, ok := aggregateResult.(value.Array)
	if !ok {
		return nil, 0, nil
	}
	if len(arr) == 0 {
		return []value.Value(arr), 1.0, nil
	}

	floats := make([]float64, len(arr))
	isNumeric := make([]bool, len(arr))
	anyNumeric := false
	for i, v := range arr {
		if _, isErr := v.(*value.Error); isErr {
			continue
		}
		f, errv := value.AsFloat(v)
		if errv != nil {
			continue
		}
		floats[i] = float64(f)
		isNumeric[i] = true
		anyNumeric = true
	}
	if !anyNumeric {
		out := make([]value.Value, len(arr))
		copy(out, arr)
		return out, 1.0, nil
	}

	mean, count := 0.0, 0
	for i, f := range floats {
		if isNumeric[i] {
			mean += f
			count++
		}
	}
	mean /= float64(count)

	variance := 0.0
	for i, f := range floats {
		if isNumeric[i] {
			d := f - mean
			variance += d * d
		}
	}
	variance /= float64(count)
	stddev := math.Sqrt(variance)

	out := make([]value.Value, len(arr))
	var liars []int
	for i, v := range arr {
		switch {
		case !isNumeric[i]:
			if errv, isErr := v.(*value.Error); isErr {
				out[i] = errv
			} else {
				out[i] = value.NewError(value.OutlierReveal, value.StageTally, 0,
					"reveal is not numeric and cannot be compared for consensus").
					WithField("index", strconv.Itoa(i))
			}
			liars = append(liars, i)
		case stddev == 0 || math.Abs(floats[i]-mean) <= stddev:
			out[i] = v
		default:
			out[i] = value.NewError(value.OutlierReveal, value.StageTally, 0, "reveal lies outside the consensus band").
				WithField("index", strconv.Itoa(i))
			liars = append(liars, i)
		}
	}
	ratio := float64(len(arr)-len(liars)) / float64(len(arr))
	return out, ratio, liars
}
