// Package reducers implements the RADON Reducers: Mode, AverageMean,
// AverageMedian, DeviationStandard, HashConcatenate, and Unwrap. Every
// reducer consumes a homogeneous (or empty) Array and produces a single
// Value; reducers never see the script interpreter, only the array
// ArrayReduce has already resolved.
package reducers

import (
	"crypto/sha256"
	"math"
	"math/big"
	"sort"

	"radon-engine/internal/radon/value"
)

// Code is the reducer's numeric identifier, carried as the first (and
// only) argument to the ArrayReduce operator.
type Code uint8

const (
	Min                      Code = 0x00
	Max                      Code = 0x01
	Mode                     Code = 0x02
	AverageMean              Code = 0x03
	AverageMeanWeighted      Code = 0x04
	AverageMedian            Code = 0x05
	AverageMedianWeighted    Code = 0x06
	DeviationStandard        Code = 0x07
	DeviationAverageAbsolute Code = 0x08
	DeviationMedianAbsolute  Code = 0x09
	DeviationMaximumAbsolute Code = 0x0A
	HashConcatenate          Code = 0x0B
	Unwrap                   Code = 0x0C
)

// implemented lists the reducer codes this engine actually carries out.
// Everything else decodes fine (it is a valid RadonReducers discriminant)
// but dispatches to UnsupportedReducer, same as an unrecognized code.
var implemented = map[Code]bool{
	Mode: true, AverageMean: true, AverageMedian: true,
	DeviationStandard: true, HashConcatenate: true, Unwrap: true,
}

// ReturnPolicy controls whether AverageMean rounds its result back to an
// Integer or preserves it as a Float. It must be fixed ahead of time by the
// caller (see pkg/config's AverageMeanReturnPolicy) — letting it vary
// between the retrieve and tally stages of the same request would let two
// honest witnesses disagree on a value's type alone.
type ReturnPolicy int

const (
	RoundToInteger ReturnPolicy = iota
	PreserveFloat
)

// Context carries the per-request settings a reducer's availability or
// numeric behavior depends on.
type Context struct {
	ActiveWips   map[string]struct{}
	ReturnPolicy ReturnPolicy
}

func (c Context) wipActive(name string) bool {
	if c.ActiveWips == nil {
		return false
	}
	_, ok := c.ActiveWips[name]
	return ok
}

// Reduce applies the reducer identified by code to input. Homogeneity is
// checked before the reducer code is even inspected: a non-homogeneous,
// non-empty array is always UnsupportedOpNonHomogeneous, regardless of
// whether code names an implemented reducer, an unimplemented one, or
// garbage — the shape of the input is rejected before its meaning is.
func Reduce(input value.Array, code Code, ctx Context) (value.Value, *value.Error) {
	if len(input) > 0 && !input.IsHomogeneous() {
		return nil, value.NewError(value.UnsupportedOpNonHomogeneous, value.StageAggregate, 0,
			"reduce requires a homogeneous array")
	}

	unsupported := func(reason string) (value.Value, *value.Error) {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, reason).
			WithField("reducer_code", codeName(code))
	}

	if !implemented[code] {
		return unsupported("reducer not implemented")
	}

	switch code {
	case Mode:
		return mode(input)
	case AverageMean:
		return average(input, ctx.ReturnPolicy)
	case AverageMedian:
		if !ctx.wipActive("wip0017") {
			return unsupported("AverageMedian requires wip0017")
		}
		return median(input, ctx.ReturnPolicy)
	case DeviationStandard:
		return deviationStandard(input)
	case HashConcatenate:
		if !ctx.wipActive("wip0019") {
			return unsupported("HashConcatenate requires wip0019")
		}
		return hashConcatenate(input)
	case Unwrap:
		if !ctx.wipActive("wip0019") {
			return unsupported("Unwrap requires wip0019")
		}
		return unwrap(input)
	default:
		return unsupported("reducer not implemented")
	}
}

func codeName(c Code) string {
	names := map[Code]string{
		Min: "Min", Max: "Max", Mode: "Mode", AverageMean: "AverageMean",
		AverageMeanWeighted: "AverageMeanWeighted", AverageMedian: "AverageMedian",
		AverageMedianWeighted: "AverageMedianWeighted", DeviationStandard: "DeviationStandard",
		DeviationAverageAbsolute: "DeviationAverageAbsolute", DeviationMedianAbsolute: "DeviationMedianAbsolute",
		DeviationMaximumAbsolute: "DeviationMaximumAbsolute", HashConcatenate: "HashConcatenate",
		Unwrap: "Unwrap",
	}
	if n, ok := names[c]; ok {
		return n
	}
	return "Unknown"
}

func asFloats(input value.Array) ([]float64, *value.Error) {
	out := make([]float64, len(input))
	for i, v := range input {
		f, errv := value.AsFloat(v)
		if errv != nil {
			return nil, errv
		}
		out[i] = float64(f)
	}
	return out, nil
}

func mode(input value.Array) (value.Value, *value.Error) {
	if len(input) == 0 {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "Mode requires a non-empty array")
	}
	type bucket struct {
		v     value.Value
		count int
	}
	order := make([]string, 0, len(input))
	buckets := make(map[string]*bucket)
	for _, v := range input {
		key := v.String()
		if b, ok := buckets[key]; ok {
			b.count++
		} else {
			buckets[key] = &bucket{v: v, count: 1}
			order = append(order, key)
		}
	}

	best := 0
	for _, key := range order {
		if buckets[key].count > best {
			best = buckets[key].count
		}
	}
	var winner value.Value
	ties := 0
	for _, key := range order {
		if buckets[key].count == best {
			ties++
			winner = buckets[key].v
		}
	}
	if ties > 1 {
		return nil, value.NewError(value.ModeTie, value.StageAggregate, 0, "multiple values tie for Mode")
	}
	return winner, nil
}

func average(input value.Array, policy ReturnPolicy) (value.Value, *value.Error) {
	if len(input) == 0 {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "AverageMean requires a non-empty array")
	}
	floats, errv := asFloats(input)
	if errv != nil {
		return nil, errv
	}
	sum := 0.0
	for _, f := range floats {
		sum += f
	}
	mean := sum / float64(len(floats))
	return applyReturnPolicy(mean, policy)
}

func median(input value.Array, policy ReturnPolicy) (value.Value, *value.Error) {
	if len(input) == 0 {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "AverageMedian requires a non-empty array")
	}
	floats, errv := asFloats(input)
	if errv != nil {
		return nil, errv
	}
	sorted := append([]float64(nil), floats...)
	sort.Float64s(sorted)

	n := len(sorted)
	var m float64
	if n%2 == 1 {
		m = sorted[n/2]
	} else {
		m = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return applyReturnPolicy(m, policy)
}

func applyReturnPolicy(f float64, policy ReturnPolicy) (value.Value, *value.Error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, value.NewError(value.MathDomain, value.StageAggregate, 0, "reducer result is not finite")
	}
	if policy == PreserveFloat {
		return value.Float(f), nil
	}
	bi, _ := big.NewFloat(math.RoundToEven(f)).Int(nil)
	return value.Integer{V: bi}, nil
}

func deviationStandard(input value.Array) (value.Value, *value.Error) {
	if len(input) == 0 {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "DeviationStandard requires a non-empty array")
	}
	floats, errv := asFloats(input)
	if errv != nil {
		return nil, errv
	}
	sum := 0.0
	for _, f := range floats {
		sum += f
	}
	mean := sum / float64(len(floats))

	variance := 0.0
	for _, f := range floats {
		d := f - mean
		variance += d * d
	}
	variance /= float64(len(floats))
	return value.Float(math.Sqrt(variance)), nil
}

func hashConcatenate(input value.Array) (value.Value, *value.Error) {
	h := sha256.New()
	for _, v := range input {
		data, err := value.Encode(v)
		if err != nil {
			return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "cannot encode element for HashConcatenate: "+err.Error())
		}
		h.Write(data)
	}
	return value.Bytes(h.Sum(nil)), nil
}

func unwrap(input value.Array) (value.Value, *value.Error) {
	if len(input) != 1 {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "Unwrap requires exactly one element")
	}
	return input[0], nil
}
