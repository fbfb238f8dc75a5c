package ops

import "radon-engine/internal/radon/value"

func init() {
	Register(value.KindArray, Identity, arrayIdentity)
	Register(value.KindArray, ArrayCount, arrayCount)
	Register(value.KindArray, ArrayFilter, arrayFilter)
	Register(value.KindArray, ArrayMap, arrayMap)
	Register(value.KindArray, ArrayReduce, arrayReduce)
	Register(value.KindArray, ArraySort, arraySort)
	Register(value.KindArray, ArrayGet, arrayGet)
	Register(value.KindArray, Get, arrayGet)
}

func arrayIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func arrayCount(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	a := receiver.(value.Array)
	return value.NewInteger(int64(len(a))), nil
}

func arrayGet(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	a := receiver.(value.Array)
	if len(args) == 0 {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "ArrayGet requires an index argument")
	}
	idx, errv := value.AsInteger(args[0])
	if errv != nil {
		return nil, errv
	}
	i := idx.V.Int64()
	if i < 0 || i >= int64(len(a)) {
		return nil, value.NewError(value.ArrayIndexNotFound, value.StageAggregate, 0, "index out of range").
			WithField("index", idx.String())
	}
	return a[i], nil
}

// arraySubscript parses every argument in args as a nested [opcode,
// args...] call, the wire shape of a subscript passed to ArrayMap and
// ArrayFilter (spec §4.D).
func arraySubscript(args []value.Value) ([]Call, *value.Error) {
	calls := make([]Call, 0, len(args))
	for _, a := range args {
		c, errv := ParseCall(a)
		if errv != nil {
			return nil, errv
		}
		calls = append(calls, c)
	}
	return calls, nil
}

func arrayMap(receiver value.Value, args []value.Value, ev Evaluator) (value.Value, *value.Error) {
	a := receiver.(value.Array)
	subscript, errv := arraySubscript(args)
	if errv != nil {
		return nil, errv
	}
	out := make(value.Array, len(a))
	for i, item := range a {
		result, errv := ev.Eval(item, subscript)
		if errv != nil {
			return nil, errv
		}
		out[i] = result
	}
	return out, nil
}

func arrayFilter(receiver value.Value, args []value.Value, ev Evaluator) (value.Value, *value.Error) {
	a := receiver.(value.Array)
	subscript, errv := arraySubscript(args)
	if errv != nil {
		return nil, errv
	}
	out := make(value.Array, 0, len(a))
	for _, item := range a {
		result, errv := ev.Eval(item, subscript)
		if errv != nil {
			return nil, errv
		}
		b, ok := result.(value.Boolean)
		if !ok {
			return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
				"ArrayFilter subscript must return Boolean, got "+result.Kind().String()).
				WithField("reason", "array_filter_wrong_subscript").
				WithField("got_kind", result.Kind().String())
		}
		if bool(b) {
			out = append(out, item)
		}
	}
	return out, nil
}

// arraySort implements Array.sort(keys: [String], asc: Boolean): a
// stable sort over the receiver. With an empty keys argument the receiver
// must be an array of orderable primitives (Integer, Float, String) and
// is sorted by value directly; with a non-empty keys argument the
// receiver must be an array of Map and is sorted by the lexicographic
// tuple of values at keys, a Map missing one of the keys sorting as less
// than any Map carrying it (DESIGN.md Open Questions item 2).
func arraySort(receiver value.Value, args []value.Value, _ Evaluator) (value.Value, *value.Error) {
	a := receiver.(value.Array)
	if len(args) < 2 {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
			"ArraySort requires a keys Array and an asc Boolean argument")
	}
	keysArg, ok := args[0].(value.Array)
	if !ok {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "ArraySort keys must be an Array of String")
	}
	keys := make([]string, len(keysArg))
	for i, k := range keysArg {
		s, ok := k.(value.String)
		if !ok {
			return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "ArraySort keys must be Strings")
		}
		keys[i] = string(s)
	}
	asc, ok := args[1].(value.Boolean)
	if !ok {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "ArraySort asc must be a Boolean")
	}

	var idx []int
	var sortErr *value.Error
	if len(keys) == 0 {
		idx, sortErr = sortIndices(len(a), bool(asc), func(i, j int) (int, *value.Error) {
			return compareValues(a[i], a[j])
		})
	} else {
		maps := make([]*value.Map, len(a))
		for i, v := range a {
			m, ok := v.(*value.Map)
			if !ok {
				return nil, value.NewError(value.UnsupportedOpNonHomogeneous, value.StageAggregate, 0,
					"ArraySort with a non-empty keys argument requires an Array of Map")
			}
			maps[i] = m
		}
		idx, sortErr = sortIndices(len(a), bool(asc), func(i, j int) (int, *value.Error) {
			return mapTupleCompare(maps[i], maps[j], keys)
		})
	}
	if sortErr != nil {
		return nil, sortErr
	}

	out := make(value.Array, len(a))
	for i, j := range idx {
		out[i] = a[j]
	}
	return out, nil
}

// compareValues three-way compares two Values of the same orderable Kind
// (Integer, Float, String). Differing Kinds, or a Kind comparisons are not
// defined for, is an error.
func compareValues(a, b value.Value) (int, *value.Error) {
	if a.Kind() != b.Kind() {
		return 0, value.NewError(value.UnsupportedOpNonHomogeneous, value.StageAggregate, 0,
			"ArraySort values must share one Kind")
	}
	switch av := a.(type) {
	case value.Integer:
		return av.V.Cmp(b.(value.Integer).V), nil
	case value.Float:
		bv := b.(value.Float)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case value.String:
		bv := b.(value.String)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0,
			"ArraySort value kind is not orderable: "+a.Kind().String())
	}
}

// mapTupleCompare three-way compares two Map elements by the lexicographic
// tuple of their values at keys, in order, stopping at the first key the
// two disagree on. A key present on one Map but not the other sorts the
// Map missing it as less.
func mapTupleCompare(ma, mb *value.Map, keys []string) (int, *value.Error) {
	for _, k := range keys {
		va, aok := ma.Get(k)
		vb, bok := mb.Get(k)
		switch {
		case !aok && !bok:
			continue
		case !aok:
			return -1, nil
		case !bok:
			return 1, nil
		}
		c, errv := compareValues(va, vb)
		if errv != nil {
			return 0, errv
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// sortIndices returns a permutation of [0,n) ordered by compare, stable
// across ties, reversed when asc is false.
func sortIndices(n int, asc bool, compare func(i, j int) (int, *value.Error)) ([]int, *value.Error) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var cmpErr *value.Error
	less := func(i, j int) bool {
		if cmpErr != nil {
			return false
		}
		c, errv := compare(idx[i], idx[j])
		if errv != nil {
			cmpErr = errv
			return false
		}
		if !asc {
			c = -c
		}
		return c < 0
	}
	stableSort(idx, less)
	return idx, cmpErr
}

func stableSort(idx []int, less func(i, j int) bool) {
	// insertion sort: stable and adequate for script-bounded array sizes.
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
}

func arrayReduce(receiver value.Value, args []value.Value, ev Evaluator) (value.Value, *value.Error) {
	a := receiver.(value.Array)
	if len(args) == 0 {
		return nil, value.NewError(value.UnsupportedOperator, value.StageAggregate, 0, "ArrayReduce requires a reducer code argument")
	}
	code, errv := value.AsInteger(args[0])
	if errv != nil {
		return nil, value.NewError(value.UnsupportedReducer, value.StageAggregate, 0, "reducer code must be an integer")
	}
	return ev.Reduce(a, code.V.Int64())
}
