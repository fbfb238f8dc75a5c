package value

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Boolean is a RADON boolean value.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Integer is a RADON integer value, wide enough (i128-equivalent via
// math/big.Int) to lossy-free up-cast any narrower integer kind. Callers
// must treat the *big.Int as immutable once wrapped in an Integer.
type Integer struct {
	V *big.Int
}

// NewInteger wraps an int64 as an Integer.
func NewInteger(n int64) Integer { return Integer{V: big.NewInt(n)} }

func (Integer) Kind() Kind { return KindInteger }
func (i Integer) String() string {
	if i.V == nil {
		return "0"
	}
	return i.V.String()
}

// Float is an IEEE-754 double. NaN and ±Inf must never cross an operator
// boundary as a Float — operators that would produce one fail with
// MathDomain instead (enforced in internal/radon/ops).
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (f Float) String() string {
	s := fmt.Sprintf("%v", float64(f))
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// String is UTF-8 text.
type String string

func (String) Kind() Kind { return KindString }
func (s String) String() string { return string(s) }

// Bytes is an opaque byte sequence.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }
func (b Bytes) String() string { return fmt.Sprintf("0x%x", []byte(b)) }

// Array is an ordered sequence of Values. It is not required to be
// homogeneous at rest — homogeneity is only demanded by reducers.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// IsHomogeneous reports whether every element shares the first element's
// Kind. An empty array is vacuously homogeneous.
func (a Array) IsHomogeneous() bool {
	if len(a) == 0 {
		return true
	}
	head := a[0].Kind()
	for _, v := range a[1:] {
		if v.Kind() != head {
			return false
		}
	}
	return true
}

// Map is an insertion-ordered mapping of String keys to Values. Encode
// writes its keys in canonical CBOR key order (see cbor.go); Keys()
// preserves insertion order for user-visible listing.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap builds an empty, insertion-ordered Map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

func (*Map) Kind() Kind { return KindMap }

func (m *Map) String() string {
	parts := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, m.values[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set inserts or overwrites the value at key, preserving the original
// insertion position on overwrite.
func (m *Map) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value at key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// SortedKeys returns the keys in byte-lexicographic ascending order.
func (m *Map) SortedKeys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Values returns the values in insertion order.
func (m *Map) Values() []Value {
	out := make([]Value, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.values[k]
	}
	return out
}
