// Package value implements the RADON value model: the closed set of typed
// runtime values the script interpreter operates on, their deterministic
// CBOR encoding, and the conversion matrix between primitive kinds.
//
// Every Value is one of Boolean, Integer, Float, String, Bytes, Array, Map,
// Mixed, or Error. Dispatch on a Value is always a two-level lookup: the
// Kind first, the opcode second (see internal/radon/ops) — there is no
// virtual-method tower here, only a tagged union and monomorphic switches.
package value

import "fmt"

// Kind categorizes the fundamental shape of a Value. It is used as the
// first level of operator dispatch.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindInteger
	KindFloat
	KindString
	KindBytes
	KindArray
	KindMap
	KindMixed
	KindError
)

var kindNames = [...]string{
	KindBoolean: "Boolean",
	KindInteger: "Integer",
	KindFloat:   "Float",
	KindString:  "String",
	KindBytes:   "Bytes",
	KindArray:   "Array",
	KindMap:     "Map",
	KindMixed:   "Mixed",
	KindError:   "Error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is the interface every RADON runtime value implements. It carries
// no hidden state: equality between two Values of the same Kind is always
// structural.
type Value interface {
	// Kind returns the fundamental category of this value, used for
	// operator dispatch.
	Kind() Kind

	// String returns a debug rendering, used in error messages and logs.
	// It is never part of the consensus-critical wire format.
	String() string
}
