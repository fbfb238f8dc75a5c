package ops

import (
	"crypto/sha256"
	"encoding/hex"

	"radon-engine/internal/radon/value"
)

func init() {
	Register(value.KindBytes, Identity, bytesIdentity)
	Register(value.KindBytes, BytesAsString, bytesAsString)
	Register(value.KindBytes, BytesHash, bytesHash)
}

func bytesIdentity(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	return receiver, nil
}

func bytesAsString(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	b := receiver.(value.Bytes)
	return value.String(hex.EncodeToString([]byte(b))), nil
}

// bytesHash returns the SHA-256 digest of the receiver (spec §4.B: the only
// digest algorithm the engine exposes, chosen for determinism and because
// it is what the teacher's own consensus code already links).
func bytesHash(receiver value.Value, _ []value.Value, _ Evaluator) (value.Value, *value.Error) {
	b := receiver.(value.Bytes)
	sum := sha256.Sum256([]byte(b))
	return value.Bytes(sum[:]), nil
}
