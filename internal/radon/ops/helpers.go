package ops

import "math/big"

// bigFromFloat converts an already-rounded float64 (the result of Ceil,
// Floor, Round, or Trunc — never a fractional value) into a big.Int.
func bigFromFloat(f float64) *big.Int {
	bi, _ := big.NewFloat(f).Int(nil)
	return bi
}
