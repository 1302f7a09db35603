package ecm

import "math/big"

func bigFromDecimal(s string) *big.Int {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("ecm: internal error: invalid encoding")
	}
	return b
}
