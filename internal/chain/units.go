package chain

import "math/big"

// The ledger denominates all value in wei (18-decimal minor units). The
// conversion scale is fixed here once; nothing else in the codebase may
// multiply or divide by it.
const weiDecimals = 18

var weiPerUnit = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(weiDecimals), nil))

// ToWei converts a decimal amount in whole currency units to wei, truncating
// any precision beyond 18 decimals.
func ToWei(amount float64) *big.Int {
	f := new(big.Float).SetFloat64(amount)
	f.Mul(f, weiPerUnit)
	wei, _ := f.Int(nil)
	return wei
}

// FromWei converts a wei amount back to whole currency units.
func FromWei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, weiPerUnit)
	out, _ := f.Float64()
	return out
}
