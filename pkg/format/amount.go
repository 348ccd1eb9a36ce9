package format

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// NotAvailable is displayed wherever a value cannot be derived.
	NotAvailable = "N/A"

	// AlgoDecimals is the fixed precision of the native currency.
	AlgoDecimals = 6

	// MaxAssetDecimals is the largest precision an asset may declare.
	MaxAssetDecimals = 19

	// SafeIntegerMax is the largest integer a float64 holds exactly.
	SafeIntegerMax = 1<<53 - 1

	microPerAlgo = 1000000
)

var (
	safeMax = big.NewInt(SafeIntegerMax)
	safeMin = big.NewInt(-SafeIntegerMax)
)

// FormatAsaAmountWithDecimal renders an amount given in minor units as
// whole.fraction, where fraction always has exactly decimals digits. A nil
// amount is rendered as zero. More than MaxAssetDecimals decimals is
// rendered as N/A.
//
//	FormatAsaAmountWithDecimal(big.NewInt(123456), 6) == "0.123456"
//	FormatAsaAmountWithDecimal(big.NewInt(5), 0)      == "5."
func FormatAsaAmountWithDecimal(amount *big.Int, decimals uint32) string {
	if decimals > MaxAssetDecimals {
		return NotAvailable
	}
	if amount == nil {
		amount = new(big.Int)
	}
	d := decimal.NewFromBigInt(amount, -int32(decimals))
	if decimals == 0 {
		return d.String() + "."
	}
	return d.StringFixed(int32(decimals))
}

// MicroAlgosToAlgos renders a microalgo amount with the native six decimals.
// Inputs in the safe integer range take a native int64 path. Anything larger
// goes through arbitrary precision decimal division.
func MicroAlgosToAlgos(micro *big.Int) string {
	if micro == nil {
		micro = new(big.Int)
	}
	if inSafeRange(micro) {
		v := micro.Int64()
		sign := ""
		if v < 0 {
			sign = "-"
			v = -v
		}
		return fmt.Sprintf("%s%d.%06d", sign, v/microPerAlgo, v%microPerAlgo)
	}
	return FormatAsaAmountWithDecimal(micro, AlgoDecimals)
}

// MicroAlgosToAlgosUint is MicroAlgosToAlgos for native integers.
func MicroAlgosToAlgosUint(micro uint64) string {
	return MicroAlgosToAlgos(new(big.Int).SetUint64(micro))
}

func inSafeRange(v *big.Int) bool {
	return v.Cmp(safeMax) <= 0 && v.Cmp(safeMin) >= 0
}
