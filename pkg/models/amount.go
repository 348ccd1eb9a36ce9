package models

import (
	"bytes"
	"math/big"

	"github.com/holiman/uint256"
)

// Amount is an unsigned integer quantity in minor units. The indexer sends it
// either as a JSON number or as a quoted decimal string.
type Amount struct {
	v uint256.Int
}

func NewAmount(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// ParseAmount parses a base 10 string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Big returns a copy of the amount as a big.Int.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalJSON writes a quoted decimal string. Values above 2^53 do not
// survive a float64 JSON parser.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.v.Dec() + `"`), nil
}

func (a *Amount) UnmarshalJSON(input []byte) error {
	input = bytes.TrimSpace(input)
	if bytes.Equal(input, []byte("null")) {
		a.v.Clear()
		return nil
	}
	input = bytes.Trim(input, `"`)
	return a.v.SetFromDecimal(string(input))
}
