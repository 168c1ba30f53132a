package domain

import (
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

var (
	Big0 = big.NewInt(0)
	Big1 = big.NewInt(1)
	Big2 = big.NewInt(2)
)

// BpsDenominator is 100% in basis points
const BpsDenominator = 10000

type Address string

const EmptyAddress = Address("")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

func (a Address) String() string {
	return string(a)
}

// AssetId identifies a unique asset in the registry, a decimal token id
type AssetId string

func (i AssetId) String() string {
	return string(i)
}

// ParseAmount parses a non-negative decimal integer
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("invalid amount %q: %w", s, ErrInvalidNumberFormat)
	}
	if v.Sign() < 0 {
		return nil, xerrors.Errorf("negative amount %q: %w", s, ErrInvalidNumberFormat)
	}
	return v, nil
}

// MustAmount is ParseAmount for constants
func MustAmount(s string) *big.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// MulBps returns floor(amount * bps / 10000)
func MulBps(amount *big.Int, bps uint16) *big.Int {
	res := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return res.Quo(res, big.NewInt(BpsDenominator))
}

// IsValidBps reports whether bps is within [0, 10000]
func IsValidBps(bps uint16) bool {
	return bps <= BpsDenominator
}

// CopyAmount returns a copy of v, zero when v is nil
func CopyAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
