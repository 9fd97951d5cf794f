// Package units translates quantities between nominal sale units (piece,
// pack, carton) and base units using a product's "a:b:c" ratio string.
package units

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Unit int

const (
	Piece Unit = iota
	Pack
	Carton
)

const (
	UnitPiece  = "piece"
	UnitPack   = "pack"
	UnitCarton = "carton"
)

// ParseUnit maps a unit tag to its Unit. Unknown tags are treated as pieces.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case UnitPack:
		return Pack
	case UnitCarton:
		return Carton
	default:
		return Piece
	}
}

func (u Unit) String() string {
	switch u {
	case Pack:
		return UnitPack
	case Carton:
		return UnitCarton
	default:
		return UnitPiece
	}
}

// Ratio holds the base units contained in one piece, pack and carton.
type Ratio struct {
	PerPiece  int64
	PerPack   int64
	PerCarton int64
}

var defaultRatio = Ratio{PerPiece: 1, PerPack: 1, PerCarton: 1}

// ParseRatio parses an "a:b:c" ratio string. Anything malformed (wrong arity,
// non-numeric, non-positive) yields the 1:1:1 fallback; callers never see an
// error because stored ratios predating the three-part format are common.
func ParseRatio(s string) Ratio {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return defaultRatio
	}

	vals := make([]int64, 3)
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n <= 0 {
			return defaultRatio
		}
		vals[i] = n
	}

	return Ratio{PerPiece: vals[0], PerPack: vals[1], PerCarton: vals[2]}
}

// Factor returns the base units represented by one of the given unit.
func (r Ratio) Factor(u Unit) int64 {
	switch u {
	case Pack:
		return r.PerPack
	case Carton:
		return r.PerCarton
	default:
		return r.PerPiece
	}
}

// String renders the canonical "a:b:c" form.
func (r Ratio) String() string {
	return strconv.FormatInt(r.PerPiece, 10) + ":" +
		strconv.FormatInt(r.PerPack, 10) + ":" +
		strconv.FormatInt(r.PerCarton, 10)
}

// ToBase converts a quantity of the given unit to base units.
func ToBase(ratio string, quantity int64, u Unit) int64 {
	return quantity * ParseRatio(ratio).Factor(u)
}

// ScalePrice returns the price for one of the given unit from the per-piece
// price, using the same multiplier as ToBase so quantity and price agree.
func ScalePrice(pricePerPiece decimal.Decimal, ratio string, u Unit) decimal.Decimal {
	return pricePerPiece.Mul(decimal.NewFromInt(ParseRatio(ratio).Factor(u)))
}
