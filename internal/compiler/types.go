package compiler

// Type is the compile-time upper bound on an expression's runtime type.
type Type int

const (
	TypeNumber Type = iota + 1
	TypeString
	TypeBoolean
	TypeUnknown

	// TypeNumberNaN is a number that may be NaN. Host arithmetic produces NaN
	// from apparently numeric operands (0 / 0, Infinity - Infinity), so every
	// such operation is tagged with this rather than TypeNumber.
	TypeNumberNaN
)

func (t Type) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeUnknown:
		return "unknown"
	case TypeNumberNaN:
		return "number_or_nan"
	}
	return "invalid"
}

// Host library members referenced by generated pen code.
const (
	penExt   = "runtime.ext_pen"
	penState = penExt + "._getPenState(target)"
)

// graphicEffects are the effect names a target accepts; any other name is
// dropped at compile time.
var graphicEffects = map[string]bool{
	"color":      true,
	"fisheye":    true,
	"whirl":      true,
	"pixelate":   true,
	"mosaic":     true,
	"brightness": true,
	"ghost":      true,
}
