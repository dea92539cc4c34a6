// Package economy provides the currency ledger and the big-number type it
// counts in. Balances in an idle game outgrow float64 integer precision long
// before they outgrow float64 range, so amounts are kept in engineering
// notation: a mantissa in [1, 1000) and an exponent that is a multiple of 3.
package economy

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// maxMagnitude is the largest exponent gap at which the smaller operand still
// contributes to a sum. Beyond it the smaller operand is treated as zero.
const maxMagnitude = 12

const tenCubed = 1e3

// Conway–Wechsler names for powers of ten that are multiples of three.
var expNames = map[int]string{
	0:  "",
	3:  "thousand",
	6:  "million",
	9:  "billion",
	12: "trillion",
	15: "quadrillion",
	18: "quintillion",
	21: "sextillion",
	24: "septillion",
	27: "octillion",
	30: "nonillion",
	33: "decillion",
	36: "undecillion",
	39: "duodecillion",
	42: "tredecillion",
	45: "quattuordecillion",
	48: "quindecillion",
	51: "sedecillion",
	54: "septendecillion",
	57: "octodecillion",
	60: "novendecillion",
	63: "vigintillion",
	66: "unvigintillion",
	69: "duovigintillion",
	72: "tresvigintillion",
	75: "quattuorvigintillion",
	78: "quinvigintillion",
	81: "sesvigintillion",
	84: "septemvigintillion",
	87: "octovigintillion",
	90: "novemvigintillion",
	93: "trigintillion",
	303: "centillion",
}

// BigNum is a signed amount in engineering notation. The zero value is zero.
// Operations return new values and never modify their operands.
type BigNum struct {
	Value    float64 `json:"value"`
	Exp      int     `json:"exponent"`
	Negative bool    `json:"negative"`
}

// FromFloat converts f into normalized form.
func FromFloat(f float64) BigNum {
	return normalized(f, 0)
}

// New builds a BigNum from a mantissa and exponent and normalizes it.
func New(value float64, exp int) BigNum {
	return normalized(value, exp)
}

func normalized(v float64, exp int) BigNum {
	if v == 0 || math.IsNaN(v) {
		return BigNum{}
	}
	neg := v < 0
	v = math.Abs(v)
	for v >= tenCubed {
		v /= tenCubed
		exp += 3
	}
	for v < 1 && exp > 0 {
		v *= tenCubed
		exp -= 3
	}
	return BigNum{Value: v, Exp: exp, Negative: neg}
}

func (b BigNum) signed() float64 {
	if b.Negative {
		return -b.Value
	}
	return b.Value
}

// valueAt returns the signed mantissa re-expressed at a larger exponent.
func (b BigNum) valueAt(exp int) float64 {
	d := exp - b.Exp
	if d <= 0 {
		return b.signed()
	}
	if d > maxMagnitude {
		return 0
	}
	return b.signed() / math.Pow(10, float64(d))
}

// Add returns b + o.
func (b BigNum) Add(o BigNum) BigNum {
	exp := b.Exp
	if o.Exp > exp {
		exp = o.Exp
	}
	return normalized(b.valueAt(exp)+o.valueAt(exp), exp)
}

// Sub returns b - o.
func (b BigNum) Sub(o BigNum) BigNum {
	return b.Add(o.Neg())
}

// Neg returns -b.
func (b BigNum) Neg() BigNum {
	if b.IsZero() {
		return b
	}
	b.Negative = !b.Negative
	return b
}

// Mul returns b scaled by factor. Negative factors are ignored.
func (b BigNum) Mul(factor float64) BigNum {
	if factor < 0 {
		return b
	}
	return normalized(b.signed()*factor, b.Exp)
}

// Div returns b divided by divisor. Non-positive divisors are ignored.
func (b BigNum) Div(divisor float64) BigNum {
	if divisor <= 0 {
		return b
	}
	return normalized(b.signed()/divisor, b.Exp)
}

// Cmp returns -1, 0 or +1 as b is less than, equal to, or greater than o.
func (b BigNum) Cmp(o BigNum) int {
	d := b.Sub(o)
	switch {
	case d.IsZero():
		return 0
	case d.Negative:
		return -1
	default:
		return 1
	}
}

// IsZero reports whether b is zero.
func (b BigNum) IsZero() bool {
	return b.Value == 0
}

// Float64 returns b as a float64. Very large values become +Inf.
func (b BigNum) Float64() float64 {
	return b.signed() * math.Pow(10, float64(b.Exp))
}

// ExpName returns the name of b's power of ten, e.g. "million".
func (b BigNum) ExpName() string {
	if name, ok := expNames[b.Exp]; ok {
		return name
	}
	return "e" + strconv.Itoa(b.Exp)
}

// String renders b as "12.5 million" (two decimals at most).
func (b BigNum) String() string {
	sign := ""
	if b.Negative {
		sign = "-"
	}
	mantissa := humanize.FtoaWithDigits(b.Value, 2)
	if b.Exp == 0 {
		return sign + mantissa
	}
	return fmt.Sprintf("%s%s %s", sign, mantissa, b.ExpName())
}
