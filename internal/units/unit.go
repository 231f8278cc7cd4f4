package units

import (
	"math"
	"strconv"
	"strings"
)

// term is one prefixed unit raised to an integer power.
type term struct {
	def    *definition
	prefix *prefix
	exp    int
}

func (t term) sameBase(o term) bool {
	return t.def == o.def && t.prefix == o.prefix
}

func (t term) scale() float64 {
	s := t.def.scale
	if t.prefix != nil {
		s *= t.prefix.factor
	}
	return s
}

func (t term) symbol() string {
	if t.prefix != nil {
		return t.prefix.symbol + t.def.symbol()
	}
	return t.def.symbol()
}

func (t term) name() string {
	if t.prefix != nil {
		return t.prefix.name + t.def.name()
	}
	return t.def.name()
}

// Unit is a resolved unit expression: a product of prefixed units and a
// numeric factor. The zero Unit is dimensionless.
//
// Units are immutable values and may be shared freely.
type Unit struct {
	terms  []term
	factor float64
}

// Dimensionless is the unit of pure numbers.
var Dimensionless = Unit{factor: 1}

func (u Unit) numericFactor() float64 {
	if u.factor == 0 {
		return 1
	}
	return u.factor
}

// Scale returns the factor that converts a magnitude in u to coherent SI base units.
func (u Unit) Scale() float64 {
	s := u.numericFactor()
	for _, t := range u.terms {
		s *= pow(t.scale(), t.exp)
	}
	return s
}

// offset is non-zero only for a lone affine unit such as degC.
func (u Unit) offset() float64 {
	if len(u.terms) != 1 || u.numericFactor() != 1 {
		return 0
	}
	t := u.terms[0]
	if t.exp != 1 || t.prefix != nil {
		return 0
	}
	return t.def.offset
}

// Dimension returns the SI dimension vector of u.
func (u Unit) Dimension() Dimension {
	var d Dimension
	for _, t := range u.terms {
		d = d.add(t.def.dim, t.exp)
	}
	return d
}

// IsDimensionless reports whether u has no physical dimension.
func (u Unit) IsDimensionless() bool {
	return u.Dimension().IsZero()
}

// mul returns u * o^sign.
func (u Unit) mul(o Unit, sign int) Unit {
	out := Unit{
		terms:  make([]term, 0, len(u.terms)+len(o.terms)),
		factor: u.numericFactor() * pow(o.numericFactor(), sign),
	}
	out.terms = append(out.terms, u.terms...)
	for _, t := range o.terms {
		t.exp *= sign
		merged := false
		for i := range out.terms {
			if out.terms[i].sameBase(t) {
				out.terms[i].exp += t.exp
				merged = true
				break
			}
		}
		if !merged {
			out.terms = append(out.terms, t)
		}
	}
	kept := out.terms[:0]
	for _, t := range out.terms {
		if t.exp != 0 {
			kept = append(kept, t)
		}
	}
	out.terms = kept
	return out
}

func (u Unit) pow(n int) Unit {
	out := Unit{terms: make([]term, len(u.terms)), factor: pow(u.numericFactor(), n)}
	for i, t := range u.terms {
		t.exp *= n
		out.terms[i] = t
	}
	if n == 0 {
		out.terms = nil
	}
	return out
}

// String returns the canonical short rendering, e.g. "T", "V/m", "W/(m·K)".
// A dimensionless unit without a factor renders as "".
func (u Unit) String() string {
	return u.render(func(t term) string { return t.symbol() }, "·", "/", superscript, true)
}

// LongName returns the long-form rendering, e.g. "volt / meter".
func (u Unit) LongName() string {
	if len(u.terms) == 0 && u.numericFactor() == 1 {
		return "dimensionless"
	}
	return u.render(func(t term) string { return t.name() }, " * ", " / ", func(n int) string {
		return " ** " + strconv.Itoa(n)
	}, false)
}

func (u Unit) render(label func(term) string, mulSep, divSep string, power func(int) string, groupDen bool) string {
	var num, den []string
	for _, t := range u.terms {
		s := label(t)
		switch {
		case t.exp == 1, t.exp == -1:
		case t.exp > 0:
			s += power(t.exp)
		default:
			s += power(-t.exp)
		}
		if t.exp > 0 {
			num = append(num, s)
		} else {
			den = append(den, s)
		}
	}

	var b strings.Builder
	if f := u.numericFactor(); f != 1 {
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		if len(num) > 0 {
			b.WriteString(" ")
		}
	}
	b.WriteString(strings.Join(num, mulSep))
	if len(den) == 0 {
		return b.String()
	}
	if b.Len() == 0 {
		b.WriteString("1")
	}
	b.WriteString(divSep)
	if groupDen && len(den) > 1 {
		b.WriteString("(" + strings.Join(den, mulSep) + ")")
	} else {
		b.WriteString(strings.Join(den, divSep))
	}
	return b.String()
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹', '-': '⁻',
}

func superscript(n int) string {
	var b strings.Builder
	for _, r := range strconv.Itoa(n) {
		b.WriteRune(superscripts[r])
	}
	return b.String()
}

func pow(x float64, n int) float64 {
	return math.Pow(x, float64(n))
}
