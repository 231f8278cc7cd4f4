package units

import (
	"strconv"
	"strings"
)

// Base dimension indices.
const (
	Length = iota
	Mass
	Time
	Current
	Temperature
	Substance
	Luminosity
	numDimensions
)

var dimensionNames = [numDimensions]string{
	"length", "mass", "time", "current", "temperature", "substance", "luminosity",
}

// Dimension is an exponent vector over the seven SI base dimensions.
type Dimension [numDimensions]int

func dim(pairs ...int) Dimension {
	var d Dimension
	for i := 0; i+1 < len(pairs); i += 2 {
		d[pairs[i]] = pairs[i+1]
	}
	return d
}

func (d Dimension) add(o Dimension, times int) Dimension {
	for i := range d {
		d[i] += o[i] * times
	}
	return d
}

// IsZero reports whether d is dimensionless.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

// String renders d as e.g. "[length]/[time]^2", or "dimensionless".
func (d Dimension) String() string {
	if d.IsZero() {
		return "dimensionless"
	}
	var num, den []string
	for i, exp := range d {
		switch {
		case exp == 1:
			num = append(num, "["+dimensionNames[i]+"]")
		case exp > 1:
			num = append(num, "["+dimensionNames[i]+"]^"+strconv.Itoa(exp))
		case exp == -1:
			den = append(den, "["+dimensionNames[i]+"]")
		case exp < -1:
			den = append(den, "["+dimensionNames[i]+"]^"+strconv.Itoa(-exp))
		}
	}
	out := strings.Join(num, "*")
	if out == "" {
		out = "1"
	}
	if len(den) > 0 {
		out += "/" + strings.Join(den, "/")
	}
	return out
}
