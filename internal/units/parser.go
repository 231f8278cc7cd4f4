package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// maxExponent bounds every power in a unit expression.
const maxExponent = 64

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	exp   int // trailing exponent on identifiers ("m3", "m²"); 0 when absent
}

var fromSuperscript = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9', '⁻': '-',
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '°' || r == '%'
}

func tokenize(spec string) ([]token, error) {
	var tokens []token
	rs := []rune(spec)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			tokens = append(tokens, token{kind: tokPow, text: "**"})
			i += 2
		case r == '^':
			tokens = append(tokens, token{kind: tokPow, text: "^"})
			i++
		case r == '*' || r == '·' || r == '×' || r == '⋅':
			tokens = append(tokens, token{kind: tokMul, text: string(r)})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokDiv, text: "/"})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case unicode.IsDigit(r) || r == '.' || r == '-' || r == '+':
			j := i + 1
			for j < len(rs) {
				c := rs[j]
				if unicode.IsDigit(c) || c == '.' {
					j++
					continue
				}
				if (c == 'e' || c == 'E') && j+1 < len(rs) && (unicode.IsDigit(rs[j+1]) || rs[j+1] == '-' || rs[j+1] == '+') {
					j += 2
					continue
				}
				break
			}
			text := string(rs[i:j])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q in %q", ErrInvalidUnit, text, spec)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v})
			i = j
		case isIdentRune(r):
			j := i + 1
			for j < len(rs) && isIdentRune(rs[j]) {
				j++
			}
			tok := token{kind: tokIdent, text: string(rs[i:j])}
			k := j
			var digits strings.Builder
			for k < len(rs) {
				if d, ok := fromSuperscript[rs[k]]; ok {
					digits.WriteRune(d)
					k++
					continue
				}
				if unicode.IsDigit(rs[k]) {
					digits.WriteRune(rs[k])
					k++
					continue
				}
				break
			}
			if digits.Len() > 0 {
				n, err := strconv.Atoi(digits.String())
				if err != nil || n == 0 {
					return nil, fmt.Errorf("%w: bad exponent on %q in %q", ErrInvalidUnit, tok.text, spec)
				}
				if n > maxExponent {
					return nil, fmt.Errorf("%w: exponent %d out of range in %q", ErrInvalidUnit, n, spec)
				}
				tok.exp = n
			}
			tokens = append(tokens, tok)
			i = k
		default:
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidUnit, string(r), spec)
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

// parser is a recursive-descent parser over unit expressions:
//
//	expr   = power { ("*" | "/" | implicit) power }
//	power  = atom [ ("**" | "^") integer ]
//	atom   = number | name | "(" expr ")"
type parser struct {
	spec   string
	tokens []token
	pos    int
	lookup func(string) (term, bool)
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parse() (Unit, error) {
	if p.peek().kind == tokEOF {
		return Dimensionless, nil
	}
	u, err := p.expr()
	if err != nil {
		return Unit{}, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return Unit{}, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidUnit, t.text, p.spec)
	}
	return u, nil
}

func (p *parser) expr() (Unit, error) {
	u, err := p.power()
	if err != nil {
		return Unit{}, err
	}
	for {
		sign := 1
		switch p.peek().kind {
		case tokMul:
			p.next()
		case tokDiv:
			p.next()
			sign = -1
		case tokNumber, tokIdent, tokLParen:
			// implicit multiplication
		default:
			return u, nil
		}
		rhs, err := p.power()
		if err != nil {
			return Unit{}, err
		}
		u = u.mul(rhs, sign)
	}
}

func (p *parser) power() (Unit, error) {
	u, err := p.atom()
	if err != nil {
		return Unit{}, err
	}
	if p.peek().kind != tokPow {
		return u, nil
	}
	p.next()
	t := p.next()
	if t.kind == tokLParen {
		t = p.next()
		if p.next().kind != tokRParen {
			return Unit{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidUnit, p.spec)
		}
	}
	if t.kind != tokNumber || math.Abs(t.value) > maxExponent {
		return Unit{}, fmt.Errorf("%w: exponent must be an integer within ±%d in %q", ErrInvalidUnit, maxExponent, p.spec)
	}
	if t.value != math.Trunc(t.value) {
		return Unit{}, fmt.Errorf("%w: exponent must be an integer in %q", ErrInvalidUnit, p.spec)
	}
	u = u.pow(int(t.value))
	for _, tm := range u.terms {
		if tm.exp > maxExponent || tm.exp < -maxExponent {
			return Unit{}, fmt.Errorf("%w: exponent %d out of range in %q", ErrInvalidUnit, tm.exp, p.spec)
		}
	}
	return u, nil
}

func (p *parser) atom() (Unit, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		if t.value <= 0 {
			return Unit{}, fmt.Errorf("%w: factor must be positive in %q", ErrInvalidUnit, p.spec)
		}
		return Unit{factor: t.value}, nil
	case tokIdent:
		if t.text == "dimensionless" {
			return Dimensionless, nil
		}
		tm, ok := p.lookup(t.text)
		if !ok {
			return Unit{}, fmt.Errorf("%w: %q is not defined", ErrInvalidUnit, t.text)
		}
		u := Unit{terms: []term{tm}, factor: 1}
		if t.exp != 0 {
			u = u.pow(t.exp)
		}
		return u, nil
	case tokLParen:
		u, err := p.expr()
		if err != nil {
			return Unit{}, err
		}
		if p.next().kind != tokRParen {
			return Unit{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidUnit, p.spec)
		}
		return u, nil
	default:
		if t.kind == tokEOF {
			return Unit{}, fmt.Errorf("%w: unexpected end of %q", ErrInvalidUnit, p.spec)
		}
		return Unit{}, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidUnit, t.text, p.spec)
	}
}
