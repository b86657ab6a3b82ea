package nbt

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports malformed tag text.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("nbt: %s at offset %d", e.Msg, e.Offset)
}

// Parse reads one tag from text. Trailing non-whitespace is an error.
func Parse(text string) (Tag, error) {
	p := &parser{s: text}
	t, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return nil, p.errorf("trailing data")
	}
	return t, nil
}

// ParseCompound is Parse for text that must hold a compound. Blank text yields
// an empty compound.
func ParseCompound(text string) (*Compound, error) {
	if strings.TrimSpace(text) == "" {
		return NewCompound(), nil
	}
	t, err := Parse(text)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Compound)
	if !ok {
		return nil, &SyntaxError{Offset: 0, Msg: "expected compound, got " + t.Kind().String()}
	}
	return c, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) value() (Tag, error) {
	p.skipSpace()
	switch c := p.peek(); c {
	case 0:
		return nil, p.errorf("unexpected end of input")
	case '{':
		return p.compound()
	case '[':
		return p.list()
	case '"', '\'':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	default:
		start := p.pos
		tok := p.bare()
		if tok == "" {
			p.pos = start
			return nil, p.errorf("unexpected %q", c)
		}
		return scalar(tok), nil
	}
}

func (p *parser) compound() (Tag, error) {
	p.pos++ // {
	c := NewCompound()
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return c, nil
	}
	for {
		p.skipSpace()
		var name string
		if q := p.peek(); q == '"' || q == '\'' {
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			name = s
		} else {
			name = p.bare()
			if name == "" {
				return nil, p.errorf("expected key")
			}
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		c.Set(name, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return c, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *parser) list() (Tag, error) {
	p.pos++ // [
	if p.pos+1 < len(p.s) && p.s[p.pos+1] == ';' {
		switch p.s[p.pos] {
		case 'B', 'I', 'L':
			return p.array(p.s[p.pos])
		}
	}
	l := NewList(KindEnd)
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return l, nil
	}
	for {
		start := p.pos
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if l.Len() > 0 && v.Kind() != l.Elem() {
			p.pos = start
			return nil, p.errorf("list of %s cannot hold %s", l.Elem(), v.Kind())
		}
		l.Append(v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return l, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *parser) array(prefix byte) (Tag, error) {
	p.pos += 2 // X;
	var (
		bs ByteArray
		is IntArray
		ls LongArray
	)
	p.skipSpace()
	if p.peek() != ']' {
		for {
			p.skipSpace()
			start := p.pos
			tok := p.bare()
			v := scalar(tok)
			switch {
			case prefix == 'B' && v.Kind() == KindByte:
				bs = append(bs, int8(v.(Byte)))
			case prefix == 'I' && v.Kind() == KindInt:
				is = append(is, int32(v.(Int)))
			case prefix == 'L' && v.Kind() == KindLong:
				ls = append(ls, int64(v.(Long)))
			default:
				p.pos = start
				return nil, p.errorf("invalid element %q in [%c;] array", tok, prefix)
			}
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	switch prefix {
	case 'B':
		if bs == nil {
			bs = ByteArray{}
		}
		return bs, nil
	case 'I':
		if is == nil {
			is = IntArray{}
		}
		return is, nil
	default:
		if ls == nil {
			ls = LongArray{}
		}
		return ls, nil
	}
}

func (p *parser) quoted() (string, error) {
	q := p.s[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 >= len(p.s) {
				return "", p.errorf("unterminated escape")
			}
			next := p.s[p.pos+1]
			if next != '\\' && next != '"' && next != '\'' {
				return "", p.errorf("invalid escape \\%c", next)
			}
			sb.WriteByte(next)
			p.pos += 2
		case c == q:
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) bare() string {
	start := p.pos
	for p.pos < len(p.s) && isBareChar(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// scalar classifies an unquoted token the way the runtime does: suffixed or
// plain numbers become numeric tags, booleans become bytes, anything else is a
// string.
func scalar(tok string) Tag {
	switch strings.ToLower(tok) {
	case "true":
		return Byte(1)
	case "false":
		return Byte(0)
	}
	if tok == "" {
		return String(tok)
	}
	last := tok[len(tok)-1]
	body := tok[:len(tok)-1]
	switch last {
	case 'b', 'B':
		if isInteger(body) {
			if n, err := strconv.ParseInt(body, 10, 8); err == nil {
				return Byte(n)
			}
		}
	case 's', 'S':
		if isInteger(body) {
			if n, err := strconv.ParseInt(body, 10, 16); err == nil {
				return Short(n)
			}
		}
	case 'l', 'L':
		if isInteger(body) {
			if n, err := strconv.ParseInt(body, 10, 64); err == nil {
				return Long(n)
			}
		}
	case 'f', 'F':
		if isDecimal(body) {
			if f, err := strconv.ParseFloat(body, 32); err == nil {
				return Float(f)
			}
		}
	case 'd', 'D':
		if isDecimal(body) {
			if f, err := strconv.ParseFloat(body, 64); err == nil {
				return Double(f)
			}
		}
	}
	if isInteger(tok) {
		if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
			return Int(n)
		}
		return String(tok)
	}
	if isDecimal(tok) {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return Double(f)
		}
	}
	return String(tok)
}

func isInteger(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDecimal matches [-+]?([0-9]+[.]?|[0-9]*[.][0-9]+)([eE][-+]?[0-9]+)?
func isDecimal(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	mant, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, exp = s[:i], s[i+1:]
		if exp != "" && (exp[0] == '-' || exp[0] == '+') {
			exp = exp[1:]
		}
		if !isDigits(exp) {
			return false
		}
	}
	intPart, frac := mant, ""
	dot := strings.IndexByte(mant, '.')
	if dot >= 0 {
		intPart, frac = mant[:dot], mant[dot+1:]
	}
	if intPart == "" && frac == "" {
		return false
	}
	return (intPart == "" || isDigits(intPart)) && (frac == "" || isDigits(frac))
}
