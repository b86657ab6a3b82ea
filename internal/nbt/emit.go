package nbt

import (
	"strconv"
	"strings"
)

// Mode selects the textual rendering.
type Mode uint8

const (
	// Deflated has no insignificant whitespace. Used in emitted commands.
	Deflated Mode = iota
	// Expanded is indented, for diagnostics only.
	Expanded
)

const indent = "    "

// Marshal renders t in the runtime's tag syntax.
func Marshal(t Tag, mode Mode) string {
	e := &emitter{mode: mode}
	e.emit(t, 0)
	return e.sb.String()
}

type emitter struct {
	sb   strings.Builder
	mode Mode
}

func (e *emitter) emit(t Tag, depth int) {
	switch v := t.(type) {
	case Byte:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
		e.sb.WriteByte('b')
	case Short:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
		e.sb.WriteByte('s')
	case Int:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		e.sb.WriteString(strconv.FormatInt(int64(v), 10))
		e.sb.WriteByte('L')
	case Float:
		e.sb.WriteString(formatFloat(float64(v), 32))
		e.sb.WriteByte('f')
	case Double:
		e.sb.WriteString(formatFloat(float64(v), 64))
		e.sb.WriteByte('d')
	case String:
		e.sb.WriteString(quote(string(v)))
	case ByteArray:
		e.sb.WriteString("[B;")
		for i, n := range v {
			e.sep(i)
			e.sb.WriteString(strconv.FormatInt(int64(n), 10))
			e.sb.WriteByte('b')
		}
		e.sb.WriteByte(']')
	case IntArray:
		e.sb.WriteString("[I;")
		for i, n := range v {
			e.sep(i)
			e.sb.WriteString(strconv.FormatInt(int64(n), 10))
		}
		e.sb.WriteByte(']')
	case LongArray:
		e.sb.WriteString("[L;")
		for i, n := range v {
			e.sep(i)
			e.sb.WriteString(strconv.FormatInt(n, 10))
			e.sb.WriteByte('L')
		}
		e.sb.WriteByte(']')
	case *List:
		e.emitList(v, depth)
	case *Compound:
		e.emitCompound(v, depth)
	}
}

func (e *emitter) sep(i int) {
	if i == 0 {
		return
	}
	e.sb.WriteByte(',')
	if e.mode == Expanded {
		e.sb.WriteByte(' ')
	}
}

func (e *emitter) emitList(l *List, depth int) {
	e.sb.WriteByte('[')
	multiline := e.mode == Expanded && len(l.items) > 0 &&
		(l.elem == KindCompound || l.elem == KindList)
	for i, it := range l.items {
		if multiline {
			if i > 0 {
				e.sb.WriteByte(',')
			}
			e.newline(depth + 1)
		} else {
			e.sep(i)
		}
		e.emit(it, depth+1)
	}
	if multiline {
		e.newline(depth)
	}
	e.sb.WriteByte(']')
}

func (e *emitter) emitCompound(c *Compound, depth int) {
	e.sb.WriteByte('{')
	for i, ent := range c.entries {
		if e.mode == Expanded {
			if i > 0 {
				e.sb.WriteByte(',')
			}
			e.newline(depth + 1)
		} else if i > 0 {
			e.sb.WriteByte(',')
		}
		e.sb.WriteString(key(ent.Name))
		e.sb.WriteByte(':')
		if e.mode == Expanded {
			e.sb.WriteByte(' ')
		}
		e.emit(ent.Value, depth+1)
	}
	if e.mode == Expanded && len(c.entries) > 0 {
		e.newline(depth)
	}
	e.sb.WriteByte('}')
}

func (e *emitter) newline(depth int) {
	e.sb.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.sb.WriteString(indent)
	}
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

func key(name string) string {
	if isBare(name) {
		return name
	}
	return quote(name)
}

func isBare(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isBareChar(s[i]) {
			return false
		}
	}
	return true
}

func isBareChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '.' || c == '+'
}

func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}
