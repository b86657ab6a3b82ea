package mcb

import "strings"

// Render writes p as MC-Build source, one statement per line, tab indented.
func Render(p *Program) string {
	r := &renderer{}
	for _, h := range p.Header {
		r.line(0, "#"+h)
	}
	for _, it := range p.Items {
		r.item(it, 0)
	}
	return r.sb.String()
}

type renderer struct {
	sb strings.Builder
}

func (r *renderer) line(depth int, s string) {
	for i := 0; i < depth; i++ {
		r.sb.WriteByte('\t')
	}
	r.sb.WriteString(s)
	r.sb.WriteByte('\n')
}

func (r *renderer) item(it Item, depth int) {
	switch v := it.(type) {
	case *Function:
		r.line(depth, "function "+v.Name+" {")
		r.nodes(v.Body, depth+1)
		r.line(depth, "}")
	case *Dir:
		r.line(depth, "dir "+v.Name+" {")
		for _, child := range v.Items {
			r.item(child, depth+1)
		}
		r.line(depth, "}")
	case *Entities:
		r.line(depth, "entities "+v.Name+" {")
		for _, val := range v.Values {
			r.line(depth+1, val)
		}
		r.line(depth, "}")
	}
}

func (r *renderer) nodes(ns []Node, depth int) {
	for _, n := range ns {
		switch v := n.(type) {
		case Line:
			r.line(depth, string(v))
		case *Block:
			r.line(depth, v.Head+" {")
			r.nodes(v.Body, depth+1)
			r.line(depth, "}")
		case *IfElse:
			r.line(depth, "execute ("+v.Cond+") {")
			r.nodes(v.Then, depth+1)
			if len(v.Else) > 0 {
				r.line(depth, "} else {")
				r.nodes(v.Else, depth+1)
			}
			r.line(depth, "}")
		}
	}
}
