package mcb

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// File is one file of a datapack, path relative to the pack root.
type File struct {
	Path string
	Data []byte
}

type FlattenOptions struct {
	Namespace string

	// Generated is the directory receiving functions synthesized from
	// inline blocks.
	Generated string

	// FlagObjective holds the per-site flags used to compile if/else.
	FlagObjective string

	PackFormat  int
	Description string

	// LoadFunction, when present at the top level, is registered in the
	// minecraft:load function tag.
	LoadFunction string
}

// Flatten compiles p into datapack files. Inline blocks become generated
// functions; if/else becomes a flag score set by the condition and tested by
// two execute lines, one per branch.
func Flatten(p *Program, opts FlattenOptions) ([]File, error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("flatten: empty namespace")
	}
	if opts.Generated == "" {
		opts.Generated = "zzz"
	}
	if opts.FlagObjective == "" && hasIfElse(p.Items) {
		return nil, fmt.Errorf("flatten: if/else needs a flag objective")
	}
	f := &flattener{opts: opts, p: p}
	for _, it := range p.Items {
		if err := f.item(it, nil); err != nil {
			return nil, err
		}
	}

	meta := map[string]any{
		"pack": map[string]any{
			"pack_format": opts.PackFormat,
			"description": opts.Description,
		},
	}
	if err := f.writeJSON("pack.mcmeta", meta); err != nil {
		return nil, err
	}
	if opts.LoadFunction != "" && p.Function(opts.LoadFunction) != nil {
		load := map[string]any{"values": []string{opts.Namespace + ":" + opts.LoadFunction}}
		if err := f.writeJSON("data/minecraft/tags/functions/load.json", load); err != nil {
			return nil, err
		}
	}
	return f.files, nil
}

type flattener struct {
	opts  FlattenOptions
	p     *Program
	files []File
	gen   int
	flags int
}

func (f *flattener) item(it Item, dirs []string) error {
	switch v := it.(type) {
	case *Function:
		body, err := f.body(v.Body)
		if err != nil {
			return err
		}
		f.function(append(append([]string(nil), dirs...), v.Name), body)
	case *Dir:
		sub := append(append([]string(nil), dirs...), v.Name)
		for _, child := range v.Items {
			if err := f.item(child, sub); err != nil {
				return err
			}
		}
	case *Entities:
		segs := append(append([]string{"data", f.opts.Namespace, "tags", "entity_types"}, dirs...), v.Name+".json")
		if err := f.writeJSON(path.Join(segs...), map[string]any{"values": v.Values}); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) function(segments []string, lines []string) {
	p := path.Join(append([]string{"data", f.opts.Namespace, "functions"}, segments...)...) + ".mcfunction"
	var sb strings.Builder
	for _, h := range f.p.Header {
		sb.WriteString("#" + h + "\n")
	}
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	f.files = append(f.files, File{Path: p, Data: []byte(sb.String())})
}

// generated writes body as a new function and returns its reference.
func (f *flattener) generated(body []Node) (string, error) {
	name := fmt.Sprintf("%d", f.gen)
	f.gen++
	lines, err := f.body(body)
	if err != nil {
		return "", err
	}
	f.function([]string{f.opts.Generated, name}, lines)
	return f.opts.Namespace + ":" + f.opts.Generated + "/" + name, nil
}

func (f *flattener) body(ns []Node) ([]string, error) {
	var out []string
	for _, n := range ns {
		switch v := n.(type) {
		case Line:
			out = append(out, string(v))
		case *Block:
			ref, err := f.generated(v.Body)
			if err != nil {
				return nil, err
			}
			out = append(out, v.Head+" function "+ref)
		case *IfElse:
			flag := fmt.Sprintf("#if_%d", f.flags)
			f.flags++
			obj := f.opts.FlagObjective
			out = append(out,
				fmt.Sprintf("scoreboard players set %s %s 0", flag, obj),
				fmt.Sprintf("execute %s run scoreboard players set %s %s 1", v.Cond, flag, obj),
			)
			then, err := f.generated(v.Then)
			if err != nil {
				return nil, err
			}
			out = append(out, fmt.Sprintf("execute if score %s %s matches 1 %s run function %s", flag, obj, v.Cond, then))
			if len(v.Else) > 0 {
				els, err := f.generated(v.Else)
				if err != nil {
					return nil, err
				}
				out = append(out, fmt.Sprintf("execute if score %s %s matches 0 run function %s", flag, obj, els))
			}
		}
	}
	return out, nil
}

func (f *flattener) writeJSON(p string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("flatten: %s: %w", p, err)
	}
	f.files = append(f.files, File{Path: p, Data: append(b, '\n')})
	return nil
}

func hasIfElse(items []Item) bool {
	var nodes func([]Node) bool
	nodes = func(ns []Node) bool {
		for _, n := range ns {
			switch v := n.(type) {
			case *IfElse:
				return true
			case *Block:
				if nodes(v.Body) {
					return true
				}
			}
		}
		return false
	}
	for _, it := range items {
		switch v := it.(type) {
		case *Function:
			if nodes(v.Body) {
				return true
			}
		case *Dir:
			if hasIfElse(v.Items) {
				return true
			}
		}
	}
	return false
}
