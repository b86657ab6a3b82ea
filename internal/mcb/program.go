// Package mcb models a generated command program as a tree of directories,
// functions and command blocks, and renders it either as MC-Build source or as
// the files of a vanilla datapack.
package mcb

import "strings"

// Item is a top-level or directory member.
type Item interface{ item() }

// Node is one element of a function body.
type Node interface{ node() }

// Line is a single command.
type Line string

// Block runs Body through Head, an execute chain ending in "run".
type Block struct {
	Head string
	Body []Node
}

// IfElse runs Then when Cond (execute subcommands, e.g. "if entity @s[tag=x] at @s")
// holds for the executing context, and Else otherwise.
type IfElse struct {
	Cond string
	Then []Node
	Else []Node
}

type Function struct {
	Name string
	Body []Node
}

type Dir struct {
	Name  string
	Items []Item
}

// Entities declares an entity type group.
type Entities struct {
	Name   string
	Values []string
}

type Program struct {
	Header []string // comment lines, without the leading '#'
	Items  []Item
}

func (Line) node()      {}
func (*Block) node()    {}
func (*IfElse) node()   {}
func (*Function) item() {}
func (*Dir) item()      {}
func (*Entities) item() {}

// Lookup finds a function or directory by slash separated path, e.g.
// "summon/default".
func (p *Program) Lookup(path string) Item {
	items := p.Items
	parts := strings.Split(path, "/")
	for i, part := range parts {
		var found Item
		for _, it := range items {
			switch v := it.(type) {
			case *Function:
				if v.Name == part {
					found = v
				}
			case *Dir:
				if v.Name == part {
					found = v
				}
			case *Entities:
				if v.Name == part {
					found = v
				}
			}
			if found != nil {
				break
			}
		}
		if found == nil {
			return nil
		}
		if i == len(parts)-1 {
			return found
		}
		d, ok := found.(*Dir)
		if !ok {
			return nil
		}
		items = d.Items
	}
	return nil
}

// Function is Lookup restricted to functions.
func (p *Program) Function(path string) *Function {
	f, _ := p.Lookup(path).(*Function)
	return f
}

// Commands lists every command line under nodes, depth first, including the
// heads of blocks.
func Commands(nodes []Node) []string {
	var out []string
	var walk func([]Node)
	walk = func(ns []Node) {
		for _, n := range ns {
			switch v := n.(type) {
			case Line:
				out = append(out, string(v))
			case *Block:
				out = append(out, v.Head)
				walk(v.Body)
			case *IfElse:
				walk(v.Then)
				walk(v.Else)
			}
		}
	}
	walk(nodes)
	return out
}
