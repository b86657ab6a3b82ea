// Package rig holds the single static frame of an animated rig that the
// exporter compiles, plus the appearance variants defined on it.
package rig

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultVariant is synthesized when the input defines no variants.
const DefaultVariant = "default"

// distanceMargin is added to the measured extent so that a bone sitting exactly
// on the boundary is still selected.
const distanceMargin = 0.5

type Bone struct {
	Name     string
	Pos      mgl64.Vec3 // offset from the root, runtime units
	Rot      mgl64.Vec3 // degrees, runtime axis order
	Exported bool

	// NBT is extra tag data the bone already carries, in the runtime's tag
	// syntax. It is merged with the tags the exporter injects.
	NBT             string
	CustomModelData int
}

// Model is a per-bone appearance override.
type Model struct {
	CustomModelData int
}

type Variant struct {
	Name   string
	Models map[string]Model
}

type Rig struct {
	Bones []Bone

	// MaxDistance is the bone-to-root extent reported by the animation source.
	// Zero means unknown.
	MaxDistance float64

	Variants []Variant

	// Touched is the set of bones overridden by at least one variant.
	Touched []string
}

// Normalize validates the rig and fills in derived data: the touched set when
// the input omitted it and a default variant when there are none.
func (r *Rig) Normalize() error {
	if len(r.Bones) == 0 {
		return fmt.Errorf("rig has no bones")
	}
	if !finite(r.MaxDistance) {
		return fmt.Errorf("max distance %v is not finite", r.MaxDistance)
	}
	seen := make(map[string]bool, len(r.Bones))
	for _, b := range r.Bones {
		if b.Name == "" {
			return fmt.Errorf("bone with empty name")
		}
		if !validName(b.Name, isTagChar) {
			return fmt.Errorf("bone %q: names may only contain A-Z a-z 0-9 _ . + -", b.Name)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate bone %q", b.Name)
		}
		if !finiteVec(b.Pos) || !finiteVec(b.Rot) {
			return fmt.Errorf("bone %q: non-finite pose pos=%v rot=%v", b.Name, b.Pos, b.Rot)
		}
		seen[b.Name] = true
	}

	variants := make(map[string]bool, len(r.Variants))
	for _, v := range r.Variants {
		if v.Name == "" {
			return fmt.Errorf("variant with empty name")
		}
		if !validName(v.Name, isFunctionChar) {
			return fmt.Errorf("variant %q: names may only contain a-z 0-9 _ . -", v.Name)
		}
		if variants[v.Name] {
			return fmt.Errorf("duplicate variant %q", v.Name)
		}
		variants[v.Name] = true
		for bone := range v.Models {
			if !seen[bone] {
				return fmt.Errorf("variant %q overrides unknown bone %q", v.Name, bone)
			}
		}
	}
	if len(r.Variants) == 0 {
		r.Variants = []Variant{{Name: DefaultVariant}}
	}

	if len(r.Touched) == 0 {
		touched := map[string]bool{}
		for _, v := range r.Variants {
			for bone := range v.Models {
				touched[bone] = true
			}
		}
		// Bone order keeps the set deterministic.
		for _, b := range r.Bones {
			if touched[b.Name] {
				r.Touched = append(r.Touched, b.Name)
			}
		}
	} else {
		for _, name := range r.Touched {
			if !seen[name] {
				return fmt.Errorf("touched set names unknown bone %q", name)
			}
		}
	}
	return nil
}

// Exported returns the exported bones in input order.
func (r *Rig) Exported() []Bone {
	out := make([]Bone, 0, len(r.Bones))
	for _, b := range r.Bones {
		if b.Exported {
			out = append(out, b)
		}
	}
	return out
}

// IsTouched reports whether bone is in the touched set.
func (r *Rig) IsTouched(bone string) bool {
	for _, t := range r.Touched {
		if t == bone {
			return true
		}
	}
	return false
}

// TouchesAny reports whether any exported bone is in the touched set.
func (r *Rig) TouchesAny() bool {
	for _, b := range r.Bones {
		if b.Exported && r.IsTouched(b.Name) {
			return true
		}
	}
	return false
}

// RequiredDistance is the smallest selector radius that reaches every exported
// bone entity from the root, given the vertical offset applied when bones are
// summoned.
func (r *Rig) RequiredDistance(headYOffset float64) float64 {
	var max float64
	for _, b := range r.Exported() {
		d := b.Pos.Add(mgl64.Vec3{0, headYOffset, 0}).Len()
		if d > max {
			max = d
		}
	}
	return math.Ceil((max+distanceMargin)*100) / 100
}

// DistanceBound is the selector radius used by the generated program: the
// reported MaxDistance, raised to RequiredDistance when it is too small.
func (r *Rig) DistanceBound(headYOffset float64) float64 {
	req := r.RequiredDistance(headYOffset)
	if r.MaxDistance > req {
		return r.MaxDistance
	}
	return req
}

func validName(s string, ok func(rune) bool) bool {
	for _, c := range s {
		if !ok(c) {
			return false
		}
	}
	return true
}

// isTagChar matches the characters the runtime accepts unquoted in entity
// tags and selector arguments.
func isTagChar(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '+' || c == '-'
}

// isFunctionChar matches the characters allowed in a function path segment.
func isFunctionChar(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '.' || c == '-'
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func finiteVec(v mgl64.Vec3) bool { return finite(v[0]) && finite(v[1]) && finite(v[2]) }
