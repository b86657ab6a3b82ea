// Package exporter compiles a rig into the statue command program and writes
// it to the configured destination.
package exporter

import (
	"fmt"
	"strconv"

	"statuecraft.ai/internal/correlate"
	"statuecraft.ai/internal/mcb"
	"statuecraft.ai/internal/naming"
	"statuecraft.ai/internal/nbt"
	"statuecraft.ai/internal/protocol"
	"statuecraft.ai/internal/rig"
	"statuecraft.ai/internal/settings"
)

// Header is written at the top of every generated program.
const Header = " Code generated by statuecraft. DO NOT EDIT."

type Input struct {
	Settings settings.Settings
	Rig      *rig.Rig
}

type Result struct {
	Program *mcb.Program
	Text    string // MC-Build rendering of Program

	Distance float64
	// Raised is set when the rig's reported extent was smaller than the
	// measured one and Distance was raised to cover every bone.
	Raised bool

	Bones    int // exported bones
	Variants int

	// Filled by Exporter.Export.
	ID          string
	OutputPath  string
	ArchivePath string
}

// Build compiles in into a program. It has no side effects; Rig is normalized
// in place.
func Build(in Input) (*Result, error) {
	if in.Rig == nil {
		return nil, &Error{Code: protocol.ErrBadRig, Err: fmt.Errorf("no rig")}
	}
	if err := in.Rig.Normalize(); err != nil {
		return nil, &Error{Code: protocol.ErrBadRig, Err: err}
	}
	s := in.Settings
	r := in.Rig

	tags := s.Tags()
	types := s.EntityTypes()
	offset := s.HeadYOffset()
	dist := r.DistanceBound(offset)

	proto := correlate.Protocol{
		Project:    s.Project(),
		Tags:       tags,
		Types:      types,
		Objectives: s.Objectives(),
		Distance:   dist,
	}

	bones := r.Exported()
	summons := make([]string, len(bones))
	for i, b := range bones {
		payload, err := BonePayload(b, tags, s)
		if err != nil {
			return nil, &Error{Code: protocol.ErrBadTag, Err: err}
		}
		summons[i] = SummonCommand(b, payload, tags, types, offset)
	}

	summonDir := &mcb.Dir{Name: "summon"}
	for _, v := range r.Variants {
		cmds := make([]string, len(bones))
		for i, b := range bones {
			cmds[i], _ = nbt.SubstituteFirst(summons[i], nbt.Placeholder, strconv.Itoa(modelData(b, v)))
		}
		summonDir.Items = append(summonDir.Items, &mcb.Function{Name: v.Name, Body: proto.Summon(cmds)})
	}

	p := &mcb.Program{
		Header: []string{Header},
		Items: []mcb.Item{
			&mcb.Function{Name: "install", Body: proto.Install()},
			&mcb.Entities{Name: naming.BoneEntitiesGroup, Values: types.Group()},
			&mcb.Dir{Name: "remove", Items: []mcb.Item{
				&mcb.Function{Name: "all", Body: proto.RemoveAll()},
				&mcb.Function{Name: "this", Body: proto.RemoveThis()},
			}},
			summonDir,
		},
	}

	if r.TouchesAny() {
		setDir := &mcb.Dir{Name: "set_variant"}
		for _, v := range r.Variants {
			setDir.Items = append(setDir.Items, &mcb.Function{
				Name: v.Name,
				Body: proto.SetVariant(v.Name, variantCommands(r, bones, tags, v)),
			})
		}
		p.Items = append(p.Items, setDir)
	}

	return &Result{
		Program:  p,
		Text:     mcb.Render(p),
		Distance: dist,
		Raised:   r.MaxDistance > 0 && r.MaxDistance < dist,
		Bones:    len(bones),
		Variants: len(r.Variants),
	}, nil
}

// variantCommands switches every touched, exported bone to v's model. Bones v
// does not override go back to their default model.
func variantCommands(r *rig.Rig, bones []rig.Bone, tags naming.Tags, v rig.Variant) []string {
	var out []string
	for _, b := range bones {
		if !r.IsTouched(b.Name) {
			continue
		}
		out = append(out, fmt.Sprintf("data modify entity @s[tag=%s] ArmorItems[-1].tag.CustomModelData set value %d",
			tags.Bone(b.Name), modelData(b, v)))
	}
	return out
}

func modelData(b rig.Bone, v rig.Variant) int {
	if m, ok := v.Models[b.Name]; ok {
		return m.CustomModelData
	}
	return b.CustomModelData
}
