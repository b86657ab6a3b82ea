package exporter

import (
	"fmt"
	"math"
	"strconv"

	"statuecraft.ai/internal/correlate"
	"statuecraft.ai/internal/naming"
	"statuecraft.ai/internal/nbt"
	"statuecraft.ai/internal/rig"
	"statuecraft.ai/internal/settings"
)

// DisabledSlots locks every equipment slot of the bone armor stands.
const DisabledSlots = 4144959

// Area effect cloud lifetime values that keep an anchor alive forever.
const (
	aecAge      = math.MinInt32
	aecDuration = -1
	aecWaitTime = math.MinInt32
)

// BonePayload builds the data tag of the entity that wears b's model. The
// bone's own extra data wins over injected defaults, except for Tags, which
// are appended to, and the flags that must hold for every bone.
func BonePayload(b rig.Bone, tags naming.Tags, s settings.Settings) (*nbt.Compound, error) {
	c, err := nbt.ParseCompound(b.NBT)
	if err != nil {
		return nil, fmt.Errorf("bone %q: %w", b.Name, err)
	}

	list, err := stringList(c, "Tags")
	if err != nil {
		return nil, fmt.Errorf("bone %q: %w", b.Name, err)
	}
	for _, t := range []string{correlate.NewTag, tags.Model, tags.AllBones, tags.Bone(b.Name)} {
		list.Append(nbt.String(t))
	}

	pose, ok := c.SetDefault("Pose", nbt.NewCompound()).(*nbt.Compound)
	if !ok {
		return nil, fmt.Errorf("bone %q: Pose is not a compound", b.Name)
	}
	pose.SetDefault("Head", nbt.NewList(nbt.KindFloat,
		nbt.Float(b.Rot.X()), nbt.Float(b.Rot.Y()), nbt.Float(b.Rot.Z())))

	c.SetDefault("ArmorItems", nbt.NewList(nbt.KindCompound,
		nbt.NewCompound(),
		nbt.NewCompound(),
		nbt.NewCompound(),
		nbt.NewCompound(
			nbt.Entry{Name: "id", Value: nbt.String(s.RigItem)},
			nbt.Entry{Name: "Count", Value: nbt.Byte(1)},
			nbt.Entry{Name: "tag", Value: nbt.NewCompound(
				nbt.Entry{Name: "CustomModelData", Value: nbt.String(nbt.Placeholder)},
			)},
		),
	))

	c.Set("Marker", boolByte(s.Statue.MarkerArmorStands))
	c.Set("NoGravity", nbt.Byte(1))
	c.Set("Invisible", nbt.Byte(1))
	c.Set("DisabledSlots", nbt.Int(DisabledSlots))
	return c, nil
}

// stringList returns the string list mapped to name, creating it when absent.
func stringList(c *nbt.Compound, name string) (*nbt.List, error) {
	cur, ok := c.Get(name)
	if !ok {
		l := nbt.NewList(nbt.KindString)
		c.Set(name, l)
		return l, nil
	}
	l, ok := cur.(*nbt.List)
	if !ok {
		return nil, fmt.Errorf("%s is %s, want list of string", name, cur.Kind())
	}
	if l.Elem() != nbt.KindString && !(l.Elem() == nbt.KindEnd && l.Len() == 0) {
		return nil, fmt.Errorf("%s is list of %s, want list of string", name, l.Elem())
	}
	return l, nil
}

func boolByte(v bool) nbt.Byte {
	if v {
		return 1
	}
	return 0
}

// SummonCommand renders the command summoning b relative to the executing
// root. The payload keeps its placeholder; callers substitute it per variant.
func SummonCommand(b rig.Bone, payload *nbt.Compound, tags naming.Tags, types naming.EntityTypes, headYOffset float64) string {
	pos := fmt.Sprintf("^%s ^%s ^%s", coord(b.Pos.X()), coord(b.Pos.Y()+headYOffset), coord(b.Pos.Z()))
	if types.BoneDisplay == "" {
		return fmt.Sprintf("summon %s %s %s", types.BoneRoot, pos, nbt.Marshal(payload, nbt.Deflated))
	}

	passenger := nbt.NewCompound(nbt.Entry{Name: "id", Value: nbt.String(types.BoneDisplay)})
	passenger.Merge(payload)
	anchor := nbt.NewCompound(
		nbt.Entry{Name: "Tags", Value: nbt.NewList(nbt.KindString,
			nbt.String(correlate.NewTag), nbt.String(tags.Model), nbt.String(tags.Bone(b.Name)))},
		nbt.Entry{Name: "Age", Value: nbt.Int(aecAge)},
		nbt.Entry{Name: "Duration", Value: nbt.Int(aecDuration)},
		nbt.Entry{Name: "WaitTime", Value: nbt.Int(aecWaitTime)},
		nbt.Entry{Name: "Passengers", Value: nbt.NewList(nbt.KindCompound, passenger)},
	)
	return fmt.Sprintf("summon %s %s %s", types.BoneRoot, pos, nbt.Marshal(anchor, nbt.Deflated))
}

// coord formats a local coordinate, dropping float noise below a micro-block.
func coord(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
