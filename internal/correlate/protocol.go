// Package correlate emits the command sequences that give every entity of one
// statue instance a shared identity and later select that instance again.
//
// The runtime has no references between entities. An instance is therefore a
// predicate: entities carrying the rig's tags, of the right type, within the
// rig's distance bound of the root, whose id score equals the root's. The id is
// minted from a counter when the instance is summoned and copied onto every
// member while the members still carry the "new" tag.
package correlate

import (
	"fmt"
	"strconv"

	"statuecraft.ai/internal/mcb"
	"statuecraft.ai/internal/naming"
	"statuecraft.ai/internal/nbt"
)

// Fake scoreboard holders.
const (
	LastIDHolder = ".aj.last_id"
	ThisHolder   = ".this"
)

// NewTag scopes the selectors of one summon transaction.
const NewTag = "new"

type Protocol struct {
	Project    string
	Tags       naming.Tags
	Types      naming.EntityTypes
	Objectives naming.Objectives

	// Distance is the selector radius reaching every bone from its root.
	Distance float64
}

func (p Protocol) dist() string {
	return strconv.FormatFloat(p.Distance, 'f', -1, 64)
}

// Install creates the scoreboard objectives.
func (p Protocol) Install() []mcb.Node {
	return []mcb.Node{
		mcb.Line("scoreboard objectives add " + p.Objectives.Internal + " dummy"),
		mcb.Line("scoreboard objectives add " + p.Objectives.ID + " dummy"),
	}
}

// Summon wraps boneSummons, the per-bone summon commands, in one instance
// transaction: the root is summoned, mints an id, summons its bones, hands the
// id to every bone still tagged new, and finally drops its own new tag.
func (p Protocol) Summon(boneSummons []string) []mcb.Node {
	obj := p.Objectives
	join := &mcb.Block{
		Head: fmt.Sprintf("execute as @e[type=%s,tag=%s,tag=%s,distance=..%s] positioned as @s run",
			p.Types.Bone, p.Tags.Model, NewTag, p.dist()),
		Body: []mcb.Node{
			mcb.Line(fmt.Sprintf("scoreboard players operation @s %s = %s %s", obj.ID, LastIDHolder, obj.Internal)),
			mcb.Line("tp @s ~ ~ ~ ~ ~"),
			mcb.Line("tag @s remove " + NewTag),
		},
	}

	rootData := nbt.NewCompound(nbt.Entry{
		Name:  "Tags",
		Value: nbt.NewList(nbt.KindString, nbt.String(p.Tags.Model), nbt.String(p.Tags.Root), nbt.String(NewTag)),
	})

	body := make([]mcb.Node, 0, len(boneSummons)+3)
	body = append(body, mcb.Line(fmt.Sprintf("execute store result score @s %s run scoreboard players add %s %s 1",
		obj.ID, LastIDHolder, obj.Internal)))
	for _, cmd := range boneSummons {
		body = append(body, mcb.Line(cmd))
	}
	body = append(body, join, mcb.Line("tag @s remove "+NewTag))

	return []mcb.Node{
		mcb.Line(fmt.Sprintf("summon %s ~ ~ ~ %s", p.Types.Root, nbt.Marshal(rootData, nbt.Deflated))),
		&mcb.Block{
			Head: fmt.Sprintf("execute as @e[type=%s,tag=%s,tag=%s,distance=..1,limit=1] at @s rotated ~ 0 run",
				p.Types.Root, p.Tags.Root, NewTag),
			Body: body,
		},
	}
}

// RemoveAll kills every entity of the rig, in every instance.
func (p Protocol) RemoveAll() []mcb.Node {
	return []mcb.Node{
		mcb.Line(fmt.Sprintf("kill @e[type=%s,tag=%s]", p.Types.Root, p.Tags.Model)),
		mcb.Line(fmt.Sprintf("kill @e[type=%s,tag=%s]", p.Types.Bone, p.Tags.Model)),
	}
}

// RemoveThis kills the instance whose root is executing.
func (p Protocol) RemoveThis() []mcb.Node {
	obj := p.Objectives
	return p.asRoot("remove/this",
		mcb.Line(fmt.Sprintf("scoreboard players operation %s %s = @s %s", ThisHolder, obj.ID, obj.ID)),
		mcb.Line(fmt.Sprintf("execute as @e[type=%s,tag=%s,distance=..%s] if score @s %s = %s %s run kill @s",
			p.Types.Bone, p.Tags.Model, p.dist(), obj.ID, ThisHolder, obj.ID)),
		mcb.Line("kill @s"),
	)
}

// SetVariant runs commands as every display entity of the executing root's
// instance.
func (p Protocol) SetVariant(variant string, commands []string) []mcb.Node {
	obj := p.Objectives
	each := make([]mcb.Node, len(commands))
	for i, c := range commands {
		each[i] = mcb.Line(c)
	}
	return p.asRoot("set_variant/"+variant,
		mcb.Line(fmt.Sprintf("scoreboard players operation %s %s = @s %s", ThisHolder, obj.ID, obj.ID)),
		&mcb.Block{
			Head: fmt.Sprintf("execute as @e[type=%s,tag=%s,distance=..%s] if score @s %s = %s %s run",
				p.Types.Display(), p.Tags.AllBones, p.dist(), obj.ID, ThisHolder, obj.ID),
			Body: each,
		},
	)
}

// asRoot runs then when the executing entity carries the root tag and tells
// the caller how to use function otherwise.
func (p Protocol) asRoot(function string, then ...mcb.Node) []mcb.Node {
	return []mcb.Node{
		&mcb.IfElse{
			Cond: fmt.Sprintf("if entity @s[tag=%s] at @s", p.Tags.Root),
			Then: then,
			Else: []mcb.Node{mcb.Line("tellraw @s " + UsageError(p.Project+":"+function, p.Tags.Root))},
		},
	}
}
