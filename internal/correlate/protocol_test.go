package correlate

import (
	"encoding/json"
	"strings"
	"testing"

	"statuecraft.ai/internal/mcb"
	"statuecraft.ai/internal/naming"
)

func testProtocol() Protocol {
	return Protocol{
		Project: "demo",
		Tags: naming.Resolve(naming.Scheme{
			ModelTag:          "aj.%projectName",
			RootTag:           "aj.%projectName.root",
			AllBonesTag:       "aj.%projectName.bone",
			IndividualBoneTag: "aj.%projectName.bone.%boneName",
		}, "demo"),
		Types:      naming.NewEntityTypes("demo", "minecraft:marker", naming.BoneTypeAECStack),
		Objectives: naming.Objectives{Internal: "aj.i", ID: "aj.id"},
		Distance:   2.75,
	}
}

func TestSummon_Transaction(t *testing.T) {
	nodes := testProtocol().Summon([]string{"summon minecraft:armor_stand ^ ^ ^ {}"})
	out := mcb.Render(&mcb.Program{Items: []mcb.Item{&mcb.Function{Name: "default", Body: nodes}}})
	want := []string{
		`summon minecraft:marker ~ ~ ~ {Tags:["aj.demo","aj.demo.root","new"]}`,
		"execute as @e[type=minecraft:marker,tag=aj.demo.root,tag=new,distance=..1,limit=1] at @s rotated ~ 0 run {",
		"execute store result score @s aj.id run scoreboard players add .aj.last_id aj.i 1",
		"summon minecraft:armor_stand ^ ^ ^ {}",
		"execute as @e[type=#demo:bone_entities,tag=aj.demo,tag=new,distance=..2.75] positioned as @s run {",
		"scoreboard players operation @s aj.id = .aj.last_id aj.i",
		"tp @s ~ ~ ~ ~ ~",
		"tag @s remove new",
	}
	last := -1
	for _, w := range want {
		i := strings.Index(out, w)
		if i < 0 {
			t.Fatalf("missing %q in:\n%s", w, out)
		}
		if i < last {
			t.Fatalf("%q out of order in:\n%s", w, out)
		}
		last = i
	}
	// The root drops its own new tag after the bones are joined.
	if strings.Count(out, "tag @s remove new") != 2 {
		t.Fatalf("expected two new-tag removals:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if strings.TrimSpace(lines[len(lines)-3]) != "tag @s remove new" {
		t.Fatalf("root new tag must be removed last:\n%s", out)
	}
}

func TestRemoveThis_RootGuard(t *testing.T) {
	nodes := testProtocol().RemoveThis()
	if len(nodes) != 1 {
		t.Fatalf("nodes=%d", len(nodes))
	}
	ie, ok := nodes[0].(*mcb.IfElse)
	if !ok {
		t.Fatalf("expected if/else, got %T", nodes[0])
	}
	if ie.Cond != "if entity @s[tag=aj.demo.root] at @s" {
		t.Fatalf("cond=%q", ie.Cond)
	}
	then := mcb.Commands(ie.Then)
	if then[0] != "scoreboard players operation .this aj.id = @s aj.id" {
		t.Fatalf("capture: %q", then[0])
	}
	if !strings.Contains(then[1], "distance=..2.75] if score @s aj.id = .this aj.id run kill @s") {
		t.Fatalf("bone kill: %q", then[1])
	}
	if then[2] != "kill @s" {
		t.Fatalf("root kill: %q", then[2])
	}
	els := mcb.Commands(ie.Else)
	if len(els) != 1 || !strings.HasPrefix(els[0], "tellraw @s ") || !strings.Contains(els[0], "demo:remove/this") {
		t.Fatalf("usage error branch: %v", els)
	}
}

func TestSetVariant_TargetsDisplayEntities(t *testing.T) {
	nodes := testProtocol().SetVariant("red", []string{"data modify entity @s[tag=aj.demo.bone.head] x set value 1"})
	ie := nodes[0].(*mcb.IfElse)
	blk, ok := ie.Then[1].(*mcb.Block)
	if !ok {
		t.Fatalf("expected block, got %T", ie.Then[1])
	}
	if !strings.HasPrefix(blk.Head, "execute as @e[type=minecraft:armor_stand,tag=aj.demo.bone,distance=..2.75]") {
		t.Fatalf("head=%q", blk.Head)
	}
	if len(blk.Body) != 1 {
		t.Fatalf("body=%v", blk.Body)
	}
	if !strings.Contains(mcb.Commands(ie.Else)[0], "demo:set_variant/red") {
		t.Fatalf("usage error should name the function")
	}
}

func TestRemoveAll(t *testing.T) {
	cmds := mcb.Commands(testProtocol().RemoveAll())
	if len(cmds) != 2 ||
		cmds[0] != "kill @e[type=minecraft:marker,tag=aj.demo]" ||
		cmds[1] != "kill @e[type=#demo:bone_entities,tag=aj.demo]" {
		t.Fatalf("remove all: %v", cmds)
	}
}

func TestUsageError_IsJSONText(t *testing.T) {
	var parts []any
	if err := json.Unmarshal([]byte(UsageError("demo:remove/this", "aj.demo.root")), &parts); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if len(parts) != 9 {
		t.Fatalf("parts=%d", len(parts))
	}
	fn := parts[5].(map[string]any)
	if fn["text"] != "demo:remove/this" {
		t.Fatalf("function component: %v", fn)
	}
}
