package rig

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const sampleYAML = `
max_distance: 1.5
bones:
  - name: head
    pos: [0, 2, 0]
    rot: [10, 0, 0]
    custom_model_data: 1
    nbt: '{CustomName:"\"Head\""}'
  - name: body
    pos: [0, 1, 0]
    exported: false
    custom_model_data: 2
variants:
  - name: red
    models:
      head: {custom_model_data: 10}
  - name: blue
    models:
      head: {custom_model_data: 20}
`

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rig.yaml")
	if err := os.WriteFile(p, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(r.Bones) != 2 || r.Bones[0].Name != "head" || r.Bones[1].Name != "body" {
		t.Fatalf("bones: %+v", r.Bones)
	}
	if !r.Bones[0].Exported || r.Bones[1].Exported {
		t.Fatalf("exported flags wrong: %+v", r.Bones)
	}
	if r.Bones[0].Pos != (mgl64.Vec3{0, 2, 0}) || r.Bones[0].Rot != (mgl64.Vec3{10, 0, 0}) {
		t.Fatalf("pose: %+v", r.Bones[0])
	}
	if !strings.Contains(r.Bones[0].NBT, "CustomName") {
		t.Fatalf("nbt: %q", r.Bones[0].NBT)
	}
	if len(r.Variants) != 2 || r.Variants[1].Models["head"].CustomModelData != 20 {
		t.Fatalf("variants: %+v", r.Variants)
	}
	if len(r.Touched) != 1 || r.Touched[0] != "head" {
		t.Fatalf("touched should be derived: %v", r.Touched)
	}
	if got := len(r.Exported()); got != 1 {
		t.Fatalf("exported=%d want 1", got)
	}
}

func TestNormalize_DefaultVariantAndErrors(t *testing.T) {
	r := &Rig{Bones: []Bone{{Name: "a", Exported: true}}}
	if err := r.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(r.Variants) != 1 || r.Variants[0].Name != DefaultVariant {
		t.Fatalf("variants: %+v", r.Variants)
	}
	if r.TouchesAny() {
		t.Fatalf("nothing should be touched")
	}

	bad := []*Rig{
		{},
		{Bones: []Bone{{Name: "a"}, {Name: "a"}}},
		{Bones: []Bone{{Name: "a"}}, Variants: []Variant{{Name: "v", Models: map[string]Model{"zz": {}}}}},
		{Bones: []Bone{{Name: "a"}}, Variants: []Variant{{Name: "v"}, {Name: "v"}}},
		{Bones: []Bone{{Name: "a"}}, Touched: []string{"zz"}},
	}
	for i, r := range bad {
		if err := r.Normalize(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestNormalize_RejectsUnsafeNames(t *testing.T) {
	ok := &Rig{
		Bones:    []Bone{{Name: "Left_Arm.2+x-1", Exported: true}},
		Variants: []Variant{{Name: "red_team.v-2"}},
	}
	if err := ok.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	bad := []*Rig{
		{Bones: []Bone{{Name: "left arm"}}},
		{Bones: []Bone{{Name: "head]"}}},
		{Bones: []Bone{{Name: "kopfé"}}},
		{Bones: []Bone{{Name: "a"}}, Variants: []Variant{{Name: "Red Team"}}},
		{Bones: []Bone{{Name: "a"}}, Variants: []Variant{{Name: "Red"}}},
		{Bones: []Bone{{Name: "a"}}, Variants: []Variant{{Name: "red/blue"}}},
	}
	for i, r := range bad {
		if err := r.Normalize(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestNormalize_RejectsNonFinitePose(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	bad := []*Rig{
		{Bones: []Bone{{Name: "a", Rot: mgl64.Vec3{nan, 0, 0}}}},
		{Bones: []Bone{{Name: "a", Rot: mgl64.Vec3{0, inf, 0}}}},
		{Bones: []Bone{{Name: "a", Pos: mgl64.Vec3{0, 0, -inf}}}},
		{Bones: []Bone{{Name: "a"}}, MaxDistance: inf},
	}
	for i, r := range bad {
		if err := r.Normalize(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}

	// YAML spells these .nan and .inf.
	if _, err := Decode([]byte("bones:\n  - name: a\n    rot: [.nan, .inf, 0]\n")); err == nil {
		t.Fatalf("expected non-finite rotation to be rejected")
	}
}

func TestTouchesAny_OnlyExportedBones(t *testing.T) {
	r := &Rig{
		Bones: []Bone{{Name: "head", Exported: true}, {Name: "cape"}},
		Variants: []Variant{
			{Name: "red", Models: map[string]Model{"cape": {CustomModelData: 5}}},
		},
	}
	if err := r.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !r.IsTouched("cape") {
		t.Fatalf("cape should be touched: %v", r.Touched)
	}
	if r.TouchesAny() {
		t.Fatalf("a hidden bone alone does not make the rig touched")
	}
	r.Bones[1].Exported = true
	if !r.TouchesAny() {
		t.Fatalf("exported touched bone not reported")
	}
}

func TestDistanceBound_RaisedWhenTooSmall(t *testing.T) {
	r := &Rig{
		Bones: []Bone{
			{Name: "a", Pos: mgl64.Vec3{3, 0, 4}, Exported: true},
			{Name: "far", Pos: mgl64.Vec3{100, 0, 0}},
		},
		MaxDistance: 1,
	}
	// Non-exported bones do not count.
	if got := r.RequiredDistance(0); got != 5.5 {
		t.Fatalf("required=%v want 5.5", got)
	}
	if got := r.DistanceBound(0); got != 5.5 {
		t.Fatalf("bound=%v want 5.5", got)
	}
	r.MaxDistance = 8
	if got := r.DistanceBound(0); got != 8 {
		t.Fatalf("bound=%v want 8", got)
	}
	// The vertical summon offset moves bones away from the root.
	r.MaxDistance = 0
	r.Bones[0].Pos = mgl64.Vec3{0, 0, 0}
	if got := r.RequiredDistance(-2); got != 2.5 {
		t.Fatalf("required with offset=%v want 2.5", got)
	}
}

func TestLoadBuildData(t *testing.T) {
	raw := []byte(`{
	  "static_animation_uuid": "s-1",
	  "bones": {
	    "head": {"nbt": "{}", "customModelData": 3},
	    "body": {"nbt": "", "customModelData": 4}
	  },
	  "animations": {
	    "a-0": {"maxDistance": 9, "frames": [{"bones": {}}]},
	    "s-1": {"maxDistance": 2.5, "frames": [{"bones": {
	      "head": {"pos": {"x": 0, "y": 1.5, "z": 0}, "rot": {"x": 5, "y": 0, "z": 0}, "exported": true},
	      "body": {"pos": [0, 1, 0], "rot": [0, 0, 0], "exported": false}
	    }}]}
	  },
	  "variantModels": {
	    "default": {},
	    "gold": {"head": {"aj": {"customModelData": 30}}}
	  },
	  "variantTouchedModels": {"head": {"aj": {"customModelData": 3}}}
	}`)
	r, err := LoadBuildData(raw, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.MaxDistance != 2.5 {
		t.Fatalf("max distance=%v", r.MaxDistance)
	}
	if len(r.Bones) != 2 || r.Bones[0].Name != "head" || r.Bones[0].CustomModelData != 3 {
		t.Fatalf("bones: %+v", r.Bones)
	}
	if r.Bones[0].Pos != (mgl64.Vec3{0, 1.5, 0}) || r.Bones[1].Pos != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("positions: %+v", r.Bones)
	}
	if len(r.Variants) != 2 || r.Variants[1].Models["head"].CustomModelData != 30 {
		t.Fatalf("variants: %+v", r.Variants)
	}
	if len(r.Touched) != 1 || r.Touched[0] != "head" {
		t.Fatalf("touched: %v", r.Touched)
	}

	if _, err := LoadBuildData(raw, "missing"); err == nil {
		t.Fatalf("expected missing animation error")
	}
	if _, err := LoadBuildData([]byte("{"), ""); err == nil {
		t.Fatalf("expected invalid json error")
	}
}
