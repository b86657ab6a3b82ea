package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tidwall/gjson"
)

// LoadBuildData reads the JSON build data produced by the modelling host:
//
//	bones.<name>.{nbt,customModelData}
//	animations.<uuid>.maxDistance
//	animations.<uuid>.frames.0.bones.<name>.{pos,rot,exported}
//	variantModels.<variant>.<bone>.aj.customModelData
//	variantTouchedModels.<bone>
//
// staticAnimation selects the animation holding the static frame. When empty,
// the document's static_animation_uuid is used, then the first animation.
func LoadBuildData(raw []byte, staticAnimation string) (*Rig, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("build data: invalid json")
	}
	doc := gjson.ParseBytes(raw)

	if staticAnimation == "" {
		staticAnimation = doc.Get("static_animation_uuid").String()
	}
	var anim gjson.Result
	doc.Get("animations").ForEach(func(k, v gjson.Result) bool {
		if staticAnimation == "" || k.String() == staticAnimation {
			anim = v
			return false
		}
		return true
	})
	if !anim.Exists() {
		return nil, fmt.Errorf("build data: static animation %q not found", staticAnimation)
	}

	frame := anim.Get("frames.0.bones")
	if !frame.IsObject() {
		return nil, fmt.Errorf("build data: static animation has no frame 0")
	}

	bones := doc.Get("bones")
	r := &Rig{MaxDistance: anim.Get("maxDistance").Float()}
	frame.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		def := bones.Get(gjson.Escape(name))
		r.Bones = append(r.Bones, Bone{
			Name:            name,
			Pos:             vec(v.Get("pos")),
			Rot:             vec(v.Get("rot")),
			Exported:        v.Get("exported").Bool(),
			NBT:             def.Get("nbt").String(),
			CustomModelData: int(def.Get("customModelData").Int()),
		})
		return true
	})

	doc.Get("variantModels").ForEach(func(k, v gjson.Result) bool {
		vr := Variant{Name: k.String()}
		v.ForEach(func(bone, m gjson.Result) bool {
			if vr.Models == nil {
				vr.Models = map[string]Model{}
			}
			vr.Models[bone.String()] = Model{CustomModelData: int(m.Get("aj.customModelData").Int())}
			return true
		})
		r.Variants = append(r.Variants, vr)
		return true
	})

	doc.Get("variantTouchedModels").ForEach(func(k, _ gjson.Result) bool {
		r.Touched = append(r.Touched, k.String())
		return true
	})

	if err := r.Normalize(); err != nil {
		return nil, fmt.Errorf("build data: %w", err)
	}
	return r, nil
}

// vec accepts {x,y,z} objects and [x,y,z] arrays.
func vec(v gjson.Result) mgl64.Vec3 {
	if v.IsArray() {
		a := v.Array()
		var out mgl64.Vec3
		for i := 0; i < 3 && i < len(a); i++ {
			out[i] = a[i].Float()
		}
		return out
	}
	return mgl64.Vec3{v.Get("x").Float(), v.Get("y").Float(), v.Get("z").Float()}
}
