package rig

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// fileRig is the YAML rig document.
type fileRig struct {
	MaxDistance float64       `yaml:"max_distance"`
	Bones       []fileBone    `yaml:"bones"`
	Variants    []fileVariant `yaml:"variants"`
	Touched     []string      `yaml:"touched_models"`
}

type fileBone struct {
	Name            string     `yaml:"name"`
	Pos             [3]float64 `yaml:"pos"`
	Rot             [3]float64 `yaml:"rot"`
	Exported        *bool      `yaml:"exported"`
	NBT             string     `yaml:"nbt"`
	CustomModelData int        `yaml:"custom_model_data"`
}

type fileVariant struct {
	Name   string               `yaml:"name"`
	Models map[string]fileModel `yaml:"models"`
}

type fileModel struct {
	CustomModelData int `yaml:"custom_model_data"`
}

// LoadFile reads a YAML rig document. Bones are exported unless they say
// otherwise.
func LoadFile(path string) (*Rig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Decode parses a YAML rig document and normalizes it.
func Decode(raw []byte) (*Rig, error) {
	var f fileRig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	r := &Rig{
		MaxDistance: f.MaxDistance,
		Touched:     f.Touched,
	}
	for _, b := range f.Bones {
		exported := true
		if b.Exported != nil {
			exported = *b.Exported
		}
		r.Bones = append(r.Bones, Bone{
			Name:            b.Name,
			Pos:             mgl64.Vec3(b.Pos),
			Rot:             mgl64.Vec3(b.Rot),
			Exported:        exported,
			NBT:             b.NBT,
			CustomModelData: b.CustomModelData,
		})
	}
	for _, v := range f.Variants {
		vr := Variant{Name: v.Name}
		if len(v.Models) > 0 {
			vr.Models = make(map[string]Model, len(v.Models))
			for bone, m := range v.Models {
				vr.Models[bone] = Model{CustomModelData: m.CustomModelData}
			}
		}
		r.Variants = append(r.Variants, vr)
	}
	if err := r.Normalize(); err != nil {
		return nil, err
	}
	return r, nil
}
