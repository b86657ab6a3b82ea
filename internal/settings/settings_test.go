package settings

import (
	"os"
	"path/filepath"
	"testing"

	"statuecraft.ai/internal/naming"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.yaml")
	body := `
project_name: "Big Statue"
statue:
  bone_type: aecStack
  export_mode: datapack
  data_pack_path: ./out/pack.zip
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Project() != "big_statue" {
		t.Fatalf("project=%q", s.Project())
	}
	if s.Statue.RootTag != "aj.%projectName.root" {
		t.Fatalf("unset fields should keep defaults: %q", s.Statue.RootTag)
	}
	if s.OutputPath() != "./out/pack.zip" {
		t.Fatalf("output path=%q", s.OutputPath())
	}
	et := s.EntityTypes()
	if et.BoneRoot != "minecraft:area_effect_cloud" || et.BoneDisplay != "minecraft:armor_stand" {
		t.Fatalf("entity types: %+v", et)
	}
	if got := s.Tags().Bone("head"); got != "aj.big_statue.bone.head" {
		t.Fatalf("bone tag=%q", got)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Settings){
		"empty model tag":    func(s *Settings) { s.Statue.ModelTag = "" },
		"bone tag no name":   func(s *Settings) { s.Statue.IndividualBoneTag = "aj.%projectName.bone" },
		"bad bone type":      func(s *Settings) { s.Statue.BoneType = "zombie" },
		"bad export mode":    func(s *Settings) { s.Statue.ExportMode = "zip" },
		"objective too long": func(s *Settings) { s.Statue.IDScoreboardObjective = "a_very_long_objective_name" },
		"tag with space":     func(s *Settings) { s.Statue.RootTag = "aj root" },
		"empty project":      func(s *Settings) { s.ProjectName = "" },
	}
	for name, mutate := range cases {
		s := Defaults()
		mutate(&s)
		if err := s.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestHeadYOffset_ByBoneType(t *testing.T) {
	s := Defaults()
	if got := s.HeadYOffset(); got != ArmorStandHeadYOffset {
		t.Fatalf("armorStand offset=%v", got)
	}
	s.Statue.BoneType = naming.BoneTypeAECStack
	if got := s.HeadYOffset(); got != ArmorStandHeadYOffset+PassengerYOffset {
		t.Fatalf("aecStack offset=%v", got)
	}
	v := -1.0
	s.Statue.HeadYOffset = &v
	if got := s.HeadYOffset(); got != -1 {
		t.Fatalf("explicit offset=%v", got)
	}
}

func TestOutputPath_ByMode(t *testing.T) {
	s := Defaults()
	s.Statue.MCBFilePath = " out.mc "
	s.Statue.DataPackPath = "pack"
	if s.OutputPath() != "out.mc" {
		t.Fatalf("mcb output=%q", s.OutputPath())
	}
	s.Statue.ExportMode = ModeDatapack
	if s.OutputPath() != "pack" {
		t.Fatalf("datapack output=%q", s.OutputPath())
	}
}
