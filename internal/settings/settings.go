package settings

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"statuecraft.ai/internal/naming"
)

// Export modes.
const (
	ModeMCB      = "mcb"
	ModeDatapack = "datapack"
)

// Head offsets. The bone model renders on the armor stand's head slot, so the
// stand is summoned below the bone's position. A stand riding an area effect
// cloud sits higher by the passenger offset.
const (
	ArmorStandHeadYOffset = -1.813
	PassengerYOffset      = 0.4
)

type Settings struct {
	ProjectName string `yaml:"project_name" json:"project_name"`
	RigItem     string `yaml:"rig_item" json:"rig_item"`

	Statue StatueSettings `yaml:"statue" json:"statue"`
}

type StatueSettings struct {
	ModelTag          string `yaml:"model_tag" json:"model_tag"`
	RootTag           string `yaml:"root_tag" json:"root_tag"`
	AllBonesTag       string `yaml:"all_bones_tag" json:"all_bones_tag"`
	IndividualBoneTag string `yaml:"individual_bone_tag" json:"individual_bone_tag"`

	RootEntityType    string `yaml:"root_entity_type" json:"root_entity_type"`
	BoneType          string `yaml:"bone_type" json:"bone_type"`
	MarkerArmorStands bool   `yaml:"marker_armor_stands" json:"marker_armor_stands"`

	InternalScoreboardObjective string `yaml:"internal_scoreboard_objective" json:"internal_scoreboard_objective"`
	IDScoreboardObjective       string `yaml:"id_scoreboard_objective" json:"id_scoreboard_objective"`

	ExportMode   string `yaml:"export_mode" json:"export_mode"`
	MCBFilePath  string `yaml:"mcb_file_path" json:"mcb_file_path"`
	DataPackPath string `yaml:"data_pack_path" json:"data_pack_path"`
	PackFormat   int    `yaml:"pack_format" json:"pack_format"`

	// HeadYOffset overrides the offset derived from BoneType.
	HeadYOffset *float64 `yaml:"head_y_offset,omitempty" json:"head_y_offset,omitempty"`
}

func Defaults() Settings {
	return Settings{
		ProjectName: "statue",
		RigItem:     "minecraft:white_dye",
		Statue: StatueSettings{
			ModelTag:                    "aj.%projectName",
			RootTag:                     "aj.%projectName.root",
			AllBonesTag:                 "aj.%projectName.bone",
			IndividualBoneTag:           "aj.%projectName.bone.%boneName",
			RootEntityType:              "minecraft:marker",
			BoneType:                    naming.BoneTypeArmorStand,
			MarkerArmorStands:           true,
			InternalScoreboardObjective: "aj.i",
			IDScoreboardObjective:       "aj.id",
			ExportMode:                  ModeMCB,
			PackFormat:                  10,
		},
	}
}

// Load reads a settings YAML file over Defaults and validates it.
func Load(path string) (Settings, error) {
	s := Defaults()
	if strings.TrimSpace(path) == "" {
		return s, s.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	return s, nil
}

// Project is the namespace-safe project name.
func (s Settings) Project() string {
	return naming.SafeFunctionName(s.ProjectName)
}

func (s Settings) Scheme() naming.Scheme {
	return naming.Scheme{
		ModelTag:          s.Statue.ModelTag,
		RootTag:           s.Statue.RootTag,
		AllBonesTag:       s.Statue.AllBonesTag,
		IndividualBoneTag: s.Statue.IndividualBoneTag,
	}
}

func (s Settings) Tags() naming.Tags {
	return naming.Resolve(s.Scheme(), s.Project())
}

func (s Settings) Objectives() naming.Objectives {
	return naming.Objectives{
		Internal: s.Statue.InternalScoreboardObjective,
		ID:       s.Statue.IDScoreboardObjective,
	}
}

func (s Settings) EntityTypes() naming.EntityTypes {
	return naming.NewEntityTypes(s.Project(), s.Statue.RootEntityType, s.Statue.BoneType)
}

// HeadYOffset is the vertical offset applied to every bone summon.
func (s Settings) HeadYOffset() float64 {
	if s.Statue.HeadYOffset != nil {
		return *s.Statue.HeadYOffset
	}
	if s.Statue.BoneType == naming.BoneTypeAECStack {
		return ArmorStandHeadYOffset + PassengerYOffset
	}
	return ArmorStandHeadYOffset
}

// OutputPath is the destination for the configured export mode. It is empty
// when the user has not chosen one.
func (s Settings) OutputPath() string {
	if s.Statue.ExportMode == ModeDatapack {
		return strings.TrimSpace(s.Statue.DataPackPath)
	}
	return strings.TrimSpace(s.Statue.MCBFilePath)
}
