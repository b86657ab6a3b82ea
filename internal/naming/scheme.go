package naming

// Scheme holds the four tag templates. Each may contain %projectName; the
// individual bone template also contains %boneName.
type Scheme struct {
	ModelTag          string
	RootTag           string
	AllBonesTag       string
	IndividualBoneTag string
}

// Tags are the resolved tag strings for one export.
type Tags struct {
	Model    string // every entity of the rig, across all instances
	Root     string
	AllBones string

	boneTemplate string
}

// Resolve binds project (already made safe) into every template.
func Resolve(s Scheme, project string) Tags {
	b := map[string]string{ProjectNameKey: project}
	return Tags{
		Model:        Format(s.ModelTag, b),
		Root:         Format(s.RootTag, b),
		AllBones:     Format(s.AllBonesTag, b),
		boneTemplate: Format(s.IndividualBoneTag, b),
	}
}

// Bone returns the tag carried only by entities of the named bone.
func (t Tags) Bone(name string) string {
	return Format(t.boneTemplate, map[string]string{BoneNameKey: name})
}

// Bone types.
const (
	BoneTypeArmorStand = "armorStand"
	BoneTypeAECStack   = "aecStack"
)

// EntityTypes is the entity type mapping of one export.
type EntityTypes struct {
	Bone        string // entity type tag matching every bone entity
	Root        string
	BoneRoot    string
	BoneDisplay string // empty when the anchor renders the model itself
}

// NewEntityTypes computes the mapping for a bone type. Unknown bone types fall
// back to armorStand.
func NewEntityTypes(project, rootType, boneType string) EntityTypes {
	et := EntityTypes{
		Bone: "#" + project + ":" + BoneEntitiesGroup,
		Root: rootType,
	}
	switch boneType {
	case BoneTypeAECStack:
		et.BoneRoot = "minecraft:area_effect_cloud"
		et.BoneDisplay = "minecraft:armor_stand"
	default:
		et.BoneRoot = "minecraft:armor_stand"
	}
	return et
}

// BoneEntitiesGroup is the name of the entity type group declared by the
// program.
const BoneEntitiesGroup = "bone_entities"

// Display is the entity type that wears the bone's model.
func (et EntityTypes) Display() string {
	if et.BoneDisplay != "" {
		return et.BoneDisplay
	}
	return et.BoneRoot
}

// Group lists the members of the bone entity type group.
func (et EntityTypes) Group() []string {
	if et.BoneDisplay == "" {
		return []string{et.BoneRoot}
	}
	return []string{et.BoneRoot, et.BoneDisplay}
}

// Objectives are the two scoreboard objectives used for instance identity.
type Objectives struct {
	Internal string // holds the last minted id
	ID       string // per-entity instance id
}
