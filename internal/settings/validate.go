package settings

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"statuecraft.ai/internal/naming"
)

//go:embed settings.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("settings.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Validate checks the settings against the settings schema and makes sure
// every naming template resolves to a non-empty tag. The generator relies on
// these checks having passed.
func (s Settings) Validate() error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile settings schema: %w", err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return err
	}

	tags := s.Tags()
	resolved := map[string]string{
		"model_tag":           tags.Model,
		"root_tag":            tags.Root,
		"all_bones_tag":       tags.AllBones,
		"individual_bone_tag": tags.Bone("x"),
	}
	for field, v := range resolved {
		if v == "" {
			return fmt.Errorf("%s resolves to an empty tag", field)
		}
	}
	if tags.Bone("a") == tags.Bone("b") {
		return fmt.Errorf("individual_bone_tag must contain %%%s", naming.BoneNameKey)
	}
	return nil
}
