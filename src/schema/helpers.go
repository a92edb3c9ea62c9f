package schema

import (
	jsonschema "github.com/swaggest/jsonschema-go"
)

// CreateStringSchema creates a JSON schema for a string field
func CreateStringSchema(description string) *jsonschema.Schema {
	strType := jsonschema.String
	return &jsonschema.Schema{
		Type:        &jsonschema.Type{SimpleTypes: &strType},
		Description: &description,
	}
}

// CreateIntegerSchema creates a JSON schema for an integer field
func CreateIntegerSchema(description string) *jsonschema.Schema {
	intType := jsonschema.Integer
	return &jsonschema.Schema{
		Type:        &jsonschema.Type{SimpleTypes: &intType},
		Description: &description,
	}
}

// CreateUnionSchema creates a JSON schema for a field accepting any of the
// given simple types.
func CreateUnionSchema(description string, types ...jsonschema.SimpleType) *jsonschema.Schema {
	if len(types) == 1 {
		t := types[0]
		return &jsonschema.Schema{
			Type:        &jsonschema.Type{SimpleTypes: &t},
			Description: &description,
		}
	}
	return &jsonschema.Schema{
		Type:        &jsonschema.Type{SliceOfSimpleTypeValues: append([]jsonschema.SimpleType(nil), types...)},
		Description: &description,
	}
}

// CreateObjectSchema creates a JSON schema for an object with properties and required fields
func CreateObjectSchema(properties map[string]*jsonschema.Schema, required []string) *jsonschema.Schema {
	schemaProps := make(map[string]jsonschema.SchemaOrBool)
	for name, prop := range properties {
		schemaProps[name] = jsonschema.SchemaOrBool{TypeObject: prop}
	}

	objType := jsonschema.Object
	return &jsonschema.Schema{
		Type:       &jsonschema.Type{SimpleTypes: &objType},
		Properties: schemaProps,
		Required:   required,
	}
}
