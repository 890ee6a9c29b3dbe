// Package util holds small internal helpers that have not earned a public
// API yet.
package util

import (
	"reflect"
	"strings"
)

// StructSchema derives a JSON schema object from the exported fields of a
// struct. Field names come from json tags (falling back to the Go name), a
// `description` tag becomes the property description, and every field without
// an omitempty option is required. Non-struct values yield an empty object
// schema.
func StructSchema(v any) map[string]any {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	properties := map[string]any{}
	required := []string{}

	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{
			"type":       "object",
			"properties": properties,
		}
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, optional, skip := jsonName(field)
		if skip {
			continue
		}

		prop := map[string]any{
			"type": jsonType(field.Type),
		}

		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}

		properties[name] = prop

		if !optional {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// jsonName resolves a field's wire name and omitempty flag from its json tag.
func jsonName(field reflect.StructField) (name string, optional, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name = field.Name

	if tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			name = parts[0]
		}

		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				optional = true
			}
		}
	}

	return name, optional, false
}

// jsonType maps a Go type onto its JSON schema type name.
func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Pointer:
		return jsonType(t.Elem())
	default:
		return "object"
	}
}
