package skills

// Property is a single JSON schema property.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is the provider-neutral object schema describing a skill's input.
// Properties serialize with sorted keys (encoding/json map ordering) and
// Required keeps declaration order, so the encoding is deterministic.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// ToolDefinition is a skill as advertised to a model provider.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
}

// BuildSchema translates a parameter list into an object schema.
func BuildSchema(params []Param) Schema {
	s := Schema{
		Type:       "object",
		Properties: make(map[string]Property, len(params)),
		Required:   []string{},
	}
	for _, p := range params {
		s.Properties[p.Name] = propertyFor(p)
		if !p.Optional {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// AsMap returns the schema as a generic map, for SDKs that take untyped
// JSON schema values.
func (s Schema) AsMap() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = p.asMap()
	}
	required := make([]any, len(s.Required))
	for i, r := range s.Required {
		required[i] = r
	}
	return map[string]any{
		"type":       s.Type,
		"properties": props,
		"required":   required,
	}
}

func (p Property) asMap() map[string]any {
	m := map[string]any{"type": p.Type}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.Items != nil {
		m["items"] = p.Items.asMap()
	}
	return m
}

// propertyFor maps a parameter kind to its schema type. Unrecognized kinds,
// including KindObject, fall back to string.
func propertyFor(p Param) Property {
	prop := Property{Description: p.Description}
	switch p.Kind {
	case KindString:
		prop.Type = "string"
	case KindNumber:
		prop.Type = "number"
	case KindBoolean:
		prop.Type = "boolean"
	case KindStrings:
		prop.Type = "array"
		prop.Items = &Property{Type: "string"}
	default:
		prop.Type = "string"
	}
	return prop
}
