package gemini

import (
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// schema is the OpenAPI subset accepted by responseSchema.
type schema struct {
	Type             string             `json:"type"`
	Description      string             `json:"description,omitempty"`
	Enum             []string           `json:"enum,omitempty"`
	Properties       map[string]*schema `json:"properties,omitempty"`
	Required         []string           `json:"required,omitempty"`
	PropertyOrdering []string           `json:"propertyOrdering,omitempty"`
	Items            *schema            `json:"items,omitempty"`
	Nullable         bool               `json:"nullable,omitempty"`
}

// toSchema converts a JSON schema definition to the Gemini schema format.
// Properties are ordered with required fields first, in their declared order.
func toSchema(def jsonschema.Definition) *schema {
	s := &schema{
		Type:        strings.ToUpper(string(def.Type)),
		Description: def.Description,
		Enum:        def.Enum,
		Required:    def.Required,
		Nullable:    def.Nullable,
	}
	if len(def.Properties) > 0 {
		s.Properties = make(map[string]*schema, len(def.Properties))
		for name, property := range def.Properties {
			s.Properties[name] = toSchema(property)
		}
		s.PropertyOrdering = propertyOrdering(def)
	}
	if def.Items != nil {
		s.Items = toSchema(*def.Items)
	}
	return s
}

func propertyOrdering(def jsonschema.Definition) []string {
	ordering := make([]string, 0, len(def.Properties))
	seen := make(map[string]bool, len(def.Properties))
	for _, name := range def.Required {
		if _, ok := def.Properties[name]; ok && !seen[name] {
			ordering = append(ordering, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range def.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(ordering, rest...)
}
