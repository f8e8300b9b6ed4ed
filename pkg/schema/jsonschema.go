package schema

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v5"

	errUtils "github.com/strata-config/strata/errors"
)

const schemaResourceName = "schema.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONSchema generates the structural JSON Schema document for external
// tooling. Include-capable array properties are typed as a oneOf of the
// regular item shape and the {"$include": string} directive shape, so
// schema-aware editors can offer both forms.
func (d *Descriptor) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.properties))
	required := make([]any, 0, len(d.properties))
	for _, p := range d.properties {
		properties[p.Name] = d.propertySchema(p)
		required = append(required, p.Name)
	}

	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                d.title,
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func (d *Descriptor) propertySchema(p *Property) map[string]any {
	s := map[string]any{}

	if p.Nullable {
		s["type"] = []any{string(p.Kind), "null"}
	} else {
		s["type"] = string(p.Kind)
	}

	if p.Enum != "" {
		if values, ok := d.enums[p.Enum]; ok {
			enum := make([]any, 0, len(values)+1)
			for _, v := range values {
				enum = append(enum, v)
			}
			if p.Nullable {
				enum = append(enum, nil)
			}
			s["enum"] = enum
		}
	}

	if p.Kind == KindObject && len(p.Properties) > 0 {
		children := make(map[string]any, len(p.Properties))
		required := make([]any, 0, len(p.Properties))
		for _, child := range p.Properties {
			children[child.Name] = d.propertySchema(child)
			required = append(required, child.Name)
		}
		s["properties"] = children
		s["required"] = required
		s["additionalProperties"] = false
	}

	if p.Kind == KindArray {
		items := map[string]any{}
		if p.Items != nil {
			items = d.propertySchema(p.Items)
		}
		if p.IncludeCapable {
			s["items"] = map[string]any{
				"oneOf": []any{items, includeDirectiveSchema()},
			}
		} else if p.Items != nil {
			s["items"] = items
		}
	}

	return s
}

func includeDirectiveSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"$include": map[string]any{"type": "string"},
		},
		"required":             []any{"$include"},
		"additionalProperties": false,
	}
}

// compile builds the validator from the generated schema. Called once from
// Validate and cached on the descriptor.
func (d *Descriptor) compile() (*jsonschema.Schema, error) {
	if d.compiled != nil {
		return d.compiled, nil
	}

	data, err := json.Marshal(d.JSONSchema())
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResourceName, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	compiled, err := compiler.Compile(schemaResourceName)
	if err != nil {
		return nil, err
	}

	d.compiled = compiled
	return compiled, nil
}

// Validate checks a document against the generated schema plus the
// discriminator-selected enum constraints the schema cannot express. The
// returned error is a *errors.ValidationError carrying every violation.
func (d *Descriptor) Validate(doc map[string]any, file string) error {
	compiled, err := d.compile()
	if err != nil {
		return err
	}

	var violations []string

	if err := compiled.Validate(any(doc)); err != nil {
		collected, ok := collectViolations(err)
		if !ok {
			return err
		}
		violations = collected
	}

	violations = append(violations, d.discriminatorViolations(doc, d.properties, "")...)

	if len(violations) > 0 {
		return &errUtils.ValidationError{File: file, Violations: violations}
	}
	return nil
}

// collectViolations flattens a jsonschema validation error into one line
// per violation, prefixed with the instance location.
func collectViolations(err error) ([]string, bool) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	var violations []string
	for _, detail := range ve.BasicOutput().Errors {
		if detail.Error == "" {
			continue
		}
		location := detail.InstanceLocation
		if location == "" {
			location = "/"
		}
		violations = append(violations, fmt.Sprintf("%s: %s", location, detail.Error))
	}
	return violations, true
}

// discriminatorViolations checks polymorphic properties whose allowed value
// set is selected by a sibling discriminator property.
func (d *Descriptor) discriminatorViolations(obj map[string]any, properties []*Property, prefix string) []string {
	var violations []string

	for _, p := range properties {
		value, present := obj[p.Name]

		if p.Discriminator != "" && present && value != nil {
			violations = append(violations, d.checkDiscriminated(obj, p, prefix, value)...)
		}

		if p.Kind == KindObject && len(p.Properties) > 0 {
			if child, ok := value.(map[string]any); ok {
				violations = append(violations, d.discriminatorViolations(child, p.Properties, joinPath(prefix, p.Name))...)
			}
		}
	}

	return violations
}

func (d *Descriptor) checkDiscriminated(obj map[string]any, p *Property, prefix string, value any) []string {
	path := joinPath(prefix, p.Name)

	str, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%s: expected a string, got %T", path, value)}
	}

	discValue, ok := obj[p.Discriminator].(string)
	if !ok {
		return []string{fmt.Sprintf("%s: discriminator %q is missing or not a string", path, p.Discriminator)}
	}

	providerName, ok := p.EnumByDiscriminator[discValue]
	if !ok {
		return []string{fmt.Sprintf("%s: no allowed-value set registered for %s=%q", path, p.Discriminator, discValue)}
	}

	values := d.enums[providerName]
	if !slices.Contains(values, str) {
		return []string{fmt.Sprintf("%s: value %q is not allowed for %s=%q (allowed: %v)", path, str, p.Discriminator, discValue, values)}
	}
	return nil
}
