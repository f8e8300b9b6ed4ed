// Package schema derives structural schemas for configuration documents
// and reconciles persisted documents against them.
//
// A Descriptor is pure data built by an explicit registration step: every
// property declares its kind, nullability, default, optional enum provider
// and whether its array slots accept $include directives. The descriptor is
// built once per document shape and owns its enum-provider cache, so there
// is no hidden process-wide state.
package schema

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	errUtils "github.com/strata-config/strata/errors"
)

// Kind is the JSON data kind of a property.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// EnumProvider supplies the closed set of allowed values for a constrained
// string property. Providers are registered by name on the builder and
// resolved once into the descriptor's cache.
type EnumProvider interface {
	Values() []string
}

// StaticEnum is an EnumProvider over a fixed value list.
type StaticEnum []string

// Values returns the allowed values.
func (e StaticEnum) Values() []string {
	return e
}

// Property describes a single document property.
type Property struct {
	Name     string
	Kind     Kind
	Nullable bool

	// Default is inserted by Sanitize when the property is absent.
	Default any

	// Enum names a registered provider whose values constrain this
	// property.
	Enum string

	// Discriminator names a sibling property whose value selects the
	// provider from EnumByDiscriminator, for polymorphic fields.
	Discriminator       string
	EnumByDiscriminator map[string]string

	// IncludeCapable marks an array property whose items may be
	// {"$include": "<path>"} directives.
	IncludeCapable bool

	// Properties describes the children of an object-kind property.
	Properties []*Property

	// Items describes the item shape of an array-kind property.
	Items *Property
}

// Migration transforms an outdated document shape into the current one.
type Migration struct {
	// ID is recorded in the sanitization report when the migration runs.
	ID string

	// Matches reports whether the persisted document has the outdated
	// shape this migration handles.
	Matches func(doc map[string]any) bool

	// Apply rewrites the document in place. It runs on the sanitizer's
	// working copy, never on the caller's document.
	Apply func(doc map[string]any)
}

// Descriptor is the derived structural schema for one document shape.
type Descriptor struct {
	title      string
	properties []*Property
	byName     map[string]*Property
	migrations []Migration

	// enums is the resolved provider cache. Its lifetime is tied to this
	// descriptor build.
	enums map[string][]string

	// compiled is the validator built from the generated JSON Schema,
	// cached after the first Validate call.
	compiled *jsonschema.Schema
}

// Builder accumulates property and provider registrations for a Descriptor.
type Builder struct {
	title      string
	properties []*Property
	providers  map[string]EnumProvider
	migrations []Migration
}

// NewBuilder starts a descriptor registration for the named document shape.
func NewBuilder(title string) *Builder {
	return &Builder{
		title:     title,
		providers: map[string]EnumProvider{},
	}
}

// Property registers a document property. Registration order is preserved
// in the generated JSON Schema.
func (b *Builder) Property(p *Property) *Builder {
	b.properties = append(b.properties, p)
	return b
}

// EnumValues registers a static enum provider under the given name.
func (b *Builder) EnumValues(name string, values ...string) *Builder {
	b.providers[name] = StaticEnum(values)
	return b
}

// EnumProvider registers an enum provider under the given name.
func (b *Builder) EnumProvider(name string, provider EnumProvider) *Builder {
	b.providers[name] = provider
	return b
}

// Migration registers a migration rule, applied in registration order.
func (b *Builder) Migration(m Migration) *Builder {
	b.migrations = append(b.migrations, m)
	return b
}

// Build resolves providers and validates the registration into an
// immutable Descriptor.
func (b *Builder) Build() (*Descriptor, error) {
	d := &Descriptor{
		title:      b.title,
		properties: b.properties,
		byName:     make(map[string]*Property, len(b.properties)),
		migrations: b.migrations,
		enums:      map[string][]string{},
	}

	for _, p := range b.properties {
		if _, dup := d.byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate property %q", errUtils.ErrInvalidArgument, p.Name)
		}
		d.byName[p.Name] = p
	}

	for _, p := range b.properties {
		if err := d.resolveProperty(p, b.providers, false); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// resolveProperty validates one property registration and caches the values
// of every provider it references. Array item shapes are anonymous, so the
// name requirement is waived for them.
func (d *Descriptor) resolveProperty(p *Property, providers map[string]EnumProvider, isItem bool) error {
	if p.Name == "" && !isItem {
		return fmt.Errorf("%w: property with empty name", errUtils.ErrInvalidArgument)
	}
	if p.IncludeCapable && p.Kind != KindArray {
		return fmt.Errorf("%w: property %q is include-capable but not an array", errUtils.ErrInvalidArgument, p.Name)
	}
	if (p.Discriminator == "") != (len(p.EnumByDiscriminator) == 0) {
		return fmt.Errorf("%w: property %q must set discriminator and its provider mapping together", errUtils.ErrInvalidArgument, p.Name)
	}

	names := make([]string, 0, 1+len(p.EnumByDiscriminator))
	if p.Enum != "" {
		names = append(names, p.Enum)
	}
	for _, name := range p.EnumByDiscriminator {
		names = append(names, name)
	}
	for _, name := range names {
		if _, cached := d.enums[name]; cached {
			continue
		}
		provider, ok := providers[name]
		if !ok {
			return fmt.Errorf("%w: property %q references unregistered enum provider %q", errUtils.ErrInvalidArgument, p.Name, name)
		}
		d.enums[name] = provider.Values()
	}

	for _, child := range p.Properties {
		if err := d.resolveProperty(child, providers, false); err != nil {
			return err
		}
	}
	if p.Items != nil {
		if err := d.resolveProperty(p.Items, providers, true); err != nil {
			return err
		}
	}
	return nil
}

// Title returns the document shape name.
func (d *Descriptor) Title() string {
	return d.title
}

// Properties returns the top-level properties in registration order. The
// returned slice is shared; callers must not modify it.
func (d *Descriptor) Properties() []*Property {
	return d.properties
}

// Lookup returns the top-level property with the given name.
func (d *Descriptor) Lookup(name string) (*Property, bool) {
	p, ok := d.byName[name]
	return p, ok
}

// IncludeCapable reports whether the named top-level property accepts
// $include directives in its array items.
func (d *Descriptor) IncludeCapable(name string) bool {
	p, ok := d.byName[name]
	return ok && p.IncludeCapable
}

// EnumValues returns the cached values of a registered provider.
func (d *Descriptor) EnumValues(name string) ([]string, bool) {
	values, ok := d.enums[name]
	return values, ok
}

// DefaultDocument builds a fresh document holding every property's default.
func (d *Descriptor) DefaultDocument() map[string]any {
	return defaultsFor(d.properties)
}

func defaultsFor(properties []*Property) map[string]any {
	doc := make(map[string]any, len(properties))
	for _, p := range properties {
		doc[p.Name] = p.defaultValue()
	}
	return doc
}

func (p *Property) defaultValue() any {
	if p.Default != nil {
		return p.Default
	}
	if p.Nullable {
		return nil
	}
	switch p.Kind {
	case KindString:
		return ""
	case KindNumber:
		return float64(0)
	case KindBoolean:
		return false
	case KindArray:
		return []any{}
	case KindObject:
		return defaultsFor(p.Properties)
	default:
		return nil
	}
}
