package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/strata-config/strata/errors"
)

func TestJSONSchemaShape(t *testing.T) {
	desc, err := NewBuilder("widget").
		EnumValues("colors", "red", "green").
		Property(&Property{Name: "color", Kind: KindString, Enum: "colors"}).
		Property(&Property{Name: "label", Kind: KindString, Nullable: true}).
		Property(&Property{Name: "items", Kind: KindArray, IncludeCapable: true}).
		Build()
	require.NoError(t, err)

	s := desc.JSONSchema()
	assert.Equal(t, "widget", s["title"])
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])

	properties := s["properties"].(map[string]any)

	color := properties["color"].(map[string]any)
	assert.Equal(t, []any{"red", "green"}, color["enum"])

	label := properties["label"].(map[string]any)
	assert.Equal(t, []any{"string", "null"}, label["type"])

	// Include-capable arrays expose a oneOf of the item shape and the
	// directive shape for schema-aware tooling.
	items := properties["items"].(map[string]any)
	oneOf := items["items"].(map[string]any)["oneOf"].([]any)
	require.Len(t, oneOf, 2)
	directive := oneOf[1].(map[string]any)
	assert.Equal(t, []any{"$include"}, directive["required"])
	assert.Equal(t, false, directive["additionalProperties"])
}

func TestValidateAcceptsCleanDocument(t *testing.T) {
	desc, err := NewBuilder("t").
		EnumValues("colors", "red", "green").
		Property(&Property{Name: "color", Kind: KindString, Enum: "colors"}).
		Property(&Property{Name: "count", Kind: KindNumber}).
		Build()
	require.NoError(t, err)

	err = desc.Validate(map[string]any{"color": "red", "count": float64(2)}, "doc.json")
	assert.NoError(t, err)
}

func TestValidateReportsEnumViolation(t *testing.T) {
	desc, err := NewBuilder("t").
		EnumValues("colors", "red", "green").
		Property(&Property{Name: "color", Kind: KindString, Enum: "colors"}).
		Build()
	require.NoError(t, err)

	err = desc.Validate(map[string]any{"color": "mauve"}, "doc.json")
	require.ErrorIs(t, err, errUtils.ErrSchemaValidation)

	var ve *errUtils.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "doc.json", ve.File)
	assert.NotEmpty(t, ve.Violations)
}

func TestValidateReportsTypeViolation(t *testing.T) {
	desc, err := NewBuilder("t").
		Property(&Property{Name: "count", Kind: KindNumber}).
		Build()
	require.NoError(t, err)

	err = desc.Validate(map[string]any{"count": "three"}, "doc.json")
	assert.ErrorIs(t, err, errUtils.ErrSchemaValidation)
}

func TestValidateNullableEnumAllowsNull(t *testing.T) {
	desc, err := NewBuilder("t").
		EnumValues("colors", "red").
		Property(&Property{Name: "color", Kind: KindString, Nullable: true, Enum: "colors"}).
		Build()
	require.NoError(t, err)

	assert.NoError(t, desc.Validate(map[string]any{"color": nil}, "doc.json"))
}

func TestValidateDiscriminatedEnum(t *testing.T) {
	desc, err := NewBuilder("t").
		EnumValues("fruits", "apple", "pear").
		EnumValues("metals", "iron", "zinc").
		Property(&Property{Name: "kind", Kind: KindString}).
		Property(&Property{
			Name:          "value",
			Kind:          KindString,
			Discriminator: "kind",
			EnumByDiscriminator: map[string]string{
				"fruit": "fruits",
				"metal": "metals",
			},
		}).
		Build()
	require.NoError(t, err)

	assert.NoError(t, desc.Validate(map[string]any{"kind": "fruit", "value": "apple"}, "doc.json"))
	assert.NoError(t, desc.Validate(map[string]any{"kind": "metal", "value": "zinc"}, "doc.json"))

	err = desc.Validate(map[string]any{"kind": "fruit", "value": "iron"}, "doc.json")
	require.ErrorIs(t, err, errUtils.ErrSchemaValidation)

	err = desc.Validate(map[string]any{"kind": "plastic", "value": "iron"}, "doc.json")
	assert.ErrorIs(t, err, errUtils.ErrSchemaValidation)
}
