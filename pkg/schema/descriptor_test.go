package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/strata-config/strata/errors"
)

func TestBuildRejectsDuplicateProperty(t *testing.T) {
	_, err := NewBuilder("t").
		Property(&Property{Name: "x", Kind: KindString}).
		Property(&Property{Name: "x", Kind: KindNumber}).
		Build()
	assert.ErrorIs(t, err, errUtils.ErrInvalidArgument)
}

func TestBuildRejectsIncludeCapableNonArray(t *testing.T) {
	_, err := NewBuilder("t").
		Property(&Property{Name: "x", Kind: KindString, IncludeCapable: true}).
		Build()
	assert.ErrorIs(t, err, errUtils.ErrInvalidArgument)
}

func TestBuildRejectsUnregisteredEnumProvider(t *testing.T) {
	_, err := NewBuilder("t").
		Property(&Property{Name: "x", Kind: KindString, Enum: "nope"}).
		Build()
	assert.ErrorIs(t, err, errUtils.ErrInvalidArgument)
}

func TestBuildCachesProviderValues(t *testing.T) {
	desc, err := NewBuilder("t").
		EnumValues("colors", "red", "green").
		Property(&Property{Name: "color", Kind: KindString, Enum: "colors"}).
		Build()
	require.NoError(t, err)

	values, ok := desc.EnumValues("colors")
	require.True(t, ok)
	assert.Equal(t, []string{"red", "green"}, values)
}

func TestDefaultDocument(t *testing.T) {
	desc, err := NewBuilder("t").
		Property(&Property{Name: "color", Kind: KindString, Default: "red"}).
		Property(&Property{Name: "count", Kind: KindNumber}).
		Property(&Property{Name: "enabled", Kind: KindBoolean, Default: true}).
		Property(&Property{Name: "label", Kind: KindString, Nullable: true}).
		Property(&Property{Name: "tags", Kind: KindArray}).
		Property(&Property{
			Name: "nested",
			Kind: KindObject,
			Properties: []*Property{
				{Name: "inner", Kind: KindString, Default: "deep"},
			},
		}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"color":   "red",
		"count":   float64(0),
		"enabled": true,
		"label":   nil,
		"tags":    []any{},
		"nested":  map[string]any{"inner": "deep"},
	}, desc.DefaultDocument())
}

func TestIncludeCapableLookup(t *testing.T) {
	desc, err := NewBuilder("t").
		Property(&Property{Name: "items", Kind: KindArray, IncludeCapable: true}).
		Property(&Property{Name: "plain", Kind: KindArray}).
		Build()
	require.NoError(t, err)

	assert.True(t, desc.IncludeCapable("items"))
	assert.False(t, desc.IncludeCapable("plain"))
	assert.False(t, desc.IncludeCapable("absent"))
}
