package scene

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/runebridge/internal/value"
)

const crateEntity = `{
	"id": "e-1",
	"name": "Crate",
	"components": [
		{
			"id": "c-1",
			"name": "Transform",
			"properties": {
				"z_index": {"String": "2"},
				"_runtime_handle": {"Number": 7},
				"position": {"Vector2": [1, 2]}
			}
		},
		{
			"id": "c-2",
			"name": "scripts.PlayerController",
			"properties": {"move_speed": {"String": "4"}}
		}
	]
}`

func TestDecodeEntity(t *testing.T) {
	e, err := DecodeEntity([]byte(crateEntity))
	require.NoError(t, err)

	assert.Equal(t, "e-1", e.ID)
	assert.Equal(t, "Crate", e.Name)
	require.Len(t, e.Components, 2)

	transform := e.Components[0]
	assert.Equal(t, []string{"z_index", "_runtime_handle", "position"}, transform.Properties.Keys())
	assert.Equal(t, []string{"z_index", "position"}, transform.EditableKeys())

	pos, ok := transform.Properties.Get("position")
	require.True(t, ok)
	assert.Equal(t, value.KindUnknown, pos.Kind())

	handle, ok := transform.Properties.Get("_runtime_handle")
	require.True(t, ok)
	assert.Equal(t, value.KindNumber, handle.Kind(), "private keys stay in the snapshot")

	c, ok := e.Component("c-2")
	require.True(t, ok)
	assert.Equal(t, "Scripts. Player Controller", c.Label())

	_, ok = e.Component("missing")
	assert.False(t, ok)
}

func TestDecodeEntity_PreservesPropertiesOnReencode(t *testing.T) {
	e, err := DecodeEntity([]byte(crateEntity))
	require.NoError(t, err)

	out, err := json.Marshal(e.Components[0].Properties)
	require.NoError(t, err)
	assert.Equal(t,
		`{"z_index":{"String":"2"},"_runtime_handle":{"Number":7},"position":{"Vector2":[1,2]}}`,
		string(out))
}

func TestDecodeEntity_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"id":`},
		{"missing id", `{"name":"x","components":[]}`},
		{"empty id", `{"id":"","name":"x","components":[]}`},
		{"components not a list", `{"id":"e","name":"x","components":{}}`},
		{"component missing name", `{"id":"e","name":"x","components":[{"id":"c","properties":{}}]}`},
		{"properties not object", `{"id":"e","name":"x","components":[{"id":"c","name":"n","properties":[]}]}`},
		{"duplicate component ids", `{"id":"e","name":"x","components":[
			{"id":"c","name":"a","properties":{}},
			{"id":"c","name":"b","properties":{}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEntity([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload))

			var perr *PayloadError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "entity", perr.Kind)
		})
	}
}

func TestDecodeEntity_ToleratesExtraFields(t *testing.T) {
	raw := `{"id":"e","name":"x","components":[],"layer":3,"children":[{"id":"k","name":"kid","components":[]}]}`
	e, err := DecodeEntity([]byte(raw))
	require.NoError(t, err)
	require.Len(t, e.Children, 1)
	assert.Equal(t, "kid", e.Children[0].Name)
}

func TestDecodeHierarchy(t *testing.T) {
	raw := `[
		{"id":"a","name":"World","children":[
			{"id":"b","name":"Player","children":[]},
			{"id":"c","name":"Camera"}
		]},
		{"id":"d","name":"UI"}
	]`

	h, err := DecodeHierarchy([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 4, h.Len())

	n, ok := h.Find("c")
	require.True(t, ok)
	assert.Equal(t, "Camera", n.Name)

	var visited []string
	var depths []int
	h.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n.ID)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, visited)
	assert.Equal(t, []int{0, 1, 1, 0}, depths)
}

func TestDecodeHierarchy_Malformed(t *testing.T) {
	for _, raw := range []string{`{"id":"a"}`, `[{"name":"no id"}]`, `nope`} {
		_, err := DecodeHierarchy([]byte(raw))
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	}
}

func TestPrettyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"move_speed", "Move speed"},
		{"RigidBody", "Rigid Body"},
		{"spriteRenderer", "Sprite Renderer"},
		{"z_index", "Z index"},
		{"", ""},
		{"x", "X"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrettyName(tt.in), tt.in)
	}
}

func TestProperties_SetKeepsPosition(t *testing.T) {
	p := NewProperties(
		Property{Key: "b", Value: value.String("1")},
		Property{Key: "a", Value: value.String("2")},
	)
	p.Set("b", value.String("3"))
	p.Set("_c", value.Boolean(true))

	assert.Equal(t, []string{"b", "a", "_c"}, p.Keys())
	v, _ := p.Get("b")
	assert.True(t, v.Equal(value.String("3")))
	assert.Len(t, p.All(), 3)
	assert.True(t, IsPrivate("_c"))
	assert.False(t, IsPrivate("c_"))
}

func TestSchemas(t *testing.T) {
	es := EntitySchema()
	require.NotNil(t, es)
	assert.Equal(t, "runebridge selected entity", es.Title)

	out, err := json.Marshal(HierarchySchema())
	require.NoError(t, err)
	assert.Contains(t, string(out), "runebridge hierarchy")
}
