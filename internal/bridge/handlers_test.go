package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHandlerTable_InstallAndSeal(t *testing.T) {
	table := NewHandlerTable()
	noop := func(Args) error { return nil }

	require.NoError(t, table.Install("a", nil, noop))
	assert.ErrorIs(t, table.Install("a", nil, noop), ErrDuplicateEntryPoint)
	assert.Error(t, table.Install("b", nil, nil))

	table.Seal()
	assert.True(t, table.Sealed())
	assert.ErrorIs(t, table.Install("c", nil, noop), ErrSealed)
	assert.Equal(t, []string{"a"}, table.Names())

	// Sealed tables still dispatch.
	assert.NoError(t, table.DispatchJSON("a", []byte(`[]`)))
}

func TestHandlerTable_Dispatch(t *testing.T) {
	table := NewHandlerTable()

	var gotName string
	var gotZoom float64
	var gotKind int
	require.NoError(t, table.Install("call", []ArgKind{ArgString, ArgNumber, ArgInt}, func(a Args) error {
		gotName = a.String(0)
		gotZoom = a.Float(1)
		gotKind = a.Int(2)
		return nil
	}))

	require.NoError(t, table.DispatchJSON("call", []byte(`["cam", 1.5, 2]`)))
	assert.Equal(t, "cam", gotName)
	assert.Equal(t, 1.5, gotZoom)
	assert.Equal(t, 2, gotKind)

	tests := []struct {
		name string
		args string
	}{
		{"too few", `["cam", 1.5]`},
		{"too many", `["cam", 1.5, 2, 3]`},
		{"string for number", `["cam", "1.5", 2]`},
		{"fraction for int", `["cam", 1.5, 2.5]`},
		{"number for string", `[1, 1.5, 2]`},
		{"not an array", `{"a": 1}`},
		{"invalid json", `["cam", `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := table.DispatchJSON("call", []byte(tt.args))
			assert.ErrorIs(t, err, ErrBadArguments)
		})
	}
}

func TestHandlerTable_UnknownAndHandlerErrors(t *testing.T) {
	table := NewHandlerTable()
	boom := errors.New("boom")
	require.NoError(t, table.Install("fails", nil, func(Args) error { return boom }))

	err := table.Dispatch("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownEntryPoint)
	assert.EqualError(t, err, "nope: unknown entry point")

	err = table.Dispatch("fails", []gjson.Result{})
	assert.ErrorIs(t, err, boom)
}

func TestArgKind_String(t *testing.T) {
	assert.Equal(t, "string", ArgString.String())
	assert.Equal(t, "number", ArgNumber.String())
	assert.Equal(t, "int", ArgInt.String())
	assert.Equal(t, "unknown", ArgKind(9).String())
}
