package boot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_InstallsOnceThenReloads(t *testing.T) {
	marker := &Marker{}
	installs, reloads := 0, 0
	g := NewGuard(marker, func() error {
		reloads++
		return nil
	}, nil)
	install := func() error {
		installs++
		return nil
	}

	out, err := g.Enter(install)
	require.NoError(t, err)
	assert.Equal(t, Installed, out)
	assert.True(t, marker.IsSet())

	out, err = g.Enter(install)
	require.NoError(t, err)
	assert.Equal(t, Reloaded, out)

	out, _ = g.Enter(install)
	assert.Equal(t, Reloaded, out)

	assert.Equal(t, 1, installs)
	assert.Equal(t, 2, reloads)
}

func TestGuard_SharedMarker(t *testing.T) {
	marker := &Marker{}
	reloaded := false
	first := NewGuard(marker, nil, nil)
	second := NewGuard(marker, func() error {
		reloaded = true
		return nil
	}, nil)

	_, err := first.Enter(func() error { return nil })
	require.NoError(t, err)

	out, err := second.Enter(func() error {
		t.Fatal("install must not run twice")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Reloaded, out)
	assert.True(t, reloaded)
}

func TestGuard_InstallFailureKeepsMarker(t *testing.T) {
	marker := &Marker{}
	g := NewGuard(marker, nil, nil)

	_, err := g.Enter(func() error { return errors.New("engine link refused") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine link refused")
	assert.True(t, marker.IsSet())

	out, err := g.Enter(func() error { return nil })
	assert.Equal(t, Reloaded, out)
	assert.ErrorIs(t, err, ErrNoReload)
}

func TestGuard_ReloadError(t *testing.T) {
	marker := &Marker{}
	boom := errors.New("exec failed")
	g := NewGuard(marker, func() error { return boom }, nil)

	_, _ = g.Enter(func() error { return nil })
	_, err := g.Enter(func() error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestNewGuard_DefaultsToProcessMarker(t *testing.T) {
	g := NewGuard(nil, nil, nil)
	assert.Same(t, Process, g.marker)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "installed", Installed.String())
	assert.Equal(t, "reloaded", Reloaded.String())
}

func TestAssetPath(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		pageURL string
		want    string
		ok      bool
	}{
		{"none", "", "", "", false},
		{"flag wins", "/flag", "http://localhost/?asset_path=/url", "/flag", true},
		{"query", "", "http://localhost:8080/?asset_path=%2Fsrv%2Fassets&debug=1", "/srv/assets", true},
		{"query after others", "", "http://localhost/?a=1&asset_path=shards", "shards", true},
		{"no param", "", "http://localhost/?debug=1", "", false},
		{"bad url", "", "http://[::1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AssetPath(tt.flag, tt.pageURL)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
