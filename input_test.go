package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app-selector/internal/request"
)

func TestParsePickArgsFromFlags(t *testing.T) {
	b, err := parsePickArgs([]string{
		"--operation", "share",
		"--mime", "image/png",
		"--extra", "app.gallery",
		"--extra", "app.mail",
		"--caller-pid", "100",
		"--caller-noti", "app.caller",
	}, strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, "share", b.Value(request.KeyOperation))
	assert.Equal(t, "image/png", b.Value(request.KeyMIME))
	assert.Equal(t, "100", b.Value(request.KeyCallerPID))
	assert.Equal(t, "app.caller", b.Value(request.KeyCallerNoti))
	extra, ok := b.GetArray(request.KeyExtraList)
	require.True(t, ok)
	assert.Equal(t, []string{"app.gallery", "app.mail"}, extra)

	_, ok = b.Get(request.KeyURI)
	assert.False(t, ok)

	rc := request.Parse(b)
	assert.Equal(t, 100, rc.CallerPID)
	assert.Equal(t, []string{"app.gallery", "app.mail"}, rc.ExplicitIDs)
}

func TestParsePickArgsFlagsOverrideBundle(t *testing.T) {
	stdin := strings.NewReader(`{"operation":"view","uri":"https://a.example","caller_pid":55,"selector_extra_list":"app.viewer"}`)

	b, err := parsePickArgs([]string{"--bundle", "-", "--uri", "https://b.example"}, stdin)
	require.NoError(t, err)

	assert.Equal(t, "view", b.Value(request.KeyOperation))
	assert.Equal(t, "https://b.example", b.Value(request.KeyURI))
	assert.Equal(t, "55", b.Value(request.KeyCallerPID))
	assert.Equal(t, "app.viewer", b.Value(request.KeyExtraList))
}

func TestParsePickArgsBundleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"operation":"edit"}`), 0o644))

	b, err := parsePickArgs([]string{"--bundle", path}, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "edit", b.Value(request.KeyOperation))

	_, err = parsePickArgs([]string{"--bundle", filepath.Join(t.TempDir(), "missing.json")}, strings.NewReader(""))
	assert.Error(t, err)
}

func TestParsePickArgsRejectsPositional(t *testing.T) {
	_, err := parsePickArgs([]string{"--operation", "share", "stray"}, strings.NewReader(""))
	assert.ErrorContains(t, err, "unexpected argument stray")
}

func TestComposeValuesBundle(t *testing.T) {
	v := composeValues{operation: " share ", uri: "file:///tmp/a.png", extra: "app.gallery  app.mail"}
	b := v.bundle()

	assert.Equal(t, "share", b.Value(request.KeyOperation))
	assert.Equal(t, "file:///tmp/a.png", b.Value(request.KeyURI))
	_, ok := b.Get(request.KeyMIME)
	assert.False(t, ok)
	extra, _ := b.GetArray(request.KeyExtraList)
	assert.Equal(t, []string{"app.gallery", "app.mail"}, extra)
}
