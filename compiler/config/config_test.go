package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
output = "out/prog.go"
entry_arg = "World"

[analyze]
taint = true
`))
	require.NoError(t, err)

	assert.Equal(t, Config{
		Output:   "out/prog.go",
		Run:      []string{"go", "run", "./app"},
		EntryArg: "World",
		Analyze:  Analyze{Taint: true},
	}, c)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`outptu = "x"`))
	assert.ErrorContains(t, err, "unknown key")

	_, err = Parse([]byte(`run = []`))
	assert.ErrorContains(t, err, "empty run")

	_, err = Parse([]byte(`output = `))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
	assert.Equal(t, Config{}, c)

	name := filepath.Join(t.TempDir(), "gojo.toml")
	require.NoError(t, os.WriteFile(name, []byte(`run = ["go", "build", "./app"]`), 0o644))

	c, err = Load(name)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "build", "./app"}, c.Run)
	assert.Equal(t, "app/main.go", c.Output)
}

func TestLoadDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}
