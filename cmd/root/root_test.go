package root_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Bublikus/groshify-sub000/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var initOnce sync.Once

func setup(t *testing.T) {
	t.Helper()
	initOnce.Do(root.Init)
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Cleanup(func() {
		root.SharedFlags = root.CommonFlags{}
		root.AppContainer = nil
	})
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "groshify", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "month and category")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	setup(t)

	input := root.Cmd.PersistentFlags().Lookup("input")
	require.NotNil(t, input)
	assert.Equal(t, "i", input.Shorthand)

	output := root.Cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)

	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("log-level"))
}

func TestGetContainer_Uninitialized(t *testing.T) {
	setup(t)
	_, err := root.GetContainer()
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	setup(t)
	root.SharedFlags.LogLevel = "debug"

	require.NoError(t, root.Initialize())
	c, err := root.GetContainer()
	require.NoError(t, err)
	assert.Equal(t, "debug", c.GetConfig().Log.Level)
	assert.False(t, c.GetGateway().Enabled())
}

func TestInitialize_ExplicitConfigFile(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "groshify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parsers:\n  camt:\n    enabled: true\n"), 0600))
	root.SharedFlags.ConfigFile = path

	require.NoError(t, root.Initialize())
	c, err := root.GetContainer()
	require.NoError(t, err)
	assert.Len(t, c.GetRegistry().Parsers(), 3)
}

func TestInitialize_InvalidConfig(t *testing.T) {
	setup(t)
	root.SharedFlags.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, root.Initialize())
}

// testChdir changes the working directory to dir for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
