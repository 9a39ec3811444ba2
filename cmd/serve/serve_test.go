package serve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Bublikus/groshify-sub000/cmd/serve"
	"github.com/Bublikus/groshify-sub000/internal/config"
	"github.com/Bublikus/groshify-sub000/internal/container"
	"github.com/Bublikus/groshify-sub000/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := config.InitializeConfig()
	require.NoError(t, err)
	c, err := container.NewContainerWithLogger(cfg, logging.Discard())
	require.NoError(t, err)
	return c
}

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serve.Cmd.Use)
	assert.NotNil(t, serve.Cmd.RunE)
	assert.NotNil(t, serve.Cmd.Flags().Lookup("addr"))
}

func TestNewServer_Routes(t *testing.T) {
	s := serve.NewServer(newContainer(t))

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".xlsx")
}

func TestRun_StopsWhenCancelled(t *testing.T) {
	c := newContainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve.Run(ctx, c, "127.0.0.1:0"))
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
