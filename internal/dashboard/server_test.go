package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/artifact"
)

func setupServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.DashboardFile),
		[]byte("const v4Data = {\n};\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.RunsFile),
		[]byte(`{"pipeline_runs":[],"summary":{}}`), 0o644))

	srv := NewServer(ServerConfig{
		Port:      8084,
		OutputDir: dir,
		Logger:    zap.NewNop(),
	})
	return srv, dir
}

func TestServerHealthz(t *testing.T) {
	srv, _ := setupServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestServerReadyz(t *testing.T) {
	srv, _ := setupServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp["status"])

	components, ok := resp["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", components["output_dir"])
	assert.Equal(t, "not_configured", components["postgres"])
}

func TestServerReadyzDegradedWithoutOutputDir(t *testing.T) {
	srv := NewServer(ServerConfig{
		Port:      8084,
		OutputDir: filepath.Join(t.TempDir(), "missing"),
		Logger:    zap.NewNop(),
	})

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}

func TestServerServesArtifacts(t *testing.T) {
	srv, _ := setupServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/"+artifact.DashboardFile, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "const v4Data")

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/"+artifact.RunsFile, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pipeline_runs")

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/absent.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerMetrics(t *testing.T) {
	srv, _ := setupServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP")
}
