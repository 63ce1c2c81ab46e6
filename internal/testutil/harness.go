package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sabberworm/wok/internal/app"
	"github.com/sabberworm/wok/internal/hcl"
	"github.com/sabberworm/wok/internal/registry"
	"github.com/stretchr/testify/require"
)

// DocumentFile is the file name the harness binds. Files under config/ are
// loaded as configuration.
const DocumentFile = "index.html"

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithConfig(context.Background(), t, files, app.Config{}, modules...)
}

// RunIntegrationTestWithConfig writes files to a temporary directory, builds
// an app over them and runs it. The path and logging fields of base are
// overwritten; the rest are kept.
func RunIntegrationTestWithConfig(ctx context.Context, t *testing.T, files map[string]string, base app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "config")
	require.NoError(t, os.Mkdir(configDir, 0755))

	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	cfg := base
	cfg.DocumentPath = filepath.Join(tmpDir, DocumentFile)
	cfg.ConfigPaths = []string{configDir}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	out := &app.SafeBuffer{}
	logs := &app.SafeBuffer{}
	result := &HarnessResult{}

	testApp, err := app.NewApp(out, logs, &cfg, hcl.NewLoader(), modules...)
	if err == nil {
		result.App = testApp
		err = testApp.Run(ctx)
	}
	result.Err = err
	result.Output = out.String()
	result.LogOutput = logs.String()

	if os.Getenv("WOK_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}
