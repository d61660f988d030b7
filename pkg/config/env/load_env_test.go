package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetForTest clears a variable for the test's duration. godotenv never
// overwrites a key that is already present, even when empty.
func unsetForTest(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeEnvFile(t, "LOAD_ENV_TEST_KEY=from-default\n")
	unsetForTest(t, "ENV_PATH")
	unsetForTest(t, "LOAD_ENV_TEST_KEY")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-default", os.Getenv("LOAD_ENV_TEST_KEY"))
}

func TestLoadDotEnv_EnvPathOverride(t *testing.T) {
	defaultPath := writeEnvFile(t, "LOAD_ENV_OVERRIDE_KEY=from-default\n")
	overridePath := writeEnvFile(t, "LOAD_ENV_OVERRIDE_KEY=from-override\n")
	t.Setenv("ENV_PATH", overridePath)
	unsetForTest(t, "LOAD_ENV_OVERRIDE_KEY")

	require.NoError(t, LoadDotEnv(defaultPath))
	assert.Equal(t, "from-override", os.Getenv("LOAD_ENV_OVERRIDE_KEY"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	unsetForTest(t, "ENV_PATH")

	err := LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.Error(t, err)
}
