package tests

import (
	"os"
	"testing"
)

// TestMain gives the CLI a token and an empty configuration home so user settings do not leak into runs.
func TestMain(m *testing.M) {
	configurationHome, directoryError := os.MkdirTemp("", "galab-config-")
	if directoryError != nil {
		os.Exit(1)
	}
	_ = os.Setenv("GH_TOKEN", "test-token")
	_ = os.Setenv("XDG_CONFIG_HOME", configurationHome)

	exitCode := m.Run()
	_ = os.RemoveAll(configurationHome)
	os.Exit(exitCode)
}
