// internal/cli/root_flags_test.go
package winnow

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/mwiater/winnow/internal/logging"
)

func resetFlag(cmdFlag string) {
	flag := rootCmd.PersistentFlags().Lookup(cmdFlag)
	if flag == nil {
		return
	}
	_ = flag.Value.Set(flag.DefValue)
	flag.Changed = false
}

func resetRootFlags() {
	for _, name := range []string{"debug", "logFile", "samples", "seed"} {
		resetFlag(name)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// testConfigJSON builds config file content that keeps the log file
// inside the test's temp directory.
func testConfigJSON(t *testing.T, extra string) string {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "winnow.log")
	if extra == "" {
		return fmt.Sprintf(`{"logFile": %q}`, logPath)
	}
	return fmt.Sprintf(`{"logFile": %q, %s}`, logPath, extra)
}

// useConfigFile points the root command at a config file for one test.
func useConfigFile(t *testing.T, path string) {
	t.Helper()
	prevCfgFile := cfgFile
	cfgFile = path
	viper.SetConfigFile(path)
	t.Cleanup(func() {
		cfgFile = prevCfgFile
		viper.SetConfigFile(prevCfgFile)
	})
	t.Cleanup(func() { _ = logging.Close() })
}

func TestPersistentPreRunEUsesFlagValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "winnow.log")
	configPath := writeTempConfig(t, "{}")
	useConfigFile(t, configPath)
	resetRootFlags()

	_ = rootCmd.PersistentFlags().Set("debug", "true")
	_ = rootCmd.PersistentFlags().Set("samples", "25")
	_ = rootCmd.PersistentFlags().Set("seed", "7")
	_ = rootCmd.PersistentFlags().Set("logFile", logPath)

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	if currentConfig == nil || currentConfig.ConfigPath != configPath {
		t.Fatalf("expected config loaded with path %s", configPath)
	}
	if !currentConfig.Debug {
		t.Fatalf("expected debug flag to flow into config: %+v", currentConfig)
	}
	if currentConfig.Samples != 25 {
		t.Fatalf("expected samples 25, got %d", currentConfig.Samples)
	}
	if currentConfig.Seed != 7 {
		t.Fatalf("expected seed 7, got %d", currentConfig.Seed)
	}
	if currentConfig.LogFile != logPath {
		t.Fatalf("expected log file %s, got %s", logPath, currentConfig.LogFile)
	}
}

func TestPersistentPreRunEReadsConfigFile(t *testing.T) {
	configPath := writeTempConfig(t, testConfigJSON(t,
		`"samples": 5, "seed": 99, "source": "staging/www", "output": "public"`))
	useConfigFile(t, configPath)
	resetRootFlags()

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	if currentConfig.Samples != 5 || currentConfig.Seed != 99 {
		t.Fatalf("expected config file counts to apply, got %+v", currentConfig)
	}
	if currentConfig.Source != "staging/www" || currentConfig.Output != "public" {
		t.Fatalf("expected config file directories to apply, got %+v", currentConfig)
	}
	if currentConfig.SampleTarget() != 5 {
		t.Fatalf("expected sample target 5, got %d", currentConfig.SampleTarget())
	}
}

func TestShowConfigCommandOutput(t *testing.T) {
	configPath := writeTempConfig(t, testConfigJSON(t, ""))
	useConfigFile(t, configPath)
	resetRootFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--debug", "show", "config"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Config file: "+configPath) {
		t.Fatalf("expected config file path in output, got %s", out)
	}
	if !strings.Contains(out, "Samples:    10") {
		t.Fatalf("expected default samples in output, got %s", out)
	}
	if !strings.Contains(out, "Seed:       42") {
		t.Fatalf("expected default seed in output, got %s", out)
	}
	if !strings.Contains(out, "Debug:      true") {
		t.Fatalf("expected debug in output, got %s", out)
	}
}
