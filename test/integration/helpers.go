//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint string
	Username    string
	Password    string
	OrgName     string
	BinaryPath  string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint: os.Getenv("CF_API"),
		Username:    os.Getenv("CF_USERNAME"),
		Password:    os.Getenv("CF_PASSWORD"),
		OrgName:     os.Getenv("CF_ORG"),
		BinaryPath:  getBinaryPath(),
		Verbose:     os.Getenv("CFAPPS_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the cfapps binary.
func getBinaryPath() string {
	if path := os.Getenv("CFAPPS_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../cfapps", "./cfapps", "../cfapps"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "cfapps"
}

// SkipIfMissingConfig skips the test unless an API and credentials are configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIEndpoint == "" || config.Username == "" || config.Password == "" {
		t.Skip("CF_API, CF_USERNAME and CF_PASSWORD must be set, skipping integration test")
	}

	if _, err := os.Stat(config.BinaryPath); os.IsNotExist(err) {
		t.Skipf("cfapps binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs cfapps against an isolated config, keyring and state file.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	home   string
}

// NewCommandRunner creates a runner whose state lives in a temporary directory.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{config: config, t: t, home: t.TempDir()}
}

// Run executes a cfapps command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a cfapps command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	global := []string{
		"--config", filepath.Join(runner.home, "config.yml"),
		"--state-file", filepath.Join(runner.home, "state.yml"),
		"--keyring-backend", "file",
		"--keyring-dir", filepath.Join(runner.home, "keyring"),
	}

	cmd := exec.Command(runner.config.BinaryPath, append(args, global...)...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login logs in with the configured credentials.
func (runner *CommandRunner) Login() (string, string, error) {
	return runner.Run("login",
		"-a", runner.config.APIEndpoint,
		"-u", runner.config.Username,
		"-p", runner.config.Password)
}

// DecodeJSON decodes command output into value.
func DecodeJSON(t *testing.T, output string, value any) {
	t.Helper()

	err := json.Unmarshal([]byte(output), value)
	if err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
}
