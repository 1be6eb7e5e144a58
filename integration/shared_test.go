//go:build basic || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedCovpostPath holds the path to a shared covpost binary built once for all tests.
	sharedCovpostPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getCovpostBinary returns the path to the covpost binary, building it once if needed.
func getCovpostBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "covpost-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		covpostPath := filepath.Join(tempDir, "covpost")
		buildCmd := exec.Command("go", "build", "-o", covpostPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build covpost: %v\n%s", err, out))
		}

		sharedCovpostPath = covpostPath
	})

	return sharedCovpostPath
}

// sampleReport returns the absolute path of the shared JaCoCo fixture.
func sampleReport(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "core", "testdata", "jacoco.xml"))
	if err != nil {
		t.Fatalf("failed to resolve report path: %v", err)
	}
	return path
}

// runCovpost runs the binary from a scratch directory with extra environment variables
// and returns stdout and stderr separately.
func runCovpost(t *testing.T, env []string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(getCovpostBinary(), args...)
	cmd.Dir = t.TempDir() // Keep any .covpost.yaml in the project out of the way
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), stderr.String(), err
}
