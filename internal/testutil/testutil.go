// Package testutil provides testing utilities for recents tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// DefaultTimeout bounds waits on asynchronous results.
const DefaultTimeout = 3 * time.Second

// Dirs are the isolated directories set up by SetupDirs.
type Dirs struct {
	Root   string
	Config string // $XDG_CONFIG_HOME
	State  string // $XDG_STATE_HOME
}

// SetupDirs points XDG_CONFIG_HOME and XDG_STATE_HOME into a fresh temp
// directory for the duration of the test.
func SetupDirs(t *testing.T) Dirs {
	t.Helper()

	root := t.TempDir()
	d := Dirs{
		Root:   root,
		Config: filepath.Join(root, "config"),
		State:  filepath.Join(root, "state"),
	}
	t.Setenv("XDG_CONFIG_HOME", d.Config)
	t.Setenv("XDG_STATE_HOME", d.State)
	return d
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Receive waits for a value on ch, failing the test after timeout.
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, what)
		var zero T
		return zero
	}
}

// NoReceive fails the test if a value arrives on ch within d.
func NoReceive[T any](t *testing.T, ch <-chan T, d time.Duration, what string) {
	t.Helper()

	select {
	case v := <-ch:
		t.Errorf("unexpected %s: %v", what, v)
	case <-time.After(d):
	}
}

// Eventually polls cond until it holds, failing the test after timeout.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v waiting for %s", timeout, what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
