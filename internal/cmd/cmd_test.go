package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/recents/internal/host"
	"github.com/Iron-Ham/recents/internal/testutil"
)

// resetFlags restores every flag of c and its subcommands to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args on a fresh viper and
// returns what it printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)
	bindFlags()
	t.Cleanup(viper.Reset)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "recents" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "recents")
	}

	cmdMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range []string{"panel", "list", "logs", "config"} {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestList_MissingRegistry(t *testing.T) {
	testutil.SetupDirs(t)
	_, err := executeCommand(t, "list")
	if err == nil || !strings.Contains(err.Error(), "recents config init") {
		t.Fatalf("list without registry error = %v, want hint to run config init", err)
	}
}

func TestConfigInitThenList(t *testing.T) {
	dirs := testutil.SetupDirs(t)

	out, err := executeCommand(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	registry := filepath.Join(dirs.Config, "recents", "tasks.yaml")
	if _, err := os.Stat(registry); err != nil {
		t.Fatalf("sample registry not created: %v", err)
	}
	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("second config init should refuse to overwrite")
	}

	out, err = executeCommand(t, "list", "--width", "100", "--stats")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	// The uninstalled sample task does not resolve.
	if !strings.Contains(out, "Recent tasks: 6 (complete)") {
		t.Errorf("unexpected header:\n%s", out)
	}
	for _, want := range []string{"[M]", "Mail", "top", "Docs - Browser", "Notes", "Caches:", "icons"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if w := len([]rune(line)); w > 100 {
			t.Errorf("line exceeds width (%d): %q", w, line)
		}
	}
}

func TestList_JSON(t *testing.T) {
	testutil.SetupDirs(t)
	registry := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := host.WriteFile(registry, host.Sample()); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "list", "--registry", registry, "--format", "json")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	var got struct {
		Completed bool `json:"completed"`
		Cards     []struct {
			Identifier string `json:"identifier"`
			Title      string `json:"title"`
			Top        bool   `json:"top"`
		} `json:"cards"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !got.Completed || len(got.Cards) != 6 {
		t.Fatalf("completed = %v, cards = %d", got.Completed, len(got.Cards))
	}
	if first := got.Cards[0]; !first.Top || first.Identifier != "#ident:org.example.mail/.Inbox" {
		t.Errorf("first card = %+v, want the foreground mail task", first)
	}
}

func TestList_RespectsConfig(t *testing.T) {
	testutil.SetupDirs(t)
	registry := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := host.WriteFile(registry, host.Sample()); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RECENTS_PANEL_MAX_TASKS", "3")

	out, err := executeCommand(t, "list", "--registry", registry)
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Recent tasks: 3 (complete)") {
		t.Errorf("max_tasks from the environment was ignored:\n%s", out)
	}
}

func TestList_InvalidFormat(t *testing.T) {
	testutil.SetupDirs(t)
	if _, err := executeCommand(t, "list", "--format", "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestConfigSet(t *testing.T) {
	testutil.SetupDirs(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"int", []string{"panel.max_tasks", "8"}, false},
		{"list", []string{"panel.favorites", "#ident:a|#ident:b"}, false},
		{"mode", []string{"panel.expand_mode", "never"}, false},
		{"unknown key", []string{"panel.nope", "1"}, true},
		{"bad bool", []string{"registry.watch", "yes"}, true},
		{"fails validation", []string{"panel.expand_mode", "sometimes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, append([]string{"config", "set"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("config set %v error = %v, wantErr %v\n%s", tt.args, err, tt.wantErr, out)
			}
		})
	}

	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"max_tasks: 8", "favorites: [#ident:a, #ident:b]", "expand_mode: never"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPath(t *testing.T) {
	dirs := testutil.SetupDirs(t)
	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dirs.Config, "recents", "tasks.yaml")) {
		t.Errorf("registry path missing:\n%s", out)
	}
	if !strings.Contains(out, filepath.Join(dirs.State, "recents", "recents.log")) {
		t.Errorf("log path missing:\n%s", out)
	}
}

func TestLogs(t *testing.T) {
	testutil.SetupDirs(t)
	registry := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := host.WriteFile(registry, host.Sample()); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RECENTS_LOGGING_LEVEL", "debug")
	if _, err := executeCommand(t, "list", "--registry", registry); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	out, err := executeCommand(t, "logs", "--summary")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(out, "DEBUG=") {
		t.Errorf("summary should count debug entries: %s", out)
	}

	out, err = executeCommand(t, "logs", "--component", "loader", "-n", "0")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(out, "[loader]") {
		t.Errorf("expected loader entries:\n%s", out)
	}

	if _, err := executeCommand(t, "logs", "--level", "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
