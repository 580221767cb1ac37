package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/tidwall/pretty"
)

type runResult struct {
	code           int
	stdout, stderr string
}

// setup points every invocation at a fresh storage root and config path.
func setup(t *testing.T) (root, configPath string) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "MEMOCARD_") {
			t.Setenv(k, "")
		}
	}
	t.Setenv("NO_COLOR", "1")
	root = t.TempDir()
	t.Setenv("MEMOCARD_STORAGE_ROOT", root)
	t.Setenv("MEMOCARD_LOG_LEVEL", "error")
	return root, filepath.Join(root, "memocard.toml")
}

func runCLI(t *testing.T, configPath string, stdin io.Reader, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", configPath}, args...)
	code := run(args, stdin, &stdout, &stderr)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

var memoPath = regexp.MustCompile(`^memos/memo-\d+\.png$`)

func TestGenerateText(t *testing.T) {
	root, cfg := setup(t)
	res := runCLI(t, cfg, nil, "generate", "--text", "Hello")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	path := strings.TrimSpace(res.stdout)
	if !memoPath.MatchString(path) {
		t.Fatalf("stdout = %q", res.stdout)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Error("output is not a PNG")
	}
	if !strings.Contains(res.stderr, "Memo saved to "+path) {
		t.Errorf("stderr = %q", res.stderr)
	}
	// Shutdown persisted the settings record.
	if _, err := os.Stat(filepath.Join(root, ".memocard", "data.json")); err != nil {
		t.Errorf("settings not saved: %v", err)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		stdin  io.Reader
		args   []string
		notice string
	}{
		{"no editor", nil, []string{"generate"}, "No active editor found."},
		{"empty selection", nil, []string{"generate", "--text", ""}, "Please select some text first."},
		{"empty stdin", strings.NewReader("\n"), []string{"generate"}, "Please select some text first."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, cfg := setup(t)
			res := runCLI(t, cfg, tt.stdin, tt.args...)
			if res.code != 1 {
				t.Fatalf("exit %d", res.code)
			}
			if !strings.Contains(res.stderr, tt.notice) {
				t.Errorf("stderr = %q, want %q", res.stderr, tt.notice)
			}
			if strings.Contains(res.stderr, "Error:") {
				t.Errorf("failure reported twice: %q", res.stderr)
			}
			if _, err := os.Stat(filepath.Join(root, "memos")); !os.IsNotExist(err) {
				t.Error("memos directory created")
			}
		})
	}
}

func TestGenerateFileSelection(t *testing.T) {
	root, cfg := setup(t)
	src := filepath.Join(root, "note.md")
	if err := os.WriteFile(src, []byte("# Title\nremember the milk"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := runCLI(t, cfg, nil, "--json", "generate", "--file", src, "--from", "8", "--to", "16")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	var out struct {
		Path  string `json:"path"`
		Bytes int    `json:"bytes"`
		Width int    `json:"width"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &out); err != nil {
		t.Fatalf("stdout %q: %v", res.stdout, err)
	}
	if !memoPath.MatchString(out.Path) || out.Bytes == 0 || out.Width != 800 {
		t.Errorf("result = %+v", out)
	}
	if got := string(pretty.Pretty([]byte(res.stdout))); got != res.stdout {
		t.Errorf("stdout not in the settings show format:\n%s\nwant\n%s", res.stdout, got)
	}
}

func TestGenerateDryRunJSON(t *testing.T) {
	_, cfg := setup(t)
	res := runCLI(t, cfg, nil, "--json", "generate", "--text", "hi", "--dry-run")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &out); err != nil {
		t.Fatalf("stdout %q: %v", res.stdout, err)
	}
	if out["dryRun"] != true {
		t.Errorf("dryRun = %v", out["dryRun"])
	}
	if got := string(pretty.Pretty([]byte(res.stdout))); got != res.stdout {
		t.Errorf("stdout = %q, want %q", res.stdout, got)
	}
}

func TestGenerateStdinAndDryRun(t *testing.T) {
	root, cfg := setup(t)
	res := runCLI(t, cfg, strings.NewReader("from a pipe\n"), "generate", "--dry-run")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "dry run") || !strings.Contains(res.stderr, "[dry run] Memo saved to") {
		t.Errorf("stdout = %q, stderr = %q", res.stdout, res.stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "memos")); !os.IsNotExist(err) {
		t.Error("dry run wrote to storage")
	}
}

func TestSettingsCommands(t *testing.T) {
	root, cfg := setup(t)

	res := runCLI(t, cfg, nil, "settings", "set", "width", "600px")
	if res.code != 0 || res.stdout != "width = 600px\n" {
		t.Fatalf("set: exit %d, %q %q", res.code, res.stdout, res.stderr)
	}
	data, err := os.ReadFile(filepath.Join(root, ".memocard", "data.json"))
	if err != nil || !strings.Contains(string(data), `"600px"`) {
		t.Fatalf("persisted = %s, %v", data, err)
	}

	res = runCLI(t, cfg, nil, "settings", "show")
	var shown map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &shown); err != nil {
		t.Fatalf("show %q: %v", res.stdout, err)
	}
	if shown["width"] != "600px" || shown["minHeight"] != "400px" {
		t.Errorf("show = %v", shown)
	}

	res = runCLI(t, cfg, nil, "settings", "fields")
	if !strings.Contains(res.stdout, "useLinearGradient") || !strings.Contains(res.stdout, "Use Linear Gradient") {
		t.Errorf("fields = %q", res.stdout)
	}

	res = runCLI(t, cfg, nil, "settings", "set", "useLinearGradient", "true")
	if res.code != 0 {
		t.Fatalf("set toggle: %s", res.stderr)
	}
	res = runCLI(t, cfg, nil, "style")
	if !strings.Contains(res.stdout, "background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);") {
		t.Errorf("style = %q", res.stdout)
	}

	res = runCLI(t, cfg, nil, "settings", "reset")
	if res.code != 0 || !strings.Contains(res.stdout, `"width": "800px"`) {
		t.Errorf("reset = %q", res.stdout)
	}

	res = runCLI(t, cfg, nil, "settings", "set", "height", "1px")
	if res.code != 1 || !strings.Contains(res.stderr, "Error:") {
		t.Errorf("unknown field: exit %d, %q", res.code, res.stderr)
	}
}

func TestInit(t *testing.T) {
	_, cfg := setup(t)
	res := runCLI(t, cfg, nil, "init")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if res = runCLI(t, cfg, nil, "init"); res.code != 1 {
		t.Error("init overwrote without --force")
	}
	if res = runCLI(t, cfg, nil, "init", "--force"); res.code != 0 {
		t.Errorf("init --force: %s", res.stderr)
	}

	// The sample loads and drives a normal command.
	if res = runCLI(t, cfg, nil, "style"); res.code != 0 {
		t.Errorf("style with sample config: %s", res.stderr)
	}
}

func TestBadConfig(t *testing.T) {
	_, cfg := setup(t)
	t.Setenv("MEMOCARD_STORAGE_BACKEND", "ftp")
	res := runCLI(t, cfg, nil, "style")
	if res.code != 1 || !strings.Contains(res.stderr, "unknown storage backend") {
		t.Errorf("exit %d, %q", res.code, res.stderr)
	}
}
