package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTree(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"scour"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunExitCodes(t *testing.T) {
	root := setupTree(t, map[string]string{
		"a.txt":     "hello world",
		"sub/b.md":  "Hello again, hello",
		"notes.bin": "hello",
	})

	code, out, _ := runCLI("hello", root)
	if code != ExitMatches {
		t.Fatalf("exit code = %d, want %d", code, ExitMatches)
	}
	if !strings.Contains(out, "a.txt") || !strings.Contains(out, filepath.Join("sub", "b.md")) {
		t.Errorf("output missing results:\n%s", out)
	}
	if strings.Index(out, "b.md") > strings.Index(out, "a.txt") {
		t.Errorf("b.md has more matches and must be listed first:\n%s", out)
	}

	code, out, _ = runCLI("absent", root)
	if code != ExitNoMatches {
		t.Errorf("no-match exit code = %d, want %d", code, ExitNoMatches)
	}
	if !strings.Contains(out, "No results found.") {
		t.Errorf("output missing empty notice:\n%s", out)
	}
}

func TestRunFatalErrors(t *testing.T) {
	root := setupTree(t, map[string]string{"a.txt": "x"})

	cases := map[string][]string{
		"invalid regex":  {"--regex", "([", root},
		"missing root":   {"x", filepath.Join(root, "missing")},
		"no pattern":     {},
		"too many args":  {"x", root, "extra"},
		"bad log level":  {"--log-level", "loud", "x", root},
		"zero limit":     {"--limit", "0", "x", root},
		"unknown flag":   {"--frobnicate", "x", root},
		"bad extension":  {"--ext", ".", "x", root},
		"negative width": {"--context-width", "-1", "x", root},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if code, _, _ := runCLI(args...); code != ExitFatal {
				t.Errorf("exit code = %d, want %d", code, ExitFatal)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	code, out, _ := runCLI("--help")
	if code != ExitMatches {
		t.Errorf("help exit code = %d", code)
	}
	if !strings.Contains(out, "PATTERN") {
		t.Errorf("help output missing usage:\n%s", out)
	}
}

func TestRunFlagsAndConfigFile(t *testing.T) {
	root := setupTree(t, map[string]string{
		"a.txt": "needle",
		"b.txt": "needle",
		"c.go":  "needle",
	})

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("result_limit = 1\nextensions = [\"txt\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, out, _ := runCLI("--config", cfgPath, "needle", root)
	if !strings.Contains(out, "showing 1") || strings.Contains(out, "c.go") {
		t.Errorf("config file not applied:\n%s", out)
	}

	_, out, _ = runCLI("--config", cfgPath, "--limit", "5", "--ext", "go,txt", "needle", root)
	if !strings.Contains(out, "showing 3") {
		t.Errorf("flags must override the config file:\n%s", out)
	}
}

func TestRunPreview(t *testing.T) {
	root := setupTree(t, map[string]string{"a.txt": "first line\nthe needle sits here\n"})

	_, out, _ := runCLI("--preview", "--context-width", "6", "needle", root)
	if !strings.Contains(out, "L2") || !strings.Contains(out, "needle") {
		t.Errorf("preview missing:\n%s", out)
	}
}

func TestRunPreviewWithoutContext(t *testing.T) {
	root := setupTree(t, map[string]string{"a.txt": "first line\nthe needle sits here\n"})

	code, out, _ := runCLI("--preview", "--context-width", "0", "needle", root)
	if code != ExitMatches || !strings.Contains(out, "offset 15") || strings.Contains(out, "sits") {
		t.Errorf("zero context width preview (exit %d):\n%s", code, out)
	}
}
