package env

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func toMap(kvs []string) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

func TestMergePrecedence(t *testing.T) {
	t.Setenv("WARDEN_TEST_BASE", "os")
	e := New()
	e.Set("WARDEN_TEST_BASE", "global")
	e.Set("WARDEN_TEST_GLOBAL", "g")

	m := toMap(e.Merge([]string{"WARDEN_TEST_BASE=perproc", "WARDEN_TEST_LOCAL=l"}))
	if m["WARDEN_TEST_BASE"] != "perproc" {
		t.Fatalf("per-proc must win: got %q", m["WARDEN_TEST_BASE"])
	}
	if m["WARDEN_TEST_GLOBAL"] != "g" || m["WARDEN_TEST_LOCAL"] != "l" {
		t.Fatalf("layers missing: %v", m)
	}
}

func TestMergeExpandsVariables(t *testing.T) {
	e := New()
	e.Set("BASE_DIR", "/srv/app")
	m := toMap(e.Merge([]string{"LOG_PATH=${BASE_DIR}/logs"}))
	if m["LOG_PATH"] != "/srv/app/logs" {
		t.Fatalf("expansion failed: %q", m["LOG_PATH"])
	}
}

func TestMergeSkipsMalformedEntries(t *testing.T) {
	e := New()
	out := e.Merge([]string{"=nokey", "novalue"})
	for _, kv := range out {
		if strings.HasPrefix(kv, "=") {
			t.Fatalf("empty key leaked: %q", kv)
		}
	}
}

func TestReadFileParsesDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := strings.Join([]string{
		"# comment",
		"",
		"PLAIN=value",
		"QUOTED=\"with spaces\"",
		"SINGLE='single'",
		"export EXPORTED=yes",
		"not-a-pair",
		"  SPACED = padded ",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	pairs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	sort.Strings(pairs)
	m := toMap(pairs)
	if m["PLAIN"] != "value" {
		t.Fatalf("PLAIN: %q", m["PLAIN"])
	}
	if m["QUOTED"] != "with spaces" {
		t.Fatalf("QUOTED: %q", m["QUOTED"])
	}
	if m["SINGLE"] != "single" {
		t.Fatalf("SINGLE: %q", m["SINGLE"])
	}
	if m["EXPORTED"] != "yes" {
		t.Fatalf("EXPORTED: %q", m["EXPORTED"])
	}
	if m["SPACED"] != "padded" {
		t.Fatalf("SPACED: %q", m["SPACED"])
	}
	if _, ok := m["not-a-pair"]; ok {
		t.Fatalf("pairless line must be skipped")
	}
}

func TestLoadFileMissing(t *testing.T) {
	e := New()
	if err := e.LoadFile(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}
