package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingIsNoop(t *testing.T) {
	t.Parallel()
	if err := LoadFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadFile missing file error: %v", err)
	}
}

func TestLoadFileSetsOnlyUnsetVariables(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "" +
		"# local overrides\n" +
		"AURA_MODEL=test-model\n" +
		"AURA_VOICE=\"Test Voice\"\n" +
		"export AURA_LOG_LEVEL=debug\n" +
		"AURA_API_KEY=from-file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("AURA_API_KEY", "from-shell")

	if err := LoadFile(envPath); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if got := os.Getenv("AURA_MODEL"); got != "test-model" {
		t.Fatalf("AURA_MODEL=%q, want %q", got, "test-model")
	}
	if got := os.Getenv("AURA_VOICE"); got != "Test Voice" {
		t.Fatalf("AURA_VOICE=%q, want unquoted value", got)
	}
	if got := os.Getenv("AURA_LOG_LEVEL"); got != "debug" {
		t.Fatalf("AURA_LOG_LEVEL=%q, want %q", got, "debug")
	}
	if got := os.Getenv("AURA_API_KEY"); got != "from-shell" {
		t.Fatalf("AURA_API_KEY=%q, want shell value preserved", got)
	}
}

func TestParseLine(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw     string
		key     string
		val     string
		skipped bool
	}{
		{raw: "KEY=value", key: "KEY", val: "value"},
		{raw: "  KEY = spaced  ", key: "KEY", val: "spaced"},
		{raw: "export KEY=value", key: "KEY", val: "value"},
		{raw: `KEY="quoted value"`, key: "KEY", val: "quoted value"},
		{raw: "KEY='single'", key: "KEY", val: "single"},
		{raw: "KEY=", key: "KEY", val: ""},
		{raw: "# comment", skipped: true},
		{raw: "", skipped: true},
		{raw: "no-assignment", skipped: true},
		{raw: "=no-key", skipped: true},
	}
	for _, tc := range cases {
		key, val, ok := parseLine(tc.raw)
		if tc.skipped {
			if ok {
				t.Fatalf("parseLine(%q) = %q,%q, want skipped", tc.raw, key, val)
			}
			continue
		}
		if !ok || key != tc.key || val != tc.val {
			t.Fatalf("parseLine(%q) = %q,%q,%v, want %q,%q", tc.raw, key, val, ok, tc.key, tc.val)
		}
	}
}
