package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "convert.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[convert]
tsvector_config = "english"
strip_definer = false
emit_on_update_triggers = true
on_parse_error = "error"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TSVectorConfig != "english" {
		t.Errorf("TSVectorConfig = %q", cfg.TSVectorConfig)
	}
	if cfg.StripDefiner {
		t.Error("StripDefiner should be false")
	}
	if !cfg.EmitOnUpdateTriggers {
		t.Error("EmitOnUpdateTriggers should be true")
	}
	if cfg.OnParseError != onParseErrorError {
		t.Errorf("OnParseError = %q", cfg.OnParseError)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "[convert]\n")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := defaultConvertConfig()
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "[convert]\ntypo_key = 1\n")
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "typo_key") {
		t.Errorf("want unknown-key error, got %v", err)
	}
}

func TestLoadConfigInvalidOnParseError(t *testing.T) {
	path := writeConfig(t, "[convert]\non_parse_error = \"panic\"\n")
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "on_parse_error") {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestLoadConfigEmptyTSVectorConfig(t *testing.T) {
	path := writeConfig(t, "[convert]\ntsvector_config = \" \"\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("want validation error for blank tsvector_config")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("want error for missing file")
	}
}
