package loader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestTOMLLoader_Load(t *testing.T) {
	memfs := fstest.MapFS{
		"config.toml": {Data: []byte(`
[index]
block_capacity = 32
leveling = "deterministic"

[logging]
level = "debug"
`)},
	}

	config, err := NewTOMLLoaderWithFS(memfs, "config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	index, ok := config["index"].(map[string]any)
	if !ok {
		t.Fatal("expected index to be a map")
	}
	if index["block_capacity"] != int64(32) {
		t.Errorf("block_capacity = %v (%T), want 32", index["block_capacity"], index["block_capacity"])
	}
	if index["leveling"] != "deterministic" {
		t.Errorf("leveling = %v", index["leveling"])
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(fstest.MapFS{}, "missing.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}

	config, err = NewTOMLLoaderWithFS(fstest.MapFS{}, "").Load()
	if err != nil || config != nil {
		t.Errorf("empty path: Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := fstest.MapFS{
		"bad.toml": {Data: []byte("[index]\nblock_capacity = = 3\n")},
	}

	_, err := NewTOMLLoaderWithFS(memfs, "bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != "bad.toml" || perr.Line != 2 {
		t.Errorf("ParseError at %s:%d", perr.Path, perr.Line)
	}
	if !strings.Contains(perr.Error(), "line 2") {
		t.Errorf("message %q", perr.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[history]\nmax_undo = 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if config["history"].(map[string]any)["max_undo"] != int64(5) {
		t.Errorf("got %v", config)
	}
}

func TestTOMLLoader_Includes(t *testing.T) {
	memfs := fstest.MapFS{
		"conf/main.toml": {Data: []byte(`
"@include" = ["base.toml"]

[index]
block_capacity = 16
`)},
		"conf/base.toml": {Data: []byte(`
"@include" = "logging.toml"

[index]
block_capacity = 8
max_levels = 12
`)},
		"conf/logging.toml": {Data: []byte(`
[logging]
level = "warn"
`)},
	}

	config, err := NewTOMLLoaderWithFS(memfs, "conf/main.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := config["@include"]; ok {
		t.Error("@include should be removed")
	}

	index := config["index"].(map[string]any)
	if index["block_capacity"] != int64(16) {
		t.Errorf("main file should win: block_capacity = %v", index["block_capacity"])
	}
	if index["max_levels"] != int64(12) {
		t.Errorf("include should fill gaps: max_levels = %v", index["max_levels"])
	}
	if config["logging"].(map[string]any)["level"] != "warn" {
		t.Errorf("nested include lost: %v", config["logging"])
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	memfs := fstest.MapFS{
		"a.toml": {Data: []byte(`"@include" = "b.toml"`)},
		"b.toml": {Data: []byte(`"@include" = "a.toml"`)},
	}
	if _, err := NewTOMLLoaderWithFS(memfs, "a.toml").Load(); err == nil {
		t.Error("expected include depth error")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"index":   map[string]any{"block_capacity": 8, "max_levels": 4},
		"logging": "info",
	}
	src := map[string]any{
		"index":   map[string]any{"block_capacity": 16},
		"logging": map[string]any{"level": "debug"},
	}

	got := DeepMerge(dst, src)
	index := got["index"].(map[string]any)
	if index["block_capacity"] != 16 || index["max_levels"] != 4 {
		t.Errorf("index = %v", index)
	}
	if _, ok := got["logging"].(map[string]any); !ok {
		t.Errorf("logging should be replaced, got %v", got["logging"])
	}

	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) should return an empty map")
	}
}
