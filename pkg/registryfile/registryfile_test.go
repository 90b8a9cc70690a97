package registryfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Items []struct {
		ID string `json:"id" yaml:"id"`
	} `json:"items" yaml:"items"`
}

func TestLoadYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"reg.yaml": "items:\n  - id: a\n  - id: b\n",
		"reg.json": `{"items":[{"id":"a"},{"id":"b"}]}`,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		var s sample
		if err := Load(path, &s); err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(s.Items) != 2 || s.Items[1].ID != "b" {
			t.Fatalf("%s decoded to %#v", name, s)
		}
	}
}

func TestDecodeRejectsUnknownExtension(t *testing.T) {
	var s sample
	err := Decode([]byte("items: []"), ".toml", &s)
	if !errors.Is(err, ErrUnrecognizedFormat) {
		t.Fatalf("expected ErrUnrecognizedFormat, got %v", err)
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	var s sample
	if err := Load("  ", &s); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
