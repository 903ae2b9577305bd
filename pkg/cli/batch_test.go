package cli

import (
	"os"
	"path/filepath"
	"testing"
)

type testBatch struct {
	Commands []struct {
		Zone    string `yaml:"zone,omitempty" json:"zone,omitempty"`
		Command string `yaml:"command" json:"command"`
		Value   string `yaml:"value,omitempty" json:"value,omitempty"`
	} `yaml:"commands" json:"commands"`
}

func TestLoadBatch_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	data := `commands:
  - command: system-power
    value: "01"
  - zone: zone2
    command: ZVL
    value: QSTN
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var batch testBatch
	if err := LoadBatch(path, &batch); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(batch.Commands) != 2 {
		t.Fatalf("got %d commands, want 2", len(batch.Commands))
	}
	if batch.Commands[0].Command != "system-power" || batch.Commands[0].Value != "01" {
		t.Errorf("entry 0 = %+v", batch.Commands[0])
	}
	if batch.Commands[1].Zone != "zone2" {
		t.Errorf("entry 1 zone = %q, want zone2", batch.Commands[1].Zone)
	}
}

func TestLoadBatch_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	data := `{"commands": [{"command": "PWR", "value": "QSTN"}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var batch testBatch
	if err := LoadBatch(path, &batch); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(batch.Commands) != 1 || batch.Commands[0].Command != "PWR" {
		t.Errorf("commands = %+v", batch.Commands)
	}
}

func TestParseBatch_NoExtension(t *testing.T) {
	var batch testBatch
	if err := ParseBatch([]byte(`{"commands": [{"command": "AMT"}]}`), "", &batch); err != nil {
		t.Fatalf("JSON fallback failed: %v", err)
	}
	if len(batch.Commands) != 1 || batch.Commands[0].Command != "AMT" {
		t.Errorf("commands = %+v", batch.Commands)
	}

	var garbage testBatch
	if err := ParseBatch([]byte(": not : a : doc :"), "", &garbage); err == nil {
		t.Error("unparseable data should fail")
	}
}

func TestLoadBatch_MissingFile(t *testing.T) {
	var batch testBatch
	if err := LoadBatch(filepath.Join(t.TempDir(), "absent.yaml"), &batch); err == nil {
		t.Error("missing file should fail")
	}
}
