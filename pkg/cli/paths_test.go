package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPaths(t *testing.T) {
	paths, err := NewPaths("onkyoctl")
	if err != nil {
		t.Fatalf("NewPaths error: %v", err)
	}

	if paths.AppName != "onkyoctl" {
		t.Errorf("AppName = %q, want %q", paths.AppName, "onkyoctl")
	}

	if paths.HomeDir == "" {
		t.Error("HomeDir should not be empty")
	}
}

func TestPaths_Layout(t *testing.T) {
	tmpDir := t.TempDir()
	paths := &Paths{AppName: "onkyoctl", HomeDir: tmpDir}

	app := filepath.Join(tmpDir, DefaultBaseDir, "onkyoctl")
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"BaseDir", paths.BaseDir(), filepath.Join(tmpDir, DefaultBaseDir)},
		{"AppDir", paths.AppDir(), app},
		{"ConfigFile", paths.ConfigFile(), filepath.Join(app, DefaultConfigFile)},
		{"DataDir", paths.DataDir(), filepath.Join(app, "data")},
		{"DataPath", paths.DataPath("inventory"), filepath.Join(app, "data", "inventory")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestPaths_EnsureDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	paths := &Paths{AppName: "onkyoctl", HomeDir: tmpDir}

	if err := paths.EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir error: %v", err)
	}
	info, err := os.Stat(paths.DataDir())
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", paths.DataDir())
	}
}
