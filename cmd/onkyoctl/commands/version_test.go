package commands

import (
	"strings"
	"testing"

	"github.com/andyrak/onkyo-ng/cmd/onkyoctl/internal/build"
)

func TestVersionString(t *testing.T) {
	s := build.String()
	if !strings.Contains(s, "onkyoctl") {
		t.Fatalf("expected 'onkyoctl', got: %s", s)
	}
	if !strings.Contains(s, build.Version) {
		t.Fatalf("expected version %q, got: %s", build.Version, s)
	}
}
