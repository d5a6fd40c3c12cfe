package version_test

import (
	"strings"
	"testing"

	"github.com/vsariola/keysynth/version"
)

func TestBanner(t *testing.T) {
	b := version.Banner("keysynth")
	if !strings.HasPrefix(b, "keysynth "+version.VersionOrHash+" (go") {
		t.Fatalf("banner was %q", b)
	}
	if version.VersionOrHash == "" {
		t.Fatalf("VersionOrHash was empty")
	}
}
