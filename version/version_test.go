package version_test

import (
	"testing"

	"github.com/vimdaw/vimdaw/version"
)

func TestString(t *testing.T) {
	old := version.Version
	defer func() { version.Version = old }()
	version.Version = "v1.2.3"
	if got := version.String(); got != "v1.2.3" {
		t.Errorf("String() = %q, want the set version", got)
	}
	version.Version = ""
	if got := version.String(); got == "" {
		t.Errorf("String() is empty without a set version")
	}
}
