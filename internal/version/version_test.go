package version

import (
	"testing"

	"github.com/fatih/color"
)

func withPlain(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestBanner(t *testing.T) {
	withPlain(t)
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "hxinfer 0.1.0-dev"},
		{"1.2.3", "abc123", "", "hxinfer 1.2.3 (abc123)"},
		{"1.2.3", "abc123", "2026-01-15", "hxinfer 1.2.3 (abc123) built 2026-01-15"},
		{"weird", "", "", "hxinfer weird"},
	}
	for _, tt := range tests {
		Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
		if got := Banner(); got != tt.want {
			t.Errorf("Banner() = %q, want %q", got, tt.want)
		}
	}
}

func TestColoredKeepsDigits(t *testing.T) {
	withPlain(t)
	if got := Colored(); got != Version {
		t.Errorf("Colored() = %q, want %q without color", got, Version)
	}
}
