package ui

import (
	"strings"
	"testing"

	"hxinfer/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.ProgressEvent)
	m := NewProgressModel("check", []string{"A.hx", "B.hx"}, events).(*progressModel)

	m.applyEvent(driver.ProgressEvent{Phase: "parse", Status: driver.ProgressStart})
	if m.stageLabel != "parsing" {
		t.Errorf("stage = %q", m.stageLabel)
	}
	m.applyEvent(driver.ProgressEvent{Phase: "check", Path: "A.hx", Status: driver.ProgressStart})
	if m.items[0].status != statusChecking {
		t.Errorf("A.hx status = %q", m.items[0].status)
	}
	m.applyEvent(driver.ProgressEvent{Phase: "check", Path: "A.hx", Status: driver.ProgressDone})
	m.applyEvent(driver.ProgressEvent{Phase: "check", Path: "B.hx", Status: driver.ProgressDone, Cached: true})
	m.applyEvent(driver.ProgressEvent{Phase: "check", Path: "C.hx", Status: driver.ProgressDone})
	if m.finished != 2 || m.items[1].status != statusCached {
		t.Errorf("finished = %d, items = %+v", m.finished, m.items)
	}
	if view := m.View(); !strings.Contains(view, "check 2/2") {
		t.Errorf("view lacks counter:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short.hx", 20, "short.hx"},
		{"src/very/long/Path.hx", 10, "src/ver..."},
		{"abcdef", 2, "ab"},
		{"日本語.hx", 5, "日..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
