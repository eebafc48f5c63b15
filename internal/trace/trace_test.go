package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	Begin(ring, ScopePass, "parse", 0).End("")
	Begin(ring, ScopeQuery, "eval", 0).End("")
	Error(ring, "super", "Base does not resolve")

	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected 3 events (begin, end, error), got %d", len(events))
	}
	if events[2].Kind != KindError {
		t.Fatalf("error event must pass phase level, got %s", events[2].Kind)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeQuery, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", events)
	}
}

func TestStreamFormats(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	span := Begin(st, ScopeFile, "file:Main.hx", 0)
	span.WithExtra("decls", "3").End("ok")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[1], `"detail":"ok"`) || !strings.Contains(lines[1], `"decls":"3"`) {
		t.Fatalf("end event lacks detail: %s", lines[1])
	}

	buf.Reset()
	text := NewStreamTracer(&buf, LevelDebug, FormatText)
	Point(text, ScopeQuery, "eval", "Int")
	if !strings.Contains(buf.String(), "eval (Int)") {
		t.Fatalf("text format = %q", buf.String())
	}
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer lost in context")
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for bad level")
	}
}
