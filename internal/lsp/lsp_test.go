package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hxinfer/internal/source"
)

const mainSrc = "class Main {\n" +
	"\tstatic function main() {\n" +
	"\t\tvar n:Int = \"text\";\n" +
	"\t\tvar xs = [1, 2];\n" +
	"\t}\n" +
	"}\n"

func frame(t *testing.T, msg any) []byte {
	t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, out []byte) []rpcMessage {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(r)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func newTestServer(out io.Writer) *Server {
	return NewServer(bytes.NewReader(nil), out, ServerOptions{Debounce: time.Hour, Log: io.Discard})
}

// openAndAnalyze opens mainSrc as a file in a fresh directory and runs one
// analysis synchronously.
func openAndAnalyze(t *testing.T, s *Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Main.hx")
	if err := os.WriteFile(path, []byte("class Main {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	uri := pathToURI(path)
	params, _ := json.Marshal(didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: mainSrc},
	})
	if err := s.handleDidOpen(&rpcMessage{Method: "textDocument/didOpen", Params: params}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	s.stopAnalysis()
	s.runAnalysis(s.latestSeq.Load())
	if s.currentSnapshot() == nil {
		t.Fatal("analysis left no snapshot")
	}
	return uri
}

func TestPublishDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	uri := openAndAnalyze(t, s)

	msgs := readAll(t, out.Bytes())
	if len(msgs) != 1 || msgs[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected one publish, got %+v", msgs)
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatal(err)
	}
	if params.URI != uri {
		t.Fatalf("uri %q, want %q", params.URI, uri)
	}
	if params.Version == nil || *params.Version != 1 {
		t.Fatalf("version not echoed: %v", params.Version)
	}
	var found bool
	for _, d := range params.Diagnostics {
		if d.Code == "SEM3001" {
			found = true
			if d.Severity != severityError || d.Range.Start.Line != 2 || d.Source != "hxinfer" {
				t.Fatalf("unexpected diagnostic %+v", d)
			}
		}
	}
	if !found {
		t.Fatalf("incompatible type not published: %+v", params.Diagnostics)
	}
}

func TestCloseClearsDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	uri := openAndAnalyze(t, s)
	out.Reset()

	params, _ := json.Marshal(didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: uri}})
	if err := s.handleDidClose(&rpcMessage{Method: "textDocument/didClose", Params: params}); err != nil {
		t.Fatal(err)
	}
	s.stopAnalysis()
	msgs := readAll(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one clearing publish, got %d", len(msgs))
	}
	var pub publishDiagnosticsParams
	_ = json.Unmarshal(msgs[0].Params, &pub)
	if pub.URI != uri || len(pub.Diagnostics) != 0 {
		t.Fatalf("unexpected publish %+v", pub)
	}
}

func TestHover(t *testing.T) {
	s := newTestServer(io.Discard)
	uri := openAndAnalyze(t, s)

	// "[" of the array literal on line 3
	h := s.buildHover(uri, position{Line: 3, Character: 11})
	if h == nil {
		t.Fatal("no hover")
	}
	if h.Contents.Kind != "markdown" || !strings.Contains(h.Contents.Value, "Array<Int>") {
		t.Fatalf("hover %q", h.Contents.Value)
	}
	if h.Range == nil || h.Range.Start.Line != 3 {
		t.Fatalf("hover range %+v", h.Range)
	}

	if h := s.buildHover(pathToURI(filepath.Join(t.TempDir(), "Other.hx")), position{}); h != nil {
		t.Fatalf("hover on unknown document: %+v", h)
	}
}

func TestHoverIgnoresStaleSnapshot(t *testing.T) {
	s := newTestServer(io.Discard)
	uri := openAndAnalyze(t, s)

	params, _ := json.Marshal(didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 0, Character: 0}, End: position{Line: 0, Character: 0}},
			Text:  "// edited\n",
		}},
	})
	if err := s.handleDidChange(&rpcMessage{Method: "textDocument/didChange", Params: params}); err != nil {
		t.Fatal(err)
	}
	s.stopAnalysis()
	if h := s.buildHover(uri, position{Line: 3, Character: 11}); h != nil {
		t.Fatalf("hover answered from a stale snapshot: %+v", h)
	}
}

func TestInlayHints(t *testing.T) {
	s := newTestServer(io.Discard)
	uri := openAndAnalyze(t, s)

	all := lspRange{End: position{Line: 10}}
	hints := s.buildInlayHints(uri, all)
	if len(hints) != 1 {
		t.Fatalf("expected one hint for xs, got %+v", hints)
	}
	if hints[0].Label != ": Array<Int>" || hints[0].Position != (position{Line: 3, Character: 8}) {
		t.Fatalf("unexpected hint %+v", hints[0])
	}

	if hints := s.buildInlayHints(uri, lspRange{End: position{Line: 1}}); len(hints) != 0 {
		t.Fatalf("hint outside range: %+v", hints)
	}

	s.applySettings(json.RawMessage(`{"hxinfer":{"inlayHints":{"varTypes":false}}}`))
	if hints := s.buildInlayHints(uri, all); len(hints) != 0 {
		t.Fatalf("disabled hints still produced: %+v", hints)
	}
}

func TestRunLifecycle(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame(t, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": map[string]any{}}))
	in.Write(frame(t, map[string]any{"jsonrpc": "2.0", "method": "initialized"}))
	in.Write(frame(t, map[string]any{"jsonrpc": "2.0", "id": 2, "method": "textDocument/definition", "params": map[string]any{}}))
	in.Write(frame(t, map[string]any{"jsonrpc": "2.0", "id": 3, "method": "shutdown"}))
	in.Write(frame(t, map[string]any{"jsonrpc": "2.0", "method": "exit"}))

	var out bytes.Buffer
	s := NewServer(&in, &out, ServerOptions{Log: io.Discard})
	if err := s.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Run: %v", err)
	}
	msgs := readAll(t, out.Bytes())
	if len(msgs) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(msgs))
	}
	var init initializeResult
	if err := json.Unmarshal(msgs[0].Result, &init); err != nil {
		t.Fatal(err)
	}
	if !init.Capabilities.HoverProvider || init.Capabilities.InlayHintProvider == nil || init.ServerInfo.Name != "hxinfer" {
		t.Fatalf("capabilities %+v", init)
	}
	if msgs[1].Error == nil || msgs[1].Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method: %+v", msgs[1])
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	in := bytes.NewReader(frame(t, map[string]any{"jsonrpc": "2.0", "method": "exit"}))
	s := NewServer(in, io.Discard, ServerOptions{Log: io.Discard})
	if err := s.Run(context.Background()); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("Run: %v", err)
	}
}

func TestReadMessageErrors(t *testing.T) {
	cases := []string{
		"Content-Type: x\r\n\r\n{}",
		"Content-Length: abc\r\n\r\n{}",
		"Content-Length: 10\r\n\r\n{}",
	}
	for _, c := range cases {
		if _, err := readMessage(bufio.NewReader(strings.NewReader(c))); err == nil {
			t.Errorf("readMessage(%q) accepted", c)
		}
	}
}

func TestApplyChanges(t *testing.T) {
	text := "var a = 1;\nvar 😀 = 2;\n"
	got := applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{Line: 1, Character: 4}, End: position{Line: 1, Character: 6}}, Text: "b"},
		{Range: &lspRange{Start: position{Line: 0, Character: 8}, End: position{Line: 0, Character: 9}}, Text: "42"},
	})
	if want := "var a = 42;\nvar b = 2;\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := applyChanges("old", []textDocumentContentChangeEvent{{Text: "new"}}); got != "new" {
		t.Fatalf("full replace: %q", got)
	}
	if got := applyChanges("x", []textDocumentContentChangeEvent{{
		Range: &lspRange{Start: position{Line: 5}, End: position{Line: 9}}, Text: "!",
	}}); got != "x!" {
		t.Fatalf("out of range edit: %q", got)
	}
}

func TestPositions(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("p.hx", []byte("ab\n😀c\n")))

	cases := []struct {
		pos position
		off uint32
	}{
		{position{0, 0}, 0},
		{position{0, 2}, 2},
		{position{1, 0}, 3},
		{position{1, 2}, 7},
		{position{1, 3}, 8},
		{position{2, 0}, 9},
	}
	for _, c := range cases {
		if got := offsetAt(f, c.pos); got != c.off {
			t.Errorf("offsetAt(%+v) = %d, want %d", c.pos, got, c.off)
		}
		if got := positionAt(f, c.off); got != c.pos {
			t.Errorf("positionAt(%d) = %+v, want %+v", c.off, got, c.pos)
		}
	}
	// inside the surrogate pair snaps back to the rune start
	if got := offsetAt(f, position{1, 1}); got != 3 {
		t.Errorf("offsetAt inside surrogate pair = %d", got)
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with space", "A.hx")
	uri := pathToURI(path)
	if !strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "with%20space") {
		t.Fatalf("uri %q", uri)
	}
	if got := uriToPath(uri); got != path {
		t.Fatalf("round trip %q, want %q", got, path)
	}
	if uriToPath("untitled:Untitled-1") != "" {
		t.Fatal("non-file scheme mapped to a path")
	}
}
