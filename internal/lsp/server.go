package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"hxinfer/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Debounce delays analysis after an edit; 300ms when zero.
	Debounce       time.Duration
	MaxDiagnostics int
	// Log receives trace lines; stderr when nil.
	Log io.Writer
}

// Server handles stdio JSON-RPC for hxinfer.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	log    io.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]*document // by canonical URI
	published         map[string]struct{}
	workspaceRoot     string
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	cancelAnalysis    context.CancelFunc
	maxDiagnostics    int
	baseCtx           context.Context
	snap              *snapshot
	inlay             inlayConfig
	traceLSP          bool

	latestSeq atomic.Uint64
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	logOut := opts.Log
	if logOut == nil {
		logOut = os.Stderr
	}
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		log:            logOut,
		docs:           make(map[string]*document),
		published:      make(map[string]struct{}),
		debounce:       debounce,
		maxDiagnostics: maxDiagnostics,
		inlay:          defaultInlayConfig(),
		baseCtx:        context.Background(),
	}
}

// Run serves requests until the client exits or in is exhausted.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	defer s.stopAnalysis()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized", "$/setTrace", "$/cancelRequest":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdown() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/inlayHint":
		return s.handleInlayHint(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := uriToPath(params.RootURI)
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()
	s.applySettings(params.InitializationOptions)

	return s.sendResponse(msg.ID, initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
				Save:      saveOptions{IncludeText: true},
			},
			HoverProvider:     true,
			InlayHintProvider: &inlayHintOptions{},
		},
		ServerInfo: serverInfo{Name: "hxinfer", Version: version.Version},
	})
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.snap = nil
	s.mu.Unlock()
	s.stopAnalysis()
	s.clearPublished()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.docs[uri] = &document{text: params.TextDocument.Text, version: params.TextDocument.Version}
	s.mu.Unlock()
	s.scheduleAnalysis()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	traceOn := s.traceLSP
	s.mu.Unlock()
	if traceOn {
		s.logf("didChange: uri=%s version=%d changes=%d", uri, params.TextDocument.Version, len(params.ContentChanges))
	}
	s.scheduleAnalysis()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok && params.Text != nil {
		doc.text = *params.Text
	}
	s.mu.Unlock()
	s.scheduleAnalysis()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, uri)
	_, had := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if had {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	s.scheduleAnalysis()
	return nil
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	})
}

func (s *Server) sendPublish(uri string, docVersion *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params":  publishDiagnosticsParams{URI: uri, Version: docVersion, Diagnostics: list},
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}
