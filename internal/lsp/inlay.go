package lsp

import (
	"encoding/json"

	"hxinfer/internal/eval"
)

func (s *Server) handleInlayHint(msg *rpcMessage) error {
	var params inlayHintParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	hints := s.buildInlayHints(canonicalURI(params.TextDocument.URI), params.Range)
	if hints == nil {
		hints = []inlayHint{}
	}
	return s.sendResponse(msg.ID, hints)
}

// buildInlayHints labels untagged variables (and fields, when enabled)
// inside rng with their inferred type, right after the name.
func (s *Server) buildInlayHints(uri string, rng lspRange) []inlayHint {
	s.mu.Lock()
	snap := s.snap
	doc := s.docs[uri]
	cfg := s.inlay
	ctx := s.baseCtx
	traceOn := s.traceLSP
	s.mu.Unlock()
	if doc == nil || !cfg.varTypes && !cfg.fieldTypes {
		return nil
	}
	u, f := snap.unit(uri, doc.text)
	if u == nil {
		return nil
	}
	from, to := offsetAt(f, rng.Start), offsetAt(f, rng.End)

	var hints []inlayHint
	for _, e := range snap.result.Program.Eval.Inventory(ctx, u.File) {
		if e.Tagged || e.Type.IsUnknown() {
			continue
		}
		switch e.Kind {
		case eval.EntryVar:
			if !cfg.varTypes {
				continue
			}
		case eval.EntryField:
			if !cfg.fieldTypes {
				continue
			}
		default:
			continue
		}
		at := e.Span.End
		if at < from || at > to {
			continue
		}
		hints = append(hints, inlayHint{
			Position: positionAt(f, at),
			Label:    ": " + e.Type.String(),
			Kind:     inlayHintKindType,
		})
	}
	if traceOn {
		s.logf("inlayHint: uri=%s hints=%d", uri, len(hints))
	}
	return hints
}
