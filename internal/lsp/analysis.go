package lsp

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"hxinfer/internal/diag"
	"hxinfer/internal/driver"
	"hxinfer/internal/project"
	"hxinfer/internal/source"
)

// snapshot is the last finished analysis. Hover and inlay requests read it
// without re-checking.
type snapshot struct {
	result *driver.Result
	units  map[string]*driver.Unit // by canonical path
	// texts are the buffer contents the analysis saw, by URI.
	texts map[string]string
}

// unit returns the unit for uri when the analysed text is still current.
func (sn *snapshot) unit(uri, current string) (*driver.Unit, *source.File) {
	if sn == nil {
		return nil, nil
	}
	if text, ok := sn.texts[uri]; ok && text != current {
		return nil, nil
	}
	u := sn.units[uriToPath(uri)]
	if u == nil || !u.Loaded() {
		return nil, nil
	}
	return u, sn.result.Program.FS.Get(u.Src)
}

func (s *Server) scheduleAnalysis() {
	seq := s.latestSeq.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelAnalysis != nil {
		s.cancelAnalysis()
		s.cancelAnalysis = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() { s.runAnalysis(seq) })
}

func (s *Server) stopAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	if s.cancelAnalysis != nil {
		s.cancelAnalysis()
		s.cancelAnalysis = nil
	}
}

// analysisPlan is what one analysis run reads: the inputs and the settings
// of the project they belong to.
type analysisPlan struct {
	root   string
	inputs []driver.Input
	texts  map[string]string
	check  project.CheckConfig
}

// planLocked collects the open buffers and, when a hxinfer.toml governs
// them, the project sources on disk. Open buffers shadow disk content.
func (s *Server) planLocked() analysisPlan {
	plan := analysisPlan{texts: make(map[string]string, len(s.docs))}
	overlay := make(map[string]string, len(s.docs))
	var open []string
	for uri, doc := range s.docs {
		path := uriToPath(uri)
		if path == "" {
			continue
		}
		overlay[path] = doc.text
		plan.texts[uri] = doc.text
		open = append(open, path)
	}
	slices.Sort(open)

	start := s.workspaceRoot
	if start == "" && len(open) > 0 {
		start = filepath.Dir(open[0])
	}
	var paths []string
	if start != "" {
		if proj, ok, err := project.Load(start); err == nil && ok {
			plan.root = proj.Root
			plan.check = proj.Config.Check
			if files, err := proj.Sources(nil); err == nil {
				paths = files
			}
		}
	}
	for _, path := range open {
		if !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	for _, path := range paths {
		in := driver.Input{Path: path}
		if text, ok := overlay[path]; ok {
			in.Content = []byte(text)
		}
		plan.inputs = append(plan.inputs, in)
	}
	return plan
}

func (s *Server) runAnalysis(seq uint64) {
	if seq != s.latestSeq.Load() {
		return
	}
	s.mu.Lock()
	if len(s.docs) == 0 || s.shutdownRequested {
		s.snap = nil
		s.mu.Unlock()
		s.clearPublished()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancelAnalysis = cancel
	plan := s.planLocked()
	maxDiagnostics := s.maxDiagnostics
	if plan.check.MaxDiagnostics > 0 {
		maxDiagnostics = plan.check.MaxDiagnostics
	}
	traceOn := s.traceLSP
	s.mu.Unlock()
	defer cancel()

	started := time.Now()
	res, err := driver.CheckInputs(ctx, plan.inputs, driver.Options{
		MaxDiagnostics:   maxDiagnostics,
		Jobs:             plan.check.Jobs,
		WarningsAsErrors: plan.check.WarningsAsErrors,
		StrictGuards:     plan.check.StrictGuards,
	})
	if err != nil {
		if ctx.Err() == nil {
			s.logf("analysis failed: %v", err)
		}
		return
	}
	if seq != s.latestSeq.Load() {
		return
	}
	if traceOn {
		s.logf("analysis: seq=%d files=%d diagnostics=%d in %s", seq, len(plan.inputs), res.Bag.Len(), time.Since(started).Round(time.Millisecond))
	}

	snap := &snapshot{result: res, units: make(map[string]*driver.Unit, len(res.Program.Units)), texts: plan.texts}
	for _, u := range res.Program.Units {
		snap.units[u.Path] = u
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.publish(snap)
}

func (s *Server) currentSnapshot() *snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// publish sends diagnostics for every unit that has some and clears files
// published before that are clean now.
func (s *Server) publish(snap *snapshot) {
	prog := snap.result.Program
	grouped := make(map[string][]lspDiagnostic)
	for _, u := range prog.Units {
		uri := pathToURI(u.Path)
		for _, d := range u.Bag.Items() {
			grouped[uri] = append(grouped[uri], toLSPDiagnostic(prog.FS, d))
		}
	}

	s.mu.Lock()
	prev := s.published
	s.published = make(map[string]struct{}, len(grouped))
	versions := make(map[string]int, len(s.docs))
	for uri := range grouped {
		s.published[uri] = struct{}{}
	}
	for uri, doc := range s.docs {
		versions[uri] = doc.version
	}
	s.mu.Unlock()

	targets := make([]string, 0, len(grouped)+len(prev))
	for uri := range grouped {
		targets = append(targets, uri)
	}
	for uri := range prev {
		if _, ok := grouped[uri]; !ok {
			targets = append(targets, uri)
		}
	}
	slices.Sort(targets)
	for _, uri := range targets {
		var docVersion *int
		if v, ok := versions[uri]; ok {
			docVersion = &v
		}
		if err := s.sendPublish(uri, docVersion, grouped[uri]); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
			return
		}
	}
}

func (s *Server) clearPublished() {
	s.mu.Lock()
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	uris := make([]string, 0, len(prev))
	for uri := range prev {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
			return
		}
	}
}

func toLSPDiagnostic(fs *source.FileSet, d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   "hxinfer",
		Message:  d.Message,
	}
	if !d.Code.Located() {
		return out
	}
	out.Range = rangeOf(fs.Get(d.Primary.File), d.Primary)
	for _, n := range d.Notes {
		if n.Span.Empty() {
			out.Message += "\n" + n.Msg
			continue
		}
		f := fs.Get(n.Span.File)
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: pathToURI(f.Path), Range: rangeOf(f, n.Span)},
			Message:  n.Msg,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return severityError
	case diag.SevWarning:
		return severityWarning
	case diag.SevWeakWarning:
		return severityHint
	default:
		return severityInfo
	}
}
