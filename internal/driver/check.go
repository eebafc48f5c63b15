package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"hxinfer/internal/diag"
	"hxinfer/internal/eval"
	"hxinfer/internal/observ"
	"hxinfer/internal/project"
	"hxinfer/internal/trace"
)

type Options struct {
	MaxDiagnostics   int
	Jobs             int
	WarningsAsErrors bool
	StrictGuards     bool
	// Cache is consulted before and filled after checking each file;
	// nil disables it.
	Cache    *DiskCache
	Timer    *observ.Timer
	Progress ProgressObserver
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path   string
	Bag    *diag.Bag
	Cached bool
}

type Result struct {
	Program *Program
	Files   []FileResult
	// Bag has every diagnostic of the run, sorted and deduplicated.
	Bag *diag.Bag
}

// HasErrors reports whether any file has an error-level diagnostic.
func (r *Result) HasErrors() bool {
	return r != nil && r.Bag.HasErrors()
}

// Check builds one program from paths and checks its files in parallel.
// Per-file work is bounded by Jobs (GOMAXPROCS when zero). Cancellation
// stops scheduling and returns ctx.Err() with the results gathered so far.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	inputs := make([]Input, len(paths))
	for i, path := range paths {
		inputs[i] = Input{Path: path}
	}
	return CheckInputs(ctx, inputs, opts)
}

// CheckInputs is Check over inputs that may carry in-memory content, such
// as unsaved editor buffers.
func CheckInputs(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	opts.Progress.emit(ProgressEvent{Phase: "parse", Status: ProgressStart})
	prog, err := Build(ctx, inputs, BuildOptions{
		MaxDiagnostics: opts.MaxDiagnostics,
		Eval:           eval.Options{Cache: eval.NewCache()},
		Timer:          opts.Timer,
	})
	if err != nil {
		return nil, err
	}
	opts.Progress.emit(ProgressEvent{Phase: "parse", Status: ProgressDone})

	res := &Result{Program: prog, Files: make([]FileResult, len(prog.Units))}
	key := programDigest(prog, opts)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	done := opts.Timer.Track("check")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(prog.Units))))
	for i, u := range prog.Units {
		res.Files[i] = FileResult{Path: u.Path, Bag: u.Bag}
		if !u.Loaded() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			opts.Progress.emit(ProgressEvent{Phase: "check", Path: u.Path, Status: ProgressStart})
			cached, err := checkUnit(gctx, prog, u, key, opts)
			if err != nil {
				return err
			}
			res.Files[i].Cached = cached
			opts.Progress.emit(ProgressEvent{
				Phase:   "check",
				Path:    u.Path,
				Status:  ProgressDone,
				Cached:  cached,
				Elapsed: time.Since(start),
			})
			return nil
		})
	}
	err = g.Wait()
	done(fmt.Sprintf("%d files", len(prog.Units)))

	res.Bag = diag.NewBag(0)
	res.Bag.Merge(prog.Bag)
	for _, f := range res.Files {
		res.Bag.Merge(f.Bag)
	}
	if opts.WarningsAsErrors {
		res.Bag.Promote()
	}
	res.Bag.Sort()
	res.Bag.Dedup()
	span.WithExtra("diagnostics", fmt.Sprint(res.Bag.Len()))
	return res, err
}

// checkUnit fills u.Bag either from the disk cache or by running the
// evaluator. Cache write failures are traced and otherwise ignored.
func checkUnit(ctx context.Context, prog *Program, u *Unit, key project.Digest, opts Options) (bool, error) {
	tracer := trace.FromContext(ctx)
	fileKey := project.Combine(project.Digest(prog.FS.Get(u.Src).Hash), key)
	if u.Bag.Len() == 0 {
		var payload DiskPayload
		ok, err := opts.Cache.Get(fileKey, &payload)
		if err != nil {
			trace.Error(tracer, "driver.cache", err.Error())
		}
		if ok && payload.Path == u.Path {
			for _, d := range payload.Diagnostics {
				u.Bag.Add(d)
			}
			return true, nil
		}
	}

	before := u.Bag.Len()
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: u.Bag})
	if err := prog.Eval.CheckFile(ctx, u.File, rep); err != nil {
		return false, err
	}
	if opts.StrictGuards {
		u.Bag.PromoteCode(diag.SemaConstantGuard)
	}
	if before == 0 && opts.Cache != nil {
		payload := &DiskPayload{Path: u.Path, Diagnostics: u.Bag.Items()}
		if err := opts.Cache.Put(fileKey, payload); err != nil {
			trace.Error(tracer, "driver.cache", err.Error())
		}
	}
	return false, nil
}

// programDigest covers every file of the program and the settings that
// change check results: an edit anywhere invalidates every cached file.
func programDigest(prog *Program, opts Options) project.Digest {
	check := project.CheckConfig{WarningsAsErrors: opts.WarningsAsErrors, StrictGuards: opts.StrictGuards}
	deps := make([]project.Digest, 0, len(prog.Units))
	for _, u := range prog.Units {
		h := sha256.New()
		_, _ = h.Write([]byte(u.Path))
		if u.Loaded() {
			sum := prog.FS.Get(u.Src).Hash
			_, _ = h.Write(sum[:])
		}
		var d project.Digest
		copy(d[:], h.Sum(nil))
		deps = append(deps, d)
	}
	return project.Combine(check.Fingerprint(), deps...)
}
