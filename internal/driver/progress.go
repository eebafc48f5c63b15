package driver

import "time"

// ProgressStatus reports whether a step started or finished.
type ProgressStatus int

const (
	ProgressStart ProgressStatus = iota
	ProgressDone
)

// ProgressEvent describes one file or phase boundary of Check.
type ProgressEvent struct {
	// Phase is "parse", "index" or "check"; Path is set for per-file steps.
	Phase   string
	Path    string
	Status  ProgressStatus
	Cached  bool
	Elapsed time.Duration
}

// ProgressObserver receives events from Check. Per-file events arrive from
// worker goroutines.
type ProgressObserver func(ProgressEvent)

func (o ProgressObserver) emit(ev ProgressEvent) {
	if o != nil {
		o(ev)
	}
}
