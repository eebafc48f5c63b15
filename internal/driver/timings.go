package driver

import (
	"encoding/json"
	"fmt"

	"hxinfer/internal/diag"
	"hxinfer/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Files   int                  `json:"files,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings adds an ObsTimings info diagnostic carrying the timer
// report as JSON in its note. The bag limit does not apply.
func AppendTimings(bag *diag.Bag, timer *observ.Timer, files int) {
	if bag == nil || timer == nil {
		return
	}
	report := timer.Report()
	payload := timingPayload{Kind: "check", Files: files, TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS),
		Notes:    []diag.Note{{Msg: string(data)}},
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
