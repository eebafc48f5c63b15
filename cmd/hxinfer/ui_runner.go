package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"hxinfer/internal/driver"
	"hxinfer/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs driver.Check in the background and renders its
// progress events until the check finishes. Quitting the UI early
// cancels the check.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.ProgressEvent, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = func(ev driver.ProgressEvent) { events <- ev }
		res, err := driver.Check(ctx, files, opts)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	go func() {
		for range events {
		}
	}()
	var outcome checkOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		outcome = <-outcomeCh
	}
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
