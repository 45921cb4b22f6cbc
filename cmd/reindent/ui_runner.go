package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"reindent/internal/driver"
	"reindent/internal/pipeline"
	"reindent/internal/ui"
)

type formatOutcome struct {
	results []driver.FormatResult
	err     error
}

// runFormatWithUI formats paths while a Bubble Tea program renders progress
// for files.
func runFormatWithUI(ctx context.Context, title string, files, paths []string, opts driver.FormatOptions) ([]driver.FormatResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		opts.Progress = pipeline.ChannelSink{Ch: events}
		results, err := driver.FormatPaths(ctx, paths, opts)
		outcomeCh <- formatOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the program stops reading early when it fails
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
