package main

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/driver"
	"gqlmerge/internal/source"
	"gqlmerge/internal/ui"
)

type mergeOutcome struct {
	result *driver.Result
	err    error
}

// runMergeWithUI runs MergeSchemas while a Bubble Tea view renders the
// attribution probes. The view closes when the merge returns.
func runMergeWithUI(ctx context.Context, patterns []string, opts driver.MergeOptions) (*driver.Result, error) {
	files, err := source.Discover(patterns...)
	if err != nil {
		return driver.MergeSchemas(ctx, patterns, opts)
	}
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = filepath.ToSlash(filepath.Clean(f))
	}

	events := make(chan attrib.ProbeEvent, 256)
	outcomeCh := make(chan mergeOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observer = ui.ChannelObserver(events)
		res, err := driver.MergeSchemas(ctx, patterns, optsCopy)
		outcomeCh <- mergeOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("attributing schema errors", ids, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// вид мог закрыться раньше, не блокируем пробы
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
