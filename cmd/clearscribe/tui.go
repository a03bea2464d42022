package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/clearscribe/internal/processor"
	"github.com/linuxmatters/clearscribe/internal/ui"
)

var errInterrupted = errors.New("interrupted")

// withSpinner runs work for one file behind the single-file spinner view.
// In plain mode work runs directly and progress is dropped.
func (a *app) withSpinner(mode, path string, work func(progress processor.ProgressFunc) error) error {
	if !a.tui {
		return work(func(string, float64) {})
	}

	p := tea.NewProgram(ui.NewAnalysisModel(mode))
	done := make(chan error, 1)

	go func() {
		p.Send(ui.AnalysisStartMsg{FilePath: path})
		err := work(func(stage string, progress float64) {
			p.Send(ui.AnalysisProgressMsg{Stage: stage, Progress: progress})
		})
		done <- err
		p.Send(ui.AnalysisCompleteMsg{Error: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	if m, ok := final.(ui.AnalysisModel); !ok || !m.Done {
		return errInterrupted
	}
	return <-done
}

// withQueue runs work behind the multi-file progress view. send delivers
// ui messages; in plain mode they drive the same model synchronously and
// the completion summary is printed at the end.
func (a *app) withQueue(files []string, work func(send func(tea.Msg))) (ui.Model, error) {
	model := ui.NewModel(files)
	model.Log = a.log

	if !a.tui {
		var m tea.Model = model
		work(func(msg tea.Msg) { m, _ = m.Update(msg) })
		m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		fmt.Println(m.View())
		return m.(ui.Model), nil
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	go work(func(msg tea.Msg) { model.ProgressChan <- msg })

	final, err := p.Run()
	if err != nil {
		return model, fmt.Errorf("UI error: %w", err)
	}
	m := final.(ui.Model)
	if !m.Done {
		return m, errInterrupted
	}
	// The alternate screen is gone once Run returns.
	fmt.Println(m.View())
	return m, nil
}
