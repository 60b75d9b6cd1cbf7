package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"texflow/internal/schedule"
	"texflow/internal/ui"
)

type scheduleOutcome struct {
	outcome schedule.Outcome
	err     error
}

func runScheduleWithUI(ctx context.Context, title string, req schedule.Request) (schedule.Outcome, error) {
	events := make(chan schedule.Event, 256)
	outcomeCh := make(chan scheduleOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = schedule.ChannelSink{Ch: events}
		sched, err := schedule.New(reqCopy)
		if err != nil {
			outcomeCh <- scheduleOutcome{err: err}
			close(events)
			return
		}
		out, err := sched.Run(ctx)
		outcomeCh <- scheduleOutcome{outcome: out, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.MaxPasses, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	res := <-outcomeCh
	if uiErr != nil {
		return res.outcome, uiErr
	}
	return res.outcome, res.err
}
