// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielhkuo/kicker/kickerapp"
)

// Run starts the app at its start location, feeds history keys to its event
// loop and runs the terminal program until the user quits or ctx ends.
func Run(ctx context.Context, app *kickerapp.App, region *Region, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, app, region), opts...)

	region.SetNotify(func() { p.Send(refreshMsg{}) })
	app.OnChange(func() { go p.Send(refreshMsg{}) })

	if err := app.Start(); err != nil {
		return err
	}
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go app.Listen(listenCtx)
	_, err := p.Run()
	return err
}
