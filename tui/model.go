// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danielhkuo/kicker/kickerapp"
	"github.com/danielhkuo/kicker/navigation"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("#161E6D")).Padding(0, 1)
	addressStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	menuStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginRight(1)
	contentStyle   = lipgloss.NewStyle().Padding(1, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

// refreshMsg asks for a redraw after state changed outside Update.
type refreshMsg struct{}

// actionDoneMsg reports the end of a background action.
type actionDoneMsg struct {
	status string
	err    error
}

// Model is the terminal browser: an address/command line, the slide-out
// menu and the content region.
type Model struct {
	ctx    context.Context
	app    *kickerapp.App
	region *Region

	input     textinput.Model
	help      help.Model
	keys      keyMap
	status    string
	statusErr bool
	width     int
	height    int
}

func New(ctx context.Context, app *kickerapp.App, region *Region) Model {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "/app/rankings or :help"
	in.Focus()

	return Model{
		ctx:    ctx,
		app:    app,
		region: region,
		input:  in,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case refreshMsg:
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.status)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Enter):
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		return m.run(line)
	case key.Matches(msg, m.keys.Back):
		return m, m.emit(navigation.Event{Kind: navigation.EventPopState, Delta: -1})
	case key.Matches(msg, m.keys.Forward):
		return m, m.emit(navigation.Event{Kind: navigation.EventPopState, Delta: 1})
	case key.Matches(msg, m.keys.Menu):
		m.app.ToggleMenu("")
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.app.ToggleMenu("close")
		m.input.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Link) && m.input.Value() == "":
		n, _ := strconv.Atoi(msg.String())
		m.follow(n)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// follow opens link n of the menu when it is open, of the page otherwise.
func (m *Model) follow(n int) {
	links := m.app.PageLinks()
	if m.app.MenuOpen() {
		links = m.app.MenuLinks()
	}
	if n < 1 || n > len(links) {
		m.setError(fmt.Errorf("no link %d", n))
		return
	}
	m.report(m.app.FollowLink(links[n-1].Href))
}

// run handles an entered line: a path is followed like a link, "#/path"
// changes the hash in hash mode and a line starting with ":" is a command.
func (m Model) run(line string) (tea.Model, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	if hash, ok := strings.CutPrefix(line, "#"); ok {
		return m, m.emit(navigation.Event{Kind: navigation.EventHashChange, Path: hash})
	}
	if !strings.HasPrefix(line, ":") {
		m.report(m.app.FollowLink(line))
		return m, nil
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "q", "quit":
		return m, tea.Quit
	case "help":
		m.setStatus(":back :forward :menu :open N :reload :edit :save FORM :period P :sort FIELD ORDER :submit FORM :online :offline :quit")
	case "back":
		return m, m.emit(navigation.Event{Kind: navigation.EventPopState, Delta: -1})
	case "forward":
		return m, m.emit(navigation.Event{Kind: navigation.EventPopState, Delta: 1})
	case "menu":
		m.app.ToggleMenu(arg)
	case "open":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.setError(fmt.Errorf("open: %q is not a link number", arg))
			break
		}
		m.follow(n)
	case "reload":
		m.report(m.app.Switcher().Reload())
	case "edit":
		m.report(m.app.ToggleEdit())
	case "period":
		m.report(m.app.SetPeriod(arg))
	case "sort":
		field, order, _ := strings.Cut(arg, " ")
		if order == "" {
			order = "desc"
		}
		m.report(m.app.Sort(field, strings.TrimSpace(order)))
	case "online":
		m.report(m.app.Watcher().SetOnline())
	case "offline":
		m.report(m.app.Watcher().SetOffline())
	case "save":
		form, err := url.ParseQuery(arg)
		if err != nil {
			m.setError(fmt.Errorf("save: %w", err))
			break
		}
		return m, m.action("Profile saved.", func(ctx context.Context) error {
			return m.app.SaveProfile(ctx, form)
		})
	case "submit":
		fields, err := kickerapp.ParseForm(arg)
		if err != nil {
			m.setError(fmt.Errorf("submit: %w", err))
			break
		}
		return m, m.action("Score recorded.", func(ctx context.Context) error {
			return m.app.SubmitScore(ctx, fields)
		})
	default:
		m.setError(fmt.Errorf("unknown command :%s (try :help)", name))
	}
	return m, nil
}

// emit hands a history or hash event to the app's event loop.
func (m Model) emit(ev navigation.Event) tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		if err := app.Send(ctx, ev); err != nil {
			return actionDoneMsg{err: err}
		}
		return nil
	}
}

// action runs fn off the update loop.
func (m Model) action(status string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{status: status, err: fn(ctx)}
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.setError(err)
		return
	}
	m.status, m.statusErr = "", false
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m Model) View() string {
	header := m.app.Header()
	name := header.Name
	if name == "" {
		name = "kicker"
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("⚽ "+name),
		" ",
		addressStyle.Render(m.app.Navigator().Address()),
	)

	_, view := m.region.Content()
	if view == "" {
		view = statusStyle.Render("loading…")
	}
	content := contentStyle.Render(view)
	if m.app.MenuOpen() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.menuView(), content)
	}

	status := statusStyle.Render(m.status)
	if m.statusErr {
		status = statusErrStyle.Render(m.status)
	} else if err := m.region.Err(); err != nil {
		status = statusErrStyle.Render("could not load page: " + err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		content,
		status,
		m.input.View(),
		m.help.View(m.keys),
	)
}

func (m Model) menuView() string {
	links := m.app.MenuLinks()
	lines := make([]string, len(links))
	for i, l := range links {
		lines[i] = fmt.Sprintf("%d %s", i+1, l.Label)
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}
