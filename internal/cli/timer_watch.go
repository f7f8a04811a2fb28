package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/timer"
)

const watchTickInterval = time.Second

type watchKeyMap struct {
	Toggle   key.Binding
	Complete key.Binding
	Quit     key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Complete, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newWatchKeyMap() watchKeyMap {
	return watchKeyMap{
		Toggle:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause/resume")),
		Complete: key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "complete")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit (keeps timing)")),
	}
}

type watchTickMsg time.Time

type watchActionMsg struct {
	rec        domain.ActiveTimerRecord
	completion *timer.Completion
	err        error
}

// watchModel shows one goal's timer live. Quitting leaves the timer as it
// is; it keeps counting in the store.
type watchModel struct {
	ctx  context.Context
	app  *App
	goal domain.LearningGoal

	rec        domain.ActiveTimerRecord
	completion *timer.Completion
	err        error
	quitting   bool

	keys watchKeyMap
	help help.Model
}

func newWatchModel(ctx context.Context, app *App, goal domain.LearningGoal) *watchModel {
	rec, _ := app.Timers.Record(goal.ID)
	return &watchModel{
		ctx:  ctx,
		app:  app,
		goal: goal,
		rec:  rec,
		keys: newWatchKeyMap(),
		help: help.New(),
	}
}

func watchTick() tea.Cmd {
	return tea.Tick(watchTickInterval, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m *watchModel) Init() tea.Cmd {
	return watchTick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchTickMsg:
		if m.quitting {
			return m, nil
		}
		return m, watchTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			return m, m.toggle()
		case key.Matches(msg, m.keys.Complete):
			return m, m.complete()
		}

	case watchActionMsg:
		m.err = msg.err
		if msg.completion != nil {
			m.completion = msg.completion
			m.quitting = true
			return m, tea.Quit
		}
		if msg.err == nil {
			m.rec = msg.rec
		}
	}
	return m, nil
}

func (m *watchModel) toggle() tea.Cmd {
	running := m.rec.IsRunning
	return func() tea.Msg {
		var rec domain.ActiveTimerRecord
		var err error
		if running {
			rec, err = m.app.Timers.Pause(m.ctx, m.goal.ID)
		} else {
			rec, err = m.app.Timers.Start(m.ctx, m.goal.ID)
		}
		return watchActionMsg{rec: rec, err: err}
	}
}

func (m *watchModel) complete() tea.Cmd {
	return func() tea.Msg {
		c, err := m.app.Timers.Complete(m.ctx, m.goal.ID, timer.CompleteOptions{OwnerID: m.app.owner(m.ctx)})
		// Only a partial completion dropped the timer; anything else kept it.
		if err != nil && !errors.Is(err, domain.ErrPartialCompletion) {
			return watchActionMsg{err: err}
		}
		return watchActionMsg{completion: &c, err: err}
	}
}

func (m *watchModel) View() string {
	var b strings.Builder
	if m.completion != nil {
		b.WriteString(formatter.FormatCompletion(m.goal.Title, *m.completion))
		if m.err != nil {
			b.WriteString(formatter.StyleYellow.Render(m.err.Error()))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString("\n  ")
	b.WriteString(formatter.TimerLine(m.goal.Title, m.rec, m.rec.ElapsedAt(m.app.now())))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(formatter.StyleRed.Render(DescribeError(m.err)))
		b.WriteString("\n\n")
	}
	if !m.quitting {
		b.WriteString("  ")
		b.WriteString(m.help.View(m.keys))
		b.WriteString("\n")
	}
	return b.String()
}
