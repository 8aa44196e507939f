package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/settings"
)

type mainState int

const (
	showMenu mainState = iota
	showSettings
	showOutput
	showMetrics
	showModePicker
	showScenarioPicker
	togglePause
	restartRun
	quitApp
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

const commandTimeout = 2 * time.Second

type TickMsg time.Time

// commandResultMsg carries the outcome of a runner command back to the UI.
type commandResultMsg struct {
	action string
	err    error
}

func tickEvery() tea.Cmd {
	return tea.Every(50*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type uiModel struct {
	list     list.Model
	state    mainState
	settings settingsModel
	output   outputModel
	metrics  metricsModel
	modes    pickerModel
	scenes   pickerModel

	sim    settings.SimSettings
	config control.Config
	runner *control.Runner
	ctx    context.Context
	status control.Status
	notice string
}

type item struct {
	title, desc string
	state       mainState
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

func initialModel(ctx context.Context, s settings.SimSettings, config control.Config, runner *control.Runner) uiModel {
	items := []list.Item{
		item{title: "Watch", desc: "Watch the vehicle drive through the arena", state: showOutput},
		item{title: "Metrics", desc: "Session metrics accumulated since the last reset", state: showMetrics},
		item{title: "Mode", desc: "Switch the driving mode and restart the run", state: showModePicker},
		item{title: "Scenario", desc: "Switch the obstacle layout and restart the run", state: showScenarioPicker},
		item{title: "Pause / Resume", desc: "Hold or continue the control loop", state: togglePause},
		item{title: "Restart", desc: "Rewind the current run to its first tick", state: restartRun},
		item{title: "Settings", desc: "Modify and save simulator settings", state: showSettings},
		item{title: "Quit", desc: "Stop the simulation and exit", state: quitApp},
	}

	listDelegate := list.NewDefaultDelegate()
	m := uiModel{
		list:     list.New(items, listDelegate, 0, 0),
		settings: getSettingsModel(),
		modes:    getModePicker(s),
		scenes:   getScenarioPicker(),
		sim:      s,
		config:   config,
		runner:   runner,
		ctx:      ctx,
		status:   runner.Snapshot(),
	}
	m.list.Title = "Simulator Actions"
	return m
}

// runnerCmd runs a runner command off the UI goroutine.
func (m uiModel) runnerCmd(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		return commandResultMsg{action: action, err: fn(ctx)}
	}
}

// resetRunner rebuilds the run configuration from the UI's settings and swaps
// it into the runner.
func (m *uiModel) resetRunner(action string) tea.Cmd {
	config, err := control.FromSettings(m.sim)
	if err != nil {
		m.notice = errors.Wrap(err, action).Error()
		return nil
	}
	m.config = config
	runner := m.runner
	return m.runnerCmd(action, func(ctx context.Context) error {
		return runner.Reset(ctx, config)
	})
}

func (m uiModel) Init() tea.Cmd {
	return tickEvery()
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEsc && (m.state == showOutput || m.state == showMetrics) {
			m.state = showMenu
			return m, nil
		}
		if msg.Type == tea.KeyEnter && m.state == showMenu && m.list.FilterState() != list.Filtering {
			it := m.list.SelectedItem().(item)
			runner := m.runner
			switch it.state {
			case quitApp:
				return m, tea.Quit
			case togglePause:
				if m.status.Paused {
					return m, m.runnerCmd("resume", runner.Resume)
				}
				return m, m.runnerCmd("pause", runner.Pause)
			case restartRun:
				return m, m.runnerCmd("restart", runner.Restart)
			}
			m.state = it.state
			m.notice = ""
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		m.settings, _ = m.settings.Update(msg, &m)
		m.modes, _ = m.modes.Update(msg, &m)
		m.scenes, _ = m.scenes.Update(msg, &m)
		m.output, _ = m.output.Update(msg, &m)
	case TickMsg:
		m.status = m.runner.Snapshot()
		m.output, _ = m.output.Update(msg, &m)
		m.metrics, _ = m.metrics.Update(msg, &m)
		return m, tickEvery()
	case commandResultMsg:
		if msg.err != nil {
			m.notice = errors.Wrap(msg.err, msg.action).Error()
		} else {
			m.notice = msg.action + " applied"
		}
		m.status = m.runner.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case showSettings:
		m.settings, cmd = m.settings.Update(msg, &m)
	case showOutput:
		m.output, cmd = m.output.Update(msg, &m)
	case showMetrics:
		m.metrics, cmd = m.metrics.Update(msg, &m)
	case showModePicker:
		m.modes, cmd = m.modes.Update(msg, &m)
	case showScenarioPicker:
		m.scenes, cmd = m.scenes.Update(msg, &m)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m uiModel) View() string {
	switch m.state {
	case showSettings:
		return m.settings.View()
	case showOutput:
		return m.output.View(m)
	case showMetrics:
		return m.metrics.View(m)
	case showModePicker:
		return m.modes.View()
	case showScenarioPicker:
		return m.scenes.View()
	}
	view := m.list.View()
	if m.notice != "" {
		view += "\n" + noticeStyle.Render(m.notice)
	}
	return docStyle.Render(view)
}

// watch runs a realtime simulation behind the terminal dashboard until the
// user quits.
func watch(s settings.SimSettings) error {
	config, err := control.FromSettings(s)
	if err != nil {
		return err
	}
	session, err := control.NewSession(config)
	if err != nil {
		return err
	}
	runner := control.NewRunner(session, settings.TICK, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.Publish {
		stop, err := startPublisher(ctx, runner)
		if err != nil {
			return err
		}
		defer stop()
	}

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	p := tea.NewProgram(initialModel(ctx, s, config, runner), tea.WithAltScreen())
	_, err = p.Run()
	cancel()
	if runErr := <-done; err == nil {
		err = runErr
	}
	return errors.Wrap(err, "dashboard failed")
}
