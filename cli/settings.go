package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"pfeifer.dev/avsim/decision"
	"pfeifer.dev/avsim/params"
	"pfeifer.dev/avsim/settings"
)

type settingsState int

const (
	showSettingsMenu settingsState = iota
	settingsExit
	settingsInput
	saveSettings
	applySettings
)

type settingsItem struct {
	title, desc string
	state       settingsState
	key         string
}

func (i settingsItem) Title() string       { return i.title }
func (i settingsItem) Description() string { return i.desc }
func (i settingsItem) FilterValue() string { return i.title }

type settingsModel struct {
	list         list.Model
	state        settingsState
	textInput    textinput.Model
	selectedItem settingsItem
	prompt       string
	message      string
}

func (m settingsModel) Update(msg tea.Msg, mm *uiModel) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == settingsInput {
			switch msg.Type {
			case tea.KeyEsc:
				m.state = showSettingsMenu
				return m, nil
			case tea.KeyEnter:
				m.state = showSettingsMenu
				if err := mm.sim.Apply(m.selectedItem.key, strings.TrimSpace(m.textInput.Value())); err != nil {
					m.message = err.Error()
				} else {
					m.message = m.selectedItem.title + " updated, apply to restart the run"
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
		if msg.Type == tea.KeyEnter && m.state == showSettingsMenu && m.list.FilterState() != list.Filtering {
			it := m.list.SelectedItem().(settingsItem)
			m.selectedItem = it
			m.message = ""
			switch it.state {
			case settingsExit:
				mm.state = showMenu
			case settingsInput:
				current, _ := mm.sim.Get(it.key)
				m.prompt = it.title
				m.textInput = textinput.New()
				m.textInput.SetValue(current)
				m.textInput.Focus()
				m.state = settingsInput
				return m, textinput.Blink
			case saveSettings:
				if err := mm.sim.Save(); err != nil {
					m.message = err.Error()
				} else {
					m.message = "settings saved"
				}
			case applySettings:
				mm.state = showMenu
				return m, mm.resetRunner("apply settings")
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m settingsModel) View() string {
	switch m.state {
	case settingsInput:
		return docStyle.Render(fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			m.prompt,
			m.textInput.View(),
			"(enter to set, esc to cancel)",
		) + "\n")
	default:
		view := m.list.View()
		if m.message != "" {
			view += "\n" + noticeStyle.Render(m.message)
		}
		return docStyle.Render(view)
	}
}

var settingDescriptions = map[string][2]string{
	"log_level":              {"Log Level", "How verbose logging is: debug, info, warn or error"},
	"seed":                   {"Seed", "Seed for random layouts and sensor noise"},
	"duration_s":             {"Duration", "Simulated seconds for batch runs"},
	"sensors.noise_enabled":  {"Sensor Noise", "Inject gaussian noise into every range reading"},
	"sensors.noise_std_dev":  {"Noise Deviation", "Standard deviation of the injected noise in meters"},
	"sensors.filter_enabled": {"Sensor Filter", "Smooth readings with a moving average"},
	"sensors.filter_window":  {"Filter Window", "Samples in the moving average"},
	"sensors.max_range":      {"Sensor Range", "The longest distance a sensor reports"},
	"vehicle.radius":         {"Vehicle Radius", "Collision radius of the vehicle"},
	"vehicle.acceleration":   {"Acceleration", "Speed gained per second at full throttle"},
	"vehicle.turn_rate":      {"Turn Rate", "Radians turned per second at full steering"},
	"vehicle.friction":       {"Friction", "Fraction of speed lost each tick"},
	"vehicle.restitution":    {"Restitution", "Fraction of speed kept after bouncing off a wall"},
}

func getSettingsModel() settingsModel {
	items := []list.Item{}
	for _, key := range settings.Keys() {
		d, ok := settingDescriptions[key]
		if !ok {
			continue
		}
		items = append(items, settingsItem{title: d[0], desc: d[1], key: key, state: settingsInput})
	}
	items = append(items,
		settingsItem{
			title: "Apply Settings",
			desc:  "Restart the run with the edited settings",
			state: applySettings,
		},
		settingsItem{
			title: "Save Settings",
			desc:  "Persists any updates to the settings across runs",
			state: saveSettings,
		},
		settingsItem{
			title: "Return to Main Menu",
			desc:  "Exit settings configuration and return to the initial actions menu",
			state: settingsExit,
		},
	)

	listDelegate := list.NewDefaultDelegate()
	m := settingsModel{list: list.New(items, listDelegate, 0, 0)}
	m.list.Title = "Simulator Settings"
	return m
}

func loadSaved() settings.SimSettings {
	s := settings.SimSettings{}
	s.Load()
	return s
}

func modifySettings(fn func(s *settings.SimSettings) error) error {
	s := loadSaved()
	if err := fn(&s); err != nil {
		return err
	}
	return s.Save()
}

// listParams prints each param with its value, or its size when the value is
// not printable text.
func listParams(w io.Writer) error {
	names, err := params.GetParams()
	if err != nil {
		return err
	}
	for _, name := range names {
		data, err := params.GetParam(params.ParamPath(name))
		if err != nil {
			return err
		}
		if params.IsString(data) {
			fmt.Fprintf(w, "%s:\n%s\n", name, strings.TrimRight(string(data), "\n"))
		} else {
			fmt.Fprintf(w, "%s: <%d bytes>\n", name, len(data))
		}
	}
	return nil
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage custom driving mode profiles",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Save a custom mode profile, starting from a preset",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "base", Usage: "Preset the profile starts from", Value: "normal"},
					&cli.Float64Flag{Name: "danger", Usage: "Distance that counts as immediate danger"},
					&cli.Float64Flag{Name: "warning", Usage: "Distance where hazard starts to rise"},
					&cli.Float64Flag{Name: "max-speed", Usage: "Top forward speed"},
					&cli.Float64Flag{Name: "ttc", Usage: "Time to collision that triggers braking"},
					&cli.IntFlag{Name: "hysteresis", Usage: "Ticks a new state must persist before it is committed"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return errors.New("a profile name is required")
					}
					mode, err := decision.Preset(cmd.String("base"))
					if err != nil {
						return err
					}
					if cmd.IsSet("danger") {
						mode.DangerThreshold = cmd.Float64("danger")
					}
					if cmd.IsSet("warning") {
						mode.WarningThreshold = cmd.Float64("warning")
					}
					if cmd.IsSet("max-speed") {
						mode.MaxSpeed = cmd.Float64("max-speed")
					}
					if cmd.IsSet("ttc") {
						mode.TTCThreshold = cmd.Float64("ttc")
					}
					if cmd.IsSet("hysteresis") {
						mode.HysteresisCycles = int(cmd.Int("hysteresis"))
					}
					return modifySettings(func(s *settings.SimSettings) error {
						return s.SetProfile(name, mode)
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Delete a custom mode profile",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return modifySettings(func(s *settings.SimSettings) error {
						s.RemoveProfile(cmd.Args().First())
						return nil
					})
				},
			},
			{
				Name:  "list",
				Usage: "Print every selectable mode",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := loadSaved()
					for _, name := range s.ModeNames() {
						mode, err := decision.Lookup(name, s.Modes)
						if err != nil {
							return err
						}
						fmt.Printf("%-12s %s\n", name, modeDescription(mode))
					}
					return nil
				},
			},
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change saved simulator settings",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print every setting and its value",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := loadSaved()
					for _, key := range settings.Keys() {
						value, err := s.Get(key)
						if err != nil {
							return err
						}
						fmt.Printf("%s = %s\n", key, value)
					}
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Print one setting",
				ArgsUsage: "KEY",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := loadSaved()
					value, err := s.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(value)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Change and save one setting",
				ArgsUsage: "KEY VALUE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 2 {
						return errors.New("usage: settings set KEY VALUE")
					}
					return modifySettings(func(s *settings.SimSettings) error {
						return s.Apply(cmd.Args().Get(0), cmd.Args().Get(1))
					})
				},
			},
			{
				Name:  "reset",
				Usage: "Forget the saved settings so the defaults apply",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return settings.ClearSaved()
				},
			},
			{
				Name:  "params",
				Usage: "Print every file in the param store",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return listParams(os.Stdout)
				},
			},
			{
				Name:  "recommended",
				Usage: "Save the recommended settings",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return modifySettings(func(s *settings.SimSettings) error {
						return s.Apply("recommended", "")
					})
				},
			},
			profileCommand(),
		},
	}
}
