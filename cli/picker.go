package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"pfeifer.dev/avsim/decision"
	"pfeifer.dev/avsim/scenario"
	"pfeifer.dev/avsim/settings"
)

type pickerItem struct {
	name, desc string
}

func (i pickerItem) Title() string       { return i.name }
func (i pickerItem) Description() string { return i.desc }
func (i pickerItem) FilterValue() string { return i.name }

// pickerModel selects one value for a setting and resets the run with it.
type pickerModel struct {
	list list.Model
	key  string
}

func (m pickerModel) Update(msg tea.Msg, mm *uiModel) (pickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.Type {
		case tea.KeyEsc:
			mm.state = showMenu
			return m, nil
		case tea.KeyEnter:
			it, ok := m.list.SelectedItem().(pickerItem)
			if !ok {
				return m, nil
			}
			mm.state = showMenu
			if err := mm.sim.Apply(m.key, it.name); err != nil {
				mm.notice = err.Error()
				return m, nil
			}
			if m.key == "scenario" {
				mm.sim.LayoutPath = ""
			}
			return m, mm.resetRunner(m.key + " " + it.name)
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return docStyle.Render(m.list.View())
}

func newPicker(title, key string, items []list.Item) pickerModel {
	m := pickerModel{list: list.New(items, list.NewDefaultDelegate(), 0, 0), key: key}
	m.list.Title = title
	return m
}

func modeDescription(mode decision.Mode) string {
	return fmt.Sprintf("danger %.1f  warning %.1f  max speed %.1f  ttc %.1fs  hold %d",
		mode.DangerThreshold, mode.WarningThreshold, mode.MaxSpeed, mode.TTCThreshold, mode.HysteresisCycles)
}

func getModePicker(s settings.SimSettings) pickerModel {
	items := []list.Item{}
	for _, name := range s.ModeNames() {
		mode, err := decision.Lookup(name, s.Modes)
		if err != nil {
			continue
		}
		items = append(items, pickerItem{name: name, desc: modeDescription(mode)})
	}
	return newPicker("Driving Mode", "mode", items)
}

var scenarioDescriptions = map[string]string{
	"corridor":     "Two rows of obstacles forming a lane",
	"random":       "Obstacles scattered from the configured seed",
	"intersection": "Obstacle lines framing a crossing",
	"dense":        "A crowded arena",
	"traffic":      "Static obstacles plus patrolling and bouncing ones",
	"empty":        "No obstacles at all",
}

func getScenarioPicker() pickerModel {
	items := []list.Item{}
	for _, name := range scenario.Names {
		items = append(items, pickerItem{name: name, desc: scenarioDescriptions[name]})
	}
	return newPicker("Scenario", "scenario", items)
}
