package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/decision"
	vec "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
	"pfeifer.dev/avsim/sensors"
)

const (
	arenaCols = 40
	arenaRows = 20
)

var (
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	arenaStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	panelStyle  = lipgloss.NewStyle().PaddingLeft(2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)

	stateColors = map[decision.State]lipgloss.Color{
		decision.CRUISE:          lipgloss.Color("42"),
		decision.AVOID_LEFT:      lipgloss.Color("214"),
		decision.AVOID_RIGHT:     lipgloss.Color("214"),
		decision.EMERGENCY_BRAKE: lipgloss.Color("196"),
		decision.REVERSING:       lipgloss.Color("201"),
	}

	// counter-clockwise from +X in 45 degree steps
	headingGlyphs = []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
)

func stateStyle(s decision.State) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(stateColors[s])
}

func headingGlyph(heading float64) rune {
	step := math.Pi / 4
	i := int(math.Round(heading/step)) % len(headingGlyphs)
	if i < 0 {
		i += len(headingGlyphs)
	}
	return headingGlyphs[i]
}

// renderArena draws the world as a cols x rows character grid with +Y up.
func renderArena(world vec.Box, obs []obstacles.Obstacle, rec control.TickRecord, cols, rows int) string {
	width := world.Width()
	height := world.Height()
	cellW := width / float64(cols)
	cellH := height / float64(rows)

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
		for c := range grid[r] {
			p := vec.Vector{
				X: world.Min.X + (float64(c)+0.5)*cellW,
				Y: world.Max.Y - (float64(r)+0.5)*cellH,
			}
			for _, o := range obs {
				if p.DistanceTo(o.Position) <= o.Radius {
					if o.Moving() {
						grid[r][c] = 'o'
					} else {
						grid[r][c] = '#'
					}
					break
				}
			}
		}
	}

	c := int((rec.Position.X - world.Min.X) / cellW)
	r := int((world.Max.Y - rec.Position.Y) / cellH)
	c = min(max(c, 0), cols-1)
	r = min(max(r, 0), rows-1)
	grid[r][c] = headingGlyph(rec.Heading)

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func formatTTC(ttc decision.TTC) string {
	if !ttc.Finite() {
		return "∞"
	}
	return fmt.Sprintf("%.2fs", float64(ttc))
}

func telemetryPanel(status control.Status) string {
	rec := status.Record
	rows := [][2]string{
		{"mode", status.Mode},
		{"scenario", status.Scenario},
		{"time", fmt.Sprintf("%.1fs (cycle %d)", rec.Time, rec.Cycle)},
		{"state", stateStyle(rec.State).Render(rec.State.String())},
		{"speed", fmt.Sprintf("%.2f m/s", rec.Speed)},
		{"heading", fmt.Sprintf("%.0f°", rec.Heading*180/math.Pi)},
		{"hazard", fmt.Sprintf("%.3f", rec.Hazard)},
		{"ttc", formatTTC(rec.TTC)},
		{"command", fmt.Sprintf("thr %.1f  str %+.1f  brk %.1f", rec.Command.Throttle, rec.Command.Steering, rec.Command.Brake)},
		{"collisions", fmt.Sprintf("%d", rec.Collisions)},
	}
	for _, n := range sensors.All() {
		r := rec.Sensors[n]
		rows = append(rows, [2]string{n.String(), fmt.Sprintf("%5.2f  (raw %5.2f)", r.Filtered, r.Raw)})
	}
	run := "running"
	switch {
	case status.Paused:
		run = "paused"
	case !status.Running:
		run = "stopped"
	}
	rows = append(rows, [2]string{"loop", fmt.Sprintf("%s %.1f Hz", run, status.Hz)})

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = labelStyle.Render(row[0]) + row[1]
	}
	return strings.Join(lines, "\n")
}

type outputModel struct {
	cols, rows int
}

func (m outputModel) Update(msg tea.Msg, mm *uiModel) (outputModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.cols = min(arenaCols, max(10, (msg.Width-h)/2))
		m.rows = min(arenaRows, max(5, msg.Height-v-2))
	}
	return m, nil
}

func (m outputModel) View(mm uiModel) string {
	cols, rows := m.cols, m.rows
	if cols == 0 || rows == 0 {
		cols, rows = arenaCols, arenaRows
	}
	arena := arenaStyle.Render(renderArena(mm.config.World, mm.status.Obstacles, mm.status.Record, cols, rows))
	view := lipgloss.JoinHorizontal(lipgloss.Top, arena, panelStyle.Render(telemetryPanel(mm.status)))
	return docStyle.Render(view + "\n" + noticeStyle.Render("(esc to return)") + "\n")
}

type metricsModel struct{}

func (m metricsModel) Update(msg tea.Msg, mm *uiModel) (metricsModel, tea.Cmd) {
	return m, nil
}

func (m metricsModel) View(mm uiModel) string {
	view := formatSummaries([]control.Summary{mm.status.Summary})
	view += fmt.Sprintf("\n\ndropped telemetry records: %d", mm.status.Dropped)
	return docStyle.Render(view + "\n\n" + noticeStyle.Render("(esc to return)") + "\n")
}
