package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"pfeifer.dev/avsim/cereal"
	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/decision"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/params"
	"pfeifer.dev/avsim/scenario"
	"pfeifer.dev/avsim/settings"
	"pfeifer.dev/avsim/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// flagSettings maps command line flags onto setting keys.
var flagSettings = []struct {
	flag string
	key  string
}{
	{"mode", "mode"},
	{"scenario", "scenario"},
	{"layout", "layout_path"},
	{"seed", "seed"},
	{"duration", "duration_s"},
	{"noise", "sensors.noise_enabled"},
	{"filter", "sensors.filter_enabled"},
	{"log-level", "log_level"},
	{"realtime", "realtime"},
	{"publish", "publish"},
}

func flagValue(cmd *cli.Command, name string) string {
	switch name {
	case "seed":
		return strconv.FormatUint(cmd.Uint64(name), 10)
	case "duration":
		return strconv.FormatFloat(cmd.Float64(name), 'g', -1, 64)
	case "noise", "filter", "realtime", "publish":
		return strconv.FormatBool(cmd.Bool(name))
	}
	return cmd.String(name)
}

// loadSettings reads the saved settings and applies any flags that were set.
func loadSettings(cmd *cli.Command) (settings.SimSettings, error) {
	s := settings.SimSettings{}
	s.Load()
	for _, f := range flagSettings {
		if !cmd.IsSet(f.flag) {
			continue
		}
		if err := s.Apply(f.key, flagValue(cmd, f.flag)); err != nil {
			return s, err
		}
	}
	return s, nil
}

// cyclesFor converts the run duration into ticks. A run is never shorter
// than one tick since zero means unlimited to the runner.
func cyclesFor(s settings.SimSettings) int {
	return max(1, int(math.Round(s.DurationS/settings.TICK_SECONDS)))
}

func runSimulation(ctx context.Context, s settings.SimSettings, output string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	config, err := control.FromSettings(s)
	if err != nil {
		return err
	}
	session, err := control.NewSession(config)
	if err != nil {
		return err
	}

	cycles := cyclesFor(s)
	var period time.Duration
	if s.Realtime {
		period = settings.TICK
	}
	runner := control.NewRunner(session, period, cycles)

	var records <-chan control.TickRecord
	var unsubscribe func()
	if output != "" {
		records, unsubscribe = runner.Subscribe(cycles)
	}

	if s.Publish {
		stop, err := startPublisher(ctx, runner)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := runner.Run(ctx); err != nil {
		return err
	}
	summary := runner.Snapshot().Summary
	fmt.Println(formatSummaries([]control.Summary{summary}))

	data, err := json.Marshal(summary)
	utils.Loge(err, "could not encode run summary")
	if err == nil {
		utils.Logwe(params.PutParam(params.ParamPath(params.LAST_RUN_SUMMARY), data), "could not save run summary")
	}

	if output == "" {
		return nil
	}
	unsubscribe()
	telemetry := control.Telemetry{
		Mode:     config.Mode.Name,
		Scenario: config.Layout.Name,
		Seed:     config.Seed,
		Summary:  summary,
	}
	for rec := range records {
		telemetry.Records = append(telemetry.Records, rec)
	}
	file, err := os.Create(output)
	if err != nil {
		return errors.Wrap(err, "could not create telemetry file")
	}
	defer file.Close()
	if err := writeTelemetry(file, output, telemetry); err != nil {
		return err
	}
	slog.Info("wrote telemetry", "file", output, "records", len(telemetry.Records))
	return nil
}

// writeTelemetry picks the format from the file name: a packed capnp tick
// stream for .capnp, JSON otherwise.
func writeTelemetry(w io.Writer, name string, telemetry control.Telemetry) error {
	if strings.EqualFold(filepath.Ext(name), ".capnp") {
		return cereal.WriteTicks(w, telemetry.Records)
	}
	return control.WriteTelemetry(w, telemetry)
}

// startPublisher forwards every tick of runner onto the telemetry queue. The
// returned func detaches the publisher and closes the queue.
func startPublisher(ctx context.Context, runner *control.Runner) (func(), error) {
	pub, err := cereal.NewPublisher(settings.TELEMETRY_QUEUE)
	if err != nil {
		return nil, err
	}
	ticks, unsubscribe := runner.Subscribe(64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pub.Forward(ctx, ticks)
	}()
	return func() {
		unsubscribe()
		<-done
		pub.Close()
	}, nil
}

func presetModes() []decision.Mode {
	modes := []decision.Mode{}
	for _, name := range decision.PresetNames {
		mode, err := decision.Preset(name)
		utils.Check(err)
		modes = append(modes, mode)
	}
	return modes
}

func compareModes(ctx context.Context, s settings.SimSettings) error {
	base, err := control.FromSettings(s)
	if err != nil {
		return err
	}
	summaries, err := control.Compare(ctx, base, presetModes(), cyclesFor(s))
	if err != nil {
		return err
	}
	fmt.Println(formatSummaries(summaries))
	return nil
}

func testMatrix(ctx context.Context, s settings.SimSettings, scenarios []string, output string) error {
	build := func(mode decision.Mode, name string) (control.Config, error) {
		next := s.Clone()
		next.Scenario = name
		next.LayoutPath = ""
		config, err := control.FromSettings(next)
		config.Mode = mode
		return config, err
	}
	summaries, err := control.Matrix(ctx, build, presetModes(), scenarios, cyclesFor(s))
	if err != nil {
		return err
	}
	file, err := os.Create(output)
	if err != nil {
		return errors.Wrap(err, "could not create matrix report")
	}
	defer file.Close()
	if err := control.WriteSummariesCSV(file, summaries); err != nil {
		return err
	}
	fmt.Println(formatSummaries(summaries))
	fmt.Printf("wrote %d runs to %s\n", len(summaries), output)
	return nil
}

func importOSM(ctx context.Context, input, output string, lat, lon float64) error {
	world := m.NewBox(settings.WORLD_WIDTH, settings.WORLD_HEIGHT)
	s := settings.SimSettings{}
	s.Load()
	layout, err := scenario.LoadOSM(ctx, input, world, scenario.OSMOptions{
		Lat:           lat,
		Lon:           lon,
		VehicleRadius: s.Vehicle.Radius,
	})
	if err != nil {
		return err
	}
	if err := scenario.SaveLayout(output, layout); err != nil {
		return err
	}
	fmt.Printf("wrote %d obstacles to %s\n", len(layout.Obstacles), output)
	return nil
}

func listen(ctx context.Context, queue string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sub, err := cereal.NewSubscriber(queue, false)
	if err != nil {
		return err
	}
	defer sub.Close()

	encoder := json.NewEncoder(os.Stdout)
	for ctx.Err() == nil {
		rec, ok := sub.Read()
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if err := encoder.Encode(rec); err != nil {
			return errors.Wrap(err, "could not write tick")
		}
	}
	return nil
}

func formatTime(t *float64) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fs", *t)
}

// formatSummaries renders run summaries as an aligned table.
func formatSummaries(summaries []control.Summary) string {
	header := []string{"scenario", "mode", "time", "collisions", "contacts", "distance", "avg speed", "avg hazard", "transitions", "brakes", "ttc", "first hit"}
	rows := [][]string{}
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Scenario,
			s.Mode,
			fmt.Sprintf("%.1fs", s.TotalTime),
			strconv.Itoa(s.TotalCollisions),
			strconv.Itoa(s.CollisionEvents),
			fmt.Sprintf("%.1fm", s.TotalDistance),
			fmt.Sprintf("%.2f", s.AvgSpeed),
			fmt.Sprintf("%.3f", s.AvgHazard),
			strconv.Itoa(s.StateTransitions),
			strconv.Itoa(s.EmergencyBrakes),
			strconv.Itoa(s.TTCInterventions),
			formatTime(s.TimeToFirstCollision),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Render(cellStyle.Width(widths[i] + 2).Render(cell))
		}
		b.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " "))
		b.WriteString("\n")
	}
	line(header, headerStyle)
	for _, row := range rows {
		line(row, lipgloss.NewStyle())
	}
	return strings.TrimRight(b.String(), "\n")
}
