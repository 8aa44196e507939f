package control

import (
	"github.com/pkg/errors"
	"pfeifer.dev/avsim/decision"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/scenario"
	"pfeifer.dev/avsim/sensors"
	"pfeifer.dev/avsim/settings"
	"pfeifer.dev/avsim/vehicle"
)

// Config fully describes one simulation. Two sessions built from equal
// configs produce identical runs.
type Config struct {
	Mode    decision.Mode
	Layout  scenario.Layout
	World   m.Box
	Seed    uint64
	DT      float64 // seconds per tick
	Vehicle vehicle.Config
	Sensors sensors.Config
}

func DefaultConfig() Config {
	mode, _ := decision.Preset("normal")
	world := m.NewBox(settings.WORLD_WIDTH, settings.WORLD_HEIGHT)
	return Config{
		Mode:    mode,
		Layout:  scenario.Layout{Name: "empty", Start: scenario.DefaultStart(world)},
		World:   world,
		DT:      settings.TICK_SECONDS,
		Vehicle: vehicle.DefaultConfig(),
		Sensors: sensors.DefaultConfig(),
	}
}

// NewConfig resolves a mode and a built in scenario on top of the defaults.
func NewConfig(modeName, scenarioName string, seed uint64) (Config, error) {
	config := DefaultConfig()
	config.Seed = seed
	mode, err := decision.Preset(modeName)
	if err != nil {
		return config, err
	}
	config.Mode = mode
	if err := config.UseScenario(scenarioName); err != nil {
		return config, err
	}
	return config, nil
}

// UseScenario replaces the layout with a freshly built one.
func (c *Config) UseScenario(name string) error {
	layout, err := scenario.Build(name, c.World, c.Seed, c.Vehicle.Radius)
	if err != nil {
		return err
	}
	c.Layout = layout
	return nil
}

// FromSettings turns persisted settings into a session config.
func FromSettings(s settings.SimSettings) (Config, error) {
	config := DefaultConfig()
	config.Seed = s.Seed
	config.Vehicle = s.Vehicle
	config.Sensors = s.Sensors

	mode, err := decision.Lookup(s.Mode, s.Modes)
	if err != nil {
		return config, err
	}
	config.Mode = mode

	if s.LayoutPath != "" {
		layout, err := scenario.LoadLayout(s.LayoutPath, config.World)
		if err != nil {
			return config, err
		}
		config.Layout = layout
		return config, nil
	}
	if err := config.UseScenario(s.Scenario); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := c.Mode.Validate(); err != nil {
		return err
	}
	if err := c.Vehicle.Validate(); err != nil {
		return err
	}
	if err := c.Sensors.Validate(); err != nil {
		return err
	}
	if !(c.DT > 0) {
		return errors.Errorf("tick length %v must be positive", c.DT)
	}
	if !(c.World.Width() > 0) || !(c.World.Height() > 0) {
		return errors.New("world must have a positive size")
	}
	return c.Layout.Validate(c.World)
}
