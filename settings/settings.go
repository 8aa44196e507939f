package settings

import (
	"encoding/json"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"pfeifer.dev/avsim/decision"
	"pfeifer.dev/avsim/params"
	"pfeifer.dev/avsim/scenario"
	"pfeifer.dev/avsim/sensors"
	"pfeifer.dev/avsim/utils"
	"pfeifer.dev/avsim/vehicle"
)

var (
	Settings = SimSettings{}
)

type SimSettings struct {
	LogLevel   string                   `json:"log_level"`
	Mode       string                   `json:"mode"`
	Scenario   string                   `json:"scenario"`
	LayoutPath string                   `json:"layout_path"`
	Seed       uint64                   `json:"seed"`
	DurationS  float64                  `json:"duration_s"`
	Realtime   bool                     `json:"realtime"`
	Publish    bool                     `json:"publish"`
	Vehicle    vehicle.Config           `json:"vehicle"`
	Sensors    sensors.Config           `json:"sensors"`
	Modes      map[string]decision.Mode `json:"modes,omitempty"`
}

func (s *SimSettings) Default() {
	s.LogLevel = "error"
	s.Mode = "normal"
	s.Scenario = "random"
	s.LayoutPath = ""
	s.Seed = 1
	s.DurationS = 60
	s.Realtime = false
	s.Publish = false
	s.Vehicle = vehicle.DefaultConfig()
	s.Sensors = sensors.DefaultConfig()
	s.Modes = map[string]decision.Mode{}
}

// Recommended turns on the sensor model the decision engine was tuned for.
func (s *SimSettings) Recommended() {
	s.Default()
	s.LogLevel = "info"
	s.Mode = "cautious"
	s.Realtime = true
	s.Sensors.NoiseEnabled = true
	s.Sensors.FilterEnabled = true
}

func (s *SimSettings) Load() (success bool) {
	s.Default() // set defaults so settings not already in param are defaulted
	path := params.ParamPath(params.SIM_SETTINGS)
	exists, err := params.Exists(path)
	utils.Logie(err, "could not check for saved settings")
	if !exists {
		return false
	}
	data, err := params.GetParam(path)
	if err != nil {
		utils.Logde(err, "no saved settings")
		return false
	}

	err = json.Unmarshal(data, s)
	if err != nil {
		utils.Loge(err, "could not parse saved settings")
		return false
	}
	if s.Modes == nil {
		s.Modes = map[string]decision.Mode{}
	}

	s.setLogLevel()

	return true
}

func (s *SimSettings) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode settings")
	}
	return params.PutParam(params.ParamPath(params.SIM_SETTINGS), data)
}

// ClearSaved removes the saved settings so the next Load starts from the
// defaults again.
func ClearSaved() error {
	return params.RemoveParam(params.ParamPath(params.SIM_SETTINGS))
}

func (s *SimSettings) setLogLevel() {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "info":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelError)
	}
}

// ResolveMode looks up the selected mode among the custom profiles and the
// presets.
func (s *SimSettings) ResolveMode() (decision.Mode, error) {
	return decision.Lookup(s.Mode, s.Modes)
}

// ModeNames lists every selectable mode.
func (s *SimSettings) ModeNames() []string {
	return decision.Names(s.Modes)
}

// SetProfile stores a custom mode profile after validating it.
func (s *SimSettings) SetProfile(name string, mode decision.Mode) error {
	if name == "" {
		return errors.New("profile name must not be empty")
	}
	if _, err := decision.Preset(name); err == nil {
		return errors.Errorf("profile %q would shadow a built in mode", name)
	}
	mode.Name = name
	if err := mode.Validate(); err != nil {
		return err
	}
	if s.Modes == nil {
		s.Modes = map[string]decision.Mode{}
	}
	s.Modes[name] = mode
	return nil
}

func (s *SimSettings) RemoveProfile(name string) {
	delete(s.Modes, name)
	if s.Mode == name {
		s.Mode = "normal"
	}
}

func (s SimSettings) Clone() SimSettings {
	s.Modes = maps.Clone(s.Modes)
	return s
}

type field struct {
	key string
	get func(s *SimSettings) string
	set func(s *SimSettings, value string) error
}

func parseBool(value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return errors.Wrapf(err, "invalid boolean %q", value)
	}
	*dst = b
	return nil
}

func parseFloat(value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid number %q", value)
	}
	*dst = f
	return nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

var fields = []field{
	{"log_level",
		func(s *SimSettings) string { return s.LogLevel },
		func(s *SimSettings, v string) error {
			switch strings.ToLower(v) {
			case "debug", "info", "warn", "error":
			default:
				return errors.Errorf("unknown log level %q", v)
			}
			s.LogLevel = strings.ToLower(v)
			s.setLogLevel()
			return nil
		}},
	{"mode",
		func(s *SimSettings) string { return s.Mode },
		func(s *SimSettings, v string) error {
			if _, err := decision.Lookup(v, s.Modes); err != nil {
				return err
			}
			s.Mode = v
			return nil
		}},
	{"scenario",
		func(s *SimSettings) string { return s.Scenario },
		func(s *SimSettings, v string) error {
			if !scenario.Known(v) {
				return errors.Wrapf(scenario.ErrUnknownScenario, "%q", v)
			}
			s.Scenario = v
			return nil
		}},
	{"layout_path",
		func(s *SimSettings) string { return s.LayoutPath },
		func(s *SimSettings, v string) error { s.LayoutPath = v; return nil }},
	{"seed",
		func(s *SimSettings) string { return strconv.FormatUint(s.Seed, 10) },
		func(s *SimSettings, v string) error {
			seed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "invalid seed %q", v)
			}
			s.Seed = seed
			return nil
		}},
	{"duration_s",
		func(s *SimSettings) string { return formatFloat(s.DurationS) },
		func(s *SimSettings, v string) error {
			var d float64
			if err := parseFloat(v, &d); err != nil {
				return err
			}
			if d < TICK_SECONDS {
				return errors.Errorf("duration %v is shorter than one %vs tick", d, TICK_SECONDS)
			}
			s.DurationS = d
			return nil
		}},
	{"realtime",
		func(s *SimSettings) string { return formatBool(s.Realtime) },
		func(s *SimSettings, v string) error { return parseBool(v, &s.Realtime) }},
	{"publish",
		func(s *SimSettings) string { return formatBool(s.Publish) },
		func(s *SimSettings, v string) error { return parseBool(v, &s.Publish) }},
	{"sensors.noise_enabled",
		func(s *SimSettings) string { return formatBool(s.Sensors.NoiseEnabled) },
		func(s *SimSettings, v string) error { return parseBool(v, &s.Sensors.NoiseEnabled) }},
	{"sensors.noise_std_dev",
		func(s *SimSettings) string { return formatFloat(s.Sensors.NoiseStdDev) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Sensors.NoiseStdDev) }},
	{"sensors.filter_enabled",
		func(s *SimSettings) string { return formatBool(s.Sensors.FilterEnabled) },
		func(s *SimSettings, v string) error { return parseBool(v, &s.Sensors.FilterEnabled) }},
	{"sensors.filter_window",
		func(s *SimSettings) string { return strconv.Itoa(s.Sensors.FilterWindow) },
		func(s *SimSettings, v string) error {
			w, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid window %q", v)
			}
			s.Sensors.FilterWindow = w
			return nil
		}},
	{"sensors.max_range",
		func(s *SimSettings) string { return formatFloat(s.Sensors.MaxRange) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Sensors.MaxRange) }},
	{"vehicle.radius",
		func(s *SimSettings) string { return formatFloat(s.Vehicle.Radius) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Vehicle.Radius) }},
	{"vehicle.acceleration",
		func(s *SimSettings) string { return formatFloat(s.Vehicle.Acceleration) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Vehicle.Acceleration) }},
	{"vehicle.turn_rate",
		func(s *SimSettings) string { return formatFloat(s.Vehicle.TurnRate) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Vehicle.TurnRate) }},
	{"vehicle.friction",
		func(s *SimSettings) string { return formatFloat(s.Vehicle.Friction) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Vehicle.Friction) }},
	{"vehicle.restitution",
		func(s *SimSettings) string { return formatFloat(s.Vehicle.Restitution) },
		func(s *SimSettings, v string) error { return parseFloat(v, &s.Vehicle.Restitution) }},
}

// Keys lists every setting that Get and Apply accept.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

func lookupField(key string) (field, error) {
	for _, f := range fields {
		if f.key == key {
			return f, nil
		}
	}
	return field{}, errors.Errorf("unknown setting %q", key)
}

func (s *SimSettings) Get(key string) (string, error) {
	f, err := lookupField(key)
	if err != nil {
		return "", err
	}
	return f.get(s), nil
}

// Apply changes a single setting. The sensor and vehicle sections are checked
// as a whole so a rejected value leaves the settings untouched.
func (s *SimSettings) Apply(key, value string) error {
	switch key {
	case "defaults":
		s.Default()
		return nil
	case "recommended":
		s.Recommended()
		return nil
	}
	f, err := lookupField(key)
	if err != nil {
		return err
	}
	next := s.Clone()
	if err := f.set(&next, value); err != nil {
		return errors.Wrapf(err, "could not set %s", key)
	}
	if err := next.Sensors.Validate(); err != nil {
		return errors.Wrapf(err, "could not set %s", key)
	}
	if err := next.Vehicle.Validate(); err != nil {
		return errors.Wrapf(err, "could not set %s", key)
	}
	*s = next
	return nil
}
