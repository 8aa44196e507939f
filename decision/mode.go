package decision

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrUnknownMode = errors.New("unknown driving mode")
	ErrInvalidMode = errors.New("invalid driving mode")
)

// Mode is a driving profile. The engine never mutates it.
type Mode struct {
	Name             string  `json:"name"`
	DangerThreshold  float64 `json:"danger_threshold"`
	WarningThreshold float64 `json:"warning_threshold"`
	MaxSpeed         float64 `json:"max_speed"`
	TTCThreshold     float64 `json:"ttc_threshold"`
	HysteresisCycles int     `json:"hysteresis_cycles"`
}

var presets = map[string]Mode{
	"cautious": {
		Name:             "cautious",
		DangerThreshold:  3.0,
		WarningThreshold: 5.0,
		MaxSpeed:         2.0,
		TTCThreshold:     3.0,
		HysteresisCycles: 5,
	},
	"normal": {
		Name:             "normal",
		DangerThreshold:  2.0,
		WarningThreshold: 3.5,
		MaxSpeed:         3.5,
		TTCThreshold:     2.0,
		HysteresisCycles: 3,
	},
	"aggressive": {
		Name:             "aggressive",
		DangerThreshold:  1.0,
		WarningThreshold: 2.0,
		MaxSpeed:         5.0,
		TTCThreshold:     1.0,
		HysteresisCycles: 2,
	},
}

// PresetNames lists the built in modes from most to least conservative.
var PresetNames = []string{"cautious", "normal", "aggressive"}

func (m Mode) Validate() error {
	if m.DangerThreshold <= 0 {
		return errors.Wrapf(ErrInvalidMode, "%s: danger threshold %v must be positive", m.Name, m.DangerThreshold)
	}
	if m.DangerThreshold >= m.WarningThreshold {
		return errors.Wrapf(ErrInvalidMode, "%s: danger threshold %v must be below warning threshold %v", m.Name, m.DangerThreshold, m.WarningThreshold)
	}
	if m.MaxSpeed <= 0 {
		return errors.Wrapf(ErrInvalidMode, "%s: max speed %v must be positive", m.Name, m.MaxSpeed)
	}
	if m.TTCThreshold <= 0 {
		return errors.Wrapf(ErrInvalidMode, "%s: ttc threshold %v must be positive", m.Name, m.TTCThreshold)
	}
	if m.HysteresisCycles < 1 {
		return errors.Wrapf(ErrInvalidMode, "%s: hysteresis cycles %d must be at least 1", m.Name, m.HysteresisCycles)
	}
	return nil
}

// Preset returns a built in mode by name.
func Preset(name string) (Mode, error) {
	mode, ok := presets[name]
	if !ok {
		return Mode{}, errors.Wrapf(ErrUnknownMode, "%q", name)
	}
	return mode, nil
}

// Lookup resolves name against custom profiles first and then the presets. A
// custom profile is validated before it is returned.
func Lookup(name string, custom map[string]Mode) (Mode, error) {
	if mode, ok := custom[name]; ok {
		mode.Name = name
		if err := mode.Validate(); err != nil {
			return Mode{}, err
		}
		return mode, nil
	}
	return Preset(name)
}

// Names returns the presets followed by sorted custom profile names.
func Names(custom map[string]Mode) []string {
	names := append([]string{}, PresetNames...)
	extra := []string{}
	for name := range custom {
		if _, ok := presets[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
