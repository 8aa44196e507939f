package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
)

// LoadLayout reads a custom layout from a JSON file. A layout without a name
// is named after the file.
func LoadLayout(path string, world m.Box) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrap(err, "could not read layout file")
	}
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return Layout{}, errors.Wrapf(err, "could not parse layout %s", filepath.Base(path))
	}
	if layout.Name == "" {
		layout.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if layout.Start == (Pose{}) {
		layout.Start = DefaultStart(world)
	}
	if err := layout.Validate(world); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

func SaveLayout(path string, layout Layout) error {
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode layout")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "could not write layout file")
	}
	return nil
}

// Validate checks that every obstacle is well formed and that the start pose
// is inside the arena.
func (l Layout) Validate(world m.Box) error {
	if !world.PosInside(l.Start.Position) {
		return errors.Errorf("layout %s: start (%.2f, %.2f) is outside the arena", l.Name, l.Start.Position.X, l.Start.Position.Y)
	}
	for i, o := range l.Obstacles {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(err, "layout %s: obstacle %d", l.Name, i)
		}
	}
	return nil
}
