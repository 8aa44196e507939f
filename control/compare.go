package control

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"pfeifer.dev/avsim/decision"
)

// runFor ticks a fresh session built from config, stopping early when ctx is
// cancelled.
func runFor(ctx context.Context, config Config, cycles int) (Summary, error) {
	session, err := NewSession(config)
	if err != nil {
		return Summary{}, err
	}
	for range cycles {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		session.Tick()
	}
	return session.Summary(), nil
}

// Compare runs the same layout once per mode, each in its own session and
// goroutine. Results are in the order of modes.
func Compare(ctx context.Context, base Config, modes []decision.Mode, cycles int) ([]Summary, error) {
	results := make([]Summary, len(modes))
	g, ctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			config := base
			config.Mode = mode
			summary, err := runFor(ctx, config, cycles)
			if err != nil {
				return errors.Wrapf(err, "mode %s", mode.Name)
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ConfigBuilder produces the config for one cell of a test matrix.
type ConfigBuilder func(mode decision.Mode, scenarioName string) (Config, error)

// Matrix runs every scenario against every mode with bounded parallelism.
// Results are grouped by scenario, then mode.
func Matrix(ctx context.Context, build ConfigBuilder, modes []decision.Mode, scenarios []string, cycles int) ([]Summary, error) {
	results := make([]Summary, len(modes)*len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for si, name := range scenarios {
		for mi, mode := range modes {
			g.Go(func() error {
				config, err := build(mode, name)
				if err != nil {
					return errors.Wrapf(err, "scenario %s mode %s", name, mode.Name)
				}
				summary, err := runFor(ctx, config, cycles)
				if err != nil {
					return errors.Wrapf(err, "scenario %s mode %s", name, mode.Name)
				}
				results[si*len(modes)+mi] = summary
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
