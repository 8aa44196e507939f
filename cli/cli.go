package cli

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"pfeifer.dev/avsim/scenario"
	"pfeifer.dev/avsim/settings"
)

func simFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Category: "Simulation",
			Name:     "mode",
			Aliases:  []string{"m"},
			Usage:    "Driving mode: cautious, normal, aggressive or a saved profile",
		},
		&cli.StringFlag{
			Category: "Simulation",
			Name:     "scenario",
			Aliases:  []string{"s"},
			Usage:    "Obstacle layout: corridor, random, intersection, dense, traffic or empty",
		},
		&cli.StringFlag{
			Category: "Simulation",
			Name:     "layout",
			Usage:    "A JSON obstacle layout to use instead of a built in scenario",
		},
		&cli.Uint64Flag{
			Category: "Simulation",
			Name:     "seed",
			Usage:    "Seed for random layouts and sensor noise",
		},
		&cli.Float64Flag{
			Category: "Simulation",
			Name:     "duration",
			Aliases:  []string{"d"},
			Usage:    "Simulated seconds to run",
		},
		&cli.BoolFlag{
			Category: "Sensors",
			Name:     "noise",
			Usage:    "Inject gaussian noise into sensor readings",
		},
		&cli.BoolFlag{
			Category: "Sensors",
			Name:     "filter",
			Usage:    "Smooth sensor readings with a moving average",
		},
		&cli.StringFlag{
			Category: "Logging",
			Name:     "log-level",
			Usage:    "debug, info, warn or error",
		},
	}
}

func Handle() {
	cmd := &cli.Command{
		Commands: []*cli.Command{
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "Run one simulation and print its summary",
				Flags: append(simFlags(),
					&cli.BoolFlag{
						Category: "Outputs",
						Name:     "realtime",
						Usage:    "Pace ticks at wall clock speed",
					},
					&cli.BoolFlag{
						Category: "Outputs",
						Name:     "publish",
						Usage:    "Publish every tick on the telemetry queue",
					},
					&cli.StringFlag{
						Category: "Outputs",
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Write the full telemetry to this file, as JSON or as packed capnp ticks for .capnp",
					},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					return runSimulation(ctx, s, cmd.String("output"))
				},
			},
			{
				Name:    "compare",
				Aliases: []string{"c"},
				Usage:   "Run one scenario in every built in mode side by side",
				Flags:   simFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					return compareModes(ctx, s)
				},
			},
			{
				Name:    "matrix",
				Aliases: []string{"x"},
				Usage:   "Run every scenario against every mode and write a CSV report",
				Flags: append(simFlags(),
					&cli.StringFlag{
						Category: "Outputs",
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "The CSV file to write",
						Value:    "test_matrix.csv",
					},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					return testMatrix(ctx, s, scenario.MatrixNames, cmd.String("output"))
				},
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Drive a live simulation from a terminal dashboard",
				Flags:   simFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					return watch(s)
				},
			},
			{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Pick a mode and scenario from prompts and run it",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return interactive(ctx)
				},
			},
			{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Print ticks published by a running simulation as JSON lines",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return listen(ctx, settings.TELEMETRY_QUEUE)
				},
			},
			{
				Name:  "import-osm",
				Usage: "Build an obstacle layout from trees and barriers in an OSM PBF extract",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Category: "Inputs and Outputs",
						Name:     "input-file",
						Aliases:  []string{"i"},
						Usage:    "The open street maps pbf file to read",
						Value:    "./map.osm.pbf",
					},
					&cli.StringFlag{
						Category: "Inputs and Outputs",
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "The layout JSON file to write",
						Value:    "./layout.json",
					},
					&cli.Float64Flag{
						Category: "Location",
						Name:     "lat",
						Usage:    "Latitude placed at the arena centre, defaults to the centroid of matches",
					},
					&cli.Float64Flag{
						Category: "Location",
						Name:     "lon",
						Usage:    "Longitude placed at the arena centre, defaults to the centroid of matches",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return importOSM(ctx, cmd.String("input-file"), cmd.String("output"), cmd.Float64("lat"), cmd.Float64("lon"))
				},
			},
			settingsCommand(),
		},
		Name:  "avsim",
		Usage: "Simulate a threshold driven autonomous vehicle in a 2D arena",
		Flags: simFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return runSimulation(ctx, s, "")
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
