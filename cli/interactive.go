package cli

import (
	"context"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"pfeifer.dev/avsim/scenario"
)

const (
	actionRun     = "Run and print the summary"
	actionWatch   = "Watch in the dashboard"
	actionCompare = "Compare every built in mode"
)

func choose(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}
	_, result, err := prompt.Run()
	if err != nil {
		return "", errors.Wrap(err, "prompt failed")
	}
	return result, nil
}

func interactive(ctx context.Context) error {
	s := loadSaved()

	action, err := choose("Select Action", []string{actionRun, actionWatch, actionCompare})
	if err != nil {
		return err
	}
	if action != actionCompare {
		mode, err := choose("Select Mode", s.ModeNames())
		if err != nil {
			return err
		}
		if err := s.Apply("mode", mode); err != nil {
			return err
		}
	}
	name, err := choose("Select Scenario", scenario.Names)
	if err != nil {
		return err
	}
	if err := s.Apply("scenario", name); err != nil {
		return err
	}
	s.LayoutPath = ""

	switch action {
	case actionWatch:
		return watch(s)
	case actionCompare:
		return compareModes(ctx, s)
	}
	return runSimulation(ctx, s, "")
}
