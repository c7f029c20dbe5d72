package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/a0compact/internal/config"
	"github.com/gmofishsauce/a0compact/internal/faultmodel"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse settings and the fault report without running any simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return validateA0(configPath)
		},
	}
}

func validateA0(configPath string) error {
	settings, err := config.Load(configPath, nil)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	faultSet, formulae, err := faultmodel.LoadFaultReport(settings.FsimReport)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if _, ok := selectFormula(formulae, settings.CoverageFormula); !ok {
		return fmt.Errorf("validate: coverage formula %q not found in %s", settings.CoverageFormula, settings.FsimReport)
	}

	fmt.Printf("settings and fault report at %s are valid; %d faults parsed\n", settings.FsimReport, len(faultSet.Faults()))
	return nil
}
