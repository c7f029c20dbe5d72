// Package config loads and validates an A0 run's settings from a YAML
// file, environment variables and command-line flags, via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LogicSimulationControl governs how a logic-simulation run's success
// message and test application time are recognised.
type LogicSimulationControl struct {
	Timeout        float64 `mapstructure:"timeout"`
	SuccessRegexp  string  `mapstructure:"success_regexp"`
	TatCaptureGroup int    `mapstructure:"tat_capture_group"`
}

// FaultSimulationControl governs fault-simulation timeouts.
type FaultSimulationControl struct {
	Timeout float64 `mapstructure:"timeout"`
}

// Settings is the full set of knobs for one A0 run.
type Settings struct {
	AssemblySources []string `mapstructure:"assembly_sources"`

	AssemblyCompilationInstructions []string `mapstructure:"assembly_compilation_instructions"`
	VCSCompilationInstructions      []string `mapstructure:"vcs_compilation_instructions"`
	VCSLogicSimulationInstructions  []string `mapstructure:"vcs_logic_simulation_instructions"`
	VCSLogicSimulationControl       LogicSimulationControl `mapstructure:"vcs_logic_simulation_control"`

	ZoixFaultSimulationInstructions []string               `mapstructure:"zoix_fault_simulation_instructions"`
	ZoixFaultSimulationControl      FaultSimulationControl `mapstructure:"zoix_fault_simulation_control"`
	FsimReport                      string                 `mapstructure:"fsim_report"`

	// CoverageFormula names which parsed Coverage section entry to
	// evaluate each iteration.
	CoverageFormula string            `mapstructure:"coverage_formula"`
	ZoixToTrace     map[string]string `mapstructure:"zoix_to_trace"`

	ProcessorName  string `mapstructure:"processor_name"`
	ProcessorTrace string `mapstructure:"processor_trace"`
	ElfFile        string `mapstructure:"elf_file"`

	// PCColumnName names the trace column the pruner queries for a
	// program counter; not present in the original tool, which hard
	// coded "PC".
	PCColumnName string `mapstructure:"pc_column_name"`

	TimesToShuffle int `mapstructure:"times_to_shuffle"`
	OutputDir      string `mapstructure:"output_dir"`
}

// Load reads settings from configPath (a YAML file), overlaying any
// flags bound in flags and environment variables prefixed A0_.
func Load(configPath string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("A0")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pc_column_name", "PC")
	v.SetDefault("times_to_shuffle", 100)
	v.SetDefault("output_dir", ".")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("config: unmarshalling %s: %w", configPath, err)
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func (s *Settings) validate() error {
	if len(s.AssemblySources) == 0 {
		return fmt.Errorf("config: assembly_sources must not be empty")
	}
	if s.ProcessorTrace == "" {
		return fmt.Errorf("config: processor_trace is required")
	}
	if s.ElfFile == "" {
		return fmt.Errorf("config: elf_file is required")
	}
	if s.PCColumnName == "" {
		s.PCColumnName = "PC"
	}
	return nil
}
