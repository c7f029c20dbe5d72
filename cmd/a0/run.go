package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gmofishsauce/a0compact/internal/applog"
	"github.com/gmofishsauce/a0compact/internal/asmhandler"
	"github.com/gmofishsauce/a0compact/internal/backup"
	"github.com/gmofishsauce/a0compact/internal/compactor"
	"github.com/gmofishsauce/a0compact/internal/config"
	"github.com/gmofishsauce/a0compact/internal/faultmodel"
	"github.com/gmofishsauce/a0compact/internal/resolver"
	"github.com/gmofishsauce/a0compact/internal/simulator"
	"github.com/gmofishsauce/a0compact/internal/tracedb"
	"github.com/gmofishsauce/a0compact/internal/tracegrammar"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the A0 compaction loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			return runA0(configPath, debug)
		},
	}
	return cmd
}

type zerologReporter struct {
	logger zerolog.Logger
}

func (r zerologReporter) Info(msg string)     { r.logger.Info().Msg(msg) }
func (r zerologReporter) Warn(msg string)     { r.logger.Warn().Msg(msg) }
func (r zerologReporter) Critical(msg string) { r.logger.Fatal().Msg(msg) }

func runA0(configPath string, debug bool) error {
	unique := time.Now().Format("02_Jan_1504")

	logger, logFile, err := applog.New(fmt.Sprintf("a0_%s.log", unique), debug)
	if err != nil {
		return fmt.Errorf("run: setting up logging: %w", err)
	}
	defer logFile.Close()

	settings, err := config.Load(configPath, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load settings")
	}

	reporter := zerologReporter{logger: logger}

	handlers := make([]*asmhandler.Handler, len(settings.AssemblySources))
	sourceNames := make(map[string]int, len(settings.AssemblySources))
	for i, path := range settings.AssemblySources {
		h, err := asmhandler.Load(i, path)
		if err != nil {
			logger.Fatal().Err(err).Str("source", path).Msg("unable to load assembly source")
		}
		handlers[i] = h
		sourceNames[filepath.Base(h.SourcePath())] = i
	}

	if err := backup.Archive(fmt.Sprintf("../backup_%s.zip", unique), settings.AssemblySources); err != nil {
		logger.Fatal().Err(err).Msg("unable to back up assembly sources")
	}

	faultSet, formulae, err := faultmodel.LoadFaultReport(settings.FsimReport)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load fault report")
	}

	formula, ok := selectFormula(formulae, settings.CoverageFormula)
	if !ok {
		logger.Fatal().Str("formula", settings.CoverageFormula).Msg("coverage formula not found in fault report")
	}

	factory := tracegrammar.NewFactory()
	transformer, err := factory.Get(settings.ProcessorName)
	if err != nil {
		logger.Fatal().Err(err).Msg("unknown processor trace dialect")
	}

	rawTrace, err := readFile(settings.ProcessorTrace)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to read processor trace")
	}

	trace, err := transformer.Parse(rawTrace)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to parse processor trace")
	}

	addr2line := resolver.NewAddr2Line("addr2line")
	preprocessor, err := tracedb.NewPreprocessor(trace, faultSet.Faults(), settings.ElfFile,
		settings.ZoixToTrace, addr2line, settings.PCColumnName)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to build trace database")
	}
	defer preprocessor.Close()

	invoker := simulator.NewInvoker()

	var successRegexp *regexp.Regexp
	if pattern := settings.VCSLogicSimulationControl.SuccessRegexp; pattern != "" {
		successRegexp, err = regexp.Compile(pattern)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid logic simulation success_regexp")
		}
	}

	cfg := compactor.Config{
		AssemblyCompileCommand: joinArgs(settings.AssemblyCompilationInstructions),
		VCSCompileCommand:      joinArgs(settings.VCSCompilationInstructions),
		VCSLsimCommand:         joinArgs(settings.VCSLogicSimulationInstructions),
		LsimOptions: simulator.LogicSimulateOptions{
			SuccessRegexp:         successRegexp,
			TatRegexpCaptureGroup: settings.VCSLogicSimulationControl.TatCaptureGroup,
			Timeout:               durationFromSeconds(settings.VCSLogicSimulationControl.Timeout),
		},
		VCSFsimCommand:    joinArgs(settings.ZoixFaultSimulationInstructions),
		FsimTimeout:       durationFromSeconds(settings.ZoixFaultSimulationControl.Timeout),
		CoveragePrecision: 4,
	}

	loop := compactor.NewLoop(handlers, invoker, faultSet,
		formula, cfg, reporter, rand.New(rand.NewSource(time.Now().UnixNano())))

	preprocessor.PruneCandidates(loop.Candidates(), sourceNames, func(msg string) { reporter.Warn(msg) })

	initial, err := loop.PreRun()
	if err != nil {
		logger.Fatal().Err(err).Msg("pre-run failed")
	}

	stats, err := compactor.NewCSVCompactionStatistics(fmt.Sprintf("a0_statistics_%s.csv", unique))
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to open statistics file")
	}
	defer stats.Close()

	if err := loop.Run(initial, settings.TimesToShuffle, stats); err != nil {
		logger.Fatal().Err(err).Msg("compaction loop failed")
	}

	loop.PostRun()
	return nil
}
