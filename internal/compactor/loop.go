// Package compactor implements the A0 greedy compaction loop: for every
// candidate line, in shuffled order, try removing it and keep the
// removal only if the STL still compiles, still simulates, and its new
// (TaT, coverage) is no worse than the best known so far.
package compactor

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gmofishsauce/a0compact/internal/asmhandler"
	"github.com/gmofishsauce/a0compact/internal/faultgrammar"
	"github.com/gmofishsauce/a0compact/internal/faultmodel"
	"github.com/gmofishsauce/a0compact/internal/simulator"
)

// Stats is the (test application time, coverage) pair compared across
// iterations.
type Stats struct {
	Tat      int
	Coverage float64
}

// Evaluate reports whether newResult is no worse than previous: equal
// or lower TaT and equal or higher coverage.
func Evaluate(previous, newResult Stats) bool {
	return newResult.Tat <= previous.Tat && newResult.Coverage >= previous.Coverage
}

// Config bundles every external-process command and control parameter
// the loop needs, normally sourced from internal/config.Settings.
type Config struct {
	AssemblyCompileCommand string
	AssemblyCompileTimeout time.Duration

	VCSCompileCommand string
	VCSCompileTimeout time.Duration

	VCSLsimCommand string
	LsimOptions    simulator.LogicSimulateOptions

	VCSFsimCommand string
	FsimTimeout    time.Duration

	CoveragePrecision int
}

// Reporter receives human-facing progress lines; cmd/a0 wires this to
// zerolog.
type Reporter interface {
	Info(msg string)
	Warn(msg string)
	Critical(msg string)
}

// Loop owns every assembly handler, the flattened candidate sequence,
// the simulator invoker, the fault model, and the run's statistics
// writer.
type Loop struct {
	handlers  []*asmhandler.Handler
	candidates []asmhandler.Codeline

	invoker  *simulator.Invoker
	faultSet *faultmodel.FaultSet
	formula  faultgrammar.CoverageFormula

	cfg      Config
	reporter Reporter
	rng      *rand.Rand
}

// NewLoop builds a Loop over handlers, flattening their current live
// lines into the candidate sequence.
func NewLoop(
	handlers []*asmhandler.Handler,
	invoker *simulator.Invoker,
	faultSet *faultmodel.FaultSet,
	formula faultgrammar.CoverageFormula,
	cfg Config,
	reporter Reporter,
	rng *rand.Rand,
) *Loop {
	var candidates []asmhandler.Codeline
	for _, h := range handlers {
		candidates = append(candidates, h.GetCode()...)
	}

	return &Loop{
		handlers:   handlers,
		candidates: candidates,
		invoker:    invoker,
		faultSet:   faultSet,
		formula:    formula,
		cfg:        cfg,
		reporter:   reporter,
		rng:        rng,
	}
}

// Candidates exposes the current candidate sequence, e.g. so a caller
// can run tracedb.Preprocessor.PruneCandidates against it before Run.
func (l *Loop) Candidates() *[]asmhandler.Codeline { return &l.candidates }

func (l *Loop) coverage() (float64, error) {
	return l.faultSet.EvaluateCoverage(l.formula, l.cfg.CoveragePrecision)
}

// PreRun measures the STL's initial test application time and coverage
// before any candidate is removed.
func (l *Loop) PreRun() (Stats, error) {
	if l.cfg.VCSCompileCommand != "" {
		comp := l.invoker.CompileSources(l.cfg.VCSCompileCommand, l.cfg.VCSCompileTimeout)
		if comp == simulator.CompilationError {
			return Stats{}, fmt.Errorf("compactor: unable to compile HDL sources")
		}
	}

	l.reporter.Info("Initial logic simulation for TaT computation.")
	lsim, tat, err := l.invoker.LogicSimulate(l.cfg.VCSLsimCommand, l.cfg.LsimOptions)
	if err != nil {
		return Stats{}, fmt.Errorf("compactor: unable to perform logic simulation for TaT computation: %w", err)
	}
	if lsim != simulator.LogicSimulationSuccess {
		return Stats{}, fmt.Errorf("compactor: error during initial logic simulation: %s", lsim)
	}

	l.reporter.Info("Initial fault simulation for coverage computation.")
	fsim := l.invoker.FaultSimulate(l.cfg.VCSFsimCommand, l.cfg.FsimTimeout)
	if fsim != simulator.FaultSimulationSuccess {
		return Stats{}, fmt.Errorf("compactor: error during initial fault simulation: %s", fsim)
	}

	coverage, err := l.coverage()
	if err != nil {
		return Stats{}, err
	}

	return Stats{Tat: tat, Coverage: coverage}, nil
}

// Run executes the main compaction loop: shuffle the candidates
// timesToShuffle times, then greedily remove each one, restoring on any
// regression, recording one IterationStats row per settled candidate.
func (l *Loop) Run(initial Stats, timesToShuffle int, stats *CSVCompactionStatistics) error {
	for i := 0; i < timesToShuffle; i++ {
		l.rng.Shuffle(len(l.candidates), func(a, b int) {
			l.candidates[a], l.candidates[b] = l.candidates[b], l.candidates[a]
		})
	}

	old := initial
	total := len(l.candidates)

	for len(l.candidates) > 0 {
		codeline := l.candidates[0]
		l.candidates = l.candidates[1:]

		l.reporter.Info(fmt.Sprintf("ITERATION %d / %d", total-len(l.candidates), total))

		row := IterationStats{
			AsmSource:       "",
			RemovedCodeline: strconv.Itoa(codeline.LineIndex),
		}

		handler := l.handlers[codeline.AssemblyID]
		row.AsmSource = filepath.Base(handler.SourcePath())

		if err := handler.Remove(codeline); err != nil {
			return err
		}

		asmCompiles := l.invoker.CompileAssembly(l.cfg.AssemblyCompileCommand, l.cfg.AssemblyCompileTimeout)
		if !asmCompiles {
			l.reporter.Warn(fmt.Sprintf("%s does not compile after removing line %d. Restoring.", row.AsmSource, codeline.LineIndex))
			row.Compiles = "NO"
			row.Verdict = "Restore"
			handler.Restore()
			if err := stats.Append(row); err != nil {
				return err
			}
			continue
		}
		row.Compiles = "YES"

		if l.cfg.VCSCompileCommand != "" {
			comp := l.invoker.CompileSources(l.cfg.VCSCompileCommand, l.cfg.VCSCompileTimeout)
			if comp == simulator.CompilationError {
				return fmt.Errorf("compactor: unable to compile HDL sources")
			}
		}

		lsim, tat, err := l.invoker.LogicSimulate(l.cfg.VCSLsimCommand, l.cfg.LsimOptions)
		if err != nil {
			return fmt.Errorf("compactor: unable to perform logic simulation: %w", err)
		}
		if lsim != simulator.LogicSimulationSuccess {
			l.reporter.Warn(fmt.Sprintf("logic simulation of %s resulted in %s after removing line %d. Restoring.",
				row.AsmSource, lsim, codeline.LineIndex))
			row.LsimOk = "NO-" + lsim.String()
			row.Verdict = "Restore"
			handler.Restore()
			if err := stats.Append(row); err != nil {
				return err
			}
			continue
		}
		row.LsimOk = "YES"
		row.Tat = strconv.Itoa(tat)

		fsim := l.invoker.FaultSimulate(l.cfg.VCSFsimCommand, l.cfg.FsimTimeout)
		if fsim != simulator.FaultSimulationSuccess {
			l.reporter.Warn(fmt.Sprintf("fault simulation of %s resulted in %s after removing line %d. Restoring.",
				row.AsmSource, fsim, codeline.LineIndex))
			row.FsimOk = "NO-" + fsim.String()
			row.Verdict = "Restore"
			handler.Restore()
			if err := stats.Append(row); err != nil {
				return err
			}
			continue
		}
		row.FsimOk = "YES"

		coverage, err := l.coverage()
		if err != nil {
			return err
		}
		row.Coverage = strconv.FormatFloat(coverage, 'f', -1, 64)

		newStats := Stats{Tat: tat, Coverage: coverage}
		if Evaluate(old, newStats) {
			l.reporter.Info(fmt.Sprintf("STL improved: old TaT %d / coverage %.4f -> new TaT %d / coverage %.4f. Proceeding.",
				old.Tat, old.Coverage, newStats.Tat, newStats.Coverage))
			old = newStats
			row.Verdict = "Proceed"
		} else {
			l.reporter.Info(fmt.Sprintf("STL regressed: old TaT %d / coverage %.4f -> new TaT %d / coverage %.4f. Restoring.",
				old.Tat, old.Coverage, newStats.Tat, newStats.Coverage))
			row.Verdict = "Restore"
			handler.Restore()
		}

		if err := stats.Append(row); err != nil {
			return err
		}
	}

	return nil
}
