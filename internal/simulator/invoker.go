package simulator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// defaultSuccessRegexp matches the $finish banner VCS/Xcelium emit when a
// logic simulation terminates normally, capturing the simulated time in
// nanoseconds as the test application time.
var defaultSuccessRegexp = regexp.MustCompile(`\$finish at simulation time\s+(\d+)ns`)

// Invoker runs the external assembler, HDL compiler and simulator as
// child processes and classifies their outcomes. It also tracks the
// process group of every child it has started, so a caller can reap
// stragglers left behind by a misbehaving simulator invocation without
// guessing at pids.
type Invoker struct {
	mu     sync.Mutex
	groups map[int]struct{}
}

// NewInvoker returns a ready-to-use Invoker.
func NewInvoker() *Invoker { return &Invoker{groups: make(map[int]struct{})} }

// Execute runs command in a shell, waiting up to timeout (0 means no
// limit) before killing the whole process group. On timeout both
// returned strings are the TimeoutExpired sentinel, matching the
// external collaborator's own convention. err carries the child's exit
// error (nil on a clean zero-status exit); it is always nil on timeout,
// since the sentinel strings already communicate that outcome.
func (inv *Invoker) Execute(command string, timeout time.Duration) (stdout, stderr string, err error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.SysProcAttr = setpgidAttr()

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if startErr := cmd.Start(); startErr != nil {
		return "", startErr.Error(), startErr
	}

	pgid := cmd.Process.Pid
	inv.trackGroup(pgid)
	defer inv.untrackGroup(pgid)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		killProcessGroup(pgid)
		<-done
		return TimeoutExpired, TimeoutExpired, nil
	case waitErr := <-done:
		return outBuf.String(), errBuf.String(), waitErr
	}
}

func (inv *Invoker) trackGroup(pgid int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.groups[pgid] = struct{}{}
}

func (inv *Invoker) untrackGroup(pgid int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	delete(inv.groups, pgid)
}

// Reap sends SIGTERM to every process group started by this Invoker
// that has not already finished, then forgets them. Grounded on the
// original tool's reap_process_tree(os.getpid()) cleanup call, but
// targeting the actual child groups this Invoker spawned rather than
// assuming anything about the caller's own process group.
func (inv *Invoker) Reap() {
	inv.mu.Lock()
	pgids := make([]int, 0, len(inv.groups))
	for pgid := range inv.groups {
		pgids = append(pgids, pgid)
	}
	inv.groups = make(map[int]struct{})
	inv.mu.Unlock()

	for _, pgid := range pgids {
		syscall.Kill(-pgid, syscall.SIGTERM)
	}
}

func killProcessGroup(pid int) {
	syscall.Kill(-pid, syscall.SIGKILL)
}

// CompileAssembly runs the assembler toolchain and reports success iff
// it exits zero with empty stderr.
func (inv *Invoker) CompileAssembly(command string, timeout time.Duration) bool {
	_, stderr, err := inv.Execute(command, timeout)
	return err == nil && stderr == ""
}

// CompileSources runs the HDL compilation step. Any stderr output is
// classified as a compilation error.
func (inv *Invoker) CompileSources(command string, timeout time.Duration) Compilation {
	_, stderr, _ := inv.Execute(command, timeout)
	if stderr != "" {
		return CompilationError
	}
	return CompilationSuccess
}

// LogicSimulateOptions controls success classification and TaT capture
// for a logic-simulation run. SuccessRegexp defaults to the $finish
// banner matcher when nil. TatRegexpCaptureGroup selects which capture
// group of the match holds the test application time.
type LogicSimulateOptions struct {
	SuccessRegexp         *regexp.Regexp
	TatRegexpCaptureGroup int
	Timeout               time.Duration
}

// LogicSimulate runs the logic simulator and classifies the result. On
// SUCCESS it returns the captured test application time; callers that
// passed a mismatching regexp or a non-numeric capture group receive a
// LogicSimulationError instead, since both indicate a configuration
// mistake rather than a simulation failure.
func (inv *Invoker) LogicSimulate(command string, opts LogicSimulateOptions) (LogicSimulation, int, error) {
	stdout, stderr, _ := inv.Execute(command, opts.Timeout)

	if stdout == TimeoutExpired && stderr == TimeoutExpired {
		return LogicSimulationTimeout, 0, nil
	}
	if stderr != "" {
		return LogicSimulationSimError, 0, nil
	}

	successRegexp := opts.SuccessRegexp
	if successRegexp == nil {
		successRegexp = defaultSuccessRegexp
	}

	match := successRegexp.FindStringSubmatch(stdout)
	if match == nil {
		return 0, 0, &LogicSimulationError{
			Kind: NoMatch,
			Msg: fmt.Sprintf("simulation status was not set during the execution of %q. "+
				"Is your regular expression correct? Check the debug log for more information", command),
		}
	}

	group := opts.TatRegexpCaptureGroup
	if group <= 0 || group >= len(match) {
		group = len(match) - 1
	}

	tat, err := strconv.Atoi(match[group])
	if err != nil {
		return 0, 0, &LogicSimulationError{
			Kind: BadTat,
			Msg: fmt.Sprintf("test application time was not correctly captured %q and could not be "+
				"converted to an integer. Perhaps there is something wrong with your regular expression %q",
				match[group], successRegexp.String()),
		}
	}

	return LogicSimulationSuccess, tat, nil
}

// FaultSimulate runs the fault simulator and classifies the result.
func (inv *Invoker) FaultSimulate(command string, timeout time.Duration) FaultSimulation {
	stdout, stderr, _ := inv.Execute(command, timeout)
	if stdout == TimeoutExpired && stderr == TimeoutExpired {
		return FaultSimulationTimeout
	}
	if stderr != "" {
		return FaultSimulationError
	}
	return FaultSimulationSuccess
}

// CreateFCMScript writes a fault-campaign-manager TCL script, one
// directive per line in insertion order. Directives is an ordered list
// of (command, args) pairs; a later pair with a command already seen
// overwrites the earlier line in place rather than appending, matching
// how a Python dict literal with a duplicate key collapses to its last
// value.
func (inv *Invoker) CreateFCMScript(path string, directives []FCMDirective) error {
	order := make([]string, 0, len(directives))
	lines := make(map[string]string, len(directives))
	for _, d := range directives {
		if _, seen := lines[d.Command]; !seen {
			order = append(order, d.Command)
		}
		lines[d.Command] = fmt.Sprintf("%s %s", d.Command, d.Args)
	}

	var buf strings.Builder
	for _, command := range order {
		buf.WriteString(lines[command])
		buf.WriteByte('\n')
	}

	return writeFile(path, buf.String())
}

// FCMDirective is one ordered (command, args) pair for CreateFCMScript.
type FCMDirective struct {
	Command string
	Args    string
}
