// Package resolver maps a program counter back to the source file and
// line number that produced it, shelling out to an addr2line-style
// binary (an external collaborator, not reimplemented here).
package resolver

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Addr2Line invokes a configured addr2line-compatible binary per
// lookup. It satisfies tracedb.Resolver.
type Addr2Line struct {
	// BinaryPath is the addr2line-compatible executable, e.g.
	// "riscv32-unknown-elf-addr2line".
	BinaryPath string
}

// NewAddr2Line returns an Addr2Line using binaryPath.
func NewAddr2Line(binaryPath string) *Addr2Line {
	return &Addr2Line{BinaryPath: binaryPath}
}

// Resolve runs "<binary> -e <elf> -f -C <pc>" and parses its two-line
// output (function name, then "file:line").
func (a *Addr2Line) Resolve(elf, pc string) (sourceFile string, lineNo int, err error) {
	cmd := exec.Command(a.BinaryPath, "-e", elf, "-f", "-C", pc)
	out, err := cmd.Output()
	if err != nil {
		return "", 0, fmt.Errorf("resolver: %s -e %s %s: %w", a.BinaryPath, elf, pc, err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return "", 0, fmt.Errorf("resolver: unexpected output for pc %s: %q", pc, string(out))
	}

	location := lines[1]
	idx := strings.LastIndex(location, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("resolver: could not parse location %q", location)
	}

	file := location[:idx]
	line, err := strconv.Atoi(location[idx+1:])
	if err != nil || file == "?" {
		return "", 0, nil
	}

	return file, line, nil
}
