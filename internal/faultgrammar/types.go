// Package faultgrammar parses the vendor fault-report text formats: fault
// lists, status-group declarations and coverage-formula declarations.
package faultgrammar

import "fmt"

// Fault describes one simulated fault entry from a FaultList section.
//
// EquivalentFaults is set only on the prime of an equivalence class
// (>= 1, equal to the class size). EquivalentTo points at the prime for
// every other member of the class and is nil otherwise.
type Fault struct {
	FaultStatus     string
	FaultType       string
	TimingInfo      []string
	FaultSites      []string
	FaultAttributes map[string]string

	EquivalentFaults int
	EquivalentTo     *Fault
}

// IsPrime reports whether this fault is the representative of its
// equivalence class.
func (f *Fault) IsPrime() bool {
	return f.EquivalentTo == nil
}

// StatusGroup is one named aggregation of fault-status codes, in the
// order the source declared its members (precedence separators "<" are
// accepted but dropped).
type StatusGroup struct {
	Code    string
	Label   string
	Members []string
}

// CoverageFormula is one named arithmetic expression over status-group
// symbols. Expr has already had any outermost FLT|PCT|INT(...) wrapper
// stripped and "^" rewritten to "**".
type CoverageFormula struct {
	Name string
	Expr string
}

// ParseError is raised when a section's grammar rejects the input. It
// names the section kind and, where available, the offending line.
type ParseError struct {
	Section string
	Line    int
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Section, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
