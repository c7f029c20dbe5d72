// Package faultmodel represents parsed faults and status groups and
// evaluates coverage formulae over tallied fault counts.
package faultmodel

import "github.com/gmofishsauce/a0compact/internal/faultgrammar"

// TallyMode selects how equivalence classes are counted.
type TallyMode int

const (
	// TallyPrime counts each equivalence class once (its prime), the
	// default per spec.
	TallyPrime TallyMode = iota
	// TallyTotal counts every member of every equivalence class.
	TallyTotal
)

// FaultSet is an immutable view over a parsed fault list and its status
// groups, used to tally fault counts and evaluate coverage formulae.
type FaultSet struct {
	faults []*faultgrammar.Fault
	groups []faultgrammar.StatusGroup
}

// New builds a FaultSet from a parsed fault list and status-group
// declarations.
func New(faults []*faultgrammar.Fault, groups []faultgrammar.StatusGroup) *FaultSet {
	return &FaultSet{faults: faults, groups: groups}
}

// TallyByStatus returns, for each distinct fault_status code present in
// the set, the count of faults carrying it under the given TallyMode.
//
// TallyPrime counts one unit per equivalence class (a prime contributes
// 1 regardless of its class size; members are not counted at all) — this
// is the default used by coverage formula evaluation. TallyTotal counts
// physical faults: a prime contributes its full EquivalentFaults class
// size, which by the fault-list invariant (exactly N total entries per
// class of size N) equals counting every entry, prime and member alike.
func (fs *FaultSet) TallyByStatus(mode TallyMode) map[string]int {
	tally := make(map[string]int)
	for _, f := range fs.faults {
		if !f.IsPrime() {
			continue
		}
		switch mode {
		case TallyTotal:
			tally[f.FaultStatus] += max(f.EquivalentFaults, 1)
		default: // TallyPrime
			tally[f.FaultStatus]++
		}
	}
	return tally
}

// Faults exposes the parsed fault slice for collaborators, such as
// internal/tracedb, that need to inspect fault_attributes directly.
func (fs *FaultSet) Faults() []*faultgrammar.Fault { return fs.faults }

// AggregateGroup sums the tally of every status code belonging to the
// named status group. An unknown group yields 0.
func (fs *FaultSet) AggregateGroup(group string, mode TallyMode) int {
	tally := fs.TallyByStatus(mode)
	total := 0
	for _, g := range fs.groups {
		if g.Code != group {
			continue
		}
		for _, status := range g.Members {
			total += tally[status]
		}
	}
	return total
}
