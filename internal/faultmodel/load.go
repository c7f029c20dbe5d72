package faultmodel

import (
	"os"

	"github.com/gmofishsauce/a0compact/internal/faultgrammar"
)

// LoadFaultReport reads a fault-report text resource (the sections
// accepted by internal/faultgrammar: FaultList, StatusGroups, Coverage,
// in any order) and returns an immutable FaultSet plus the parsed
// coverage formulae.
func LoadFaultReport(path string) (*FaultSet, []faultgrammar.CoverageFormula, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	faultListSrc, statusGroupsSrc, coverageSrc, err := faultgrammar.SplitSections(string(raw))
	if err != nil {
		return nil, nil, err
	}

	var faults []*faultgrammar.Fault
	if faultListSrc != "" {
		faults, err = faultgrammar.ParseFaultList(faultListSrc)
		if err != nil {
			return nil, nil, err
		}
	}

	var groups []faultgrammar.StatusGroup
	if statusGroupsSrc != "" {
		groups, err = faultgrammar.ParseStatusGroups(statusGroupsSrc)
		if err != nil {
			return nil, nil, err
		}
	}

	var formulae []faultgrammar.CoverageFormula
	if coverageSrc != "" {
		formulae, err = faultgrammar.ParseCoverage(coverageSrc)
		if err != nil {
			return nil, nil, err
		}
	}

	return New(faults, groups), formulae, nil
}
