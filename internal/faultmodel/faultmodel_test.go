package faultmodel

import (
	"testing"

	"github.com/gmofishsauce/a0compact/internal/faultgrammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFaults() []*faultgrammar.Fault {
	onPrime := &faultgrammar.Fault{FaultStatus: "ON", EquivalentFaults: 4}
	onMembers := []*faultgrammar.Fault{
		{FaultStatus: "ON", EquivalentTo: onPrime},
		{FaultStatus: "ON", EquivalentTo: onPrime},
		{FaultStatus: "ON", EquivalentTo: onPrime},
	}
	nnPrime := &faultgrammar.Fault{FaultStatus: "NN", EquivalentFaults: 2}
	nnMember := &faultgrammar.Fault{FaultStatus: "NN", EquivalentTo: nnPrime}

	faults := []*faultgrammar.Fault{onPrime}
	faults = append(faults, onMembers...)
	faults = append(faults, nnPrime, nnMember)
	return faults
}

func sampleGroups() []faultgrammar.StatusGroup {
	return []faultgrammar.StatusGroup{
		{Code: "DN", Label: "Dangerous Not Diagnosed", Members: []string{"ON"}},
		{Code: "SU", Label: "Safe Unobserved", Members: []string{"NN"}},
	}
}

func TestTallyByStatusPrimeVsTotal(t *testing.T) {
	fs := New(sampleFaults(), sampleGroups())

	prime := fs.TallyByStatus(TallyPrime)
	assert.Equal(t, 1, prime["ON"])
	assert.Equal(t, 1, prime["NN"])

	total := fs.TallyByStatus(TallyTotal)
	assert.Equal(t, 4, total["ON"])
	assert.Equal(t, 2, total["NN"])
}

func TestAggregateGroup(t *testing.T) {
	fs := New(sampleFaults(), sampleGroups())

	assert.Equal(t, 4, fs.AggregateGroup("DN", TallyTotal))
	assert.Equal(t, 2, fs.AggregateGroup("SU", TallyTotal))
	assert.Equal(t, 0, fs.AggregateGroup("UNKNOWN", TallyTotal))
}

func TestEvaluateCoverage(t *testing.T) {
	fs := New(sampleFaults(), sampleGroups())

	formula := faultgrammar.CoverageFormula{Name: "Coverage_1", Expr: "DN / (DN + SU)"}
	value, err := fs.EvaluateCoverage(formula, 4)
	require.NoError(t, err)

	// TallyPrime mode: DN=1 (one ON prime), SU=1 (one NN prime).
	assert.InDelta(t, 0.5, value, 1e-9)
}

func TestEvaluateCoveragePowerOperator(t *testing.T) {
	fs := New(sampleFaults(), sampleGroups())

	formula := faultgrammar.CoverageFormula{Name: "Coverage_2", Expr: "DN ** 2"}
	value, err := fs.EvaluateCoverage(formula, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, value, 1e-9)
}

func TestEvaluateCoverageUnknownSymbolFails(t *testing.T) {
	fs := New(sampleFaults(), sampleGroups())

	formula := faultgrammar.CoverageFormula{Name: "Bad", Expr: "NOPE + DN"}
	_, err := fs.EvaluateCoverage(formula, 4)
	require.Error(t, err)

	var covErr *CoverageError
	require.ErrorAs(t, err, &covErr)
}
