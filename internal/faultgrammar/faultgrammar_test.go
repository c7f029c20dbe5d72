package faultgrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFaultListStuckAt(t *testing.T) {
	source := `
		FaultList SAF {
			<  1> ON 0 {PORT "tb.dut.subunit_a.subunit_b.cellA.ZN"}(* "test1"->PC=30551073; "test1"->time="45ns"; *)
				-- 1 {PORT "tb.dut.subunit_a.subunit_b.cellA.A1"}
				-- 1 {PORT "tb.dut.subunit_a.subunit_b.cellA.A2"}
				-- 0 {PORT "tb.dut.subunit_a.subunit_b.operand_b[27:3]"}
		}
	`

	faults, err := ParseFaultList(source)
	require.NoError(t, err)
	require.Len(t, faults, 4)

	prime := faults[0]
	assert.Equal(t, "ON", prime.FaultStatus)
	assert.Equal(t, "0", prime.FaultType)
	assert.Equal(t, []string{"tb.dut.subunit_a.subunit_b.cellA.ZN"}, prime.FaultSites)
	assert.Equal(t, 4, prime.EquivalentFaults)
	assert.True(t, prime.IsPrime())
	assert.Equal(t, map[string]string{"PC": "30551073", "time": "45ns"}, prime.FaultAttributes)

	for _, member := range faults[1:] {
		assert.False(t, member.IsPrime())
		assert.Same(t, prime, member.EquivalentTo)
		assert.Nil(t, member.FaultAttributes)
	}
	assert.Equal(t, "1", faults[1].FaultType)
	assert.Equal(t, "0", faults[3].FaultType)
}

func TestParseFaultListTransitionDelay(t *testing.T) {
	source := `
		FaultList TDF {
			<  1> NN F {PORT "tb.dut.subunit_c.U1528.CI"}
			<  1> ON R {PORT "tb.dut.subunit_c.U1528.CO"}(* "test1"->PC_IF=00000d1c; "test1"->sim_time="   8905ns"; *)
				  -- R {PORT "tb.dut.subunit_c.U28.A"}
		}
	`

	faults, err := ParseFaultList(source)
	require.NoError(t, err)
	require.Len(t, faults, 3)

	assert.Equal(t, 1, faults[0].EquivalentFaults)
	assert.True(t, faults[0].IsPrime())

	assert.Equal(t, 2, faults[1].EquivalentFaults)
	assert.Equal(t, map[string]string{"PC_IF": "00000d1c", "sim_time": "8905ns"}, faults[1].FaultAttributes)
	assert.Same(t, faults[1], faults[2].EquivalentTo)
}

func TestParseFaultListSmallDelayDefects(t *testing.T) {
	source := `
		FaultList TDF {
			<  1> NN F (6.532ns) {PORT "tb.dut.subunit_c.U1528.CI"}
			<  1> ON ~ (6,4,26) {FLOP "tb.dut.subunit_d.reg_q[0]"}
				  -- ~ (1,2,3) {FLOP "tb.dut.subunit_d.reg_q[1]"}
		}
	`

	faults, err := ParseFaultList(source)
	require.NoError(t, err)
	require.Len(t, faults, 3)

	assert.Equal(t, []string{"6.532ns"}, faults[0].TimingInfo)
	assert.Equal(t, []string{"6", "4", "26"}, faults[1].TimingInfo)
	assert.Equal(t, "~", faults[1].FaultType)
	assert.Equal(t, []string{"1", "2", "3"}, faults[2].TimingInfo)
}

func TestParseStatusGroupsNoSeparators(t *testing.T) {
	source := `
		StatusGroups {
			SA "Safe" (UT, UB, UR, UU);
			DD "Dangerous Diagnosed" (PD, OD, ND, AD);
		}
	`

	groups, err := ParseStatusGroups(source)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "SA", groups[0].Code)
	assert.Equal(t, "Safe", groups[0].Label)
	assert.Equal(t, []string{"UT", "UB", "UR", "UU"}, groups[0].Members)
}

func TestParseStatusGroupsWithPrecedenceSeparators(t *testing.T) {
	source := `
		StatusGroups {
			SA "Safe" (UT < UB < UR UU);
		}
	`

	groups, err := ParseStatusGroups(source)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"UT", "UB", "UR", "UU"}, groups[0].Members)
}

func TestParseCoverageStrAndQuotedNames(t *testing.T) {
	source := `
		Coverage {
			Coverage_1 = "AA + BB + CC";
			"Coverage_2" = "(DD + DN)/(NA + DA + DN + DD + SU)";
		}
	`

	formulas, err := ParseCoverage(source)
	require.NoError(t, err)
	require.Len(t, formulas, 2)
	assert.Equal(t, CoverageFormula{Name: "Coverage_1", Expr: "AA + BB + CC"}, formulas[0])
	assert.Equal(t, CoverageFormula{Name: "Coverage_2", Expr: "(DD + DN)/(NA + DA + DN + DD + SU)"}, formulas[1])
}

func TestParseCoverageFormatSpecifiersAndPower(t *testing.T) {
	source := `
		Coverage {
			"Coverage_1" = "FLT(AA ^ BB ^ CC)";
			Coverage_2 = "PCT((DD + DN)/(NA + DA + DN + DD + SU))";
			Coverage_3 = "INT(FF+CC*2)";
		}
	`

	formulas, err := ParseCoverage(source)
	require.NoError(t, err)
	require.Equal(t, "(AA ** BB ** CC)", formulas[0].Expr)
	require.Equal(t, "((DD + DN)/(NA + DA + DN + DD + SU))", formulas[1].Expr)
	require.Equal(t, "(FF+CC*2)", formulas[2].Expr)
}

func TestParseFaultListUnexpectedTokenFails(t *testing.T) {
	_, err := ParseFaultList("FaultList SAF { garbage")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "FaultList", perr.Section)
}
