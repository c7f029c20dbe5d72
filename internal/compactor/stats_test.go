package compactor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVCompactionStatisticsWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")

	stats, err := NewCSVCompactionStatistics(path)
	require.NoError(t, err)

	require.NoError(t, stats.Append(IterationStats{
		AsmSource:       "test1.S",
		RemovedCodeline: "3",
		Compiles:        "YES",
		LsimOk:          "YES",
		Tat:             "48209",
		FsimOk:          "YES",
		Coverage:        "0.9758",
		Verdict:         "Proceed",
	}))
	require.NoError(t, stats.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := "asm_source,removed_codeline,compiles,lsim_ok,tat,fsim_ok,coverage,verdict\n" +
		"test1.S,3,YES,YES,48209,YES,0.9758,Proceed\n"
	assert.Equal(t, expected, string(data))
}
