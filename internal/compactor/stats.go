package compactor

import (
	"encoding/csv"
	"fmt"
	"os"
)

// statsHeader is the fixed column order for the per-run CSV log.
var statsHeader = []string{
	"asm_source", "removed_codeline", "compiles", "lsim_ok", "tat", "fsim_ok", "coverage", "verdict",
}

// IterationStats is one row of the compaction run log.
type IterationStats struct {
	AsmSource      string
	RemovedCodeline string
	Compiles       string
	LsimOk         string
	Tat            string
	FsimOk         string
	Coverage       string
	Verdict        string
}

func (s IterationStats) isEmpty() bool {
	return s == IterationStats{}
}

func (s IterationStats) row() []string {
	return []string{s.AsmSource, s.RemovedCodeline, s.Compiles, s.LsimOk, s.Tat, s.FsimOk, s.Coverage, s.Verdict}
}

// CSVCompactionStatistics writes one row per iteration to a CSV file,
// flushing after every row so a killed run still leaves a readable log.
//
// encoding/csv is stdlib, used deliberately: the row shape is fixed and
// flat, and no library anywhere in the retrieved pack brings in a CSV
// writer of its own.
type CSVCompactionStatistics struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVCompactionStatistics creates output and writes the header row.
func NewCSVCompactionStatistics(output string) (*CSVCompactionStatistics, error) {
	file, err := os.Create(output)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(file)
	if err := w.Write(statsHeader); err != nil {
		file.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return nil, err
	}

	return &CSVCompactionStatistics{file: file, writer: w}, nil
}

// Append writes row and flushes immediately.
func (c *CSVCompactionStatistics) Append(row IterationStats) error {
	if err := c.writer.Write(row.row()); err != nil {
		return fmt.Errorf("compactor: writing stats row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close releases the underlying file.
func (c *CSVCompactionStatistics) Close() error { return c.file.Close() }
