// Package tracedb materialises a preprocessed trace into a SQLite
// database file, a deliverable output artifact, and answers windowed
// lookups used to prune from the compaction candidates the assembly
// lines that the fault report's attribute trail (e.g. the PC at which a
// fault was detected) resolves back to.
package tracedb

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/gmofishsauce/a0compact/internal/asmhandler"
	"github.com/gmofishsauce/a0compact/internal/faultgrammar"
)

// indexThreshold is the row count above which PC and time indices are
// worth the build cost.
const indexThreshold = 2000

// traceDBPath is the on-disk SQLite file a compaction run leaves behind,
// mirroring the original tool's _trace_db deliverable.
const traceDBPath = ".trace.db"

// Resolver maps a program counter back to the source file and 1-based
// line number that produced it, an external collaborator typically
// backed by an addr2line-style binary.
type Resolver interface {
	Resolve(elf, pc string) (sourceFile string, lineNo int, err error)
}

// Preprocessor owns the ephemeral trace table built from a vendor trace
// already normalised by internal/tracegrammar, plus enough fault-model
// context to prune compaction candidates.
type Preprocessor struct {
	db           *sql.DB
	columns      []string
	elf          string
	zoixToTrace  map[string]string
	faultList    []*faultgrammar.Fault
	resolver     Resolver
	pcColumnName string
}

// NewPreprocessor builds the trace table in traceDBPath from trace (the
// header row followed by data rows, as produced by a tracegrammar
// Transformer), indexing it once row count passes indexThreshold. Any
// stale database left over from a previous run is removed first.
func NewPreprocessor(
	trace []string,
	faultList []*faultgrammar.Fault,
	elf string,
	zoixToTrace map[string]string,
	resolver Resolver,
	pcColumnName string,
) (*Preprocessor, error) {
	if len(trace) == 0 {
		return nil, fmt.Errorf("tracedb: empty trace")
	}

	if err := os.Remove(traceDBPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	db, err := sql.Open("sqlite", traceDBPath)
	if err != nil {
		return nil, err
	}

	columns := strings.Split(trace[0], ",")

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	createStmt := fmt.Sprintf("CREATE TABLE trace(%s)", strings.Join(quoted, ", "))
	if _, err := db.Exec(createStmt); err != nil {
		db.Close()
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(trace[1:], "\n")))
	reader.FieldsPerRecord = len(columns)
	rows, err := reader.ReadAll()
	if err != nil {
		db.Close()
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO trace VALUES (%s)", placeholders)

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}
	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}
	for _, row := range rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if _, err := stmt.Exec(values...); err != nil {
			stmt.Close()
			tx.Rollback()
			db.Close()
			return nil, err
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, err
	}

	if len(rows) >= indexThreshold {
		for _, col := range []string{pcColumnName, "Time"} {
			if !containsString(columns, col) {
				continue
			}
			if _, err := db.Exec(fmt.Sprintf("CREATE INDEX idx_trace_%s ON trace(%q)", col, col)); err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	return &Preprocessor{
		db:           db,
		columns:      columns,
		elf:          elf,
		zoixToTrace:  zoixToTrace,
		faultList:    faultList,
		resolver:     resolver,
		pcColumnName: pcColumnName,
	}, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Close releases the database handle; the .trace.db file itself is left
// in place as a deliverable output artifact.
func (p *Preprocessor) Close() error { return p.db.Close() }

// Query returns, for every row matching where, the history consecutive
// rows ending at that row (ascending order), projected onto select (a
// single column name or "*"). Windows for distinct matches are
// concatenated in the order the matches were found.
func (p *Preprocessor) Query(selectCol string, where map[string]string, history int, allowMultiple bool) ([][]string, error) {
	if p.db == nil {
		return nil, &TraceQueryError{Kind: NotInitialised}
	}

	columns := make([]string, 0, len(where))
	values := make([]interface{}, 0, len(where))
	for col, val := range where {
		columns = append(columns, col)
		values = append(values, val)
	}

	conditions := make([]string, len(columns))
	for i, col := range columns {
		conditions[i] = fmt.Sprintf("%q = ?", col)
	}

	findQuery := fmt.Sprintf("SELECT ROWID FROM trace WHERE %s", strings.Join(conditions, " AND "))
	rowidRows, err := p.db.Query(findQuery, values...)
	if err != nil {
		return nil, err
	}

	var rowids []int64
	for rowidRows.Next() {
		var rowid int64
		if err := rowidRows.Scan(&rowid); err != nil {
			rowidRows.Close()
			return nil, err
		}
		rowids = append(rowids, rowid)
	}
	rowidRows.Close()

	if len(rowids) == 0 {
		return nil, &TraceQueryError{Kind: NotFound, Where: where}
	}
	if len(rowids) > 1 && !allowMultiple {
		return nil, &TraceQueryError{Kind: Ambiguous, Where: where}
	}

	projection := "*"
	if selectCol != "*" {
		projection = fmt.Sprintf("%q", selectCol)
	}
	windowQuery := fmt.Sprintf(
		"SELECT %s FROM trace WHERE ROWID <= ? ORDER BY ROWID DESC LIMIT ?",
		projection,
	)

	var result [][]string
	for _, rowid := range rowids {
		rows, err := p.db.Query(windowQuery, rowid, history)
		if err != nil {
			return nil, err
		}

		window, err := scanRows(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}

		reverse(window)
		result = append(result, window...)
	}

	return result, nil
}

func scanRows(rows *sql.Rows) ([][]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]string
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make([]string, len(cols))
		for i, v := range raw {
			row[i] = fmt.Sprintf("%v", v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func reverse(rows [][]string) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// PruneCandidates removes from candidates every codeline that the fault
// simulator's attribute trail resolves back to, per spec: collect
// distinct attribute tuples translated through zoixToTrace, window-query
// the trace for PC with history 4, resolve every PC through the
// resolver, and drop matching (assembly_id, line_index) pairs. Failed
// windows and unmapped source files are skipped, never fatal.
func (p *Preprocessor) PruneCandidates(candidates *[]asmhandler.Codeline, pathMap map[string]int, warn func(string)) {
	var attributeSets []map[string]string
	for _, f := range p.faultList {
		if f.FaultAttributes == nil {
			continue
		}
		entry := make(map[string]string, len(p.zoixToTrace))
		for zoixKey, traceCol := range p.zoixToTrace {
			entry[traceCol] = f.FaultAttributes[zoixKey]
		}
		if !containsAttrSet(attributeSets, entry) {
			attributeSets = append(attributeSets, entry)
		}
	}

	var windows [][]string
	for _, entry := range attributeSets {
		window, err := p.Query(p.pcColumnName, entry, 4, false)
		if err != nil {
			continue
		}
		windows = append(windows, flattenPCs(window))
	}

	var pcs []string
	for _, window := range windows {
		pcs = append(pcs, window...)
	}

	removedLines := make(map[int]bool)
	for _, pc := range pcs {
		sourceFile, lineNo, err := p.resolver.Resolve(p.elf, pc)
		if err != nil || sourceFile == "" {
			if warn != nil {
				warn(fmt.Sprintf("program counter %s not found in %s", pc, p.elf))
			}
			continue
		}

		assemblyID, ok := pathMap[sourceFile]
		if !ok {
			if warn != nil {
				warn(fmt.Sprintf("PC value %s maps to line %d of %s which isn't in asm sources. Skipping.", pc, lineNo, sourceFile))
			}
			continue
		}

		if removedLines[lineNo] {
			if warn != nil {
				warn(fmt.Sprintf("line %d has already been removed. Skipping.", lineNo))
			}
			continue
		}

		before := len(*candidates)
		filtered := (*candidates)[:0]
		for _, c := range *candidates {
			if c.AssemblyID == assemblyID && c.LineIndex == lineNo-1 {
				continue
			}
			filtered = append(filtered, c)
		}
		*candidates = filtered

		if len(*candidates) != before {
			removedLines[lineNo] = true
		}
	}
}

func containsAttrSet(sets []map[string]string, candidate map[string]string) bool {
	for _, s := range sets {
		if len(s) != len(candidate) {
			continue
		}
		match := true
		for k, v := range candidate {
			if s[k] != v {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func flattenPCs(window [][]string) []string {
	pcs := make([]string, 0, len(window))
	for _, row := range window {
		if len(row) > 0 {
			pcs = append(pcs, row[0])
		}
	}
	return pcs
}
