// Package asmhandler holds an in-memory line view of an assembly source
// file and lets the compaction loop remove and restore lines with
// byte-identical round trips back to disk.
package asmhandler

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

/* Codeline identifies a single line of a single assembly source by its
index into the set of handlers the loop manages. */
type Codeline struct {
	AssemblyID int
	LineIndex  int
}

type undoRecord struct {
	lineIndex int
	text      string
}

/* Handler is a mutable, undoable line view of one assembly file. */
type Handler struct {
	AssemblyID int
	path       string
	lines      []string
	undo       []undoRecord
}

/* Load reads path into a fresh Handler. */
func Load(assemblyID int, path string) (*Handler, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	h := &Handler{
		AssemblyID: assemblyID,
		path:       path,
		lines:      make([]string, 0, 1024),
		undo:       make([]undoRecord, 0, 64),
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		h.lines = append(h.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return h, nil
}

/* GetCode returns every present (non-removed) line as a Codeline. */
func (h *Handler) GetCode() []Codeline {
	codelines := make([]Codeline, 0, len(h.lines))
	for i, line := range h.lines {
		if line == removedMarker {
			continue
		}
		codelines = append(codelines, Codeline{AssemblyID: h.AssemblyID, LineIndex: i})
	}
	return codelines
}

/* removedMarker replaces a removed line's text in place, keeping every
other line's index stable across removals. */
const removedMarker = "\x00removed\x00"

/* Remove blanks codeline's line, pushes its prior text onto the undo
stack, and flushes the file to disk. */
func (h *Handler) Remove(codeline Codeline) error {
	if codeline.LineIndex < 0 || codeline.LineIndex >= len(h.lines) {
		return fmt.Errorf("asmhandler: line index %d out of range for %s", codeline.LineIndex, h.path)
	}

	h.undo = append(h.undo, undoRecord{lineIndex: codeline.LineIndex, text: h.lines[codeline.LineIndex]})
	h.lines[codeline.LineIndex] = removedMarker
	return h.flush()
}

/* Restore pops the most recent Remove and writes its text back in
place, then flushes the file to disk. Restoring with nothing on the undo
stack is a programmer error and panics. */
func (h *Handler) Restore() {
	if len(h.undo) == 0 {
		panic("asmhandler: Restore called with an empty undo stack")
	}

	last := len(h.undo) - 1
	record := h.undo[last]
	h.undo = h.undo[:last]
	h.lines[record.lineIndex] = record.text

	if err := h.flush(); err != nil {
		panic(fmt.Sprintf("asmhandler: flush on restore failed: %v", err))
	}
}

/* UndoDepth reports how many removals are pending restoration. */
func (h *Handler) UndoDepth() int { return len(h.undo) }

/* SourcePath returns the filesystem path this handler was loaded from. */
func (h *Handler) SourcePath() string { return h.path }

func (h *Handler) flush() error {
	var buf strings.Builder
	for _, line := range h.lines {
		if line == removedMarker {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(h.path, []byte(buf.String()), 0o644)
}
