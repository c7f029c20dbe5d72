package asmhandler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestAsm(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test1.S")
	contents := "li x9, 0\nlui x8, 0x8\naddi x8, x8, -1\nand x8, x8, x9\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestGetCodeEnumeratesEveryLine(t *testing.T) {
	path := writeTestAsm(t)
	h, err := Load(0, path)
	require.NoError(t, err)

	codelines := h.GetCode()
	require.Len(t, codelines, 4)
	assert.Equal(t, Codeline{AssemblyID: 0, LineIndex: 0}, codelines[0])
	assert.Equal(t, Codeline{AssemblyID: 0, LineIndex: 3}, codelines[3])
}

func TestRemoveThenRestoreIsByteIdentical(t *testing.T) {
	path := writeTestAsm(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	h, err := Load(0, path)
	require.NoError(t, err)

	require.NoError(t, h.Remove(Codeline{AssemblyID: 0, LineIndex: 2}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, string(before), string(after))
	assert.NotContains(t, string(after), "addi x8, x8, -1")

	h.Restore()

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(restored))
	assert.Equal(t, 0, h.UndoDepth())
}

func TestRemoveShrinksGetCode(t *testing.T) {
	path := writeTestAsm(t)
	h, err := Load(0, path)
	require.NoError(t, err)

	require.NoError(t, h.Remove(Codeline{AssemblyID: 0, LineIndex: 1}))

	codelines := h.GetCode()
	require.Len(t, codelines, 3)
	for _, c := range codelines {
		assert.NotEqual(t, 1, c.LineIndex)
	}
}

func TestRestoreOnEmptyStackPanics(t *testing.T) {
	path := writeTestAsm(t)
	h, err := Load(0, path)
	require.NoError(t, err)

	assert.Panics(t, func() { h.Restore() })
}

func TestUndoStackDiscipline(t *testing.T) {
	path := writeTestAsm(t)
	h, err := Load(0, path)
	require.NoError(t, err)

	require.NoError(t, h.Remove(Codeline{AssemblyID: 0, LineIndex: 0}))
	require.NoError(t, h.Remove(Codeline{AssemblyID: 0, LineIndex: 3}))
	assert.Equal(t, 2, h.UndoDepth())

	h.Restore()
	assert.Equal(t, 1, h.UndoDepth())
	assert.Len(t, h.GetCode(), 3)

	h.Restore()
	assert.Equal(t, 0, h.UndoDepth())
	assert.Len(t, h.GetCode(), 4)
}
