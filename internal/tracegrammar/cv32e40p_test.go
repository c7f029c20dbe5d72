package tracegrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCV32E40PDocExample(t *testing.T) {
	raw := `Time          Cycle      PC       Instr    Decoded instruction Register and memory contents
130         61 00000150 4481     c.li    x9,0        x9=0x00000000
132         62 00000152 00008437 lui     x8,0x8      x8=0x00008000
134         63 00000156 fff40413 addi    x8,x8,-1    x8:0x00008000  x8=0x00007fff
136         64 0000015a 8c65     c.and   x8,x9       x8:0x00007fff  x9:0x00000000  x8=0x00000000
142         67 0000015c c622     c.swsp  x8,12(x2)   x2:0x00002000  x8:0x00000000 PA:0x0000200c store:0x00000000  load:0xffffffff
`

	tr := &CV32E40PTransformer{}
	lines, err := tr.Parse(raw)
	require.NoError(t, err)

	expected := []string{
		Header,
		`130,61,00000150,4481,"c.li x9,0","x9=0x00000000"`,
		`132,62,00000152,00008437,"lui x8,0x8","x8=0x00008000"`,
		`134,63,00000156,fff40413,"addi x8,x8,-1","x8:0x00008000, x8=0x00007fff"`,
		`136,64,0000015a,8c65,"c.and x8,x9","x8:0x00007fff, x9:0x00000000, x8=0x00000000"`,
		`142,67,0000015c,c622,"c.swsp x8,12(x2)","x2:0x00002000, x8:0x00000000, PA:0x0000200c, store:0x00000000, load:0xffffffff"`,
	}
	assert.Equal(t, expected, lines)
}

func TestCV32E40PNoRegAndMemSegment(t *testing.T) {
	raw := `Time    Cycle   PC  Instr   Decoded instruction Register and memory contents
925ns              88 00000e3a 00000613 c.addi           x12,  x0, 0
935ns              89 00000e3c 00000513 c.addi           x10,  x0, 0
`
	tr := &CV32E40PTransformer{}
	lines, err := tr.Parse(raw)
	require.NoError(t, err)

	expected := []string{
		Header,
		`925ns,88,00000e3a,00000613,"c.addi x12, x0, 0",""`,
		`935ns,89,00000e3c,00000513,"c.addi x10, x0, 0",""`,
	}
	assert.Equal(t, expected, lines)
}

func TestCV32E40PNoOperandsNoRegMem(t *testing.T) {
	raw := `Time    Cycle   PC  Instr   Decoded instruction Register and memory contents
925ns              88 00000e3a 00000613 c.addi
`
	tr := &CV32E40PTransformer{}
	lines, err := tr.Parse(raw)
	require.NoError(t, err)

	expected := []string{
		Header,
		`925ns,88,00000e3a,00000613,"c.addi",""`,
	}
	assert.Equal(t, expected, lines)
}

func TestCV32E40PFloatOperands(t *testing.T) {
	raw := `Time    Cycle   PC  Instr   Decoded instruction Register and memory contents
6235ns             619 00000506 00032087 flw               f1, 0(x6)           f1=40800001  x6:0000290c  PA:0000290c
6705ns             658 00000e8a fbdff06f c.jal             x0, -68
`
	tr := &CV32E40PTransformer{}
	lines, err := tr.Parse(raw)
	require.NoError(t, err)

	expected := []string{
		Header,
		`6235ns,619,00000506,00032087,"flw f1, 0(x6)","f1=40800001, x6:0000290c, PA:0000290c"`,
		`6705ns,658,00000e8a,fbdff06f,"c.jal x0, -68",""`,
	}
	assert.Equal(t, expected, lines)
}

func TestFactoryUnknownProcessor(t *testing.T) {
	factory := NewFactory()
	_, err := factory.Get("NOPE")
	require.Error(t, err)

	tr, err := factory.Get("CV32E40P")
	require.NoError(t, err)
	assert.NotNil(t, tr)
}
