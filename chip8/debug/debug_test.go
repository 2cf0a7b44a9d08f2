package debug

import (
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestCapture(t *testing.T) {
	mem := memory.New()
	_, err := mem.Load([]byte{
		0x6A, 0x42, // MVI VA,#$42
		0x23, 0x00, // CALL $300
	})
	require.NoError(t, err)
	c := cpu.New(mem, nil, cpu.NewSequenceSource(0))

	state := Capture(c)
	assert.Equal(t, uint16(0x200), state.PC)
	assert.Empty(t, state.Instruction, "nothing executed yet")

	for i := 0; i < 2; i++ {
		_, err := c.Step()
		require.NoError(t, err)
	}

	state = Capture(c)
	assert.Equal(t, uint16(0x300), state.PC)
	assert.Equal(t, uint8(0x42), state.V[0xA])
	assert.Equal(t, uint8(1), state.SP)
	assert.Equal(t, []uint16{0x202}, state.Stack)
	assert.Equal(t, uint64(2), state.Cycles)
	assert.Equal(t, uint16(0x2300), state.Opcode)
	assert.Equal(t, "CALL $300", state.Instruction)
}

func TestCreateDisassembly(t *testing.T) {
	snapshot := &MemorySnapshot{StartAddr: 0x200}
	for i := 0; i < 20; i++ {
		snapshot.Bytes = append(snapshot.Bytes, 0x60+byte(i%16), byte(i))
	}

	t.Run("centred on pc", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x210, 5)
		require.Len(t, lines, 5)
		assert.Equal(t, uint16(0x20C), lines[0].Address)
		assert.True(t, lines[2].IsCurrent)
		assert.Equal(t, "MVI V8,#$08", lines[2].Instruction)
	})

	t.Run("clamped at the start", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x200, 5)
		require.Len(t, lines, 5)
		assert.Equal(t, uint16(0x200), lines[0].Address)
		assert.True(t, lines[0].IsCurrent)
	})

	t.Run("clamped at the end", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x226, 5)
		require.Len(t, lines, 5)
		assert.Equal(t, uint16(0x226), lines[4].Address)
	})

	t.Run("pc outside the snapshot", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x800, 4)
		require.Len(t, lines, 4)
		assert.Equal(t, "[PC outside snapshot range]", lines[3].Instruction)
		assert.True(t, lines[3].IsCurrent)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		assert.Nil(t, CreateDisassembly(nil, 0x200, 4))
	})
}

func TestFormatFrameText(t *testing.T) {
	fb := video.NewFrameBuffer()
	fb.XorPixel(0, 0, true)
	fb.XorPixel(63, 31, true)

	rows := strings.Split(strings.TrimSuffix(FormatFrameText(fb), "\n"), "\n")

	require.Len(t, rows, video.FramebufferHeight)
	assert.Equal(t, "#"+strings.Repeat(".", 63), rows[0])
	assert.Equal(t, strings.Repeat(".", 63)+"#", rows[31])
}

func TestSaveFramePNGToDir(t *testing.T) {
	fb := video.NewFrameBuffer()
	fb.XorPixel(3, 2, true)

	path, err := SaveFramePNGToDir(fb, "test_frame", t.TempDir())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, video.FramebufferWidth, img.Bounds().Dx())
	assert.Equal(t, video.FramebufferHeight, img.Bounds().Dy())

	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, []uint32{0, 0xFFFF, 0}, []uint32{r, g, b})
	r, g, b, _ = img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})
}

func TestSaveFramePNGToDir_missingDirectory(t *testing.T) {
	_, err := SaveFramePNGToDir(video.NewFrameBuffer(), "test_frame", "/nonexistent/dir/for/snapshots")
	assert.Error(t, err)
}
