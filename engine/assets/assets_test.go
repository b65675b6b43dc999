package assets

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spirv(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func TestLoadShader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "tri.vert.spv")
	require.NoError(t, os.WriteFile(good, spirv(SPIRVMagic, 0x00010000, 7, 42), 0o644))

	b, err := LoadShader(good)
	require.NoError(t, err)
	assert.Len(t, b, 16)
	assert.Equal(t, []uint32{SPIRVMagic, 0x00010000, 7, 42}, Words(b))

	_, err = LoadShader(filepath.Join(dir, "missing.spv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckSPIRV(t *testing.T) {
	assert.NoError(t, CheckSPIRV(spirv(SPIRVMagic)))
	assert.ErrorIs(t, CheckSPIRV(nil), ErrNotSPIRV)
	assert.ErrorIs(t, CheckSPIRV([]byte{0x03, 0x02, 0x23}), ErrNotSPIRV)
	assert.ErrorIs(t, CheckSPIRV(spirv(0xdeadbeef)), ErrNotSPIRV)
}

func TestLoadPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	src.Set(1, 2, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(t.TempDir(), "icon.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := LoadPNG(path)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	assert.Equal(t, 8, img.Stride)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(1, 2))
}
