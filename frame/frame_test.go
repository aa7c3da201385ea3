package frame

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeowayLabs/drmcheck"
)

func TestPixel(t *testing.T) {
	assert.Equal(t, uint32(0x000000), pixel(0, 0, 640, 480))
	assert.Equal(t, uint32(0xff0000|uint32(639&0xff)), pixel(639, 0, 640, 480))
	assert.Equal(t, uint32(0x00ff00|uint32(479&0xff)), pixel(0, 479, 640, 480))
	assert.Equal(t, uint32(0), pixel(0, 0, 1, 1))
}

func TestFillCompare(t *testing.T) {
	const width, height, pitch = 7, 5, 32
	buf := make([]byte, pitch*height)
	require.NoError(t, fill(buf, width, height, pitch))
	assert.Zero(t, compare(buf, width, height, pitch))

	// padding past the row is not part of the frame
	buf[width*4] = 0xaa
	assert.Zero(t, compare(buf, width, height, pitch))

	// neither is the X byte
	buf[3] = 0x55
	assert.Zero(t, compare(buf, width, height, pitch))

	buf[pitch+4] ^= 0xff
	buf[2*pitch] ^= 0x01
	assert.Equal(t, 2, compare(buf, width, height, pitch))
}

func TestFillShortBuffer(t *testing.T) {
	buf := make([]byte, 16)
	assert.ErrorIs(t, fill(buf, 4, 2, 16), ErrShortBuffer)
	assert.ErrorIs(t, fill(buf, 4, 1, 8), ErrShortBuffer)
	assert.Equal(t, 8, compare(buf, 4, 2, 16))
	assert.NoError(t, fill(buf, 4, 1, 16))
}

func TestCheck(t *testing.T) {
	if _, err := os.Stat(drm.NodePrimary.Path(0)); err != nil {
		t.Skip("no DRM card available")
	}
	file, err := drm.OpenCard(0)
	if err != nil {
		t.Skip(err)
	}
	defer file.Close()

	res, err := Check(file, 64, 32)
	if errors.Is(err, ErrNoDumbBuffer) {
		t.Skip(err)
	}
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.GreaterOrEqual(t, res.Pitch, uint32(64*4))
	assert.GreaterOrEqual(t, res.Size, uint64(res.Pitch)*32)
}
