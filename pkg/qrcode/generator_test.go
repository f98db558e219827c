package qrcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/pkg/qrcode"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGenerate(t *testing.T) {
	t.Parallel()

	png, err := qrcode.Generate("https://fylloai.app/invite/u1", 128)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:4])
}

func TestGenerate_DefaultSize(t *testing.T) {
	t.Parallel()

	png, err := qrcode.Generate("https://fylloai.app/invite/u1", 0)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:4])
}

func TestGenerate_EmptyContent(t *testing.T) {
	t.Parallel()

	_, err := qrcode.Generate("   ", 128)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
