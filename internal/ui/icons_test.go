package ui

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateArrowsIcon_ReturnsValidPNG(t *testing.T) {
	data := generateArrowsIcon(uploadColor, downloadColor)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "should be valid PNG")

	bounds := img.Bounds()
	assert.Equal(t, iconSize, bounds.Dx(), "width should match iconSize")
	assert.Equal(t, iconSize, bounds.Dy(), "height should match iconSize")

	// Tip of the up arrow is at the top, tip of the down arrow at the bottom.
	assert.Equal(t, color.RGBAModel.Convert(uploadColor), color.RGBAModel.Convert(img.At(5, 3)))
	assert.Equal(t, color.RGBAModel.Convert(downloadColor), color.RGBAModel.Convert(img.At(16, 18)))

	// The corners stay transparent.
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestPreGeneratedIcon_IsValid(t *testing.T) {
	require.NotEmpty(t, iconPNG)
	_, err := png.Decode(bytes.NewReader(iconPNG))
	require.NoError(t, err)
}
