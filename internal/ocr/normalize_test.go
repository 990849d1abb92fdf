package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a small grayscale gradient with a dark band, giving the
// binarizer two clear pixel classes.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(40)
			if x > width/2 {
				v = 220
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	data := encodePNG(t, 100, 40)

	raster, err := Normalize(data)
	require.NoError(t, err)
	require.NotNil(t, raster)

	// Upscaled by the fixed factor.
	assert.Equal(t, 120, raster.Bounds().Dx())
	assert.Equal(t, 48, raster.Bounds().Dy())

	// Strictly two-level output with both classes present.
	var black, white int
	for _, v := range raster.Pix {
		switch v {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("pixel value %d is neither 0 nor 255", v)
		}
	}
	assert.Positive(t, black)
	assert.Positive(t, white)
}

func TestNormalizeUniformImageUsesFallbackThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	raster, err := Normalize(buf.Bytes())
	require.NoError(t, err)

	// 200 > 128, so everything lands on white.
	for _, v := range raster.Pix {
		assert.Equal(t, uint8(255), v)
	}
}

func TestNormalizeDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty payload", data: nil},
		{name: "zero bytes", data: []byte{}},
		{name: "garbage bytes", data: []byte("definitely not an image")},
		{name: "truncated png", data: encodePNG(t, 10, 10)[:8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster, err := Normalize(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, raster)
		})
	}
}

func TestOtsuThreshold(t *testing.T) {
	t.Run("bimodal histogram splits the classes", func(t *testing.T) {
		var hist [256]int
		hist[40] = 500
		hist[220] = 500

		threshold, ok := otsuThreshold(hist, 1000)
		require.True(t, ok)
		assert.GreaterOrEqual(t, threshold, uint8(40))
		assert.Less(t, threshold, uint8(220))
	})

	t.Run("uniform histogram has no threshold", func(t *testing.T) {
		var hist [256]int
		hist[128] = 1000

		_, ok := otsuThreshold(hist, 1000)
		assert.False(t, ok)
	})

	t.Run("empty histogram has no threshold", func(t *testing.T) {
		var hist [256]int

		_, ok := otsuThreshold(hist, 0)
		assert.False(t, ok)
	})
}
