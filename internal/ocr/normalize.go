package ocr

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// upscaleFactor improves small-glyph legibility before recognition.
	upscaleFactor = 1.2

	// fallbackThreshold is used when Otsu's method cannot separate the
	// histogram into two classes (e.g., a uniform image).
	fallbackThreshold = 128
)

// Normalize converts raw image bytes into the canonical bi-level raster the
// recognizer expects: decode, grayscale, smooth 1.2x upscale, then adaptive
// binarization. Every returned pixel is either 0 or 255. Undecodable input
// fails with ErrDecode.
func Normalize(data []byte) (*image.Gray, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	gray := toGray(src)
	scaled := upscale(gray, upscaleFactor)
	binarize(scaled)

	return scaled, nil
}

// toGray flattens any decoded image into a single-channel grayscale raster.
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// upscale resizes the raster by factor using Catmull-Rom interpolation.
func upscale(src *image.Gray, factor float64) *image.Gray {
	b := src.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// binarize thresholds the raster in place to a strict two-level image. The
// threshold is selected with Otsu's method; if the histogram is degenerate
// the fixed fallback threshold is used instead.
func binarize(img *image.Gray) {
	var hist [256]int
	for _, v := range img.Pix {
		hist[v]++
	}

	threshold, ok := otsuThreshold(hist, len(img.Pix))
	if !ok {
		threshold = fallbackThreshold
	}

	for i, v := range img.Pix {
		if v > threshold {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}

// otsuThreshold picks the threshold maximizing between-class variance. The
// second return value is false when no separating threshold exists.
func otsuThreshold(hist [256]int, total int) (uint8, bool) {
	if total == 0 {
		return 0, false
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, weightB, maxVariance float64
	var best int
	found := false

	for t := 0; t < 256; t++ {
		weightB += float64(hist[t])
		if weightB == 0 {
			continue
		}
		weightF := float64(total) - weightB
		if weightF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		meanB := sumB / weightB
		meanF := (sum - sumB) / weightF
		variance := weightB * weightF * (meanB - meanF) * (meanB - meanF)

		if variance > maxVariance {
			maxVariance = variance
			best = t
			found = true
		}
	}

	return uint8(best), found
}
