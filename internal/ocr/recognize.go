package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine is the OCR provider contract: one normalized raster in, recognized
// text out. An empty string is a valid result for a blank or unreadable
// document and must not be reported as an error.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// TesseractConfig tunes the Tesseract-backed engine.
type TesseractConfig struct {
	// Languages lists trained-data hints, e.g. "eng".
	Languages []string
	// PageSegMode selects the Tesseract layout analysis mode. ID documents
	// carry sparse mixed-orientation blocks, so the default is PSM 6
	// (assume a single uniform block of text) rather than full-page mode.
	PageSegMode int
}

// Tesseract implements Engine with the gosseract client.
type Tesseract struct {
	languages     []string
	pageSegMode   gosseract.PageSegMode
	clientFactory func() *gosseract.Client
}

// NewTesseract constructs a Tesseract engine. Zero-value config fields fall
// back to English and PSM 6.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	psm := gosseract.PageSegMode(cfg.PageSegMode)
	if cfg.PageSegMode == 0 {
		psm = gosseract.PSM_SINGLE_BLOCK
	}
	return &Tesseract{
		languages:     langs,
		pageSegMode:   psm,
		clientFactory: gosseract.NewClient,
	}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs Tesseract over the raster and returns the recognized text.
// Engine failures are reported as ErrRecognition so the orchestrator can
// distinguish them from decode failures.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%w: encode raster: %v", ErrRecognition, err)
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: set image: %v", ErrRecognition, err)
	}
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("%w: set languages: %v", ErrRecognition, err)
	}
	if err := client.SetPageSegMode(t.pageSegMode); err != nil {
		return "", fmt.Errorf("%w: set page segmentation mode: %v", ErrRecognition, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	return strings.TrimSpace(text), nil
}
