// Package ocr implements the document extraction pipeline stages: image
// normalization, text recognition, and structured field extraction. The
// recognition engine is an interface so the Tesseract-backed implementation
// can be swapped for a stub in tests or for a remote provider later.
package ocr

import "errors"

var (
	// ErrDecode is returned when raw bytes cannot be interpreted as an image
	ErrDecode = errors.New("unable to decode image")

	// ErrRecognition is returned when the OCR engine fails on a readable raster
	ErrRecognition = errors.New("text recognition failed")
)
