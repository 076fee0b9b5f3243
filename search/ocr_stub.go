//go:build !ocr
// +build !ocr

package search

// OCRAvailable reports whether this build can read text from images.
// Build with -tags ocr (requires libtesseract) to enable it.
const OCRAvailable = false

// DefaultOCRFactory is nil in builds without OCR, so every image is skipped
// as feature disabled.
var DefaultOCRFactory OCRFactory
