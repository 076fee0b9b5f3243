//go:build ocr
// +build ocr

package search

import "github.com/otiai10/gosseract/v2"

// OCRAvailable reports whether this build can read text from images.
const OCRAvailable = true

type tesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine opens a Tesseract client through gosseract.
func NewTesseractEngine() (OCREngine, error) {
	return &tesseractEngine{client: gosseract.NewClient()}, nil
}

func (t *tesseractEngine) Recognize(image []byte) (string, error) {
	if err := t.client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return t.client.Text()
}

func (t *tesseractEngine) Close() error {
	return t.client.Close()
}

// DefaultOCRFactory is the engine factory used unless one is configured.
var DefaultOCRFactory OCRFactory = NewTesseractEngine
