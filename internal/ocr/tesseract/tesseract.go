// Package tesseract implements the page text source on the Tesseract OCR
// engine via gosseract. Tesseract and the language data files must be
// installed on the host (apt-get install tesseract-ocr tesseract-ocr-eng).
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/otiai10/gosseract/v2"

	"billex/internal/config"
	"billex/internal/domain"
)

// Source implements port.PageTextSource using Tesseract.
type Source struct {
	languages []string
}

// NewSource creates a Source with the configured recognition languages.
func NewSource(cfg *config.OCRConfig) *Source {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &Source{languages: langs}
}

// PageText runs OCR over one image, treated as exactly one page. The bytes
// must decode as PNG or JPEG; anything else is a caller error reported as
// domain.ErrDecode. Engine failures map to domain.ErrOCR. A fresh engine
// client is created per call: gosseract clients are not safe for concurrent
// use.
func (s *Source) PageText(ctx context.Context, imageBytes []byte) (string, error) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(imageBytes)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(s.languages...); err != nil {
		return "", fmt.Errorf("%w: setting languages: %v", domain.ErrOCR, err)
	}
	if err := client.SetImageFromBytes(imageBytes); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCR, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCR, err)
	}
	return text, nil
}
