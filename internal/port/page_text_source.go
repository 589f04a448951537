package port

import "context"

// PageTextSource abstracts the OCR engine. One image is treated as exactly
// one page; no cross-page continuity is inferred.
type PageTextSource interface {
	// PageText returns the recognized text for a single page image.
	PageText(ctx context.Context, imageBytes []byte) (string, error)
}
