package domain

import "errors"

// Fatal error kinds for an extraction run. Any one of these aborts the whole
// run with no partial result. Malformed model output is not in this taxonomy:
// it is absorbed inside the extractor and only shrinks the item list.
var (
	ErrFetch               = errors.New("document could not be fetched from its source")
	ErrDecode              = errors.New("bytes could not be decoded as a supported image")
	ErrOCR                 = errors.New("text recognition failed")
	ErrExtraction          = errors.New("language model call failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
)
