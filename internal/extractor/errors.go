package extractor

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoTextExtracted   = errors.New("no text extracted")
	ErrPDFProcessing     = errors.New("PDF processing failed")
	ErrImageProcessing   = errors.New("image processing failed")
)

// Kind returns the sentinel that classifies err, or nil when err did not come
// from the extractor.
func Kind(err error) error {
	for _, kind := range []error{ErrUnsupportedFormat, ErrNoTextExtracted, ErrPDFProcessing, ErrImageProcessing} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
