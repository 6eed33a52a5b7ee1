package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

func (e *Extractor) extractImage(ctx context.Context, data []byte, result *Result) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrImageProcessing, err)
	}
	result.Pages = 1

	text, err := e.recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("%w: ocr %s: %w", ErrImageProcessing, format, err)
	}
	result.OCRPages = []int{1}

	return text, nil
}
