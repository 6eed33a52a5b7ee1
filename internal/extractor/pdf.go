package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// PDFDocument is an opened PDF. Pages are numbered from 1.
type PDFDocument interface {
	NumPage() int
	PageText(page int) (string, error)
	RenderPage(page int) (image.Image, error)
	Close() error
}

type PDFOpener func(data []byte) (PDFDocument, error)

// pdfDocument reads native text with ledongthuc/pdf and only opens MuPDF when
// a page has to be rasterized.
type pdfDocument struct {
	data   []byte
	dpi    float64
	reader *pdf.Reader
	raster *fitz.Document
}

func OpenPDF(data []byte, dpi float64) (doc PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	return &pdfDocument{data: data, dpi: dpi, reader: reader}, nil
}

func (d *pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: pdf reader panic: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (d *pdfDocument) RenderPage(n int) (image.Image, error) {
	if d.raster == nil {
		raster, err := fitz.NewFromMemory(d.data)
		if err != nil {
			return nil, fmt.Errorf("open document for rendering: %w", err)
		}
		d.raster = raster
	}

	img, err := d.raster.ImageDPI(n-1, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", n, err)
	}
	return img, nil
}

func (d *pdfDocument) Close() error {
	if d.raster != nil {
		return d.raster.Close()
	}
	return nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte, result *Result) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf reader panic: %v", ErrPDFProcessing, r)
		}
	}()

	doc, err := e.openPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPDFProcessing, err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	result.Pages = numPages

	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrPDFProcessing, err)
		}

		pageText, err := doc.PageText(i)
		if err != nil {
			e.logger.Warn("extract.page.native_failed", "page", i, "error", err)
		} else if strings.TrimSpace(pageText) != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString(" ")
			continue
		}

		e.logger.Debug("extract.page.ocr_fallback", "page", i)

		img, err := doc.RenderPage(i)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrPDFProcessing, err)
		}

		ocrText, err := e.recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("%w: ocr page %d: %w", ErrPDFProcessing, i, err)
		}

		textBuilder.WriteString(ocrText)
		textBuilder.WriteString(" ")
		result.OCRPages = append(result.OCRPages, i)
	}

	return textBuilder.String(), nil
}
