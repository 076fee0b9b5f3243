package search

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"scour/config"
	pdffallback "scour/search/pdf"
)

// maxDocxPartSize bounds how much decompressed XML is read from a DOCX part.
const maxDocxPartSize = 4 * config.MaxFileSize

// Extractor defines the interface for turning a file's raw bytes into plain text
type Extractor interface {
	// ExtractText takes raw file bytes and returns extracted plain text
	ExtractText(data []byte) (string, error)
}

// ExtractorRegistry holds the extractor for each file type.
// Image is absent: it is served by the worker-owned OCR session.
type ExtractorRegistry struct {
	extractors map[config.FileType]Extractor
}

// NewExtractorRegistry creates a new registry with built-in extractors
func NewExtractorRegistry() *ExtractorRegistry {
	reg := &ExtractorRegistry{
		extractors: make(map[config.FileType]Extractor),
	}
	reg.registerBuiltIns()
	return reg
}

func (r *ExtractorRegistry) registerBuiltIns() {
	text := &TextExtractor{}
	r.extractors[config.PlainText] = text
	r.extractors[config.Code] = text
	r.extractors[config.Pdf] = &PDFExtractor{}
	r.extractors[config.Docx] = &DOCXExtractor{}
	r.extractors[config.Email] = &EmailExtractor{}
}

// GetExtractor returns the extractor registered for a file type
func (r *ExtractorRegistry) GetExtractor(ft config.FileType) (Extractor, bool) {
	extractor, exists := r.extractors[ft]
	return extractor, exists
}

// isDocumentFormat reports whether ft goes through a structured parser that
// may misbehave on hostile input and so runs under the extraction timeout.
func isDocumentFormat(ft config.FileType) bool {
	switch ft {
	case config.Pdf, config.Docx, config.Email:
		return true
	default:
		return false
	}
}

// TextExtractor decodes plain text and source code.
type TextExtractor struct{}

// ExtractText decodes UTF-8, honouring UTF-8/UTF-16 byte order marks, and
// replaces invalid sequences with U+FFFD. It never fails on encoding alone.
func (e *TextExtractor) ExtractText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(out), nil
}

// PDFExtractor extracts text from .pdf files page by page
type PDFExtractor struct{}

// ExtractText implements the Extractor interface for PDF files.
// A structurally valid PDF without a text layer yields "".
func (e *PDFExtractor) ExtractText(data []byte) (out string, err error) {
	// Guard against any panics from the PDF library.
	defer func() {
		if r := recover(); r != nil {
			out, err = e.fallback(data, fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return e.fallback(data, rerr)
	}

	pages := reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		b.WriteString(pageText(reader, i))
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

// pageText extracts one page, treating an unreadable page as empty.
func pageText(reader *pdf.Reader, i int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	page := reader.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// fallback tries the alternate backend before declaring the document corrupt.
func (e *PDFExtractor) fallback(data []byte, cause error) (string, error) {
	text, err := pdffallback.ExtractAllTextCapped(data, 0, 0)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, pdffallback.ErrPDFDisabled) {
		return "", corrupt("pdf: %w", cause)
	}
	return "", corrupt("pdf: %w (fallback: %v)", cause, err)
}

// DOCXExtractor extracts text from .docx files (Office Open XML)
type DOCXExtractor struct{}

// ExtractText reads word/document.xml and emits run text in document order,
// one line per paragraph.
func (e *DOCXExtractor) ExtractText(data []byte) (string, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", corrupt("docx: %w", err)
	}

	for _, file := range zipReader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", corrupt("docx: %w", err)
		}
		defer rc.Close()
		return docxText(io.LimitReader(rc, maxDocxPartSize))
	}

	return "", corrupt("docx: word/document.xml not found")
}

func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", corrupt("docx xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
