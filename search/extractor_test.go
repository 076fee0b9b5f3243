package search

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"scour/config"
)

const docxNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// buildDocx packs parts into an in-memory zip archive.
func buildDocx(t testing.TB, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func docxDocument(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document ` + docxNS + `><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p>` + p + `</w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// buildPDF writes a single-page PDF showing text in Helvetica, with a
// correct cross-reference table.
func buildPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func TestRegistryCoversTypes(t *testing.T) {
	reg := NewExtractorRegistry()
	for _, ft := range []config.FileType{config.PlainText, config.Code, config.Pdf, config.Docx, config.Email} {
		if _, ok := reg.GetExtractor(ft); !ok {
			t.Errorf("no extractor registered for %s", ft)
		}
	}
	for _, ft := range []config.FileType{config.Image, config.Unknown} {
		if _, ok := reg.GetExtractor(ft); ok {
			t.Errorf("unexpected extractor registered for %s", ft)
		}
	}
}

func TestTextExtractor(t *testing.T) {
	e := &TextExtractor{}

	got, err := e.ExtractText([]byte("abc\xffdef"))
	if err != nil {
		t.Fatalf("invalid UTF-8 should not fail: %v", err)
	}
	if got != "abc�def" {
		t.Errorf("lossy decode = %q", got)
	}

	got, err = e.ExtractText([]byte{0xFF, 0xFE, 'h', 0, 'i', 0})
	if err != nil {
		t.Fatalf("UTF-16 decode failed: %v", err)
	}
	if got != "hi" {
		t.Errorf("UTF-16LE decode = %q, want %q", got, "hi")
	}
}

func TestDOCXExtractor(t *testing.T) {
	e := &DOCXExtractor{}
	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml": docxDocument(
			`<w:r><w:t>Hello</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve"> world</w:t></w:r>`,
			`<w:r><w:t>Second paragraph</w:t></w:r>`,
		),
	})

	got, err := e.ExtractText(data)
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	if want := "Hello\t world\nSecond paragraph"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDOCXExtractorCorrupt(t *testing.T) {
	e := &DOCXExtractor{}
	cases := map[string][]byte{
		"not a zip":    []byte("definitely not a zip archive"),
		"missing part": buildDocx(t, map[string]string{"word/styles.xml": "<styles/>"}),
		"bad xml":      buildDocx(t, map[string]string{"word/document.xml": "<a><b></a>"}),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.ExtractText(data)
			if !errors.Is(err, ErrCorruptDocument) {
				t.Errorf("error = %v, want ErrCorruptDocument", err)
			}
		})
	}
}

func TestPDFExtractor(t *testing.T) {
	e := &PDFExtractor{}

	got, err := e.ExtractText(buildPDF("Hello PDF world"))
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	if !strings.Contains(got, "Hello") {
		t.Errorf("extracted text %q does not contain %q", got, "Hello")
	}

	_, err = e.ExtractText([]byte("%PDF-1.4\nthis is not really a pdf"))
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("corrupt pdf error = %v, want ErrCorruptDocument", err)
	}
}

func TestEmailExtractorEML(t *testing.T) {
	msg := "From: alice@example.com\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: Quarterly report\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"The budget numbers are ready.\r\n"

	got, err := (&EmailExtractor{}).ExtractText([]byte(msg))
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	for _, want := range []string{"Quarterly report", "budget numbers"} {
		if !strings.Contains(got, want) {
			t.Errorf("extracted %q missing %q", got, want)
		}
	}
}

func TestEmailExtractorHTMLOnly(t *testing.T) {
	msg := "From: alice@example.com\r\n" +
		"Subject: Newsletter\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>Hello <b>there</b></p></body></html>\r\n"

	got, err := (&EmailExtractor{}).ExtractText([]byte(msg))
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	if !strings.Contains(got, "there") || strings.Contains(got, "<b>") {
		t.Errorf("extracted %q, want stripped html body", got)
	}
}

func TestEmailExtractorMbox(t *testing.T) {
	mbox := "From alice@example.com Mon Jan  1 00:00:00 2024\n" +
		"Subject: one\n" +
		"\n" +
		"first body\n" +
		"\n" +
		"From bob@example.com Mon Jan  1 00:00:00 2024\n" +
		"Subject: two\n" +
		"\n" +
		"second body\n"

	got, err := (&EmailExtractor{}).ExtractText([]byte(mbox))
	if err != nil {
		t.Fatalf("ExtractText error: %v", err)
	}
	for _, want := range []string{"first body", "second body"} {
		if !strings.Contains(got, want) {
			t.Errorf("extracted %q missing %q", got, want)
		}
	}
}

func TestEmailExtractorCorruptMSG(t *testing.T) {
	data := append(append([]byte{}, oleMagic...), make([]byte, 64)...)
	_, err := (&EmailExtractor{}).ExtractText(data)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("error = %v, want ErrCorruptDocument", err)
	}
}

func TestStripHTML(t *testing.T) {
	in := "<style>p{color:red}</style><p>Fish &amp; chips</p><script>alert(1)</script><div>second</div>"
	got := stripHTML(in)
	if want := "Fish & chips\nsecond"; got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}

func TestRunWithTimeout(t *testing.T) {
	text, err := runWithTimeout(func() (string, error) { return "ok", nil }, time.Second)
	if err != nil || text != "ok" {
		t.Fatalf("got (%q, %v), want (ok, nil)", text, err)
	}

	_, err = runWithTimeout(func() (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "late", nil
	}, 10*time.Millisecond)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("timeout error = %v, want ErrCorruptDocument", err)
	}

	_, err = runWithTimeout(func() (string, error) { panic("boom") }, time.Second)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("panic error = %v, want ErrCorruptDocument", err)
	}
}
