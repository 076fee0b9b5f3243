//go:build pdfcpu
// +build pdfcpu

package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrPDFDisabled is never returned by this backend; it mirrors the stub.
var ErrPDFDisabled = errors.New("pdfcpu backend disabled")

// Limits applied when the caller passes zero.
const (
	DefaultPageCap    = 200
	DefaultPerPageCap = 128 * 1024
)

// ExtractAllTextCapped dumps the content streams of an in-memory PDF with
// pdfcpu and recovers the string operands shown on each page, one line per
// page. At most pageCap pages and perPageCap bytes per page are returned.
func ExtractAllTextCapped(data []byte, pageCap, perPageCap int) (out string, err error) {
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	if perPageCap <= 0 {
		perPageCap = DefaultPerPageCap
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	dir, err := os.MkdirTemp("", "scour_pdfcpu_*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractContent(bytes.NewReader(data), dir, "doc", nil, nil); err != nil {
		return "", fmt.Errorf("pdfcpu content dump: %w", err)
	}

	pages, err := contentFiles(dir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	kept := 0
	for _, page := range pages {
		if kept == pageCap {
			break
		}
		stream, err := os.ReadFile(page)
		if err != nil || len(stream) == 0 {
			continue
		}
		text := normalizeSpace(stringOperands(stream, perPageCap))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		kept++
	}
	return b.String(), nil
}

// contentFiles lists the dumped page streams in page order. pdfcpu names
// them <prefix>_Content_page_<n>.txt, so the page number is compared as an
// integer.
func contentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dump: %w", err)
	}

	type pageFile struct {
		path string
		page int
	}
	var files []pageFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, pageFile{path: filepath.Join(dir, e.Name()), page: pageNumber(e.Name())})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].page != files[j].page {
			return files[i].page < files[j].page
		}
		return files[i].path < files[j].path
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// pageNumber extracts n from a name ending in _page_<n>.txt; names without
// a page number sort last.
func pageNumber(name string) int {
	i := strings.LastIndex(name, "_page_")
	if i < 0 {
		return math.MaxInt
	}
	digits := strings.TrimSuffix(name[i+len("_page_"):], filepath.Ext(name))
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// stringOperands collects the literal strings of a content stream, separated
// by spaces. Nested parentheses are kept and escapes are decoded.
func stringOperands(stream []byte, limit int) string {
	var out bytes.Buffer
	depth := 0
	for i := 0; i < len(stream) && out.Len() < limit; i++ {
		c := stream[i]
		if depth == 0 {
			if c == '(' {
				depth = 1
			}
			continue
		}
		switch c {
		case '\\':
			i += decodeEscape(stream[i+1:], &out)
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				out.WriteByte(' ')
			} else {
				out.WriteByte(c)
			}
		default:
			out.WriteByte(c)
		}
	}
	s := out.String()
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}

// decodeEscape writes the byte named by the escape sequence at the start of
// rest and returns how many bytes of rest it consumed.
func decodeEscape(rest []byte, out *bytes.Buffer) int {
	if len(rest) == 0 {
		return 0
	}
	switch c := rest[0]; c {
	case 'n':
		out.WriteByte('\n')
	case 'r':
		out.WriteByte('\r')
	case 't':
		out.WriteByte('\t')
	case 'b', 'f':
		out.WriteByte(' ')
	case '\n', '\r':
		// line continuation
	default:
		if c < '0' || c > '7' {
			out.WriteByte(c)
			return 1
		}
		n, val := 0, 0
		for n < 3 && n < len(rest) && rest[n] >= '0' && rest[n] <= '7' {
			val = val*8 + int(rest[n]-'0')
			n++
		}
		out.WriteByte(byte(val))
		return n
	}
	return 1
}

func normalizeSpace(s string) string {
	printable := strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(printable), " ")
}
