//go:build !pdfcpu
// +build !pdfcpu

package pdf

import "errors"

// ErrPDFDisabled is returned when the binary is built without the pdfcpu tag.
var ErrPDFDisabled = errors.New("pdfcpu backend disabled")

// ExtractAllTextCapped reports ErrPDFDisabled; build with -tags pdfcpu for the
// real fallback.
func ExtractAllTextCapped(data []byte, pageCap, perPageCap int) (string, error) {
	return "", ErrPDFDisabled
}
