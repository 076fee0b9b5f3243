package search

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"scour/config"
)

// binarySniffSize is how much of a text or code file is inspected before
// the rest is read.
const binarySniffSize = 8 * 1024

// readBounded reads a whole file, refusing anything over config.MaxFileSize.
// The size is re-checked while reading since the file may grow after stat.
// With sniffBinary set, a file whose first bytes look binary is rejected
// before the remainder is read.
func readBounded(path string, sniffBinary bool) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ExtractError{Kind: ErrUnreadable, Err: err}
	}
	defer file.Close()
	defer dropPageCache(file)

	stat, err := file.Stat()
	if err != nil {
		return nil, &ExtractError{Kind: ErrUnreadable, Err: err}
	}
	if stat.Size() > config.MaxFileSize {
		return nil, &ExtractError{Kind: ErrTooLarge, Err: fmt.Errorf("%s is %s", path, FormatFileSize(stat.Size()))}
	}

	limited := io.LimitReader(file, config.MaxFileSize+1)

	var data []byte
	if sniffBinary {
		head := make([]byte, binarySniffSize)
		n, err := io.ReadFull(limited, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &ExtractError{Kind: ErrUnreadable, Err: err}
		}
		head = head[:n]
		if looksBinary(head) {
			return nil, &ExtractError{Kind: ErrBinaryContent, Err: fmt.Errorf("%s does not look like text", path)}
		}
		data = head
	}

	rest, err := io.ReadAll(limited)
	if err != nil {
		return nil, &ExtractError{Kind: ErrUnreadable, Err: err}
	}
	data = append(data, rest...)
	if int64(len(data)) > config.MaxFileSize {
		return nil, &ExtractError{Kind: ErrTooLarge, Err: fmt.Errorf("%s grew past %s while reading", path, FormatFileSize(config.MaxFileSize))}
	}
	return data, nil
}

// looksBinary reports whether more than a tenth of head is NUL bytes or more
// than a fifth is control bytes other than tab, CR and LF. UTF-16 text with a
// byte order mark is never binary.
func looksBinary(head []byte) bool {
	if len(head) == 0 {
		return false
	}
	if bytes.HasPrefix(head, []byte{0xFF, 0xFE}) || bytes.HasPrefix(head, []byte{0xFE, 0xFF}) {
		return false
	}

	nul, control := 0, 0
	for _, b := range head {
		switch {
		case b == 0:
			nul++
			control++
		case b < 0x20 && b != '\n' && b != '\r' && b != '\t':
			control++
		}
	}
	return nul > len(head)/10 || control > len(head)/5
}
