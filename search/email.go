package search

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"
	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// oleMagic opens every compound file, Outlook .msg included.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// maxMboxMessages caps how many messages of one mailbox are extracted.
const maxMboxMessages = 10000

// EmailExtractor handles RFC 822 messages, mbox mailboxes and Outlook .msg
// files. The container is recognised from the content.
type EmailExtractor struct{}

// ExtractText implements the Extractor interface for email files
func (e *EmailExtractor) ExtractText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, oleMagic):
		return msgText(data)
	case bytes.HasPrefix(data, []byte("From ")):
		return mboxText(data)
	default:
		return emlText(bytes.NewReader(data))
	}
}

// emlText renders the subject followed by the text body. The HTML body is
// stripped and used only when there is no text part.
func emlText(r io.Reader) (string, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return "", corrupt("eml: %w", err)
	}

	var b strings.Builder
	if subject := env.GetHeader("Subject"); subject != "" {
		b.WriteString(subject)
		b.WriteByte('\n')
	}
	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body = stripHTML(env.HTML)
	}
	b.WriteString(body)
	return strings.TrimSpace(b.String()), nil
}

func mboxText(data []byte) (string, error) {
	mr := mbox.NewReader(bytes.NewReader(data))

	var parts []string
	for i := 0; i < maxMboxMessages; i++ {
		msg, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(parts) == 0 {
				return "", corrupt("mbox: %w", err)
			}
			break
		}
		text, err := emlText(msg)
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

// MAPI property streams carrying searchable text. The 001F suffix marks
// UTF-16LE strings, 001E marks 8-bit strings.
var msgTextStreams = map[string]bool{
	"__substg1.0_0037001F": true, // subject
	"__substg1.0_0037001E": true,
	"__substg1.0_0C1A001F": true, // sender name
	"__substg1.0_0C1A001E": true,
	"__substg1.0_0E04001F": true, // display to
	"__substg1.0_0E04001E": true,
	"__substg1.0_1000001F": true, // body
	"__substg1.0_1000001E": true,
}

func msgText(data []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", corrupt("msg: %w", err)
	}

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	ansi := charmap.Windows1252.NewDecoder()

	var parts []string
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !msgTextStreams[entry.Name] {
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(entry, maxDocxPartSize))
		if err != nil {
			return "", corrupt("msg stream %s: %w", entry.Name, err)
		}

		var decoded []byte
		if strings.HasSuffix(entry.Name, "001F") {
			decoded, err = utf16.Bytes(raw)
		} else {
			decoded, err = ansi.Bytes(raw)
		}
		if err != nil {
			continue
		}
		if text := strings.TrimRight(string(decoded), "\x00"); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", corrupt("msg: no text properties")
	}
	return strings.Join(parts, "\n"), nil
}
