package pdfextract

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrEncrypted means the document could not be opened even with an
	// empty password.
	ErrEncrypted = errors.New("pdf is password-protected")
	// ErrNoText means no page yielded any extractable text.
	ErrNoText = errors.New("no extractable text found in pdf")
)

// Text reads the entire content of r and extracts plain text page by page.
// Pages that fail extraction are skipped; the remaining pages are joined
// with a blank line. maxPages limits how many pages are read (0 = all).
func Text(r io.Reader, maxPages int) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	// NewReaderEncrypted attempts an empty password before giving up.
	reader, err := pdf.NewReaderEncrypted(bytes.NewReader(b), int64(len(b)), nil)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", ErrEncrypted
		}
		return "", err
	}

	total := reader.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var parts []string
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoText
	}
	return strings.Join(parts, "\n\n"), nil
}
