// Package extract converts raw files into plain-text chunks for ingestion.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-workspace/internal/pkg/pdfextract"
)

var (
	// ErrUnsupportedFormat is returned for extensions outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("unsupported file type (supported: .txt, .pdf, .eml)")
	// ErrProtectedDocument is returned for PDFs that an empty-password
	// decryption attempt could not open.
	ErrProtectedDocument = errors.New("cannot extract text from password-protected document")
)

// Chunks parses the file at path and returns its content as an ordered
// sequence of text chunks. The declared type is the file extension.
func Chunks(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read text file failed: %w", err)
		}
		return []string{string(data)}, nil

	case ".pdf":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open pdf failed: %w", err)
		}
		defer f.Close()

		text, err := pdfextract.Text(f, 0)
		if err != nil {
			if errors.Is(err, pdfextract.ErrEncrypted) {
				return nil, ErrProtectedDocument
			}
			return nil, fmt.Errorf("parse pdf failed: %w", err)
		}
		return []string{text}, nil

	case ".eml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open eml failed: %w", err)
		}
		defer f.Close()

		body, err := emailBody(f)
		if err != nil {
			return nil, fmt.Errorf("parse eml failed: %w", err)
		}
		return []string{body}, nil
	}
	return nil, ErrUnsupportedFormat
}
