// Package document extracts plain text from job description files.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"
)

// ErrUnsupported is returned for file types that cannot be read.
var ErrUnsupported = errors.New("unsupported document format")

// SupportedFormats lists the accepted file extensions.
var SupportedFormats = []string{".txt", ".md", ".pdf", ".docx", ".doc", ".odt", ".rtf"}

// convert is replaced in tests.
var convert = docconv.ConvertPath

// Placeholder is the text returned when a converter for ext is unavailable.
func Placeholder(ext string) string {
	return fmt.Sprintf("[%s content could not be extracted: converter unavailable]", strings.ToUpper(strings.TrimPrefix(ext, ".")))
}

// Extract returns the text of the document at path. Binary formats go
// through docconv; when conversion fails the Placeholder text is returned so
// that callers can still proceed with manual input.
func Extract(path string, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading document: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case ".pdf", ".docx", ".doc", ".odt", ".rtf":
		res, err := convert(path)
		if err != nil {
			log.Warn("document conversion failed", zap.String("path", path), zap.Error(err))
			return Placeholder(ext), nil
		}
		return strings.TrimSpace(res.Body), nil
	}

	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, ext, strings.Join(SupportedFormats, ", "))
}
