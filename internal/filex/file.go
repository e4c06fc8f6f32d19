// Package filex covers the few filesystem chores of the client: the local
// data directory and reading a receipt picked for upload.
package filex

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultContentType is assumed for receipts whose type cannot be sniffed.
const DefaultContentType = "image/jpeg"

// EnsureDir creates dir (and parents) with owner-only permissions and
// returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// Attachment is a local file picked for upload.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadAttachment loads path and guesses its content type from the extension,
// then from the first bytes, falling back to DefaultContentType.
func ReadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" && len(data) > 0 {
		ct = http.DetectContentType(data)
		if ct == "application/octet-stream" {
			ct = ""
		}
	}
	if ct == "" {
		ct = DefaultContentType
	}

	return &Attachment{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
