// Package blob stores uploaded post images under stable, write-once references.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotFound            = errors.New("blob not found")
	ErrAlreadyExists       = errors.New("blob already exists")
	ErrTooLarge            = errors.New("blob exceeds size limit")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrInvalidRef          = errors.New("invalid blob reference")
)

// Store is a write-once blob store keyed by reference.
type Store interface {
	// Save writes r under ref. It fails with ErrAlreadyExists if ref is taken.
	Save(ctx context.Context, ref string, r io.Reader) error
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Exists(ctx context.Context, ref string) (bool, error)
}

// NewRef builds a collision-resistant reference for an uploaded file:
// "<unix seconds>_<8 hex chars>_<sanitized name>".
func NewRef(filename string, now time.Time) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s", now.Unix(), short, SanitizeFilename(filename))
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// CheckExtension reports ErrExtensionNotAllowed unless name carries one of
// allowed (lowercase, no dot).
func CheckExtension(name string, allowed []string) error {
	ext := Extension(name)
	if ext == "" || !slices.Contains(allowed, ext) {
		return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, filepath.Ext(name))
	}
	return nil
}

// ValidateRef rejects references that could escape the store root.
func ValidateRef(ref string) error {
	if ref == "" || ref == "." || ref == ".." ||
		strings.ContainsAny(ref, `/\`) || strings.ContainsRune(ref, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return nil
}

// SanitizeFilename reduces a client-supplied name to a safe ASCII basename.
// Accents are folded, separators become underscores, and anything outside
// [A-Za-z0-9._-] is dropped. The extension is kept even when nothing of the
// stem survives, in which case the stem becomes "unnamed".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	ext := sanitizePart(strings.TrimPrefix(filepath.Ext(name), "."))
	ext = strings.ReplaceAll(ext, ".", "")
	stem := sanitizePart(strings.TrimSuffix(name, filepath.Ext(name)))
	if stem == "" {
		stem = "unnamed"
	}
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

func sanitizePart(s string) string {
	s = norm.NFKD.String(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r) || r == '/':
			b.WriteByte('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// limitReader fails with ErrTooLarge once more than limit bytes are read.
type limitReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func newLimitReader(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	return &limitReader{r: r, limit: limit}
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return n, ErrTooLarge
	}
	return n, err
}
