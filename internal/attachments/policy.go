package attachments

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxBytes = 5 << 20

// Policy limits what applicants may upload.
type Policy struct {
	MaxBytes          int64
	AllowedExtensions []string
}

func DefaultPolicy() Policy {
	return Policy{MaxBytes: DefaultMaxBytes, AllowedExtensions: []string{".pdf", ".doc", ".docx"}}
}

// sniffed content types accepted per extension
var acceptedTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// canonical content types served back for each extension
var servedTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func (p Policy) allows(ext string) bool {
	for _, a := range p.AllowedExtensions {
		if strings.EqualFold(strings.TrimSpace(a), ext) {
			return true
		}
	}
	return false
}

// Read consumes up.Body and returns the bytes with the content type to
// store them under.
func (p Policy) Read(up Upload) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !p.allows(ext) {
		return nil, "", fmt.Errorf("%w: %q", ErrBadType, ext)
	}

	max := p.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	b, err := io.ReadAll(io.LimitReader(up.Body, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(b)) > max {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, max)
	}
	if len(b) == 0 {
		return nil, "", fmt.Errorf("%w: empty file", ErrBadType)
	}

	mt := mimetype.Detect(b)
	if !matchesAny(mt, acceptedTypes[ext]) {
		return nil, "", fmt.Errorf("%w: %s content in %s file", ErrBadType, mt.String(), ext)
	}

	ct, ok := servedTypes[ext]
	if !ok {
		ct = mt.String()
	}
	return b, ct, nil
}

func matchesAny(mt *mimetype.MIME, types []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, t := range types {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}

// ContentTypeFor guesses the content type of a stored key from its bytes
// and extension.
func ContentTypeFor(key string, head []byte) string {
	if ct, ok := servedTypes[strings.ToLower(filepath.Ext(key))]; ok {
		return ct
	}
	return mimetype.Detect(head).String()
}
