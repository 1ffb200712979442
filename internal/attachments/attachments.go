// Package attachments stores résumé files outside the application store and
// hands back a stable reference for each saved file.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

// RefPrefix is the URL path stored attachments are served under.
const RefPrefix = "/images/"

var (
	ErrNotFound   = errors.New("attachment not found")
	ErrTooLarge   = errors.New("attachment too large")
	ErrBadType    = errors.New("attachment type not allowed")
	ErrInvalidKey = errors.New("invalid attachment key")
)

// Storage is a backend that keeps attachment bytes by key.
type Storage interface {
	Save(ctx context.Context, key, contentType string, body []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, key string) error
}

type Object struct {
	Key         string
	ContentType string
	Size        int64
}

// Upload is a file received from an applicant.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Stored describes a file that was saved successfully.
type Stored struct {
	Key         string
	Reference   string
	ContentType string
	Size        int64
}

// Manager validates uploads against a Policy and writes them to a Storage.
type Manager struct {
	storage Storage
	policy  Policy
}

func NewManager(storage Storage, policy Policy) *Manager {
	return &Manager{storage: storage, policy: policy}
}

// Put validates and saves up. It either returns a usable reference or an
// error with nothing left behind.
func (m *Manager) Put(ctx context.Context, up Upload) (Stored, error) {
	body, ct, err := m.policy.Read(up)
	if err != nil {
		return Stored{}, err
	}
	key := NewKey(up.Filename)
	if err := m.storage.Save(ctx, key, ct, body); err != nil {
		return Stored{}, fmt.Errorf("save %s: %w", key, err)
	}
	return Stored{Key: key, Reference: Reference(key), ContentType: ct, Size: int64(len(body))}, nil
}

func (m *Manager) Open(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	if err := CheckKey(key); err != nil {
		return nil, Object{}, err
	}
	return m.storage.Open(ctx, key)
}

func (m *Manager) Remove(ctx context.Context, key string) error {
	if err := CheckKey(key); err != nil {
		return err
	}
	return m.storage.Delete(ctx, key)
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewKey builds a unique storage key that keeps a readable form of the
// original file name, e.g. 01J...-my_resume.pdf.
func NewKey(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafeName.ReplaceAllString(stem, "_"), "._-")
	if len(stem) > 64 {
		stem = stem[:64]
	}
	if stem == "" {
		stem = "resume"
	}
	return ulid.Make().String() + "-" + stem + ext
}

func Reference(key string) string {
	return RefPrefix + key
}

// KeyFromReference is the inverse of Reference.
func KeyFromReference(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, RefPrefix)
	return key, CheckKey(key) == nil
}

// isUploadKey reports whether name has the NewKey shape: a ULID, a dash and
// a sanitized file name.
func isUploadKey(name string) bool {
	if len(name) <= ulid.EncodedSize+1 || name[ulid.EncodedSize] != '-' {
		return false
	}
	if _, err := ulid.ParseStrict(name[:ulid.EncodedSize]); err != nil {
		return false
	}
	return CheckKey(name) == nil
}

// CheckKey rejects hidden names and keys that could escape the storage namespace.
func CheckKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) || unsafeName.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}
