package attachments

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"time"
)

// Blob keeps attachment bytes in the sqlite attachments table.
type Blob struct {
	DB *sql.DB
}

func (b *Blob) Save(ctx context.Context, key, contentType string, body []byte) error {
	_, err := b.DB.ExecContext(ctx, `
INSERT INTO attachments(key, content_type, bytes, stored_at)
VALUES(?,?,?,?);`,
		key,
		contentType,
		body,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (b *Blob) Open(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	var ct string
	var data []byte
	err := b.DB.QueryRowContext(ctx,
		`SELECT content_type, bytes FROM attachments WHERE key = ? LIMIT 1;`, key,
	).Scan(&ct, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Object{}, ErrNotFound
	}
	if err != nil {
		return nil, Object{}, err
	}
	if ct == "" {
		ct = ContentTypeFor(key, data)
	}
	return io.NopCloser(bytes.NewReader(data)), Object{Key: key, ContentType: ct, Size: int64(len(data))}, nil
}

func (b *Blob) Delete(ctx context.Context, key string) error {
	_, err := b.DB.ExecContext(ctx, `DELETE FROM attachments WHERE key = ?;`, key)
	return err
}
