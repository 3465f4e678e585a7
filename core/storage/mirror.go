package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Mirror copies side-cache thumbnails to an object storage bucket under a key prefix.
type Mirror struct {
	client Client
	bucket string
	prefix string
}

// NewMirror creates a mirror writing to bucket/prefix.
func NewMirror(client Client, bucket, prefix string) *Mirror {
	return &Mirror{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Bucket returns the target bucket name.
func (m *Mirror) Bucket() string {
	return m.bucket
}

// Key maps a thumbnail name to its object key.
func (m *Mirror) Key(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

// Upload stores data as the named thumbnail.
func (m *Mirror) Upload(ctx context.Context, name string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, m.Key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return fmt.Errorf("failed to upload thumbnail %s: %w", name, err)
	}
	return nil
}

// Open streams the named thumbnail from the bucket.
func (m *Mirror) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, m.Key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open thumbnail %s: %w", name, err)
	}
	return obj, nil
}

// Remove deletes the named thumbnail.
func (m *Mirror) Remove(ctx context.Context, name string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, m.Key(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove thumbnail %s: %w", name, err)
	}
	return nil
}

// List returns the names of every mirrored thumbnail, without the prefix.
func (m *Mirror) List(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if m.prefix != "" {
		opts.Prefix = m.prefix + "/"
	}

	var names []string
	for obj := range m.client.ListObjects(ctx, m.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list thumbnails: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, opts.Prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// BucketExists reports whether the target bucket exists.
func (m *Mirror) BucketExists(ctx context.Context) (bool, error) {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket %s: %w", m.bucket, err)
	}
	return exists, nil
}

// EnsureBucket creates the bucket when it does not exist. It reports whether it was created.
func (m *Mirror) EnsureBucket(ctx context.Context) (bool, error) {
	exists, err := m.BucketExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return false, fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}
	return true, nil
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".dds":
		return "image/vnd-ms.dds"
	default:
		return "application/octet-stream"
	}
}
