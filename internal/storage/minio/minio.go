package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

type Client interface {
	PutObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (info minio.UploadInfo, err error)
	PresignedGetObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		expires time.Duration,
		reqParams url.Values,
	) (u *url.URL, err error)
	RemoveObject(
		ctx context.Context,
		bucketName string,
		objectName string,
		opts minio.RemoveObjectOptions,
	) error
}

// Minio stores message attachments. Object keys live under the file/
// prefix so attachment blobs never collide with anything else in the
// bucket.
type Minio struct {
	mc         Client
	bucketName string
	expires    time.Duration
}

func New(mc Client, bucketName string, expires time.Duration) *Minio {
	return &Minio{
		mc:         mc,
		bucketName: bucketName,
		expires:    expires,
	}
}

func (m *Minio) SaveDocument(ctx context.Context, key string, contentType string, data []byte) error {
	const op = "storage.minio.SaveDocument"

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	reader := bytes.NewReader(data)

	_, err := m.mc.PutObject(
		ctx,
		m.bucketName,
		key,
		reader,
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *Minio) DocumentURL(ctx context.Context, key string) (string, error) {
	const op = "storage.minio.DocumentURL"

	url, err := m.mc.PresignedGetObject(ctx, m.bucketName, key, m.expires, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return url.String(), nil
}

func (m *Minio) DeleteDocument(ctx context.Context, key string) error {
	const op = "storage.minio.DeleteDocument"

	err := m.mc.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
