package services

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Presigner is the part of *minio.Client used to sign image URLs.
type Presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// ImageURLs turns product image object keys into time-limited URLs. Images
// that are already absolute URLs are returned untouched.
type ImageURLs struct {
	minio  Presigner
	bucket string
	ttl    time.Duration
}

func NewImageURLs(minio Presigner, bucket string, ttl time.Duration) *ImageURLs {
	return &ImageURLs{minio: minio, bucket: bucket, ttl: ttl}
}

func (i *ImageURLs) SignedURL(ctx context.Context, image string) (string, error) {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image, nil
	}
	key := strings.TrimPrefix(image, "/")
	key = strings.TrimPrefix(key, i.bucket+"/")

	u, err := i.minio.PresignedGetObject(ctx, i.bucket, key, i.ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
