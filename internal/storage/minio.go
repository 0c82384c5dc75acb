package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3-compatible bucket
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	PublicURL string // base URL clients use to fetch objects
}

// S3Gateway uploads to an S3-compatible bucket through MinIO's client
type S3Gateway struct {
	cfg    S3Config
	client *minio.Client
}

func NewS3Gateway(cfg S3Config) (*S3Gateway, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if cfg.PublicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicURL = scheme + "://" + endpoint
	}
	cfg.PublicURL = strings.TrimSuffix(cfg.PublicURL, "/")
	return &S3Gateway{cfg: cfg, client: cl}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (g *S3Gateway) EnsureBucket(ctx context.Context) error {
	exists, err := g.client.BucketExists(ctx, g.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return g.client.MakeBucket(ctx, g.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (g *S3Gateway) Upload(ctx context.Context, folder string, f *File) (string, error) {
	if err := validate(f); err != nil {
		return "", err
	}
	key := objectKey(folder, f.Name)
	size := f.Size
	if size == 0 {
		size = -1
	}
	_, err := g.client.PutObject(ctx, g.cfg.Bucket, key, f.Body, size,
		minio.PutObjectOptions{ContentType: contentType(f)})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return g.objectURL(key), nil
}

func (g *S3Gateway) Delete(ctx context.Context, rawURL string) error {
	key, err := g.keyFromURL(rawURL)
	if err != nil {
		return err
	}
	return g.client.RemoveObject(ctx, g.cfg.Bucket, key, minio.RemoveObjectOptions{})
}

func (g *S3Gateway) objectURL(key string) string {
	return g.cfg.PublicURL + "/" + g.cfg.Bucket + "/" + (&url.URL{Path: key}).EscapedPath()
}

func (g *S3Gateway) keyFromURL(rawURL string) (string, error) {
	prefix := g.cfg.PublicURL + "/" + g.cfg.Bucket + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", fmt.Errorf("url %q is not in bucket %s", rawURL, g.cfg.Bucket)
	}
	return url.PathUnescape(strings.TrimPrefix(rawURL, prefix))
}
