package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const firebaseDownloadHost = "https://firebasestorage.googleapis.com"

// FirebaseGateway uploads to a Firebase Storage bucket and returns token download URLs,
// the same URLs the client SDK's getDownloadURL produces.
type FirebaseGateway struct {
	client     *gcs.Client
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseGateway uploads into bucketName through client. The gateway owns the
// client and closes it in Close.
func NewFirebaseGateway(client *gcs.Client, bucketName string) *FirebaseGateway {
	g := &FirebaseGateway{client: client, bucketName: bucketName}
	if client != nil {
		g.bucket = client.Bucket(bucketName)
	}
	return g
}

// Close releases the storage client
func (g *FirebaseGateway) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *FirebaseGateway) Upload(ctx context.Context, folder string, f *File) (string, error) {
	if err := validate(f); err != nil {
		return "", err
	}
	key := objectKey(folder, f.Name)
	token := uuid.NewString()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType(f)
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if _, err := io.Copy(w, f.Body); err != nil {
		// cancelling the context aborts the resumable upload
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", key, err)
	}
	return g.downloadURL(key, token), nil
}

func (g *FirebaseGateway) Delete(ctx context.Context, rawURL string) error {
	key, err := g.keyFromURL(rawURL)
	if err != nil {
		return err
	}
	return g.bucket.Object(key).Delete(ctx)
}

func (g *FirebaseGateway) downloadURL(key, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		firebaseDownloadHost, g.bucketName, url.PathEscape(key), token)
}

func (g *FirebaseGateway) keyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse object url: %w", err)
	}
	prefix := "/v0/b/" + g.bucketName + "/o/"
	escaped := u.EscapedPath()
	if !strings.HasPrefix(escaped, prefix) {
		return "", fmt.Errorf("url %q is not in bucket %s", rawURL, g.bucketName)
	}
	return url.PathUnescape(strings.TrimPrefix(escaped, prefix))
}
