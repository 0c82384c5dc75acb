package storage

import (
	"context"
	"strings"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("posts", "../../etc/my video (1).mp4")
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, "-my_video_1_.mp4"))
	assert.NotContains(t, strings.TrimPrefix(key, "posts/"), "/")

	assert.True(t, strings.HasSuffix(objectKey("posts", ""), "-file"))
}

func TestMemoryGatewayUploadDelete(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	url, err := g.Upload(ctx, "posts", &File{Name: "clip.mp4", Body: strings.NewReader("video-bytes")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "memory://posts/"))

	data, ok := g.Object(url)
	require.True(t, ok)
	assert.Equal(t, "video-bytes", string(data))

	require.NoError(t, g.Delete(ctx, url))
	assert.Equal(t, 0, g.Len())
}

func TestMemoryGatewayRejectsEmptyFile(t *testing.T) {
	_, err := NewMemoryGateway().Upload(context.Background(), "posts", nil)
	assert.Error(t, err)
}

func TestFirebaseURLRoundTrip(t *testing.T) {
	g := NewFirebaseGateway(nil, "aora.appspot.com")
	url := g.downloadURL("posts/abc-clip.mp4", "tok")
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/aora.appspot.com/o/posts%2Fabc-clip.mp4?alt=media&token=tok", url)

	key, err := g.keyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, "posts/abc-clip.mp4", key)

	_, err = g.keyFromURL("https://example.com/other")
	assert.Error(t, err)
}

func TestFirebaseGatewayClosesClient(t *testing.T) {
	client, err := gcs.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)

	g := NewFirebaseGateway(client, "aora.appspot.com")
	require.NotNil(t, g.bucket)
	assert.NoError(t, g.Close())

	assert.NoError(t, NewFirebaseGateway(nil, "aora.appspot.com").Close())
}

func TestS3URLRoundTrip(t *testing.T) {
	g, err := NewS3Gateway(S3Config{Endpoint: "http://localhost:9000", Bucket: "media"})
	require.NoError(t, err)

	url := g.objectURL("posts/abc-clip.mp4")
	assert.Equal(t, "http://localhost:9000/media/posts/abc-clip.mp4", url)

	key, err := g.keyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, "posts/abc-clip.mp4", key)
}
