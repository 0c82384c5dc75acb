package config

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DOCSTORE_BACKEND", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	cfg := Load()
	assert.Equal(t, "firestore", cfg.DocstoreBackend)
	assert.Equal(t, 200, cfg.MaxUploadMB)
	assert.True(t, cfg.NeedsFirebase())
}

func TestValidate(t *testing.T) {
	cfg := &Config{AuthMode: "jwt", DocstoreBackend: "memory", StorageBackend: "memory", MaxUploadMB: 10}
	assert.Error(t, cfg.Validate(), "jwt needs a secret")

	cfg.JWTSecret = "secret"
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.NeedsFirebase())

	cfg.DocstoreBackend = "mongo"
	assert.Error(t, cfg.Validate())
	cfg.DocstoreBackend = "memory"

	cfg.StorageBackend = "firebase"
	assert.Error(t, cfg.Validate(), "firebase storage needs a bucket")
}

func TestOpenMemoryBackendsAreClosable(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{DocstoreBackend: "memory", StorageBackend: "memory"}

	store, err := OpenDocumentStore(ctx, cfg, nil, zap.NewNop())
	require.NoError(t, err)
	_, err = store.Create(ctx, "posts", docstore.Fields{"title": "t"})
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	gateway, err := OpenStorageGateway(ctx, cfg, nil, zap.NewNop())
	require.NoError(t, err)
	url, err := gateway.Upload(ctx, "posts", &storage.File{Name: "a.mp4", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.NoError(t, gateway.Close())
}

func TestOpenFirebaseBackendsRequireApp(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{DocstoreBackend: "firestore", StorageBackend: "firebase"}

	_, err := OpenDocumentStore(ctx, cfg, nil, zap.NewNop())
	assert.Error(t, err)
	_, err = OpenStorageGateway(ctx, cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
