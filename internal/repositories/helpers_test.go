package repositories

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/storage"
)

var errBackend = errors.New("backend unavailable")

// recordingStore counts queries per collection and can fail selected operations
type recordingStore struct {
	docstore.Store

	mu      sync.Mutex
	queries map[string]int

	failQuery    map[string]bool
	failDelete   map[string]bool
	failCreate   bool
	failSet      bool
	hideAfterSet bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		Store:      docstore.NewMemoryStore(),
		queries:    make(map[string]int),
		failQuery:  make(map[string]bool),
		failDelete: make(map[string]bool),
	}
}

func (s *recordingStore) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	s.mu.Lock()
	s.queries[collection]++
	fail := s.failQuery[collection]
	s.mu.Unlock()
	if fail {
		return nil, errBackend
	}
	return s.Store.Query(ctx, collection, q)
}

func (s *recordingStore) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if s.failCreate {
		return "", errBackend
	}
	return s.Store.Create(ctx, collection, fields)
}

func (s *recordingStore) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if s.failSet {
		return errBackend
	}
	if err := s.Store.Set(ctx, collection, id, fields); err != nil {
		return err
	}
	if s.hideAfterSet {
		// simulates a concurrent delete between the write and the read-back
		return s.Store.Delete(ctx, collection, id)
	}
	return nil
}

func (s *recordingStore) Delete(ctx context.Context, collection, id string) error {
	if s.failDelete[collection] {
		return errBackend
	}
	return s.Store.Delete(ctx, collection, id)
}

func (s *recordingStore) queryCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[collection]
}

// flakyGateway fails uploads of files whose name starts with "bad"
type flakyGateway struct {
	*storage.MemoryGateway
}

func (g flakyGateway) Upload(ctx context.Context, folder string, f *storage.File) (string, error) {
	if f != nil && strings.HasPrefix(f.Name, "bad") {
		return "", errBackend
	}
	return g.MemoryGateway.Upload(ctx, folder, f)
}

func file(name, content string) *storage.File {
	return &storage.File{Name: name, ContentType: "video/mp4", Size: int64(len(content)), Body: strings.NewReader(content)}
}

type fixture struct {
	store     *recordingStore
	gateway   *storage.MemoryGateway
	posts     *DocumentPostRepository
	bookmarks *DocumentBookmarkRepository
	users     *DocumentUserRepository
}

func newFixture() *fixture {
	store := newRecordingStore()
	gw := storage.NewMemoryGateway()
	logger := zap.NewNop()
	posts := NewPostRepository(store, flakyGateway{gw}, logger, nil)
	return &fixture{
		store:     store,
		gateway:   gw,
		posts:     posts,
		bookmarks: NewBookmarkRepository(store, posts, logger, nil),
		users:     NewUserRepository(store, logger, nil),
	}
}
