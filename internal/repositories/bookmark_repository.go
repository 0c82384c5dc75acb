package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/metrics"
	"github.com/anonto42/aora/backend/internal/models"
)

const bookmarksCollection = "bookmarks"

// BookmarkRepository defines the interface for bookmark operations
type BookmarkRepository interface {
	ListUserBookmarks(ctx context.Context, userID string) ([]models.Bookmark, error)
	ListBookmarkedPosts(ctx context.Context, userID string) ([]models.BookmarkedPostView, error)
	ToggleBookmark(ctx context.Context, userID, videoID string) (models.BookmarkStatus, error)
	IsBookmarked(ctx context.Context, userID, videoID string) (bool, error)
}

// DocumentBookmarkRepository implements BookmarkRepository over a document store
type DocumentBookmarkRepository struct {
	store   docstore.Store
	posts   PostRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewBookmarkRepository creates a new DocumentBookmarkRepository
func NewBookmarkRepository(store docstore.Store, posts PostRepository, logger *zap.Logger, m *metrics.Metrics) *DocumentBookmarkRepository {
	return &DocumentBookmarkRepository{store: store, posts: posts, logger: logger, metrics: m}
}

// BookmarkID is the document id of the bookmark for a (user, video) pair.
// Using it as the key makes a second bookmark for the same pair impossible.
func BookmarkID(userID, videoID string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + videoID))
	return hex.EncodeToString(sum[:16])
}

// ListUserBookmarks returns the raw bookmarks of a user
func (r *DocumentBookmarkRepository) ListUserBookmarks(ctx context.Context, userID string) ([]models.Bookmark, error) {
	docs, err := r.store.Query(ctx, bookmarksCollection, docstore.Where("user_id", userID))
	if err != nil {
		r.metrics.RepositoryError("list_user_bookmarks")
		return nil, readError("list bookmarks", err)
	}
	bookmarks := make([]models.Bookmark, 0, len(docs))
	for _, doc := range docs {
		bookmarks = append(bookmarks, bookmarkFromDocument(doc))
	}
	return bookmarks, nil
}

// ListBookmarkedPosts returns the bookmarked posts of a user. Posts are not read at
// all when the user has no bookmarks; bookmarks of deleted posts are skipped.
func (r *DocumentBookmarkRepository) ListBookmarkedPosts(ctx context.Context, userID string) ([]models.BookmarkedPostView, error) {
	bookmarks, err := r.ListUserBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bookmarks) == 0 {
		return []models.BookmarkedPostView{}, nil
	}

	posts, err := r.posts.ListAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return JoinBookmarkedPosts(bookmarks, posts), nil
}

// JoinBookmarkedPosts pairs each post with the bookmark referencing it.
// Runs in O(len(bookmarks) + len(posts)); output follows post order.
func JoinBookmarkedPosts(bookmarks []models.Bookmark, posts []models.Post) []models.BookmarkedPostView {
	byVideo := make(map[string]models.Bookmark, len(bookmarks))
	for _, b := range bookmarks {
		if _, seen := byVideo[b.VideoID]; !seen {
			byVideo[b.VideoID] = b
		}
	}

	views := make([]models.BookmarkedPostView, 0, len(byVideo))
	for _, p := range posts {
		b, ok := byVideo[p.ID]
		if !ok {
			continue
		}
		views = append(views, models.BookmarkedPostView{
			ID:           b.ID,
			UserID:       b.UserID,
			VideoID:      p.ID,
			Title:        p.Title,
			Creator:      p.Creator,
			ThumbnailURL: p.ThumbnailURL,
			VideoURL:     p.VideoURL,
			CreatedAt:    p.CreatedAt,
		})
	}
	return views
}

// ToggleBookmark removes the user's bookmark on videoID if there is one and adds it otherwise
func (r *DocumentBookmarkRepository) ToggleBookmark(ctx context.Context, userID, videoID string) (models.BookmarkStatus, error) {
	id := BookmarkID(userID, videoID)

	// bookmarks written before keys were derived from the pair carry random ids
	removedLegacy, err := r.removeLegacy(ctx, id, userID, videoID)
	if err != nil {
		return "", err
	}
	if removedLegacy {
		r.metrics.BookmarkToggled(string(models.BookmarkRemoved))
		return models.BookmarkRemoved, nil
	}

	created, err := r.store.Toggle(ctx, bookmarksCollection, id, docstore.Fields{
		"user_id":  userID,
		"video_id": videoID,
	})
	if err != nil {
		r.metrics.RepositoryError("toggle_bookmark")
		return "", writeError("toggle bookmark", err)
	}

	status := models.BookmarkRemoved
	if created {
		status = models.BookmarkAdded
	}
	r.metrics.BookmarkToggled(string(status))
	r.logger.Debug("bookmark toggled",
		zap.String("user_id", userID), zap.String("video_id", videoID), zap.String("status", string(status)))
	return status, nil
}

func (r *DocumentBookmarkRepository) removeLegacy(ctx context.Context, id, userID, videoID string) (bool, error) {
	docs, err := r.store.Query(ctx, bookmarksCollection, docstore.Where("user_id", userID).And("video_id", videoID))
	if err != nil {
		r.metrics.RepositoryError("toggle_bookmark")
		return false, readError("find bookmark", err)
	}
	removed := false
	for _, doc := range docs {
		if doc.ID == id {
			continue
		}
		if err := r.store.Delete(ctx, bookmarksCollection, doc.ID); err != nil {
			r.metrics.RepositoryError("toggle_bookmark")
			return false, writeError("delete bookmark "+doc.ID, err)
		}
		removed = true
	}
	if !removed {
		return false, nil
	}
	// the keyed bookmark, if any, goes too so the pair ends up unbookmarked
	if err := r.store.Delete(ctx, bookmarksCollection, id); err != nil {
		return false, writeError("delete bookmark "+id, err)
	}
	return true, nil
}

// IsBookmarked reports whether the user has bookmarked videoID
func (r *DocumentBookmarkRepository) IsBookmarked(ctx context.Context, userID, videoID string) (bool, error) {
	docs, err := r.store.Query(ctx, bookmarksCollection,
		docstore.Where("user_id", userID).And("video_id", videoID).WithLimit(1))
	if err != nil {
		r.metrics.RepositoryError("is_bookmarked")
		return false, readError("find bookmark", err)
	}
	return len(docs) > 0, nil
}

func bookmarkFromDocument(doc docstore.Document) models.Bookmark {
	return models.Bookmark{
		ID:      doc.ID,
		UserID:  doc.String("user_id"),
		VideoID: doc.String("video_id"),
	}
}
