package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/metrics"
	"github.com/anonto42/aora/backend/internal/models"
	"github.com/anonto42/aora/backend/internal/storage"
)

const (
	postsCollection = "posts"
	mediaFolder     = "posts"
)

// NewPost carries the input of an upload
type NewPost struct {
	UserID    string
	Creator   string
	Title     string
	Video     *storage.File
	Thumbnail *storage.File
}

// PostEdit is the complete replacement field set of a post. A non-nil Video or
// Thumbnail replaces the corresponding URL with a fresh upload; otherwise the stored
// URL is kept. VideoURL and ThumbnailURL may be left empty.
type PostEdit struct {
	UserID       string
	Creator      string
	Title        string
	VideoURL     string
	ThumbnailURL string
	Video        *storage.File
	Thumbnail    *storage.File
	CreatedAt    time.Time // kept only when set
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	ListAllPosts(ctx context.Context) ([]models.Post, error)
	ListUserPosts(ctx context.Context, userID string) ([]models.Post, error)
	CreatePost(ctx context.Context, p NewPost) (*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	EditPost(ctx context.Context, postID string, edit PostEdit) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

// DocumentPostRepository implements PostRepository over a document store and a storage gateway
type DocumentPostRepository struct {
	store   docstore.Store
	gateway storage.Gateway
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPostRepository creates a new DocumentPostRepository
func NewPostRepository(store docstore.Store, gateway storage.Gateway, logger *zap.Logger, m *metrics.Metrics) *DocumentPostRepository {
	return &DocumentPostRepository{store: store, gateway: gateway, logger: logger, metrics: m}
}

// ListAllPosts returns every post in store order
func (r *DocumentPostRepository) ListAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.queryPosts(ctx, "list_all_posts", docstore.Query{})
}

// ListUserPosts returns the posts owned by userID
func (r *DocumentPostRepository) ListUserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	return r.queryPosts(ctx, "list_user_posts", docstore.Where("user_id", userID))
}

func (r *DocumentPostRepository) queryPosts(ctx context.Context, op string, q docstore.Query) ([]models.Post, error) {
	docs, err := r.store.Query(ctx, postsCollection, q)
	if err != nil {
		r.metrics.RepositoryError(op)
		return nil, readError(op, err)
	}
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, postFromDocument(doc))
	}
	return posts, nil
}

// CreatePost uploads the video and thumbnail, then writes the post document.
// Uploaded files are removed again when the document write fails.
func (r *DocumentPostRepository) CreatePost(ctx context.Context, p NewPost) (*models.Post, error) {
	if p.Video == nil || p.Thumbnail == nil {
		return nil, fmt.Errorf("%w: video and thumbnail are required", ErrUpload)
	}
	urls, err := r.upload(ctx, p.Video, p.Thumbnail)
	if err != nil {
		r.metrics.RepositoryError("create_post")
		return nil, err
	}

	post := models.Post{
		UserID:       p.UserID,
		Creator:      p.Creator,
		Title:        p.Title,
		VideoURL:     urls[0],
		ThumbnailURL: urls[1],
	}
	fields := postFields(post)
	fields["createdAt"] = docstore.ServerTimestamp

	id, err := r.store.Create(ctx, postsCollection, fields)
	if err != nil {
		r.metrics.RepositoryError("create_post")
		r.discard(ctx, urls...)
		return nil, writeError("create post", err)
	}

	created, err := r.GetPost(ctx, id)
	if err != nil {
		// the post exists; only the timestamp read-back failed
		r.logger.Warn("read back created post", zap.String("post_id", id), zap.Error(err))
		post.ID = id
		return &post, nil
	}
	return created, nil
}

// GetPost fetches a single post
func (r *DocumentPostRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	doc, err := r.store.Get(ctx, postsCollection, postID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			r.metrics.RepositoryError("get_post")
		}
		return nil, readError("get post "+postID, err)
	}
	post := postFromDocument(doc)
	return &post, nil
}

// EditPost uploads replacement media, overwrites the whole post document and
// returns the stored result. Carried URLs must match the stored ones; media only
// changes through an upload. Replaced objects are deleted once the write succeeds.
func (r *DocumentPostRepository) EditPost(ctx context.Context, postID string, edit PostEdit) (*models.Post, error) {
	current, err := r.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if edit.VideoURL != "" && edit.VideoURL != current.VideoURL {
		return nil, fmt.Errorf("%w: video_url does not belong to post %s", ErrInvalidMedia, postID)
	}
	if edit.ThumbnailURL != "" && edit.ThumbnailURL != current.ThumbnailURL {
		return nil, fmt.Errorf("%w: thumbnail_url does not belong to post %s", ErrInvalidMedia, postID)
	}

	urls, err := r.upload(ctx, edit.Video, edit.Thumbnail)
	if err != nil {
		r.metrics.RepositoryError("edit_post")
		return nil, err
	}

	post := models.Post{
		UserID:       edit.UserID,
		Creator:      edit.Creator,
		Title:        edit.Title,
		VideoURL:     current.VideoURL,
		ThumbnailURL: current.ThumbnailURL,
	}
	var replaced []string
	if urls[0] != "" {
		replaced = append(replaced, current.VideoURL)
		post.VideoURL = urls[0]
	}
	if urls[1] != "" {
		replaced = append(replaced, current.ThumbnailURL)
		post.ThumbnailURL = urls[1]
	}

	fields := postFields(post)
	if !edit.CreatedAt.IsZero() {
		fields["createdAt"] = edit.CreatedAt
	}
	fields["updatedAt"] = docstore.ServerTimestamp

	if err := r.store.Set(ctx, postsCollection, postID, fields); err != nil {
		r.metrics.RepositoryError("edit_post")
		r.discard(ctx, urls...)
		return nil, writeError("edit post "+postID, err)
	}
	r.discard(ctx, replaced...)
	return r.GetPost(ctx, postID)
}

// DeletePost removes the bookmarks pointing at a post, then the post and its
// media. A failure leaves the post in place so the delete can be retried.
func (r *DocumentPostRepository) DeletePost(ctx context.Context, postID string) error {
	post, err := r.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	bookmarks, err := r.store.Query(ctx, bookmarksCollection, docstore.Where("video_id", postID))
	if err != nil {
		r.metrics.RepositoryError("delete_post")
		return readError("list bookmarks of "+postID, err)
	}
	for _, b := range bookmarks {
		if err := r.store.Delete(ctx, bookmarksCollection, b.ID); err != nil {
			r.metrics.RepositoryError("delete_post")
			return writeError("delete bookmark "+b.ID, err)
		}
	}

	if err := r.store.Delete(ctx, postsCollection, postID); err != nil {
		r.metrics.RepositoryError("delete_post")
		return writeError("delete post "+postID, err)
	}
	r.discard(ctx, post.VideoURL, post.ThumbnailURL)
	return nil
}

// upload stores the non-nil files in parallel. The result has one URL per input,
// "" for nil inputs. On failure, files that did upload are removed.
func (r *DocumentPostRepository) upload(ctx context.Context, files ...*storage.File) ([]string, error) {
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		if f == nil {
			continue
		}
		i, f := i, f
		g.Go(func() error {
			start := time.Now()
			url, err := r.gateway.Upload(gctx, mediaFolder, f)
			r.metrics.UploadObserved(time.Since(start), err)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.discard(ctx, urls...)
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	return urls, nil
}

// discard deletes uploaded objects; failures are logged only
func (r *DocumentPostRepository) discard(ctx context.Context, urls ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := r.gateway.Delete(ctx, url); err != nil {
			r.logger.Warn("remove orphaned upload", zap.String("url", url), zap.Error(err))
		}
	}
}

func postFields(p models.Post) docstore.Fields {
	return docstore.Fields{
		"user_id":       p.UserID,
		"creator":       p.Creator,
		"title":         p.Title,
		"video_url":     p.VideoURL,
		"thumbnail_url": p.ThumbnailURL,
	}
}

func postFromDocument(doc docstore.Document) models.Post {
	return models.Post{
		ID:           doc.ID,
		UserID:       doc.String("user_id"),
		Creator:      doc.String("creator"),
		Title:        doc.String("title"),
		VideoURL:     doc.String("video_url"),
		ThumbnailURL: doc.String("thumbnail_url"),
		CreatedAt:    doc.Time("createdAt"),
		UpdatedAt:    doc.Time("updatedAt"),
	}
}
