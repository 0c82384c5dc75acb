package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/models"
)

func TestListBookmarkedPostsSkipsPostsWhenNoBookmarks(t *testing.T) {
	f := newFixture()
	createPost(t, f, "u2", "someone else's")
	before := f.store.queryCount(postsCollection)

	views, err := f.bookmarks.ListBookmarkedPosts(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
	assert.Equal(t, before, f.store.queryCount(postsCollection), "posts must not be queried")
}

func TestToggleBookmarkTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	status, err := f.bookmarks.ToggleBookmark(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.BookmarkAdded, status)
	assert.Equal(t, "Added to bookmark", status.Message())

	marked, err := f.bookmarks.IsBookmarked(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, marked)

	status, err = f.bookmarks.ToggleBookmark(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.BookmarkRemoved, status)
	assert.Equal(t, "Removed from bookmark", status.Message())

	bookmarks, err := f.bookmarks.ListUserBookmarks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
}

func TestToggleBookmarkIsPerPair(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, pair := range [][2]string{{"u1", "p1"}, {"u1", "p2"}, {"u2", "p1"}} {
		status, err := f.bookmarks.ToggleBookmark(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, models.BookmarkAdded, status)
	}

	bookmarks, err := f.bookmarks.ListUserBookmarks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	for _, b := range bookmarks {
		assert.Equal(t, "u1", b.UserID)
		assert.Equal(t, BookmarkID("u1", b.VideoID), b.ID)
	}
}

func TestToggleBookmarkRemovesLegacyRecords(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.store.Create(ctx, bookmarksCollection, docstore.Fields{"user_id": "u1", "video_id": "p1"})
	require.NoError(t, err)

	status, err := f.bookmarks.ToggleBookmark(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.BookmarkRemoved, status)

	marked, err := f.bookmarks.IsBookmarked(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, marked)

	status, err = f.bookmarks.ToggleBookmark(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.BookmarkAdded, status)
}

func TestToggleBookmarkReadError(t *testing.T) {
	f := newFixture()
	f.store.failQuery[bookmarksCollection] = true

	_, err := f.bookmarks.ToggleBookmark(context.Background(), "u1", "p1")
	assert.ErrorIs(t, err, ErrRead)
}

func TestListBookmarkedPostsDropsDanglingBookmarks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p1 := createPost(t, f, "author", "p1")

	_, err := f.bookmarks.ToggleBookmark(ctx, "u1", p1.ID)
	require.NoError(t, err)
	_, err = f.bookmarks.ToggleBookmark(ctx, "u1", "p2")
	require.NoError(t, err)

	views, err := f.bookmarks.ListBookmarkedPosts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, BookmarkID("u1", p1.ID), v.ID)
	assert.Equal(t, "u1", v.UserID)
	assert.Equal(t, p1.ID, v.VideoID)
	assert.Equal(t, p1.Title, v.Title)
	assert.Equal(t, p1.Creator, v.Creator)
	assert.Equal(t, p1.ThumbnailURL, v.ThumbnailURL)
	assert.Equal(t, p1.VideoURL, v.VideoURL)
	assert.True(t, p1.CreatedAt.Equal(v.CreatedAt))
}

func TestListBookmarkedPostsPropagatesPostReadError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.bookmarks.ToggleBookmark(ctx, "u1", "p1")
	require.NoError(t, err)
	f.store.failQuery[postsCollection] = true

	_, err = f.bookmarks.ListBookmarkedPosts(ctx, "u1")
	assert.ErrorIs(t, err, ErrRead)
}

func TestJoinBookmarkedPosts(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "p1", Title: "one", Creator: "ana", VideoURL: "v1", ThumbnailURL: "t1", CreatedAt: created},
		{ID: "p2", Title: "two", Creator: "bo", VideoURL: "v2", ThumbnailURL: "t2"},
		{ID: "p3", Title: "three", Creator: "cy", VideoURL: "v3", ThumbnailURL: "t3"},
	}
	bookmarks := []models.Bookmark{
		{ID: "b3", UserID: "u1", VideoID: "p3"},
		{ID: "b1", UserID: "u1", VideoID: "p1"},
		{ID: "bx", UserID: "u1", VideoID: "missing"},
	}

	views := JoinBookmarkedPosts(bookmarks, posts)

	assert.Equal(t, []models.BookmarkedPostView{
		{ID: "b1", UserID: "u1", VideoID: "p1", Title: "one", Creator: "ana", ThumbnailURL: "t1", VideoURL: "v1", CreatedAt: created},
		{ID: "b3", UserID: "u1", VideoID: "p3", Title: "three", Creator: "cy", ThumbnailURL: "t3", VideoURL: "v3"},
	}, views)

	assert.Empty(t, JoinBookmarkedPosts(nil, posts))
	assert.Empty(t, JoinBookmarkedPosts(bookmarks, nil))
}

func TestBookmarkIDIsDeterministic(t *testing.T) {
	assert.Equal(t, BookmarkID("u1", "p1"), BookmarkID("u1", "p1"))
	assert.NotEqual(t, BookmarkID("u1", "p1"), BookmarkID("u1", "p2"))
	// the separator keeps ("u1p", "1") apart from ("u1", "p1")
	assert.NotEqual(t, BookmarkID("u1p", "1"), BookmarkID("u1", "p1"))
	assert.Len(t, BookmarkID("u", "v"), 32)
}
