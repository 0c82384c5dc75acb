package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/aora/backend/internal/repositories"
)

// BookmarkHandler handles bookmark HTTP requests
type BookmarkHandler struct {
	bookmarkRepository repositories.BookmarkRepository
	postRepository     repositories.PostRepository
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(bookmarkRepo repositories.BookmarkRepository, postRepo repositories.PostRepository) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkRepository: bookmarkRepo,
		postRepository:     postRepo,
	}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.GET("/bookmarks", h.GetBookmarkedPosts)
	g.GET("/bookmarks/raw", h.GetBookmarks)
	g.GET("/posts/:id/bookmark", h.GetBookmarkState)
	g.POST("/posts/:id/bookmark", h.ToggleBookmark)
}

// GetBookmarkedPosts lists the caller's bookmarked posts
func (h *BookmarkHandler) GetBookmarkedPosts(c echo.Context) error {
	views, err := h.bookmarkRepository.ListBookmarkedPosts(c.Request().Context(), getAuthIDFromContext(c))
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": views})
}

// GetBookmarks lists the caller's bookmark records
func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	bookmarks, err := h.bookmarkRepository.ListUserBookmarks(c.Request().Context(), getAuthIDFromContext(c))
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": bookmarks})
}

// GetBookmarkState reports whether the caller bookmarked the post
func (h *BookmarkHandler) GetBookmarkState(c echo.Context) error {
	saved, err := h.bookmarkRepository.IsBookmarked(c.Request().Context(), getAuthIDFromContext(c), c.Param("id"))
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"bookmarked": saved}})
}

// ToggleBookmark adds or removes the caller's bookmark on a post
func (h *BookmarkHandler) ToggleBookmark(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")

	// Verify post exists
	if _, err := h.postRepository.GetPost(ctx, postID); err != nil {
		return repositoryError(err)
	}

	status, err := h.bookmarkRepository.ToggleBookmark(ctx, getAuthIDFromContext(c), postID)
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{
		"status":  status,
		"message": status.Message(),
	}})
}
