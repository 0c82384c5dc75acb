package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/aora/backend/internal/models"
	"github.com/anonto42/aora/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository // resolves the creator name on upload
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:authId/posts", h.GetUserPosts)
}

// GetPosts returns the whole feed
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postRepository.ListAllPosts(c.Request().Context())
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetUserPosts returns the posts of one user
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.postRepository.ListUserPosts(c.Request().Context(), c.Param("authId"))
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost uploads a video with its thumbnail and creates the post
func (h *PostHandler) CreatePost(c echo.Context) error {
	authID := getAuthIDFromContext(c)
	ctx := c.Request().Context()

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByAuthID(ctx, authID)
	if err != nil {
		return repositoryError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusForbidden, "Register a profile before uploading")
	}

	video, videoBody, err := formFile(c, "video")
	if err != nil {
		return err
	}
	if videoBody != nil {
		defer videoBody.Close()
	}
	thumbnail, thumbnailBody, err := formFile(c, "thumbnail")
	if err != nil {
		return err
	}
	if thumbnailBody != nil {
		defer thumbnailBody.Close()
	}
	if video == nil || thumbnail == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Video and thumbnail are required")
	}

	post, err := h.postRepository.CreatePost(ctx, repositories.NewPost{
		UserID:    authID,
		Creator:   user.Username,
		Title:     req.Title,
		Video:     video,
		Thumbnail: thumbnail,
	})
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost replaces the title and optionally the media of an owned post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	authID := getAuthIDFromContext(c)
	postID := c.Param("id")
	ctx := c.Request().Context()

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existingPost, err := h.postRepository.GetPost(ctx, postID)
	if err != nil {
		return repositoryError(err)
	}
	// Ensure the user updating the post is the owner
	if existingPost.UserID != authID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	video, videoBody, err := formFile(c, "video")
	if err != nil {
		return err
	}
	if videoBody != nil {
		defer videoBody.Close()
	}
	thumbnail, thumbnailBody, err := formFile(c, "thumbnail")
	if err != nil {
		return err
	}
	if thumbnailBody != nil {
		defer thumbnailBody.Close()
	}

	edit := repositories.PostEdit{
		UserID:       existingPost.UserID,
		Creator:      existingPost.Creator,
		Title:        req.Title,
		VideoURL:     existingPost.VideoURL,
		ThumbnailURL: existingPost.ThumbnailURL,
		Video:        video,
		Thumbnail:    thumbnail,
		CreatedAt:    existingPost.CreatedAt,
	}

	post, err := h.postRepository.EditPost(ctx, postID, edit)
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes an owned post
func (h *PostHandler) DeletePost(c echo.Context) error {
	authID := getAuthIDFromContext(c)
	postID := c.Param("id")

	existingPost, err := h.postRepository.GetPost(c.Request().Context(), postID)
	if err != nil {
		return repositoryError(err)
	}
	// Ensure the user deleting the post is the owner
	if existingPost.UserID != authID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return repositoryError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
