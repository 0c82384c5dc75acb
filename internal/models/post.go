package models

import "time"

// Post represents a video post stored in the "posts" collection
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"` // auth id of the owner
	Creator      string    `json:"creator"`
	Title        string    `json:"title"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// CreatePostRequest defines the form fields accompanying a video upload
type CreatePostRequest struct {
	Title string `form:"title" validate:"required,min=1,max=100"`
}

// UpdatePostRequest defines the form fields of an edit. Media is replaced only by
// uploading new files alongside it.
type UpdatePostRequest struct {
	Title string `form:"title" validate:"required,min=1,max=100"`
}
