package models

import "time"

// Bookmark marks a post as saved by a user. At most one exists per (user, video) pair.
type Bookmark struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	VideoID string `json:"video_id"`
}

// BookmarkedPostView joins a bookmark with the display fields of its post
type BookmarkedPostView struct {
	ID           string    `json:"id"` // bookmark id
	UserID       string    `json:"user_id"`
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Creator      string    `json:"creator"`
	ThumbnailURL string    `json:"thumbnail_url"`
	VideoURL     string    `json:"video_url"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BookmarkStatus is the outcome of a bookmark toggle
type BookmarkStatus string

const (
	BookmarkAdded   BookmarkStatus = "added"
	BookmarkRemoved BookmarkStatus = "removed"
)

// Message is the notification text shown to the user
func (s BookmarkStatus) Message() string {
	if s == BookmarkAdded {
		return "Added to bookmark"
	}
	return "Removed from bookmark"
}
