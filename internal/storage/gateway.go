package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// File is a client-supplied media file awaiting upload
type File struct {
	Name        string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.Reader
}

// Gateway durably stores files and hands back retrieval URLs
type Gateway interface {
	// Upload stores the file under folder and returns its URL.
	Upload(ctx context.Context, folder string, f *File) (string, error)
	// Delete removes a previously uploaded object by its URL.
	Delete(ctx context.Context, url string) error
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey builds a collision-free key under folder
func objectKey(folder, name string) string {
	base := unsafeName.ReplaceAllString(path.Base(name), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return path.Join(folder, uuid.NewString()+"-"+base)
}

func validate(f *File) error {
	if f == nil || f.Body == nil {
		return fmt.Errorf("empty file reference")
	}
	return nil
}

func contentType(f *File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return "application/octet-stream"
}
