package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const memoryScheme = "memory://"

// MemoryGateway keeps uploaded objects in process memory
type MemoryGateway struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{objects: make(map[string][]byte)}
}

func (g *MemoryGateway) Upload(ctx context.Context, folder string, f *File) (string, error) {
	if err := validate(f); err != nil {
		return "", err
	}
	data, err := io.ReadAll(f.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(folder, f.Name)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = data
	return memoryScheme + key, nil
}

func (g *MemoryGateway) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, memoryScheme)
	if !ok {
		return fmt.Errorf("url %q is not a memory object", url)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, key)
	return nil
}

// Object returns the stored bytes for url
func (g *MemoryGateway) Object(url string) ([]byte, bool) {
	key, ok := strings.CutPrefix(url, memoryScheme)
	if !ok {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	data, found := g.objects[key]
	return data, found
}

// Len reports how many objects are stored
func (g *MemoryGateway) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects)
}
