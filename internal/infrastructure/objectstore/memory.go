package objectstore

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

type object struct {
	contentType string
	data        []byte
}

// Memory keeps uploads in process and serves them under baseURL.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

// NewMemory creates an in-process object store; baseURL is the public
// prefix the uploads are served under, e.g. "http://localhost:8080/uploads".
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]object),
	}
}

func (m *Memory) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyObject
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[path] = object{contentType: contentType, data: buf}
	m.mu.Unlock()

	return m.baseURL + "/" + path, nil
}

// Object returns a stored upload
func (m *Memory) Object(path string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[path]
	return o.data, o.contentType, ok
}

// ServeHTTP serves uploads by path. Mount it with http.StripPrefix.
func (m *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := m.Object(strings.TrimPrefix(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	_, _ = w.Write(data)
}
