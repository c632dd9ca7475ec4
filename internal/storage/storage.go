package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a root directory and serves them from
// baseURL. Keys are validated so they cannot escape the root.
type LocalStore struct {
	keys    *keyResolver
	baseURL string
}

func NewLocal(root string, baseURL string) (*LocalStore, error) {
	keys, err := newKeyResolver(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(keys.rootAbs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &LocalStore{keys: keys, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) RootAbs() string {
	return s.keys.rootAbs
}

func (s *LocalStore) Put(_ context.Context, key string, _ string, data []byte) (string, error) {
	resolved, err := s.keys.Resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create parent directory: %w", err)
	}

	tmp := resolved + tmpSuffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", key, err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit %q: %w", key, err)
	}

	return s.URL(key), nil
}

func (s *LocalStore) URL(key string) string {
	clean := path.Clean("/" + strings.ReplaceAll(key, `\`, "/"))
	escaped := (&url.URL{Path: clean}).EscapedPath()
	return s.baseURL + escaped
}

// Handler serves stored objects. Directory listings are not exposed.
func (s *LocalStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.keys.rootAbs))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
