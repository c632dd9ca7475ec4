package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"shop-backend/pkg/apierror"
)

const tmpSuffix = ".tmp"

// keyResolver maps slash-separated object keys onto files below rootAbs.
type keyResolver struct {
	rootAbs string
}

func newKeyResolver(root string) (*keyResolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &keyResolver{rootAbs: rootAbs}, nil
}

// Resolve returns the absolute file path for key. The key must name a file
// strictly inside the root.
func (k *keyResolver) Resolve(key string) (string, error) {
	normalized := strings.Trim(strings.ReplaceAll(strings.TrimSpace(key), `\`, "/"), "/")
	if normalized == "" {
		return "", apierror.New("INVALID_KEY", "object key is empty", key, http.StatusBadRequest)
	}

	if hasControlCharacters(normalized) {
		return "", apierror.New("INVALID_KEY", "object key contains invalid characters", key, http.StatusBadRequest)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.New("PATH_TRAVERSAL", "path traversal attempt detected", key, http.StatusForbidden)
		}
	}

	if strings.HasSuffix(normalized, tmpSuffix) {
		return "", apierror.New("INVALID_KEY", "object key uses a reserved suffix", key, http.StatusBadRequest)
	}

	cleanRel := filepath.Clean(filepath.FromSlash(normalized))
	if cleanRel == "." {
		return "", apierror.New("INVALID_KEY", "object key is empty", key, http.StatusBadRequest)
	}

	resolved, err := filepath.Abs(filepath.Join(k.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if !isWithinRoot(k.rootAbs, resolved) || resolved == k.rootAbs {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside storage root", key, http.StatusForbidden)
	}

	return resolved, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	return strings.HasPrefix(candidateAbs, rootAbs+string(filepath.Separator))
}
