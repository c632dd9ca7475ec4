package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewLocal(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "avatars/u1/photo.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/uploads/avatars/u1/photo.jpg", url)

	content, err := os.ReadFile(filepath.Join(store.RootAbs(), "avatars", "u1", "photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(content))

	_, err = os.Stat(filepath.Join(store.RootAbs(), "avatars", "u1", "photo.jpg.tmp"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalStoreRejectsUnsafeKeys(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.jpg", "image/jpeg", []byte("x"))
	require.Error(t, err)

	_, err = store.Put(context.Background(), "/", "image/jpeg", []byte("x"))
	require.Error(t, err)
}

func TestLocalStoreHandler(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "avatars/a.jpg", "image/jpeg", []byte("hello"))
	require.NoError(t, err)

	handler := http.StripPrefix("/uploads", store.Handler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/avatars/a.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/avatars/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
