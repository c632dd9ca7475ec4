package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shop-backend/pkg/apierror"
)

func TestKeyResolverResolve(t *testing.T) {
	t.Parallel()

	resolver, err := newKeyResolver(t.TempDir())
	require.NoError(t, err)

	t.Run("avatar key resolves inside root", func(t *testing.T) {
		resolved, resolveErr := resolver.Resolve("avatars/u1/pic.jpg")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(resolver.rootAbs, "avatars", "u1", "pic.jpg"), resolved)
	})

	t.Run("leading slash and backslashes are normalized", func(t *testing.T) {
		resolved, resolveErr := resolver.Resolve(`/avatars\u1\pic.jpg`)
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(resolver.rootAbs, "avatars", "u1", "pic.jpg"), resolved)
	})

	t.Run("root is not an object", func(t *testing.T) {
		for _, key := range []string{"", "/", "./"} {
			_, resolveErr := resolver.Resolve(key)
			require.True(t, apierror.Is(resolveErr, "INVALID_KEY"), key)
		}
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		_, resolveErr := resolver.Resolve("avatars/../../etc/passwd")
		require.True(t, apierror.Is(resolveErr, "PATH_TRAVERSAL"))
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := resolver.Resolve("avatars\n/pic.jpg")
		require.Error(t, resolveErr)

		_, resolveErr = resolver.Resolve("avatars\x00/pic.jpg")
		require.Error(t, resolveErr)
	})

	t.Run("temporary suffix is reserved", func(t *testing.T) {
		_, resolveErr := resolver.Resolve("avatars/pic.jpg.tmp")
		require.True(t, apierror.Is(resolveErr, "INVALID_KEY"))
	})
}

func TestNewKeyResolverRequiresRoot(t *testing.T) {
	t.Parallel()

	_, err := newKeyResolver("  ")
	require.Error(t, err)
}
