package memory

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/model"
)

func TestCommentListTopLevelClampsBounds(t *testing.T) {
	repo := NewCommentRepository()
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, model.Comment{Text: text, UserID: primitive.NewObjectID()})
		require.NoError(t, err)
	}

	items, total, err := repo.ListTopLevel(ctx, -5, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(3), total)

	items, _, err = repo.ListTopLevel(ctx, 2, math.MaxInt64)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, _, err = repo.ListTopLevel(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, items)
}
