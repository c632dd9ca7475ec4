//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/database"
	"shop-backend/internal/model"
)

func TestAuditRepositoryLogAndQuery(t *testing.T) {
	url := os.Getenv("AUDIT_DATABASE_URL")
	if url == "" {
		t.Skip("AUDIT_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 2, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	repo := NewAuditRepository(db.Pool)
	actorID := uuid.NewString()
	started := time.Now().UTC().Add(-time.Second)

	for _, status := range []string{model.AuditStatusSuccess, model.AuditStatusFailure, model.AuditStatusSuccess} {
		require.NoError(t, repo.Log(ctx, model.AuditEntry{
			Action:     model.AuditActionSignIn,
			OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
			Actor:      model.AuditActor{UserID: actorID, Email: "a@shop.com", Role: "customer", IP: "10.0.0.1"},
			Status:     status,
			Resource:   "a@shop.com",
		}))
	}

	entries, meta, err := repo.Query(ctx, model.AuditQuery{
		ActorID: actorID,
		Status:  model.AuditStatusSuccess,
		From:    started.Format(time.RFC3339),
		Page:    1,
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Total)
	require.Len(t, entries, 2)
	assert.Equal(t, "10.0.0.1", entries[0].Actor.IP)

	entries, meta, err = repo.Query(ctx, model.AuditQuery{ActorID: actorID, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
	assert.Len(t, entries, 1)
}
