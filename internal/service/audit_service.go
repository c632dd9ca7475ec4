package service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop-backend/internal/model"
	"shop-backend/pkg/apierror"
)

// AuditService records authentication and profile events. A nil store keeps
// the trail in the process log only.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log never fails the caller; storage errors are logged and dropped.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	if s == nil {
		return
	}

	if actor.IP == "" {
		actor.IP = ClientIPFromContext(ctx)
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Error:      errText,
	}

	if s.store == nil {
		slog.Info("audit",
			"action", entry.Action,
			"status", entry.Status,
			"user_id", entry.Actor.UserID,
			"ip", entry.Actor.IP,
			"resource", entry.Resource,
			"error", entry.Error,
		)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := s.store.Log(writeCtx, entry); err != nil {
		slog.Warn("audit write failed", "action", action, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if s.store == nil {
		return nil, model.Meta{}, apierror.New("AUDIT_UNAVAILABLE", "audit storage is not configured", "", http.StatusServiceUnavailable)
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}
	if _, ok := model.PageOffset(query.Page, query.Limit); !ok {
		return nil, model.Meta{}, apierror.BadRequest("page is out of range", strconv.Itoa(query.Page))
	}

	from, err := parseOptionalAuditTime(query.From)
	if err != nil {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'from' datetime format", query.From)
	}

	to, err := parseOptionalAuditTime(query.To)
	if err != nil {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'to' datetime format", query.To)
	}

	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, model.Meta{}, apierror.BadRequest("'to' must not be before 'from'", "")
	}

	query.From = formatOptionalAuditTime(from)
	query.To = formatOptionalAuditTime(to)

	return s.store.Query(ctx, query)
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	if value, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, err
	}

	return value.UTC(), nil
}

func formatOptionalAuditTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
