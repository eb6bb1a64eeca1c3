// Package activity records and lists the audit trail.
package activity

import (
	"context"

	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EntryResponse is an audit record in API responses
type EntryResponse struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Actor     string `json:"actor"`
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e activity.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Action:    string(e.Action),
		Details:   e.Details,
		Actor:     e.Actor,
	}
}

// ToEntryResponses converts a list of domain entries
func ToEntryResponses(entries []activity.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToEntryResponse(e)
	}
	return out
}

// LogService appends to and reads the bounded activity log
type LogService struct {
	repo      activity.Repository
	publisher shared.EventPublisher
	retain    int
	logger    *zap.Logger
}

// NewLogService creates a LogService. retain <= 0 uses the default window.
func NewLogService(repo activity.Repository, publisher shared.EventPublisher, retain int, logger *zap.Logger) *LogService {
	if retain <= 0 {
		retain = activity.DefaultRetention
	}
	return &LogService{repo: repo, publisher: publisher, retain: retain, logger: logger}
}

// Retention returns the number of entries kept
func (s *LogService) Retention() int {
	return s.retain
}

// Append stores a new entry and announces it
func (s *LogService) Append(ctx context.Context, action activity.Action, details, actor string) (activity.Entry, error) {
	e, err := s.AppendWith(ctx, s.repo, action, details, actor)
	if err != nil {
		return activity.Entry{}, err
	}
	s.Announce(ctx, e)
	return e, nil
}

// AppendWith stores an entry through repo, typically one bound to an open
// transaction. The caller announces the entry after commit.
func (s *LogService) AppendWith(ctx context.Context, repo activity.Repository, action activity.Action, details, actor string) (activity.Entry, error) {
	e, err := activity.NewEntry(action, details, actor)
	if err != nil {
		return activity.Entry{}, err
	}
	if err := repo.Append(ctx, e, s.retain); err != nil {
		return activity.Entry{}, shared.NewPersistenceError("write activity log", err)
	}
	return e, nil
}

// Announce publishes EntryAppended events for committed entries
func (s *LogService) Announce(ctx context.Context, entries ...activity.Entry) {
	if s.publisher == nil || len(entries) == 0 {
		return
	}
	events := make([]shared.DomainEvent, len(entries))
	for i, e := range entries {
		events[i] = activity.NewEntryAppendedEvent(e)
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish activity events", zap.Error(err))
	}
}

// List returns the newest entries first, at most limit (0 means the whole window)
func (s *LogService) List(ctx context.Context, limit int) ([]EntryResponse, error) {
	if limit <= 0 || limit > s.retain {
		limit = s.retain
	}
	entries, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, shared.NewPersistenceError("load activity log", err)
	}
	return ToEntryResponses(entries), nil
}

// Snapshot returns the current log window, for realtime subscribers
func (s *LogService) Snapshot(ctx context.Context, _ string) (any, error) {
	return s.List(ctx, 0)
}
