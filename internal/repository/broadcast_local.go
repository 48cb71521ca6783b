package repository

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// LocalBroadcasts keeps the broadcast collection as one JSON document in the
// local cache, under the global_messages key. It also owns the device-local
// dismissed-message set, which is a presentation concern layered on top of
// the service's own invariants.
type LocalBroadcasts struct {
	store *LocalStore
}

// NewLocalBroadcasts instantiates the local backend.
func NewLocalBroadcasts(store *LocalStore) *LocalBroadcasts {
	return &LocalBroadcasts{store: store}
}

func (r *LocalBroadcasts) load(ctx context.Context) ([]domain.BroadcastMessage, error) {
	var messages []domain.BroadcastMessage
	if _, err := r.store.GetJSON(ctx, KeyGlobalMessages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *LocalBroadcasts) save(ctx context.Context, messages []domain.BroadcastMessage) error {
	return r.store.SetJSON(ctx, KeyGlobalMessages, messages)
}

func (r *LocalBroadcasts) Insert(ctx context.Context, msg *domain.BroadcastMessage) error {
	messages, err := r.load(ctx)
	if err != nil {
		return err
	}
	messages = append([]domain.BroadcastMessage{*msg}, messages...)
	return r.save(ctx, messages)
}

func (r *LocalBroadcasts) ListActive(ctx context.Context, now time.Time) ([]domain.BroadcastMessage, error) {
	messages, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.BroadcastMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Displayable(now) {
			active = append(active, msg)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

func (r *LocalBroadcasts) Deactivate(ctx context.Context, id string) error {
	messages, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range messages {
		if messages[i].ID == id {
			messages[i].Active = false
			return r.save(ctx, messages)
		}
	}
	return nil
}

// ReplaceAll overwrites the cached collection with the remote result.
func (r *LocalBroadcasts) ReplaceAll(ctx context.Context, messages []domain.BroadcastMessage) error {
	if messages == nil {
		messages = []domain.BroadcastMessage{}
	}
	return r.save(ctx, messages)
}

// DismissedIDs returns the set of message ids already dismissed on this device.
func (r *LocalBroadcasts) DismissedIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if _, err := r.store.GetJSON(ctx, KeyDismissedMessages, &ids); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Dismiss adds a message id to the dismissed set.
func (r *LocalBroadcasts) Dismiss(ctx context.Context, id string) error {
	var ids []string
	if _, err := r.store.GetJSON(ctx, KeyDismissedMessages, &ids); err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)
	return r.store.SetJSON(ctx, KeyDismissedMessages, ids)
}
