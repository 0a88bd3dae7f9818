package quota

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SharedScope is the persisted scope of the default-key tracker.
const SharedScope = "default"

func userScope(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}

// Registry hands out trackers keyed by credential. Users without an upgraded
// key share one tracker for the default key; each upgraded key has its own.
type Registry struct {
	mu     sync.Mutex
	store  StateStore
	keys   KeyRecorder
	base   TrackerConfig
	logger *zap.Logger
	shared *Tracker
	users  map[uuid.UUID]*Tracker
	noKey  map[uuid.UUID]struct{}
}

// NewRegistry creates a registry. base supplies the default key and limits.
func NewRegistry(store StateStore, keys KeyRecorder, base TrackerConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:  store,
		keys:   keys,
		base:   base,
		logger: logger,
		users:  make(map[uuid.UUID]*Tracker),
		noKey:  make(map[uuid.UUID]struct{}),
	}
}

// Shared returns the process-wide default-key tracker, loading it on first use.
func (r *Registry) Shared(ctx context.Context) (*Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sharedLocked(ctx)
}

func (r *Registry) sharedLocked(ctx context.Context) (*Tracker, error) {
	if r.shared != nil {
		return r.shared, nil
	}
	cfg := r.base
	cfg.Scope = SharedScope
	cfg.UserID = uuid.Nil
	t := NewTracker(r.store, nil, cfg, r.logger)
	if err := t.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load shared quota: %w", err)
	}
	r.shared = t
	return t, nil
}

func (r *Registry) newUserTracker(userID uuid.UUID) *Tracker {
	cfg := r.base
	cfg.Scope = userScope(userID)
	cfg.UserID = userID
	return NewTracker(r.store, r.keys, cfg, r.logger)
}

// For returns the tracker that governs calls made on behalf of userID.
func (r *Registry) For(ctx context.Context, userID uuid.UUID) (*Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.users[userID]; ok {
		return t, nil
	}
	if _, ok := r.noKey[userID]; ok || userID == uuid.Nil {
		return r.sharedLocked(ctx)
	}

	t := r.newUserTracker(userID)
	if err := t.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load user quota: %w", err)
	}
	if t.HasCustomKey() {
		r.users[userID] = t
		return t, nil
	}
	r.noKey[userID] = struct{}{}
	return r.sharedLocked(ctx)
}

// SetUpgradedKey validates and stores a user's key, switching the user to
// their own tracker when it is accepted.
func (r *Registry) SetUpgradedKey(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	r.mu.Lock()
	t, ok := r.users[userID]
	if !ok {
		t = r.newUserTracker(userID)
	}
	r.mu.Unlock()

	valid, err := t.SetUpgradedKey(ctx, key)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if valid {
		r.users[userID] = t
		delete(r.noKey, userID)
	} else {
		delete(r.users, userID)
		r.noKey[userID] = struct{}{}
	}
	return valid, nil
}

// Forget drops any cached tracker for userID; the next For reloads it.
func (r *Registry) Forget(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	delete(r.noKey, userID)
}

// Budget is For narrowed to what a provider call needs.
func (r *Registry) Budget(ctx context.Context, userID uuid.UUID) (Budget, error) {
	t, err := r.For(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t, nil
}
