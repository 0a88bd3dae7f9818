package quota

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/types"
)

const (
	// DefaultWindow is the provider's per-minute accounting window.
	DefaultWindow = time.Minute
	// BaseLimit applies to the shared default key.
	BaseLimit = 5
	// UpgradedLimit applies to a validated user-supplied key.
	UpgradedLimit = 150
	// minKeyLength is the length a key must exceed to be accepted.
	minKeyLength = 10
)

// StateStore persists tracker state between restarts.
type StateStore interface {
	// Load returns nil, nil when nothing has been stored for scope yet.
	Load(ctx context.Context, scope string) (*types.QuotaState, error)
	Save(ctx context.Context, scope string, state types.QuotaState) error
}

// KeyRecorder reads and writes the remote per-user key record.
type KeyRecorder interface {
	GetKeyRecord(ctx context.Context, userID uuid.UUID) (*types.APIKeyRecord, error)
	SaveKeyRecord(ctx context.Context, userID uuid.UUID, rec types.APIKeyRecord) error
}

// TrackerConfig defines the budget a tracker enforces
type TrackerConfig struct {
	// Scope names the persisted record
	Scope string
	// UserID owns the remote key record; uuid.Nil for the shared tracker
	UserID uuid.UUID
	// DefaultAPIKey is used while no upgraded key is set
	DefaultAPIKey string
	Window        time.Duration
	BaseLimit     int
	UpgradedLimit int
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.BaseLimit <= 0 {
		c.BaseLimit = BaseLimit
	}
	if c.UpgradedLimit <= 0 {
		c.UpgradedLimit = UpgradedLimit
	}
	return c
}

// Tracker gates and accounts for calls made with one provider credential.
// It is safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	cfg        TrackerConfig
	state      types.QuotaState
	keyUpdated time.Time

	store  StateStore
	keys   KeyRecorder
	now    func() time.Time
	logger *zap.Logger
}

// NewTracker creates a tracker with a fresh window. Call Load to rehydrate.
// keys may be nil for trackers that do not belong to a user.
func NewTracker(store StateStore, keys KeyRecorder, cfg TrackerConfig, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		cfg:    cfg.withDefaults(),
		store:  store,
		keys:   keys,
		now:    time.Now,
		logger: logger.With(zap.String("quota_scope", cfg.Scope)),
	}
	t.state.LastResetTime = t.now().UnixMilli()
	return t
}

// Load rehydrates persisted state, restarts an expired window and adopts a
// valid key from the remote key record.
func (t *Tracker) Load(ctx context.Context) error {
	var stored *types.QuotaState
	if t.store != nil {
		s, err := t.store.Load(ctx, t.cfg.Scope)
		if err != nil {
			return err
		}
		stored = s
	}

	var rec *types.APIKeyRecord
	if t.keys != nil && t.cfg.UserID != uuid.Nil {
		r, err := t.keys.GetKeyRecord(ctx, t.cfg.UserID)
		if err != nil {
			t.logger.Warn("failed to read key record", zap.Error(err))
		} else {
			rec = r
		}
	}

	t.mu.Lock()
	if stored != nil {
		t.state = *stored
		// A window stamped by a host whose clock runs ahead starts now
		if now := t.now().UnixMilli(); t.state.LastResetTime > now {
			t.state.LastResetTime = now
		}
	}
	t.resetIfExpired()
	if rec != nil && rec.KeyStatus == types.KeyStatusValid && rec.SpoonacularAPIKey != "" {
		t.state.UserAPIKey = rec.SpoonacularAPIKey
		t.state.HasCustomKey = true
		t.keyUpdated = rec.LastUpdated
	}
	snapshot := t.state
	t.mu.Unlock()

	t.persist(ctx, snapshot)
	return nil
}

// resetIfExpired must be called with mu held.
func (t *Tracker) resetIfExpired() {
	now := t.now()
	if now.Sub(time.UnixMilli(t.state.LastResetTime)) >= t.cfg.Window {
		t.state.CallsMade = 0
		t.state.LastResetTime = now.UnixMilli()
	}
}

func (t *Tracker) limit() int {
	if t.state.HasCustomKey {
		return t.cfg.UpgradedLimit
	}
	return t.cfg.BaseLimit
}

// CanCall restarts an expired window and reports whether another call fits.
func (t *Tracker) CanCall() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfExpired()
	return t.state.CallsMade < t.limit()
}

// RecordCall accounts for one outgoing call and persists the new count.
func (t *Tracker) RecordCall(ctx context.Context) {
	t.mu.Lock()
	t.resetIfExpired()
	t.state.CallsMade++
	snapshot := t.state
	remaining := t.cfg.UpgradedLimit - snapshot.CallsMade
	updated := t.keyUpdated
	t.mu.Unlock()

	t.persist(ctx, snapshot)

	if snapshot.HasCustomKey && t.keys != nil && t.cfg.UserID != uuid.Nil {
		rec := types.APIKeyRecord{
			SpoonacularAPIKey: snapshot.UserAPIKey,
			KeyStatus:         types.KeyStatusValid,
			LastUpdated:       updated,
			CallsRemaining:    remaining,
		}
		if err := t.keys.SaveKeyRecord(ctx, t.cfg.UserID, rec); err != nil {
			t.logger.Warn("failed to update remaining calls", zap.Error(err))
		}
	}
}

// TimeUntilReset is the whole-second wait until the window restarts.
func (t *Tracker) TimeUntilReset() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := t.now().Sub(time.UnixMilli(t.state.LastResetTime))
	left := t.cfg.Window - elapsed
	if left <= 0 {
		return 0
	}
	secs := (left + time.Second - 1) / time.Second
	return secs * time.Second
}

// RemainingCalls is the number of calls left in the current window.
func (t *Tracker) RemainingCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return max(0, t.limit()-t.state.CallsMade)
}

// Limit is the budget of the current tier.
func (t *Tracker) Limit() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limit()
}

// HasCustomKey reports whether an upgraded key is active.
func (t *Tracker) HasCustomKey() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.HasCustomKey
}

// APIKey returns the credential calls should be made with.
func (t *Tracker) APIKey() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.HasCustomKey && t.state.UserAPIKey != "" {
		return t.state.UserAPIKey
	}
	return t.cfg.DefaultAPIKey
}

// Status snapshots the tracker for callers.
func (t *Tracker) Status() types.QuotaStatus {
	return types.QuotaStatus{
		Limit:          t.Limit(),
		Remaining:      t.RemainingCalls(),
		ResetInSeconds: int(t.TimeUntilReset() / time.Second),
		HasCustomKey:   t.HasCustomKey(),
	}
}

// SetUpgradedKey stores a user-supplied key and restarts the count.
// It reports whether the key passed the validity check.
func (t *Tracker) SetUpgradedKey(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	valid := len(key) > minKeyLength

	rec := types.APIKeyRecord{
		SpoonacularAPIKey: key,
		KeyStatus:         types.KeyStatusInvalid,
		LastUpdated:       t.now().UTC(),
	}
	if valid {
		rec.KeyStatus = types.KeyStatusValid
		rec.CallsRemaining = t.cfg.UpgradedLimit
	}
	if t.keys != nil && t.cfg.UserID != uuid.Nil {
		if err := t.keys.SaveKeyRecord(ctx, t.cfg.UserID, rec); err != nil {
			return false, err
		}
	}

	t.mu.Lock()
	if valid {
		t.state.UserAPIKey = key
	} else {
		t.state.UserAPIKey = ""
	}
	t.state.HasCustomKey = valid
	t.state.CallsMade = 0
	t.keyUpdated = rec.LastUpdated
	snapshot := t.state
	t.mu.Unlock()

	t.persist(ctx, snapshot)
	return valid, nil
}

func (t *Tracker) persist(ctx context.Context, state types.QuotaState) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, t.cfg.Scope, state); err != nil {
		t.logger.Warn("failed to persist quota state", zap.Error(err))
	}
}
