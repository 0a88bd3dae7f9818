package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/mealmate/backend/internal/quota"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

// KeyRecordStore keeps each user's provider key record in the apiKeys collection.
type KeyRecordStore struct {
	docs Documents
}

var _ quota.KeyRecorder = (*KeyRecordStore)(nil)

func NewKeyRecordStore(docs Documents) *KeyRecordStore {
	return &KeyRecordStore{docs: docs}
}

func (s *KeyRecordStore) GetKeyRecord(ctx context.Context, userID uuid.UUID) (*types.APIKeyRecord, error) {
	var rec types.APIKeyRecord
	found, err := s.docs.Get(ctx, userID, store.APIKeys, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (s *KeyRecordStore) SaveKeyRecord(ctx context.Context, userID uuid.UUID, rec types.APIKeyRecord) error {
	return s.docs.Set(ctx, userID, store.APIKeys, rec)
}

// QuotaService exposes a user's provider budget.
type QuotaService struct {
	registry *quota.Registry
}

var _ IQuotaService = (*QuotaService)(nil)

func NewQuotaService(registry *quota.Registry) *QuotaService {
	return &QuotaService{registry: registry}
}

// Status reports the budget of the tracker the user is charged to.
func (s *QuotaService) Status(ctx context.Context, userID uuid.UUID) (types.QuotaStatus, error) {
	t, err := s.registry.For(ctx, userID)
	if err != nil {
		return types.QuotaStatus{}, err
	}
	return t.Status(), nil
}

// SetAPIKey stores an upgraded key. A key that fails validation is recorded
// as invalid and the user stays on the shared budget.
func (s *QuotaService) SetAPIKey(ctx context.Context, userID uuid.UUID, key string) (*types.APIKeyResponse, error) {
	valid, err := s.registry.SetUpgradedKey(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	status, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.APIKeyResponse{Valid: valid, Status: status}, nil
}

// Forget drops the cached tracker of a user who signed out.
func (s *QuotaService) Forget(event AuthEvent) {
	if event.Type == AuthEventLogout {
		s.registry.Forget(event.UserID)
	}
}
