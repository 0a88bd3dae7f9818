package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealmate/backend/internal/service"
	"github.com/pageza/mealmate/backend/internal/types"
)

// MockProfileService is a mock implementation of the ProfileService interface
type MockProfileService struct {
	mock.Mock
}

var _ service.IProfileService = (*MockProfileService)(nil)

func (m *MockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockProfileService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*types.Profile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

// MockQuotaService is a mock implementation of the QuotaService interface
type MockQuotaService struct {
	mock.Mock
}

var _ service.IQuotaService = (*MockQuotaService)(nil)

func (m *MockQuotaService) Status(ctx context.Context, userID uuid.UUID) (types.QuotaStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) SetAPIKey(ctx context.Context, userID uuid.UUID, key string) (*types.APIKeyResponse, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.APIKeyResponse), args.Error(1)
}
