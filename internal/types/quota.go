package types

import "time"

// QuotaState is the persisted form of a quota tracker.
type QuotaState struct {
	CallsMade     int    `json:"callsMade"`
	LastResetTime int64  `json:"lastResetTime"`
	UserAPIKey    string `json:"userApiKey,omitempty"`
	HasCustomKey  bool   `json:"hasCustomKey"`
}

// Key record statuses.
const (
	KeyStatusValid   = "valid"
	KeyStatusInvalid = "invalid"
)

// APIKeyRecord is the per-user provider key document.
type APIKeyRecord struct {
	SpoonacularAPIKey string    `json:"spoonacularApiKey"`
	KeyStatus         string    `json:"keyStatus"`
	LastUpdated       time.Time `json:"lastUpdated"`
	CallsRemaining    int       `json:"callsRemaining"`
}

// QuotaStatus is what callers see about their current budget.
type QuotaStatus struct {
	Limit          int  `json:"limit"`
	Remaining      int  `json:"remaining"`
	ResetInSeconds int  `json:"resetInSeconds"`
	HasCustomKey   bool `json:"hasCustomKey"`
}

// SetAPIKeyRequest supplies an upgraded provider key.
type SetAPIKeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// APIKeyResponse reports whether a submitted key was accepted.
type APIKeyResponse struct {
	Valid  bool        `json:"valid"`
	Status QuotaStatus `json:"status"`
}
