package types

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a signed session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ShareResponse points at an exported daily plan.
type ShareResponse struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}
