package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type UnlockRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=6"`
}

// SetPinRequest: CurrentPIN is required once a PIN exists.
type SetPinRequest struct {
	CurrentPIN string `json:"current_pin" validate:"omitempty,numeric,min=4,max=6"`
	NewPIN     string `json:"new_pin"     validate:"required,numeric,min=4,max=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UnlockResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}
