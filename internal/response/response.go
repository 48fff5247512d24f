package response

// SuccessResponse is the generic success body for mutating endpoints
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// ErrorResponse is the structured error body returned by every handler
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`

	// Machine-readable error code
	// example: NOT_IN_QUEUE
	Code string `json:"code,omitempty"`

	// Human-readable error message
	// example: Not in queue
	Error string `json:"error"`

	// Optional extra detail, never an internal stack trace
	Details string `json:"details,omitempty"`
}

// TokenResponse carries a wallet session token pair
type TokenResponse struct {
	// JWT for authenticated station management endpoints
	AccessToken string `json:"access_token"`

	// JWT used to mint a fresh access token
	RefreshToken string `json:"refresh_token"`
}
