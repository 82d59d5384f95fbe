package httpdto

// DevTokenRequest asks the development token endpoint for a signed token
// impersonating a directory user.
type DevTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type DevTokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
