package models

// LoginRequest is the credential payload forwarded to the upstream API.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is forwarded verbatim to the upstream API.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
}

// AuthResponse is returned by upstream login and echoed to the browser.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	UserInfo    User   `json:"userInfo"`
}
