package dto

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,max=254,email"`
	Username string `json:"username" binding:"required,max=150,username"`
}

// SignUpResponse echoes the accepted pair. The code is only ever emailed.
type SignUpResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=255"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
