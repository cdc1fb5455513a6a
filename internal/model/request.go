package model

type SessionRequest struct {
	IdentityAssertion string `json:"identityAssertion"`
}

type VerifyRequest struct {
	Session string `json:"session"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type EmailVerifyRequest struct {
	Token string `json:"token"`
}

type RoleChangeRequest struct {
	Role string `json:"role"`
}
