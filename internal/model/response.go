package model

// Wire shapes. Success bodies are flat objects rather than a shared
// envelope; error bodies always carry a human message plus a stable
// machine-readable code.

type StatusResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyResponse struct {
	UID string `json:"uid"`
}

type UserResponse struct {
	User PublicUser `json:"user"`
}

type UsersResponse struct {
	Users []PublicUser `json:"users"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
