package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-market-auth/internal/middleware"
	"go-market-auth/internal/model"
	"go-market-auth/internal/util"
)

// resetRequestedMessage is returned whether or not the address belongs
// to an account, so the endpoint cannot be used to enumerate users.
const resetRequestedMessage = "If an account exists for that address, a password reset email has been sent"

type recoveryManager interface {
	RequestPasswordReset(ctx context.Context, email string) error
	RequestEmailVerification(ctx context.Context, subject string) error
	ResetPassword(ctx context.Context, token string, newPassword string) error
	VerifyEmail(ctx context.Context, token string) (string, error)
}

type RecoveryHandler struct {
	recovery recoveryManager
}

func NewRecoveryHandler(recovery recoveryManager) *RecoveryHandler {
	return &RecoveryHandler{recovery: recovery}
}

// RequestReset starts the password reset flow. The answer is identical
// for known and unknown addresses.
func (h *RecoveryHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	email, err := util.NormalizeEmail(payload.Email)
	if err != nil {
		badRequest(w, "a valid email address is required", "email")
		return
	}

	if err := h.recovery.RequestPasswordReset(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: resetRequestedMessage})
}

// Reset consumes a reset token and installs the new password.
func (h *RecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.PasswordResetConfirm
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	if strings.TrimSpace(payload.Token) == "" {
		badRequest(w, "token is required", "token")
		return
	}

	if err := h.recovery.ResetPassword(r.Context(), payload.Token, payload.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Password updated successfully"})
}

// RequestVerification issues an email verification token for the
// authenticated account.
func (h *RecoveryHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	if err := h.recovery.RequestEmailVerification(r.Context(), session.Subject); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Verification email sent"})
}

// VerifyEmail consumes a verification token.
func (h *RecoveryHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.EmailVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	if strings.TrimSpace(payload.Token) == "" {
		badRequest(w, "token is required", "token")
		return
	}

	if _, err := h.recovery.VerifyEmail(r.Context(), payload.Token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Email verified successfully"})
}
