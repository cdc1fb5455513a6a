package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-market-auth/internal/middleware"
	"go-market-auth/internal/model"
)

type sessionManager interface {
	Mint(ctx context.Context, assertion string) (string, error)
	Verify(ctx context.Context, artifact string) (model.Session, error)
	Cookie(artifact string) *http.Cookie
	ClearCookie() *http.Cookie
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type SessionHandler struct {
	sessions sessionManager
	users    userDirectory
}

func NewSessionHandler(sessions sessionManager, users userDirectory) *SessionHandler {
	return &SessionHandler{sessions: sessions, users: users}
}

// Create exchanges an identity assertion for a session cookie.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	if strings.TrimSpace(payload.IdentityAssertion) == "" {
		badRequest(w, "identityAssertion is required", "identityAssertion")
		return
	}

	artifact, err := h.sessions.Mint(r.Context(), payload.IdentityAssertion)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessions.Cookie(artifact))
	writeJSON(w, http.StatusOK, model.StatusResponse{Status: "success"})
}

// Verify checks a raw artifact sent in the body and answers with its
// subject. Used by sibling services that hold an artifact out of band.
func (h *SessionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	if strings.TrimSpace(payload.Session) == "" {
		badRequest(w, "session is required", "session")
		return
	}

	session, err := h.sessions.Verify(r.Context(), payload.Session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VerifyResponse{UID: session.Subject})
}

// Me returns the account behind the verified session. The account
// record is read fresh so /me reflects a role change before re-mint,
// while the session's own role claim stays as minted.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	user, err := h.users.FindByID(r.Context(), session.Subject)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{User: user.Public()})
}

// Logout clears the client-held cookie. The artifact itself stays
// valid until expiry or a credential change.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.ClearCookie())
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out"})
}
