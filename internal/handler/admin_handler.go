package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-market-auth/internal/event"
	"go-market-auth/internal/model"
)

type userAdminStore interface {
	List(ctx context.Context, limit int) ([]model.User, error)
	UpdateRole(ctx context.Context, userID string, role model.Role) error
}

type AdminHandler struct {
	users userAdminStore
	bus   *event.InMemoryBus
}

func NewAdminHandler(users userAdminStore, bus *event.InMemoryBus) *AdminHandler {
	return &AdminHandler{users: users, bus: bus}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), 100)
	if err != nil {
		writeError(w, err)
		return
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	writeJSON(w, http.StatusOK, model.UsersResponse{Users: public})
}

// ChangeRole reassigns an account's role. Sessions minted before the
// change keep their embedded role until re-minted.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID := chi.URLParam(r, "user_id")

	var payload model.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid JSON body", "")
		return
	}

	role, err := model.ParseRole(payload.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.UpdateRole(r.Context(), userID, role); err != nil {
		writeError(w, err)
		return
	}

	if h.bus != nil {
		h.bus.Emit(event.TypeRoleChanged, userID, role.String())
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Role updated"})
}
