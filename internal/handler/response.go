package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-market-auth/internal/model"
	"go-market-auth/pkg/apierror"
)

// genericTokenMessage deliberately covers not-found, expired and
// already-used tokens; distinguishing them would hand an attacker an
// oracle over the token space.
const genericTokenMessage = "Invalid or expired token"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := model.ErrorResponse{
		Error: "Unexpected server error",
		Code:  "INTERNAL_ERROR",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Error = apiErr.Message
		body.Code = apiErr.Code
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrInvalidCredential):
		status = http.StatusUnauthorized
		body.Error = "Invalid credential"
		body.Code = "UNAUTHENTICATED"
	case errors.Is(err, model.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body.Error = "Authentication required"
		body.Code = "UNAUTHENTICATED"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Error = "Access denied"
		body.Code = "FORBIDDEN"
	case errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenConsumed):
		status = http.StatusBadRequest
		body.Error = genericTokenMessage
		body.Code = "INVALID_TOKEN"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Error = "User not found"
		body.Code = "NOT_FOUND"
	case errors.Is(err, model.ErrInvalidRole):
		status = http.StatusBadRequest
		body.Error = "Invalid role"
		body.Code = "BAD_REQUEST"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Error = "Invalid input"
		body.Code = "BAD_REQUEST"
		body.Details = err.Error()
	default:
		// Unclassified collaborator failures stay generic on the wire
		// but visible in the logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, message string, details string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:   message,
		Code:    "BAD_REQUEST",
		Details: details,
	})
}
