package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/pantrypal/internal/auth"
	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/pantry"
	"github.com/erazemk/pantrypal/internal/store"
	"github.com/erazemk/pantrypal/internal/validate"
)

// wrongPassword is shown when re-authentication fails.
const wrongPassword = "Authentication failed. Wrong password."

// AccountHandler handles the signed-in user's own account.
type AccountHandler struct {
	DB     *sql.DB
	Pantry *pantry.Service
}

// currentUser returns the authenticated user, writing an error response and
// returning nil when there is none.
func (h *AccountHandler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.Claims, *model.User) {
	claims, user := GetClaims(r.Context()), GetUser(r.Context())
	if claims == nil || user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil, nil
	}
	return claims, user
}

// reauthenticate checks password against the user's hash, writing the
// response on failure.
func reauthenticate(w http.ResponseWriter, user *model.User, field, password string) bool {
	err := auth.CheckPassword(user.PasswordHash, password)
	if err == nil {
		return true
	}
	if errors.Is(err, auth.ErrWrongPassword) {
		slog.Warn("re-authentication failed", "user", user.ID)
		fieldErrors(w, http.StatusUnauthorized, wrongPassword,
			validate.Errors{{Field: field, Message: "Wrong password"}})
		return false
	}
	slog.Error("checking password", "error", err)
	jsonError(w, http.StatusInternalServerError, "internal error")
	return false
}

// Get handles GET /api/account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, user := h.currentUser(w, r)
	if user == nil {
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UpdateName handles PUT /api/account/name.
func (h *AccountHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	_, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var req validate.DisplayName
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.UpdateName(&req); err != nil {
		if !invalidForm(w, err) {
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if err := store.UpdateDisplayName(r.Context(), h.DB, user.ID, req.Name); err != nil {
		slog.Error("updating display name", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update name")
		return
	}

	jsonResponse(w, http.StatusOK, messageResponse{Message: "Name updated successfully!"})
}

// ChangePassword handles PUT /api/account/password.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	_, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var req validate.PasswordChange
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.ChangePassword(&req); err != nil {
		if !invalidForm(w, err) {
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if !reauthenticate(w, user, "current_password", req.CurrentPassword) {
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, hash); err != nil {
		slog.Error("updating password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("user changed password", "user", user.ID)
	jsonResponse(w, http.StatusOK, messageResponse{Message: "Password updated successfully!"})
}

// Delete handles DELETE /api/account. It removes the user's items and
// preferences, closes the account, and revokes the presented token.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var req validate.AccountDeletion
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.DeleteAccount(&req); err != nil {
		if !invalidForm(w, err) {
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if !reauthenticate(w, user, "password", req.Password) {
		return
	}

	// Through the service so open live lists see the pantry empty.
	if _, err := h.Pantry.DeleteAll(r.Context(), user.ID); err != nil {
		slog.Error("deleting account items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}
	if err := store.DeleteUser(r.Context(), h.DB, user.ID); err != nil {
		slog.Error("deleting account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}
	if err := revoke(r, h.DB, claims); err != nil {
		slog.Error("revoking token", "error", err)
	}

	slog.Info("user deleted account", "user", user.ID)
	jsonResponse(w, http.StatusOK, messageResponse{Message: "Account deleted successfully"})
}
