package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/store"
	"github.com/erazemk/pantrypal/internal/validate"
)

// PrefsHandler handles the add-item form defaults.
type PrefsHandler struct {
	DB *sql.DB
}

type prefsRequest struct {
	LastUnit   *string `json:"last_unit"`
	ExpiryMode *string `json:"expiry_mode"`
}

// Get handles GET /api/prefs.
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	prefs, err := store.GetPrefs(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("getting prefs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	jsonResponse(w, http.StatusOK, prefs)
}

// Update handles PUT /api/prefs. Omitted fields keep their value.
func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req prefsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := map[string]string{}
	if req.LastUnit != nil {
		updates[model.PrefLastUnit] = strings.TrimSpace(*req.LastUnit)
	}
	if req.ExpiryMode != nil {
		mode := strings.TrimSpace(*req.ExpiryMode)
		if !model.ValidExpiryMode(mode) {
			msg := "Choose an expiry date or a number of days"
			fieldErrors(w, http.StatusBadRequest, msg, validate.Errors{{Field: "expiry_mode", Message: msg}})
			return
		}
		updates[model.PrefExpiryMode] = mode
	}

	for key, value := range updates {
		if err := store.SetPref(r.Context(), h.DB, claims.UserID, key, value); err != nil {
			slog.Error("saving pref", "key", key, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to save preferences")
			return
		}
	}

	h.Get(w, r)
}
