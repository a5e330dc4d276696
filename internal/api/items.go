package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/pantrypal/internal/imaging"
	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/pantry"
	"github.com/erazemk/pantrypal/internal/store"
	"github.com/erazemk/pantrypal/internal/validate"
)

// maxUpload bounds photo uploads.
const maxUpload = 5 << 20

// ItemsHandler handles pantry item endpoints. Every operation is scoped to
// the authenticated user.
type ItemsHandler struct {
	DB     *sql.DB
	Pantry *pantry.Service
	Photos *imaging.Thumbnailer
}

type createItemResponse struct {
	Item     pantry.Row `json:"item"`
	Warnings []string   `json:"warnings,omitempty"`
}

type quantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

// itemError maps service errors to responses.
func itemError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, pantry.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, pantry.ErrInvalidQuantity):
		msg := validate.ErrNotPositive.Error()
		if errors.Is(err, validate.ErrFractionalPieces) {
			msg = validate.ErrFractionalPieces.Error()
		}
		fieldErrors(w, http.StatusBadRequest, msg, validate.Errors{{Field: "quantity", Message: msg}})
	default:
		slog.Error("failed to "+action, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	view, err := h.Pantry.List(r.Context(), claims.UserID)
	if err != nil {
		itemError(w, err, "list items")
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

// Create handles POST /api/items. The unit and expiry mode are remembered
// as the user's defaults for the next item.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var form validate.ItemForm
	if err := decodeJSON(r, &form); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	today := h.Pantry.Today()
	checked, err := validate.AddItem(&form, today)
	if err != nil {
		if !invalidForm(w, err) {
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	item, err := h.Pantry.Create(r.Context(), checked.Item(claims.UserID))
	if err != nil {
		itemError(w, err, "create item")
		return
	}

	for key, value := range map[string]string{
		model.PrefLastUnit:   checked.Unit,
		model.PrefExpiryMode: checked.ExpiryMode,
	} {
		if err := store.SetPref(r.Context(), h.DB, claims.UserID, key, value); err != nil {
			slog.Warn("saving preference", "key", key, "error", err)
		}
	}

	view := pantry.NewView([]model.Item{*item}, today)
	jsonResponse(w, http.StatusCreated, createItemResponse{Item: view.Rows[0], Warnings: checked.Warnings})
}

// DeleteByID handles DELETE /api/items/{id}.
func (h *ItemsHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	name, err := h.Pantry.DeleteByID(r.Context(), claims.UserID, id)
	if err != nil {
		itemError(w, err, "delete item")
		return
	}

	jsonResponse(w, http.StatusOK, messageResponse{Message: "Deleted: " + name})
}

// DeleteByName handles DELETE /api/items/by-name/{name}.
func (h *ItemsHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	name := r.PathValue("name")

	if err := h.Pantry.DeleteByName(r.Context(), claims.UserID, name); err != nil {
		itemError(w, err, "delete item")
		return
	}

	jsonResponse(w, http.StatusOK, messageResponse{Message: "Deleted: " + name})
}

// UpdateQuantity handles PATCH /api/items/{id}/quantity.
func (h *ItemsHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == nil {
		fieldErrors(w, http.StatusBadRequest, "Quantity required",
			validate.Errors{{Field: "quantity", Message: "Quantity required"}})
		return
	}

	if err := h.Pantry.UpdateQuantity(r.Context(), claims.UserID, id, *req.Quantity); err != nil {
		itemError(w, err, "update quantity")
		return
	}

	item, err := h.Pantry.Get(r.Context(), claims.UserID, id)
	if err != nil {
		itemError(w, err, "update quantity")
		return
	}
	jsonResponse(w, http.StatusOK, pantry.NewView([]model.Item{*item}, h.Pantry.Today()).Rows[0])
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := h.Photos.Thumbnail(file)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) {
			jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
			return
		}
		slog.Error("processing image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	if err := h.Pantry.SetImage(r.Context(), claims.UserID, id, photo.Data, photo.MIME); err != nil {
		itemError(w, err, "save image")
		return
	}

	jsonResponse(w, http.StatusOK, messageResponse{Message: "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	data, mime, err := h.Pantry.Image(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		itemError(w, err, "get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
