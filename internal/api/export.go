package api

import (
	"log/slog"
	"net/http"

	"github.com/gocarina/gocsv"

	"github.com/erazemk/pantrypal/internal/model"
	"github.com/erazemk/pantrypal/internal/pantry"
)

// exportRow is one CSV line of the pantry export.
type exportRow struct {
	Name            string  `csv:"name"`
	Quantity        float64 `csv:"quantity"`
	Unit            string  `csv:"unit"`
	PurchaseDate    string  `csv:"purchase_date"`
	ExpiryDate      string  `csv:"expiry_date"`
	DaysUntilExpiry int     `csv:"days_until_expiry"`
	Status          string  `csv:"status"`
}

func exportRows(view *pantry.View) []*exportRow {
	rows := make([]*exportRow, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, &exportRow{
			Name:            r.Name,
			Quantity:        r.Quantity,
			Unit:            r.Unit,
			PurchaseDate:    r.PurchaseDate.Format(model.ISODate),
			ExpiryDate:      r.ExpiryDate.Format(model.ISODate),
			DaysUntilExpiry: r.Freshness.Days,
			Status:          r.Freshness.Label,
		})
	}
	return rows
}

// Export handles GET /api/items/export.
func (h *ItemsHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	view, err := h.Pantry.List(r.Context(), claims.UserID)
	if err != nil {
		itemError(w, err, "export items")
		return
	}

	csv, err := gocsv.MarshalString(exportRows(view))
	if err != nil {
		slog.Error("encoding export", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export items")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pantry.csv"`)
	w.Write([]byte(csv))
}
