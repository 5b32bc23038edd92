package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/tilestock/tilestock/internal/export"
	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

// ExportHandler serves downloads of the grouped inventory.
type ExportHandler struct {
	DB *sql.DB
}

// groups materializes the full grouped projection for export, honoring the
// configured UI language for variant labels and collation.
func (h *ExportHandler) groups(r *http.Request) ([]inventory.Group, error) {
	records, err := store.ListRecords(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		return nil, err
	}
	lang, err := store.GetSetting(r.Context(), h.DB, store.SettingLanguage, model.LangEnglish)
	if err != nil {
		return nil, err
	}
	return inventory.NewGrouper(model.CollationTag(lang), model.SuffixLabeler(lang)).Group(records), nil
}

// PDF handles GET /api/export/pdf.
func (h *ExportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups(r)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	data, err := export.GroupsPDF(groups, "Tile Inventory")
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.pdf"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write PDF response", "error", err)
	}
}

// XLSX handles GET /api/export/xlsx.
func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups(r)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	data, err := export.GroupsXLSX(groups)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to render spreadsheet")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write spreadsheet response", "error", err)
	}
}
