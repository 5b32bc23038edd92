package web

import (
	"log/slog"
	"net/http"

	"github.com/tilestock/tilestock/internal/export"
	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/store"
)

// exportGroups materializes the full grouped projection for a download,
// optionally narrowed by the same search term the list page uses.
func (s *Server) exportGroups(r *http.Request) ([]inventory.Group, error) {
	records, err := store.ListRecords(r.Context(), s.DB, r.URL.Query().Get("q"))
	if err != nil {
		return nil, err
	}
	return grouperFor(s.language(r)).Group(records), nil
}

// ExportPDF handles GET /export/pdf.
func (s *Server) ExportPDF(w http.ResponseWriter, r *http.Request) {
	groups, err := s.exportGroups(r)
	if err != nil {
		slog.Error("failed to build PDF export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data, err := export.GroupsPDF(groups, "Tile Inventory")
	if err != nil {
		slog.Error("failed to render PDF export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.pdf"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write PDF response", "error", err)
	}
}

// ExportXLSX handles GET /export/xlsx.
func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	groups, err := s.exportGroups(r)
	if err != nil {
		slog.Error("failed to build spreadsheet export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data, err := export.GroupsXLSX(groups)
	if err != nil {
		slog.Error("failed to render spreadsheet export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write spreadsheet response", "error", err)
	}
}
