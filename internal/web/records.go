package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/tilestock/tilestock/internal/imaging"
	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

// inventoryData is the template payload of the main list page.
type inventoryData struct {
	PageData
	Groups    []inventory.Group
	Snap      inventory.Snapshot
	Sizes     []int
	Query     string
	Searching bool
	Loading   bool
}

// InventoryPage handles GET /{$}, the paginated grouped inventory list.
// Navigation happens through query parameters: nav=next|prev moves between
// pages, size changes the page size, q switches to search mode (which
// bypasses the pager and shows every match).
func (s *Server) InventoryPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	lang := s.language(r)

	base := PageData{
		Title:     "Inventory",
		User:      claims,
		Theme:     s.theme(r),
		CSRFField: csrf.TemplateField(r),
	}

	if query := r.URL.Query().Get("q"); query != "" {
		records, err := store.ListRecords(r.Context(), s.DB, query)
		if err != nil {
			slog.Error("failed to search records", "error", err)
			base.Error = "Search failed."
		}
		s.Templates.Render(w, "inventory.html", &inventoryData{
			PageData:  base,
			Groups:    grouperFor(lang).Group(records),
			Sizes:     inventory.PerPageChoices,
			Query:     query,
			Searching: true,
		})
		return
	}

	sess := s.session(claims.ID, claims.Expiry())
	snap := sess.pager.Snapshot()

	nav := r.URL.Query().Get("nav")
	if sess.begin() {
		// A fresh session always starts from page 1, whatever the link said.
		nav = "initial"
	}

	transitioned := false
	switch nav {
	case "initial":
		sess.drain()
		sess.pager.GoToPage(inventory.DirInitial)
		transitioned = true
	case "next":
		if !snap.IsLastPage {
			sess.drain()
			sess.pager.GoToPage(inventory.DirNext)
			transitioned = true
		}
	case "prev":
		if !snap.IsFirstPage {
			sess.drain()
			sess.pager.GoToPage(inventory.DirPrev)
			transitioned = true
		}
	}

	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		if n, err := strconv.Atoi(sizeStr); err == nil && n != snap.PerPage {
			sess.drain()
			sess.pager.SetPerPage(n)
			transitioned = true
		}
	}

	sess.pager.RefreshTotal(r.Context())
	if transitioned {
		sess.wait()
	}

	snap = sess.pager.Snapshot()
	base.Error = snap.Err

	s.Templates.Render(w, "inventory.html", &inventoryData{
		PageData: base,
		Groups:   grouperFor(lang).Group(snap.Records),
		Snap:     snap,
		Sizes:    inventory.PerPageChoices,
		Loading:  snap.Loading,
	})
}

// groupFormData is the template payload of the group save/edit form.
type groupFormData struct {
	PageData
	Editing     bool
	ModelPrefix string
	Width       string
	Height      string
	Suffixes    []string
	Labels      map[string]string
	Quantities  map[string]int
}

func (s *Server) groupForm(r *http.Request) *groupFormData {
	lang := s.language(r)
	label := model.SuffixLabeler(lang)

	labels := make(map[string]string, len(model.Suffixes))
	for _, suf := range model.Suffixes {
		labels[suf] = label(suf)
	}

	return &groupFormData{
		PageData: PageData{
			User:      GetWebClaims(r.Context()),
			Theme:     s.theme(r),
			CSRFField: csrf.TemplateField(r),
		},
		Suffixes:   model.Suffixes,
		Labels:     labels,
		Quantities: make(map[string]int),
	}
}

// GroupNewPage handles GET /groups/new.
func (s *Server) GroupNewPage(w http.ResponseWriter, r *http.Request) {
	data := s.groupForm(r)
	data.Title = "New group"
	s.Templates.Render(w, "group_form.html", data)
}

// GroupEditPage handles GET /groups/edit?prefix=&w=&h=.
func (s *Server) GroupEditPage(w http.ResponseWriter, r *http.Request) {
	prefix, width, height, ok := groupParams(r.URL.Query().Get("prefix"), r.URL.Query().Get("w"), r.URL.Query().Get("h"))
	if !ok {
		http.Error(w, "invalid group", http.StatusBadRequest)
		return
	}

	records, err := store.GroupRecords(r.Context(), s.DB, prefix, width, height)
	if err != nil {
		slog.Error("failed to load group", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		http.NotFound(w, r)
		return
	}

	data := s.groupForm(r)
	data.Title = "Edit group"
	data.Editing = true
	data.ModelPrefix = records[0].ModelPrefix
	data.Width = formatFloat(width)
	data.Height = formatFloat(height)
	for _, rec := range records {
		data.Quantities[rec.TypeSuffix] += rec.Quantity
	}

	s.Templates.Render(w, "group_form.html", data)
}

// GroupCreateSubmit handles POST /groups.
func (s *Server) GroupCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	prefix, width, height, inputs, msg := parseGroupForm(r)
	if msg != "" {
		data := s.groupForm(r)
		data.Title = "New group"
		data.Error = msg
		data.ModelPrefix = r.FormValue("model_prefix")
		data.Width = r.FormValue("width")
		data.Height = r.FormValue("height")
		s.Templates.Render(w, "group_form.html", data)
		return
	}

	if _, err := store.SaveGroup(r.Context(), s.DB, prefix, width, height, inputs); err != nil {
		slog.Error("failed to save group", "error", err)
		http.Error(w, "failed to save group", http.StatusInternalServerError)
		return
	}

	slog.Info("group saved", "user", claims.Username, "prefix", model.NormalizePrefix(prefix), "variants", len(inputs))
	s.Feed.Broadcast()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GroupUpdateSubmit handles POST /groups/update. The old group identity
// comes from hidden form fields; its whole variant set is replaced.
func (s *Server) GroupUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	oldPrefix, oldWidth, oldHeight, ok := groupParams(
		r.FormValue("old_prefix"), r.FormValue("old_width"), r.FormValue("old_height"))
	if !ok {
		http.Error(w, "invalid group", http.StatusBadRequest)
		return
	}

	prefix, width, height, inputs, msg := parseGroupForm(r)
	if msg != "" {
		data := s.groupForm(r)
		data.Title = "Edit group"
		data.Editing = true
		data.ModelPrefix = r.FormValue("model_prefix")
		data.Width = r.FormValue("width")
		data.Height = r.FormValue("height")
		data.Error = msg
		s.Templates.Render(w, "group_form.html", data)
		return
	}

	err := store.ReplaceGroup(r.Context(), s.DB, oldPrefix, oldWidth, oldHeight, prefix, width, height, inputs)
	if err != nil {
		slog.Error("failed to update group", "error", err)
		http.Error(w, "failed to update group", http.StatusInternalServerError)
		return
	}

	slog.Info("group updated", "user", claims.Username, "prefix", model.NormalizePrefix(prefix))
	s.Feed.Broadcast()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GroupDeleteSubmit handles POST /groups/delete. Every variant of the
// group goes in one transaction.
func (s *Server) GroupDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	prefix, width, height, ok := groupParams(
		r.FormValue("prefix"), r.FormValue("width"), r.FormValue("height"))
	if !ok {
		http.Error(w, "invalid group", http.StatusBadRequest)
		return
	}

	n, err := store.DeleteGroup(r.Context(), s.DB, prefix, width, height)
	if err != nil {
		slog.Error("failed to delete group", "error", err)
		http.Error(w, "failed to delete group", http.StatusInternalServerError)
		return
	}

	slog.Info("group deleted", "user", claims.Username, "prefix", model.NormalizePrefix(prefix), "records", n)
	s.Feed.Broadcast()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RecordPhotoSubmit handles POST /records/{id}/photo.
func (s *Server) RecordPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.SetRecordPhoto(r.Context(), s.DB, id, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save photo", "error", err)
		http.Error(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	s.Feed.Broadcast()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RecordPhotoGet handles GET /records/{id}/photo.
func (s *Server) RecordPhotoGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetRecordPhoto(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

// parseGroupForm reads the group form fields and builds the variant inputs,
// returning a user-facing message when the form is rejected. The form is
// rejected when no variant carries a positive quantity: a group with
// neither a model number nor a quantity has nothing to record.
func parseGroupForm(r *http.Request) (prefix string, width, height float64, inputs []store.VariantInput, msg string) {
	prefix = r.FormValue("model_prefix")

	width, errW := strconv.ParseFloat(r.FormValue("width"), 64)
	height, errH := strconv.ParseFloat(r.FormValue("height"), 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return "", 0, 0, nil, "Width and height must be positive numbers."
	}

	for _, suf := range model.Suffixes {
		value := r.FormValue("qty_" + suf)
		if value == "" {
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 0 {
			return "", 0, 0, nil, "Quantities must be whole numbers."
		}
		if qty > 0 {
			inputs = append(inputs, store.VariantInput{TypeSuffix: suf, Quantity: qty})
		}
	}

	if len(inputs) == 0 {
		if prefix == "" {
			return "", 0, 0, nil, "Enter a model number or a quantity."
		}
		return "", 0, 0, nil, "At least one variant needs a quantity."
	}
	return prefix, width, height, inputs, ""
}

// groupParams parses a group identity from string parameters.
func groupParams(prefix, w, h string) (string, float64, float64, bool) {
	width, errW := strconv.ParseFloat(w, 64)
	height, errH := strconv.ParseFloat(h, 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return "", 0, 0, false
	}
	return prefix, width, height, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
