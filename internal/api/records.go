package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tilestock/tilestock/internal/imaging"
	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

// RecordsHandler handles record and group endpoints.
type RecordsHandler struct {
	DB   *sql.DB
	Feed *inventory.Feed
}

type variantPayload struct {
	TypeSuffix string `json:"type_suffix"`
	Quantity   int    `json:"quantity"`
}

type groupPayload struct {
	ModelPrefix string           `json:"model_prefix"`
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	Variants    []variantPayload `json:"variants"`
}

type updateGroupRequest struct {
	Old groupPayload `json:"old"`
	New groupPayload `json:"new"`
}

type pageResponse struct {
	Records     []model.Record `json:"records"`
	FirstCursor string         `json:"first_cursor,omitempty"`
	LastCursor  string         `json:"last_cursor,omitempty"`
}

// validateGroup checks a group payload and returns the variant inputs to
// persist, or a user-facing message when the payload is rejected.
func validateGroup(g groupPayload) ([]store.VariantInput, string) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, "width and height must be positive"
	}

	var inputs []store.VariantInput
	for _, v := range g.Variants {
		if !model.ValidSuffix(v.TypeSuffix) {
			return nil, "unknown type suffix: " + v.TypeSuffix
		}
		if v.Quantity > 0 {
			inputs = append(inputs, store.VariantInput{TypeSuffix: v.TypeSuffix, Quantity: v.Quantity})
		}
	}

	if len(inputs) == 0 {
		if g.ModelPrefix == "" {
			return nil, "enter a model number or a quantity"
		}
		return nil, "at least one variant needs a positive quantity"
	}
	return inputs, ""
}

// List handles GET /api/records. Pagination is stateless: the caller walks
// pages with the opaque cursor tokens returned in each response.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := store.RecordQuerier{DB: h.DB}

	limit := inventory.DefaultPerPage
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var (
		records []model.Record
		err     error
	)
	token := r.URL.Query().Get("cursor")
	dir := r.URL.Query().Get("dir")
	if token == "" {
		records, err = q.PageInitial(r.Context(), limit)
	} else {
		cursor, perr := inventory.ParseToken(token)
		if perr != nil {
			jsonError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		switch dir {
		case "", "next":
			records, err = q.PageAfter(r.Context(), cursor, limit)
		case "prev":
			records, err = q.PageBefore(r.Context(), cursor, limit)
		default:
			jsonError(w, http.StatusBadRequest, "invalid direction")
			return
		}
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	resp := pageResponse{Records: records}
	if resp.Records == nil {
		resp.Records = []model.Record{}
	}
	if len(records) > 0 {
		resp.FirstCursor = inventory.CursorOf(records[0]).Token()
		resp.LastCursor = inventory.CursorOf(records[len(records)-1]).Token()
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Count handles GET /api/records/count.
func (h *RecordsHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := store.CountRecords(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to count records")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"count": n})
}

// Get handles GET /api/records/{id}.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := store.GetRecord(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// ListGroups handles GET /api/groups. The response is the grouped display
// projection of the full record set, optionally filtered by a model-prefix
// search term. Variant labels follow the configured UI language.
func (h *RecordsHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListRecords(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	lang, err := store.GetSetting(r.Context(), h.DB, store.SettingLanguage, model.LangEnglish)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	groups := inventory.NewGrouper(model.CollationTag(lang), model.SuffixLabeler(lang)).Group(records)
	if groups == nil {
		groups = []inventory.Group{}
	}
	jsonResponse(w, http.StatusOK, groups)
}

// CreateGroup handles POST /api/groups. All variants are written in one
// transaction sharing a batch ID.
func (h *RecordsHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupPayload
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inputs, msg := validateGroup(req)
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	records, err := store.SaveGroup(r.Context(), h.DB, req.ModelPrefix, req.Width, req.Height, inputs)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save group")
		return
	}

	h.Feed.Broadcast()
	jsonResponse(w, http.StatusCreated, records)
}

// UpdateGroup handles PUT /api/groups. The old group's variant set is
// replaced wholesale by the new one in a single transaction.
func (h *RecordsHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inputs, msg := validateGroup(req.New)
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	err := store.ReplaceGroup(r.Context(), h.DB,
		req.Old.ModelPrefix, req.Old.Width, req.Old.Height,
		req.New.ModelPrefix, req.New.Width, req.New.Height, inputs)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update group")
		return
	}

	h.Feed.Broadcast()
	jsonResponse(w, http.StatusOK, map[string]string{"message": "group updated"})
}

// DeleteGroup handles DELETE /api/groups. Every variant of the group is
// removed atomically; the response reports how many records were deleted.
func (h *RecordsHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	var req groupPayload
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		jsonError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}

	n, err := store.DeleteGroup(r.Context(), h.DB, req.ModelPrefix, req.Width, req.Height)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete group")
		return
	}

	h.Feed.Broadcast()
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": n})
}

// UploadPhoto handles PUT /api/records/{id}/photo.
func (h *RecordsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := store.GetRecord(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetRecordPhoto(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	h.Feed.Broadcast()
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/records/{id}/photo.
func (h *RecordsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	data, mime, err := store.GetRecordPhoto(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}
