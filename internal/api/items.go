package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/diamondbase/internal/imaging"
	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/model"
)

// ItemsHandler handles item registration, reads and the provenance image
// endpoints.
type ItemsHandler struct {
	Ledger *ledger.Ledger
}

type uploadHashRequest struct {
	Hash string `json:"hash"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *model.State
	if v := r.URL.Query().Get("state"); v != "" {
		state, err := model.ParseState(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid state")
			return
		}
		filter = &state
	}

	items, err := h.Ledger.Items(r.Context(), filter)
	if err != nil {
		ledgerError(w, "listItems", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Mine handles POST /api/items.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	miner, ok := caller(w, r)
	if !ok {
		return
	}

	var req ledger.MineRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Ledger.Mine(r.Context(), miner, req)
	if err != nil {
		ledgerError(w, "mine", err)
		return
	}

	slog.Info("item mined", "upc", req.UPC, "miner", miner)
	jsonResponse(w, http.StatusCreated, event)
}

// Get handles GET /api/items/{upc}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	item, err := h.Ledger.Item(r.Context(), upc)
	if err != nil {
		ledgerError(w, "item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// BufferOne handles GET /api/items/{upc}/buffer/one.
func (h *ItemsHandler) BufferOne(w http.ResponseWriter, r *http.Request) {
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	buf, err := h.Ledger.FetchItemBufferOne(r.Context(), upc)
	if err != nil {
		ledgerError(w, "fetchItemBufferOne", err)
		return
	}
	jsonResponse(w, http.StatusOK, buf)
}

// BufferTwo handles GET /api/items/{upc}/buffer/two.
func (h *ItemsHandler) BufferTwo(w http.ResponseWriter, r *http.Request) {
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	buf, err := h.Ledger.FetchItemBufferTwo(r.Context(), upc)
	if err != nil {
		ledgerError(w, "fetchItemBufferTwo", err)
		return
	}
	jsonResponse(w, http.StatusOK, buf)
}

// Events handles GET /api/items/{upc}/events.
func (h *ItemsHandler) Events(w http.ResponseWriter, r *http.Request) {
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	events, err := h.Ledger.Events(r.Context(), upc)
	if err != nil {
		ledgerError(w, "events", err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// ReadHash handles GET /api/items/{upc}/hash.
func (h *ItemsHandler) ReadHash(w http.ResponseWriter, r *http.Request) {
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	hash, err := h.Ledger.ReadHash(r.Context(), upc)
	if err != nil {
		ledgerError(w, "readHash", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"hash": hash})
}

// UploadHash handles PUT /api/items/{upc}/hash.
func (h *ItemsHandler) UploadHash(w http.ResponseWriter, r *http.Request) {
	miner, ok := caller(w, r)
	if !ok {
		return
	}
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	var req uploadHashRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Ledger.UploadHash(r.Context(), miner, upc, req.Hash)
	if err != nil {
		ledgerError(w, "uploadHash", err)
		return
	}
	jsonResponse(w, http.StatusOK, event)
}

// UploadImage handles PUT /api/items/{upc}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	miner, ok := caller(w, r)
	if !ok {
		return
	}
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize)

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	event, err := h.Ledger.UploadImage(r.Context(), miner, upc, data)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidArgument) {
			slog.Warn("image rejected", "upc", upc, "error", err)
		}
		ledgerError(w, "uploadImage", err)
		return
	}
	jsonResponse(w, http.StatusOK, event)
}

// GetImage handles GET /api/items/{upc}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	upc, ok := pathUPC(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid upc")
		return
	}

	data, mime, err := h.Ledger.Image(r.Context(), upc)
	if err != nil {
		ledgerError(w, "image", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
