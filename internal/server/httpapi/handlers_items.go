package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/server/models"
	"github.com/akapustin/itemhub/internal/server/services"
)

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *HTTPServer) listItems(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	skip, limit := parsePagination(r)

	items, err := s.items.List(r.Context(), principal, skip, limit)
	if err != nil {
		writeError(w, err, "Could not list items")
		return
	}
	if items == nil {
		items = []*models.Item{}
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "title is required"})
		return
	}

	item, err := s.items.Create(r.Context(), principal, req.Title, req.Description)
	if err != nil {
		writeError(w, err, "Could not create item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) readItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	item, err := s.items.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		s.writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}

	item, err := s.items.Update(r.Context(), principal, chi.URLParam(r, "id"), services.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) deleteItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized, "Not authenticated")
		return
	}

	if err := s.items.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		s.writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *HTTPServer) writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, err, "Item not found")
	case errors.Is(err, common.ErrForbidden):
		writeError(w, err, "Not enough permissions")
	default:
		writeError(w, err, "Internal error")
	}
}
