package notefold

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/notefold/notefold/pkg/markdown"
	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/pagetree"
	"github.com/notefold/notefold/pkg/store"
)

// identity extracts the caller's user id from the Authorization header.
// Authentication proper is an external collaborator; by the time a request
// reaches this server the bearer token has been exchanged for the user's
// id, so the header carries "Bearer <user-uuid>".
func identity(r *http.Request) (models.UserID, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return models.UserID{}, false
	}
	id, err := models.ParseUserID(strings.TrimSpace(strings.TrimPrefix(auth, prefix)))
	if err != nil {
		return models.UserID{}, false
	}
	return id, true
}

// respondStoreError translates the store error taxonomy to HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "persistence backend is not configured")
	case errors.Is(err, store.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrValidation):
		respondError(w, http.StatusBadRequest, "invalid request")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"read_only": a.IsReadOnly(),
	})
}

// Page handlers

func (a *App) handleListPages(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		// List reads degrade to an empty collection without identity.
		respondJSON(w, http.StatusOK, []*models.Page{})
		return
	}
	pages, err := a.store.ListPages(r.Context(), owner)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pages)
}

func (a *App) handlePagesTree(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondJSON(w, http.StatusOK, []*pagetree.Node{})
		return
	}
	pages, err := a.store.ListPages(r.Context(), owner)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagetree.Assemble(pages))
}

func (a *App) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in store.CreatePage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	page, err := a.store.CreatePage(r.Context(), owner, in)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, page)
}

func (a *App) handleGetPage(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := models.ParsePageID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page ID")
		return
	}
	page, err := a.store.GetPage(r.Context(), owner, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// updatePageRequest is the PATCH payload. Its unmarshaler keeps "parent_id
// absent" distinct from "parent_id: null": the former leaves the parent
// untouched, the latter moves the page to the root.
type updatePageRequest struct {
	Title     *string
	Icon      *string
	ParentID  *models.PageID
	SetParent bool
}

func (u *updatePageRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &u.Title); err != nil {
			return err
		}
	}
	if v, ok := raw["icon"]; ok {
		if err := json.Unmarshal(v, &u.Icon); err != nil {
			return err
		}
	}
	if v, ok := raw["parent_id"]; ok {
		u.SetParent = true
		if string(v) != "null" {
			var id models.PageID
			if err := json.Unmarshal(v, &id); err != nil {
				return err
			}
			u.ParentID = &id
		}
	}
	return nil
}

func (a *App) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := models.ParsePageID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page ID")
		return
	}
	var req updatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	page, err := a.store.UpdatePage(r.Context(), owner, id, store.PageUpdate{
		Title:     req.Title,
		Icon:      req.Icon,
		ParentID:  req.ParentID,
		SetParent: req.SetParent,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (a *App) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := models.ParsePageID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page ID")
		return
	}
	if err := a.store.DeletePage(r.Context(), owner, id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Block handlers

func (a *App) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondJSON(w, http.StatusOK, []*models.Block{})
		return
	}
	pageID, err := models.ParsePageID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page ID")
		return
	}
	blocks, err := a.store.ListBlocks(r.Context(), owner, pageID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, blocks)
}

func (a *App) handleUpsertBlock(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := models.ParseBlockID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid block ID")
		return
	}
	var block models.Block
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	block.ID = id
	if err := a.store.UpsertBlock(r.Context(), owner, &block); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, block)
}

func (a *App) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := models.ParseBlockID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid block ID")
		return
	}
	if err := a.store.DeleteBlock(r.Context(), owner, id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleImportMarkdown parses the request body as markdown and appends the
// resulting blocks after the page's existing ones.
func (a *App) handleImportMarkdown(w http.ResponseWriter, r *http.Request) {
	owner, ok := identity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	pageID, err := models.ParsePageID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid page ID")
		return
	}
	src, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := a.store.ListBlocks(r.Context(), owner, pageID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	// Offset from the tail position, not the count, so imports land after
	// the current blocks even when stored positions are sparse.
	offset := 0
	if len(existing) > 0 {
		offset = existing[len(existing)-1].Position + 1
	}

	blocks := markdown.Parse(src, pageID)
	for _, b := range blocks {
		b.Position += offset
		if err := a.store.UpsertBlock(r.Context(), owner, b); err != nil {
			respondStoreError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusCreated, blocks)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

// respondError sends a standardized JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
