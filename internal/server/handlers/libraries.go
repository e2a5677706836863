package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	apperrors "github.com/medfront/medfront/internal/errors"
	"github.com/medfront/medfront/internal/server/middleware"
)

// LibrariesHandler serves the personal library endpoints. All routes run
// behind authentication.
type LibrariesHandler struct {
	Store *store.Store
}

func NewLibrariesHandler(s *store.Store) *LibrariesHandler {
	return &LibrariesHandler{Store: s}
}

// List returns the caller's libraries plus public ones.
func (h *LibrariesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	libraries, err := h.Store.ListLibraries(r.Context(), user.Username)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list libraries"))
		return
	}
	if libraries == nil {
		libraries = []core.Library{}
	}
	respondJSON(w, http.StatusOK, map[string][]core.Library{"libraries": libraries})
}

type libraryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// Create stores a new library owned by the caller.
func (h *LibrariesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req libraryRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondWithError(w, r, apperrors.NewValidationError("library name is required"))
		return
	}

	now := time.Now().UTC()
	library := core.Library{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Username:    user.Username,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Store.CreateLibrary(r.Context(), library); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not create library"))
		return
	}
	respondJSON(w, http.StatusCreated, library)
}

// LibraryDetailResponse is a library with its resolved contents.
type LibraryDetailResponse struct {
	Library core.Library `json:"library"`
	Papers  []core.Paper `json:"papers"`
	News    []core.News  `json:"news"`
}

// loadLibrary fetches a library and enforces visibility: private libraries
// are only visible to their owner.
func (h *LibrariesHandler) loadLibrary(w http.ResponseWriter, r *http.Request, requireOwner bool) *core.Library {
	user := middleware.CurrentUser(r.Context())
	library, err := h.Store.GetLibrary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load library"))
		return nil
	}
	if library == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("library not found"))
		return nil
	}
	if library.Username != user.Username {
		if requireOwner {
			respondWithError(w, r, apperrors.NewForbiddenError("only the owner may modify this library"))
			return nil
		}
		if !library.IsPublic {
			respondWithError(w, r, apperrors.NewForbiddenError("this library is private"))
			return nil
		}
	}
	return library
}

// Get returns a library along with the papers and news linked into it.
func (h *LibrariesHandler) Get(w http.ResponseWriter, r *http.Request) {
	library := h.loadLibrary(w, r, false)
	if library == nil {
		return
	}

	items, err := h.Store.ListLibraryItems(r.Context(), library.ID)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list library items"))
		return
	}

	detail := LibraryDetailResponse{
		Library: *library,
		Papers:  []core.Paper{},
		News:    []core.News{},
	}
	for _, item := range items {
		switch item.ItemType {
		case core.ItemTypePaper:
			paper, err := h.Store.GetPaper(r.Context(), item.ItemID)
			if err != nil {
				respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load library paper"))
				return
			}
			if paper != nil {
				detail.Papers = append(detail.Papers, *paper)
			}
		case core.ItemTypeNews:
			news, err := h.Store.GetNews(r.Context(), item.ItemID)
			if err != nil {
				respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load library news"))
				return
			}
			if news != nil {
				detail.News = append(detail.News, *news)
			}
		}
	}

	respondJSON(w, http.StatusOK, detail)
}

type libraryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// Update changes a library's name, description, or visibility. Owner only.
func (h *LibrariesHandler) Update(w http.ResponseWriter, r *http.Request) {
	library := h.loadLibrary(w, r, true)
	if library == nil {
		return
	}

	var req libraryUpdateRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	update := store.LibraryUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := h.Store.UpdateLibrary(r.Context(), library.ID, update); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not update library"))
		return
	}

	updated, err := h.Store.GetLibrary(r.Context(), library.ID)
	if err != nil || updated == nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load library"))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a library and its item links. Owner only.
func (h *LibrariesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	library := h.loadLibrary(w, r, true)
	if library == nil {
		return
	}
	if err := h.Store.DeleteLibrary(r.Context(), library.ID); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not delete library"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "library deleted"})
}

type libraryItemRequest struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
}

// AddItem links a paper or news entry into the library. Owner only.
func (h *LibrariesHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	library := h.loadLibrary(w, r, true)
	if library == nil {
		return
	}

	var req libraryItemRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}
	if req.ItemType != core.ItemTypePaper && req.ItemType != core.ItemTypeNews {
		respondWithError(w, r, apperrors.NewValidationError("item_type must be paper or news"))
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		respondWithError(w, r, apperrors.NewValidationError("item_id is required"))
		return
	}

	exists, err := h.itemExists(r, req.ItemID, req.ItemType)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not check item"))
		return
	}
	if !exists {
		respondWithError(w, r, apperrors.NewNotFoundError("item not found"))
		return
	}

	item := core.LibraryItem{
		LibraryID: library.ID,
		ItemID:    req.ItemID,
		ItemType:  req.ItemType,
		AddedAt:   time.Now().UTC(),
	}
	if err := h.Store.AddLibraryItem(r.Context(), item); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not add library item"))
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *LibrariesHandler) itemExists(r *http.Request, itemID, itemType string) (bool, error) {
	switch itemType {
	case core.ItemTypePaper:
		paper, err := h.Store.GetPaper(r.Context(), itemID)
		return paper != nil, err
	case core.ItemTypeNews:
		news, err := h.Store.GetNews(r.Context(), itemID)
		return news != nil, err
	}
	return false, nil
}

// RemoveItem unlinks an item from the library. Owner only.
func (h *LibrariesHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	library := h.loadLibrary(w, r, true)
	if library == nil {
		return
	}
	if err := h.Store.RemoveLibraryItem(r.Context(), library.ID, chi.URLParam(r, "itemID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("library item not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not remove library item"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "library item removed"})
}
