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
)

// NewsHandler serves the community news endpoints.
type NewsHandler struct {
	Store *store.Store
}

func NewNewsHandler(s *store.Store) *NewsHandler {
	return &NewsHandler{Store: s}
}

// NewsListResponse is one page of news entries.
type NewsListResponse struct {
	News     []core.News `json:"news"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// List returns one page of news matching the query filters.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseContentFilter(r)

	items, total, err := h.Store.ListNews(r.Context(), filter)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list news"))
		return
	}
	if items == nil {
		items = []core.News{}
	}

	respondJSON(w, http.StatusOK, NewsListResponse{
		News:     items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// Get returns one news entry and bumps its view count.
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.Store.GetNews(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load news"))
		return
	}
	if item == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("news not found"))
		return
	}

	if err := h.Store.IncrementNewsViews(r.Context(), id); err == nil {
		item.ViewCount++
	}
	respondJSON(w, http.StatusOK, item)
}

type newsRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	PublishTime *time.Time `json:"publish_time"`
	CoverImage  string     `json:"cover_image"`
	ExternalURL string     `json:"external_url"`
}

// Create stores a new news entry. Restricted to content managers at the
// route level.
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondWithError(w, r, apperrors.NewValidationError("title is required"))
		return
	}

	publishTime := time.Now().UTC()
	if req.PublishTime != nil {
		publishTime = req.PublishTime.UTC()
	}

	item := core.News{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Summary:     req.Summary,
		Content:     req.Content,
		Author:      req.Author,
		Tags:        req.Tags,
		Category:    req.Category,
		Source:      req.Source,
		PublishTime: publishTime,
		CoverImage:  req.CoverImage,
		ExternalURL: req.ExternalURL,
		Comments:    []core.Comment{},
	}
	if err := h.Store.CreateNews(r.Context(), item); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not create news"))
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

type newsUpdateRequest struct {
	Title       *string   `json:"title"`
	Summary     *string   `json:"summary"`
	Content     *string   `json:"content"`
	Author      *string   `json:"author"`
	Tags        *[]string `json:"tags"`
	Category    *string   `json:"category"`
	Source      *string   `json:"source"`
	CoverImage  *string   `json:"cover_image"`
	ExternalURL *string   `json:"external_url"`
}

// Update applies a partial update and returns the stored entry.
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req newsUpdateRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	update := store.NewsUpdate{
		Title:       req.Title,
		Summary:     req.Summary,
		Content:     req.Content,
		Author:      req.Author,
		Tags:        req.Tags,
		Category:    req.Category,
		Source:      req.Source,
		CoverImage:  req.CoverImage,
		ExternalURL: req.ExternalURL,
	}
	if err := h.Store.UpdateNews(r.Context(), id, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("news not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not update news"))
		return
	}

	item, err := h.Store.GetNews(r.Context(), id)
	if err != nil || item == nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load news"))
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Delete removes a news entry.
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteNews(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("news not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not delete news"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "news deleted"})
}

// Categories lists the distinct news categories.
func (h *NewsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.NewsCategories(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list categories"))
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}
