package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	apperrors "github.com/medfront/medfront/internal/errors"
	"github.com/medfront/medfront/internal/server/middleware"
)

// PapersHandler serves the research paper endpoints.
type PapersHandler struct {
	Store *store.Store
}

func NewPapersHandler(s *store.Store) *PapersHandler {
	return &PapersHandler{Store: s}
}

// parseContentFilter reads the shared listing query parameters.
func parseContentFilter(r *http.Request) core.ContentFilter {
	q := r.URL.Query()
	filter := core.ContentFilter{
		Tag:       strings.TrimSpace(q.Get("tag")),
		Domain:    strings.TrimSpace(q.Get("domain")),
		Category:  strings.TrimSpace(q.Get("category")),
		Search:    strings.TrimSpace(q.Get("search")),
		DateRange: strings.TrimSpace(q.Get("date_range")),
		SortBy:    strings.TrimSpace(q.Get("sort_by")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filter.PageSize = size
	}
	filter.Normalize()
	return filter
}

// PaperListResponse is one page of papers.
type PaperListResponse struct {
	Papers   []core.Paper `json:"papers"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// List returns one page of papers matching the query filters.
func (h *PapersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseContentFilter(r)

	papers, total, err := h.Store.ListPapers(r.Context(), filter)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list papers"))
		return
	}
	if papers == nil {
		papers = []core.Paper{}
	}

	respondJSON(w, http.StatusOK, PaperListResponse{
		Papers:   papers,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// Get returns one paper by id.
func (h *PapersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	paper, err := h.Store.GetPaper(r.Context(), id)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load paper"))
		return
	}
	if paper == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("paper not found"))
		return
	}
	respondJSON(w, http.StatusOK, paper)
}

type paperRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Tags        []string   `json:"tags"`
	Domain      string     `json:"domain"`
	Source      string     `json:"source"`
	PublishTime *time.Time `json:"publish_time"`
	CoverImage  string     `json:"cover_image"`
}

// Create stores a new paper. Restricted to content managers at the route
// level.
func (h *PapersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paperRequest
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

	paper := core.Paper{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Summary:     req.Summary,
		Content:     req.Content,
		Author:      req.Author,
		Tags:        req.Tags,
		Domain:      req.Domain,
		Source:      req.Source,
		PublishTime: publishTime,
		CoverImage:  req.CoverImage,
		Comments:    []core.Comment{},
	}
	if err := h.Store.CreatePaper(r.Context(), paper); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not create paper"))
		return
	}
	respondJSON(w, http.StatusCreated, paper)
}

type paperUpdateRequest struct {
	Title      *string   `json:"title"`
	Summary    *string   `json:"summary"`
	Content    *string   `json:"content"`
	Author     *string   `json:"author"`
	Tags       *[]string `json:"tags"`
	Domain     *string   `json:"domain"`
	Source     *string   `json:"source"`
	CoverImage *string   `json:"cover_image"`
}

// Update applies a partial update and returns the stored paper.
func (h *PapersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req paperUpdateRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	update := store.PaperUpdate{
		Title:      req.Title,
		Summary:    req.Summary,
		Content:    req.Content,
		Author:     req.Author,
		Tags:       req.Tags,
		Domain:     req.Domain,
		Source:     req.Source,
		CoverImage: req.CoverImage,
	}
	if err := h.Store.UpdatePaper(r.Context(), id, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("paper not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not update paper"))
		return
	}

	paper, err := h.Store.GetPaper(r.Context(), id)
	if err != nil || paper == nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load paper"))
		return
	}
	respondJSON(w, http.StatusOK, paper)
}

// Delete removes a paper.
func (h *PapersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeletePaper(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("paper not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not delete paper"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "paper deleted"})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment appends a comment authored by the authenticated user.
func (h *PapersHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondWithError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req commentRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondWithError(w, r, apperrors.NewValidationError("comment content is required"))
		return
	}

	comment := core.Comment{
		ID:        uuid.New().String(),
		Author:    user.Username,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.AddPaperComment(r.Context(), chi.URLParam(r, "id"), comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("paper not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not store comment"))
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// Domains lists the distinct research domains.
func (h *PapersHandler) Domains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.Store.PaperDomains(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list domains"))
		return
	}
	if domains == nil {
		domains = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"domains": domains})
}

// Tags lists the union of every paper's tags.
func (h *PapersHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Store.PaperTags(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list tags"))
		return
	}
	if tags == nil {
		tags = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}
