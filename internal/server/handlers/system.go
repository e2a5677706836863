package handlers

import (
	"net/http"

	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	apperrors "github.com/medfront/medfront/internal/errors"
)

// SystemHandler serves the admin dashboard statistics endpoint.
type SystemHandler struct {
	Store *store.Store
}

func NewSystemHandler(s *store.Store) *SystemHandler {
	return &SystemHandler{Store: s}
}

// StatisticsResponse is the dashboard summary payload.
type StatisticsResponse struct {
	TotalPapers  int                `json:"total_papers"`
	TotalUsers   int                `json:"total_users"`
	AdminUsers   int                `json:"admin_users"`
	RegularUsers int                `json:"regular_users"`
	RecentPapers []core.Paper       `json:"recent_papers"`
	RecentUsers  []UserInfoResponse `json:"recent_users"`
}

// Statistics aggregates counts and recent activity for the dashboard.
func (h *SystemHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalPapers, err := h.Store.CountPapers(ctx)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "could not count papers"))
		return
	}

	_, totalUsers, err := h.Store.ListUsers(ctx, 1, 1)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "could not count users"))
		return
	}

	adminUsers, err := h.Store.CountUsersByRole(ctx, core.RoleSuperAdmin, core.RolePaperAdmin)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "could not count admins"))
		return
	}

	recentPapers, err := h.Store.RecentPapers(ctx, 5)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "could not load recent papers"))
		return
	}
	if recentPapers == nil {
		recentPapers = []core.Paper{}
	}

	recentUsers, err := h.Store.RecentUsers(ctx, 5)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "could not load recent users"))
		return
	}

	infos := make([]UserInfoResponse, 0, len(recentUsers))
	for i := range recentUsers {
		infos = append(infos, userInfo(&recentUsers[i]))
	}

	respondJSON(w, http.StatusOK, StatisticsResponse{
		TotalPapers:  totalPapers,
		TotalUsers:   totalUsers,
		AdminUsers:   adminUsers,
		RegularUsers: totalUsers - adminUsers,
		RecentPapers: recentPapers,
		RecentUsers:  infos,
	})
}
