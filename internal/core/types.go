// Package core defines the domain types shared across the MedFront backend.
package core

import (
	"strings"
	"time"
)

// UserRole identifies a user's permission tier.
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RolePaperAdmin UserRole = "paper_admin"
	RoleUser       UserRole = "user"
)

// Valid reports whether the role is one of the known tiers.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RolePaperAdmin, RoleUser:
		return true
	}
	return false
}

// CanManageContent reports whether the role may create, update, or delete
// papers and news.
func (r UserRole) CanManageContent() bool {
	return r == RoleSuperAdmin || r == RolePaperAdmin
}

// User is a registered community member.
type User struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Comment is a reader comment attached to a paper or news entry.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Paper is a research paper entry.
type Paper struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Domain      string    `json:"domain"`
	Source      string    `json:"source"`
	PublishTime time.Time `json:"publish_time"`
	CoverImage  string    `json:"cover_image,omitempty"`
	Comments    []Comment `json:"comments"`
}

// News is a community news entry.
type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	PublishTime time.Time `json:"publish_time"`
	CoverImage  string    `json:"cover_image,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	ViewCount   int       `json:"view_count"`
	Comments    []Comment `json:"comments"`
}

// Library is a user-owned collection of papers and news.
type Library struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Username    string    `json:"username"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PaperCount  int       `json:"paper_count"`
	NewsCount   int       `json:"news_count"`
}

// Library item kinds.
const (
	ItemTypePaper = "paper"
	ItemTypeNews  = "news"
)

// LibraryItem links a paper or news entry into a library.
type LibraryItem struct {
	LibraryID string    `json:"library_id"`
	ItemID    string    `json:"item_id"`
	ItemType  string    `json:"item_type"`
	AddedAt   time.Time `json:"added_at"`
}

// Sort orders accepted by content listings.
const (
	SortNewest = "newest"
	SortHot    = "hot"
)

// Pagination bounds for content listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ContentFilter narrows paper and news listings. Zero values mean no
// restriction; Normalize fills pagination defaults.
type ContentFilter struct {
	Tag       string
	Domain    string
	Category  string
	Search    string
	DateRange string
	SortBy    string
	Page      int
	PageSize  int
}

// Normalize applies pagination defaults and clamps the page size.
func (f *ContentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.SortBy == "" {
		f.SortBy = SortNewest
	}
}

// dateRanges maps listing range keys to lookback windows.
var dateRanges = map[string]time.Duration{
	"1d":   24 * time.Hour,
	"3d":   3 * 24 * time.Hour,
	"7d":   7 * 24 * time.Hour,
	"30d":  30 * 24 * time.Hour,
	"180d": 180 * 24 * time.Hour,
	"1y":   365 * 24 * time.Hour,
}

// DateCutoff resolves the filter's date range against now. The second
// return is false when the range is empty, "all", or unknown.
func (f *ContentFilter) DateCutoff(now time.Time) (time.Time, bool) {
	key := strings.TrimSpace(strings.ToLower(f.DateRange))
	if key == "" || key == "all" {
		return time.Time{}, false
	}
	window, ok := dateRanges[key]
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-window), true
}
