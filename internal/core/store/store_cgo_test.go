//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/medfront/medfront/internal/config"
	"github.com/medfront/medfront/internal/core"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenMemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.Equal(t, "libsql", store.Driver())
	require.NoError(t, store.Close())
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	alice := core.User{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$hash",
		Role:           core.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(ctx, alice))
	require.Error(t, s.CreateUser(ctx, alice), "duplicate username rejected")

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, core.RoleUser, got.Role)

	missing, err := s.GetUser(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, missing)

	exists, err := s.EmailExists(ctx, "alice@example.com", "")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.EmailExists(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	require.False(t, exists, "own email excluded")

	require.NoError(t, s.UpdateUserRole(ctx, "alice", core.RolePaperAdmin))
	require.ErrorIs(t, s.UpdateUserRole(ctx, "nobody", core.RoleUser), ErrNotFound)

	require.NoError(t, s.UpdateUserInfo(ctx, "alice", "new@example.com", ""))
	got, err = s.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", got.Email)
	require.Equal(t, "$2a$10$hash", got.HashedPassword)

	admins, err := s.CountUsersByRole(ctx, core.RoleSuperAdmin, core.RolePaperAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, admins)

	users, total, err := s.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, users, 1)

	require.NoError(t, s.DeleteUser(ctx, "alice"))
	require.ErrorIs(t, s.DeleteUser(ctx, "alice"), ErrNotFound)
}

func seedPaper(t *testing.T, s *Store, id, title, domain string, tags []string, publish time.Time, comments int) {
	t.Helper()

	paper := core.Paper{
		ID:          id,
		Title:       title,
		Summary:     "summary of " + title,
		Author:      "dr. zhang",
		Tags:        tags,
		Domain:      domain,
		Source:      "medfront",
		PublishTime: publish,
	}
	for i := 0; i < comments; i++ {
		paper.Comments = append(paper.Comments, core.Comment{
			ID: id + "-c", Author: "reader", Content: "nice", CreatedAt: publish,
		})
	}
	require.NoError(t, s.CreatePaper(context.Background(), paper))
}

func TestPaperFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	seedPaper(t, s, "p1", "Surgical robots", "surgery", []string{"robotics"}, now.Add(-time.Hour), 0)
	seedPaper(t, s, "p2", "Imaging advances", "radiology", []string{"imaging", "ai"}, now.Add(-48*time.Hour), 3)
	seedPaper(t, s, "p3", "Old classic", "surgery", []string{"robotics"}, now.Add(-400*24*time.Hour), 1)

	t.Run("NewestFirst", func(t *testing.T) {
		papers, total, err := s.ListPapers(ctx, core.ContentFilter{})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Equal(t, "p1", papers[0].ID)
	})

	t.Run("HotOrdersByCommentCount", func(t *testing.T) {
		papers, _, err := s.ListPapers(ctx, core.ContentFilter{SortBy: core.SortHot})
		require.NoError(t, err)
		require.Equal(t, "p2", papers[0].ID)
	})

	t.Run("DomainFilter", func(t *testing.T) {
		papers, total, err := s.ListPapers(ctx, core.ContentFilter{Domain: "surgery"})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, papers, 2)
	})

	t.Run("TagFilter", func(t *testing.T) {
		_, total, err := s.ListPapers(ctx, core.ContentFilter{Tag: "ai"})
		require.NoError(t, err)
		require.Equal(t, 1, total)
	})

	t.Run("DateRangeFilter", func(t *testing.T) {
		_, total, err := s.ListPapers(ctx, core.ContentFilter{DateRange: "7d"})
		require.NoError(t, err)
		require.Equal(t, 2, total)
	})

	t.Run("SearchFilter", func(t *testing.T) {
		_, total, err := s.ListPapers(ctx, core.ContentFilter{Search: "Imaging"})
		require.NoError(t, err)
		require.Equal(t, 1, total)
	})

	t.Run("Pagination", func(t *testing.T) {
		papers, total, err := s.ListPapers(ctx, core.ContentFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, papers, 1)
	})

	t.Run("DomainsAndTags", func(t *testing.T) {
		domains, err := s.PaperDomains(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"radiology", "surgery"}, domains)

		tags, err := s.PaperTags(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"ai", "imaging", "robotics"}, tags)
	})

	t.Run("CommentsAppend", func(t *testing.T) {
		require.NoError(t, s.AddPaperComment(ctx, "p1", core.Comment{
			ID: "c1", Author: "bob", Content: "great read", CreatedAt: now,
		}))
		paper, err := s.GetPaper(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, paper.Comments, 1)
		require.Equal(t, "great read", paper.Comments[0].Content)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		title := "Surgical robots, revised"
		require.NoError(t, s.UpdatePaper(ctx, "p1", PaperUpdate{Title: &title}))
		paper, err := s.GetPaper(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, title, paper.Title)
		require.Equal(t, "summary of Surgical robots", paper.Summary)
	})
}

func TestNewsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	item := core.News{
		ID:          "n1",
		Title:       "Conference announcement",
		Summary:     "annual meeting",
		Author:      "editorial",
		Tags:        []string{"events"},
		Category:    "community",
		Source:      "medfront",
		PublishTime: now,
		ExternalURL: "https://example.com/meet",
	}
	require.NoError(t, s.CreateNews(ctx, item))

	t.Run("ViewCountIncrements", func(t *testing.T) {
		require.NoError(t, s.IncrementNewsViews(ctx, "n1"))
		require.NoError(t, s.IncrementNewsViews(ctx, "n1"))
		got, err := s.GetNews(ctx, "n1")
		require.NoError(t, err)
		require.Equal(t, 2, got.ViewCount)
	})

	t.Run("CategoryFilter", func(t *testing.T) {
		_, total, err := s.ListNews(ctx, core.ContentFilter{Category: "community"})
		require.NoError(t, err)
		require.Equal(t, 1, total)

		_, total, err = s.ListNews(ctx, core.ContentFilter{Category: "elsewhere"})
		require.NoError(t, err)
		require.Equal(t, 0, total)
	})

	t.Run("Categories", func(t *testing.T) {
		categories, err := s.NewsCategories(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"community"}, categories)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.DeleteNews(ctx, "n1"))
		got, err := s.GetNews(ctx, "n1")
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func TestLibraryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	lib := core.Library{
		ID: "l1", Name: "reading list", Username: "alice",
		IsPublic: false, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateLibrary(ctx, lib))
	require.NoError(t, s.CreateLibrary(ctx, core.Library{
		ID: "l2", Name: "public picks", Username: "bob",
		IsPublic: true, CreatedAt: now, UpdatedAt: now,
	}))

	t.Run("ListIncludesOwnAndPublic", func(t *testing.T) {
		libraries, err := s.ListLibraries(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, libraries, 2)

		libraries, err = s.ListLibraries(ctx, "carol")
		require.NoError(t, err)
		require.Len(t, libraries, 1)
		require.Equal(t, "l2", libraries[0].ID)
	})

	t.Run("ItemCountsAggregate", func(t *testing.T) {
		require.NoError(t, s.AddLibraryItem(ctx, core.LibraryItem{
			LibraryID: "l1", ItemID: "p1", ItemType: core.ItemTypePaper, AddedAt: now,
		}))
		require.NoError(t, s.AddLibraryItem(ctx, core.LibraryItem{
			LibraryID: "l1", ItemID: "n1", ItemType: core.ItemTypeNews, AddedAt: now,
		}))
		// Duplicate add is a no-op.
		require.NoError(t, s.AddLibraryItem(ctx, core.LibraryItem{
			LibraryID: "l1", ItemID: "p1", ItemType: core.ItemTypePaper, AddedAt: now,
		}))

		got, err := s.GetLibrary(ctx, "l1")
		require.NoError(t, err)
		require.Equal(t, 1, got.PaperCount)
		require.Equal(t, 1, got.NewsCount)

		items, err := s.ListLibraryItems(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, items, 2)
	})

	t.Run("UpdateAndVisibility", func(t *testing.T) {
		public := true
		require.NoError(t, s.UpdateLibrary(ctx, "l1", LibraryUpdate{IsPublic: &public}))
		got, err := s.GetLibrary(ctx, "l1")
		require.NoError(t, err)
		require.True(t, got.IsPublic)
	})

	t.Run("RemoveItem", func(t *testing.T) {
		require.NoError(t, s.RemoveLibraryItem(ctx, "l1", "p1"))
		require.ErrorIs(t, s.RemoveLibraryItem(ctx, "l1", "p1"), ErrNotFound)
	})

	t.Run("DeleteCascadesItems", func(t *testing.T) {
		require.NoError(t, s.DeleteLibrary(ctx, "l1"))
		items, err := s.ListLibraryItems(ctx, "l1")
		require.NoError(t, err)
		require.Empty(t, items)
	})
}
