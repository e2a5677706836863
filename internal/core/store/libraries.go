package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medfront/medfront/internal/core"
)

// LibraryUpdate describes a partial library update. Nil fields stay
// unchanged.
type LibraryUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

const libraryColumns = `
	l.id, l.name, l.description, l.username, l.is_public, l.created_at, l.updated_at,
	COUNT(CASE WHEN li.item_type = 'paper' THEN 1 END) AS paper_count,
	COUNT(CASE WHEN li.item_type = 'news' THEN 1 END) AS news_count
`

// CreateLibrary inserts a library record.
func (s *Store) CreateLibrary(ctx context.Context, library core.Library) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(library.ID) == "" {
		return errors.New("library id is required")
	}

	isPublic := 0
	if library.IsPublic {
		isPublic = 1
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO libraries (id, name, description, username, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, library.ID, library.Name, library.Description, library.Username, isPublic,
		library.CreatedAt.UTC().Unix(), library.UpdatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store library: %w", err)
	}

	return nil
}

// GetLibrary returns a library with item counts, or nil when it does not
// exist.
func (s *Store) GetLibrary(ctx context.Context, id string) (*core.Library, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT`+libraryColumns+`
		FROM libraries l
		LEFT JOIN library_items li ON li.library_id = l.id
		WHERE l.id = ?
		GROUP BY l.id
	`, strings.TrimSpace(id))

	library, err := scanLibrary(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch library: %w", err)
	}
	return library, nil
}

// ListLibraries returns the caller's own libraries plus everyone's public
// ones, newest first.
func (s *Store) ListLibraries(ctx context.Context, username string) ([]core.Library, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT`+libraryColumns+`
		FROM libraries l
		LEFT JOIN library_items li ON li.library_id = l.id
		WHERE l.username = ? OR l.is_public = 1
		GROUP BY l.id
		ORDER BY l.updated_at DESC, l.id
	`, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var libraries []core.Library
	for rows.Next() {
		library, err := scanLibrary(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		libraries = append(libraries, *library)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	return libraries, nil
}

// UpdateLibrary applies a partial update and refreshes the updated_at
// stamp.
func (s *Store) UpdateLibrary(ctx context.Context, id string, update LibraryUpdate) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.IsPublic != nil {
		isPublic := 0
		if *update.IsPublic {
			isPublic = 1
		}
		sets = append(sets, "is_public = ?")
		args = append(args, isPublic)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Unix(), strings.TrimSpace(id))

	res, err := s.DB.ExecContext(ctx, "UPDATE libraries SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update library: %w", err)
	}
	return requireRowAffected(res, "library")
}

// DeleteLibrary removes a library and its item links.
func (s *Store) DeleteLibrary(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM library_items WHERE library_id = ?`, id); err != nil {
		return fmt.Errorf("delete library items: %w", err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM libraries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete library: %w", err)
	}
	return requireRowAffected(res, "library")
}

// AddLibraryItem links a paper or news entry into a library. Re-adding an
// existing item is a no-op.
func (s *Store) AddLibraryItem(ctx context.Context, item core.LibraryItem) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if item.ItemType != core.ItemTypePaper && item.ItemType != core.ItemTypeNews {
		return fmt.Errorf("invalid item type: %s", item.ItemType)
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO library_items (library_id, item_id, item_type, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(library_id, item_id, item_type) DO NOTHING
	`, item.LibraryID, item.ItemID, item.ItemType, item.AddedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store library item: %w", err)
	}

	if _, err := s.DB.ExecContext(ctx, `UPDATE libraries SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Unix(), item.LibraryID); err != nil {
		return fmt.Errorf("touch library: %w", err)
	}

	return nil
}

// RemoveLibraryItem unlinks an item from a library.
func (s *Store) RemoveLibraryItem(ctx context.Context, libraryID, itemID string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM library_items WHERE library_id = ? AND item_id = ?
	`, strings.TrimSpace(libraryID), strings.TrimSpace(itemID))
	if err != nil {
		return fmt.Errorf("delete library item: %w", err)
	}
	return requireRowAffected(res, "library item")
}

// ListLibraryItems returns every item linked into a library, oldest first.
func (s *Store) ListLibraryItems(ctx context.Context, libraryID string) ([]core.LibraryItem, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT library_id, item_id, item_type, added_at
		FROM library_items
		WHERE library_id = ?
		ORDER BY added_at, item_id
	`, strings.TrimSpace(libraryID))
	if err != nil {
		return nil, fmt.Errorf("list library items: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var items []core.LibraryItem
	for rows.Next() {
		var (
			item    core.LibraryItem
			addedAt int64
		)
		if err := rows.Scan(&item.LibraryID, &item.ItemID, &item.ItemType, &addedAt); err != nil {
			return nil, fmt.Errorf("scan library item: %w", err)
		}
		item.AddedAt = time.Unix(addedAt, 0).UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list library items: %w", err)
	}
	return items, nil
}

func scanLibrary(scan scanFunc) (*core.Library, error) {
	var (
		library     core.Library
		description sql.NullString
		isPublic    int
		createdAt   int64
		updatedAt   int64
	)
	if err := scan(&library.ID, &library.Name, &description, &library.Username, &isPublic,
		&createdAt, &updatedAt, &library.PaperCount, &library.NewsCount); err != nil {
		return nil, err
	}

	library.Description = description.String
	library.IsPublic = isPublic == 1
	library.CreatedAt = time.Unix(createdAt, 0).UTC()
	library.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &library, nil
}
