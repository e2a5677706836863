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

// NewsUpdate describes a partial news update. Nil fields stay unchanged.
type NewsUpdate struct {
	Title       *string
	Summary     *string
	Content     *string
	Author      *string
	Tags        *[]string
	Category    *string
	Source      *string
	CoverImage  *string
	ExternalURL *string
}

// CreateNews inserts a news record.
func (s *Store) CreateNews(ctx context.Context, item core.News) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(item.ID) == "" {
		return errors.New("news id is required")
	}

	tags, err := encodeJSONList(item.Tags)
	if err != nil {
		return fmt.Errorf("encode news tags: %w", err)
	}
	comments, err := encodeComments(item.Comments)
	if err != nil {
		return fmt.Errorf("encode news comments: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO news (id, title, summary, content, author, tags, category, source, publish_time, cover_image, external_url, view_count, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Title, item.Summary, item.Content, item.Author, tags, item.Category,
		item.Source, item.PublishTime.UTC().Unix(), item.CoverImage, item.ExternalURL, item.ViewCount, comments)
	if err != nil {
		return fmt.Errorf("store news: %w", err)
	}

	return nil
}

// GetNews returns a news entry by id, or nil when it does not exist.
func (s *Store) GetNews(ctx context.Context, id string) (*core.News, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, title, summary, content, author, tags, category, source, publish_time, cover_image, external_url, view_count, comments
		FROM news
		WHERE id = ?
	`, strings.TrimSpace(id))

	item, err := scanNews(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	return item, nil
}

// IncrementNewsViews bumps a news entry's view counter.
func (s *Store) IncrementNewsViews(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE news SET view_count = view_count + 1 WHERE id = ?
	`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("increment news views: %w", err)
	}
	return requireRowAffected(res, "news")
}

// UpdateNews applies a partial update to a news entry.
func (s *Store) UpdateNews(ctx context.Context, id string, update NewsUpdate) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)
	appendSet := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Summary != nil {
		appendSet("summary", *update.Summary)
	}
	if update.Content != nil {
		appendSet("content", *update.Content)
	}
	if update.Author != nil {
		appendSet("author", *update.Author)
	}
	if update.Tags != nil {
		tags, err := encodeJSONList(*update.Tags)
		if err != nil {
			return fmt.Errorf("encode news tags: %w", err)
		}
		appendSet("tags", tags)
	}
	if update.Category != nil {
		appendSet("category", *update.Category)
	}
	if update.Source != nil {
		appendSet("source", *update.Source)
	}
	if update.CoverImage != nil {
		appendSet("cover_image", *update.CoverImage)
	}
	if update.ExternalURL != nil {
		appendSet("external_url", *update.ExternalURL)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, strings.TrimSpace(id))

	res, err := s.DB.ExecContext(ctx, "UPDATE news SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return requireRowAffected(res, "news")
}

// DeleteNews removes a news record.
func (s *Store) DeleteNews(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return requireRowAffected(res, "news")
}

// ListNews returns one page of news matching the filter plus the total
// match count.
func (s *Store) ListNews(ctx context.Context, filter core.ContentFilter) ([]core.News, int, error) {
	if s == nil || s.DB == nil {
		return nil, 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	filter.Normalize()

	where, args := contentFilterClauses(filter, true)

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM news"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	order := " ORDER BY publish_time DESC, id"
	if filter.SortBy == core.SortHot {
		order = " ORDER BY view_count DESC, publish_time DESC, id"
	}

	query := `SELECT id, title, summary, content, author, tags, category, source, publish_time, cover_image, external_url, view_count, comments FROM news` +
		where + order + " LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var items []core.News
	for rows.Next() {
		item, err := scanNews(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}

	return items, total, nil
}

// NewsCategories returns the distinct news categories in alphabetical
// order.
func (s *Store) NewsCategories(ctx context.Context) ([]string, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT category FROM news WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func scanNews(scan scanFunc) (*core.News, error) {
	var (
		item        core.News
		content     sql.NullString
		coverImage  sql.NullString
		externalURL sql.NullString
		tagsJSON    string
		commentsRaw string
		publishTime int64
	)
	if err := scan(&item.ID, &item.Title, &item.Summary, &content, &item.Author, &tagsJSON,
		&item.Category, &item.Source, &publishTime, &coverImage, &externalURL, &item.ViewCount, &commentsRaw); err != nil {
		return nil, err
	}

	item.Content = content.String
	item.CoverImage = coverImage.String
	item.ExternalURL = externalURL.String
	item.PublishTime = time.Unix(publishTime, 0).UTC()

	tags, err := decodeJSONList(tagsJSON)
	if err != nil {
		return nil, fmt.Errorf("decode news tags: %w", err)
	}
	item.Tags = tags

	comments, err := decodeComments(commentsRaw)
	if err != nil {
		return nil, fmt.Errorf("decode news comments: %w", err)
	}
	item.Comments = comments

	return &item, nil
}
