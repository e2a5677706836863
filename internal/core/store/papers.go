package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/medfront/medfront/internal/core"
)

// PaperUpdate describes a partial paper update. Nil fields stay unchanged.
type PaperUpdate struct {
	Title      *string
	Summary    *string
	Content    *string
	Author     *string
	Tags       *[]string
	Domain     *string
	Source     *string
	CoverImage *string
}

// CreatePaper inserts a paper record.
func (s *Store) CreatePaper(ctx context.Context, paper core.Paper) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(paper.ID) == "" {
		return errors.New("paper id is required")
	}

	tags, err := encodeJSONList(paper.Tags)
	if err != nil {
		return fmt.Errorf("encode paper tags: %w", err)
	}
	comments, err := encodeComments(paper.Comments)
	if err != nil {
		return fmt.Errorf("encode paper comments: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO papers (id, title, summary, content, author, tags, domain, source, publish_time, cover_image, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, paper.ID, paper.Title, paper.Summary, paper.Content, paper.Author, tags,
		paper.Domain, paper.Source, paper.PublishTime.UTC().Unix(), paper.CoverImage, comments)
	if err != nil {
		return fmt.Errorf("store paper: %w", err)
	}

	return nil
}

// GetPaper returns a paper by id, or nil when it does not exist.
func (s *Store) GetPaper(ctx context.Context, id string) (*core.Paper, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, title, summary, content, author, tags, domain, source, publish_time, cover_image, comments
		FROM papers
		WHERE id = ?
	`, strings.TrimSpace(id))

	paper, err := scanPaper(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch paper: %w", err)
	}
	return paper, nil
}

// UpdatePaper applies a partial update to a paper.
func (s *Store) UpdatePaper(ctx context.Context, id string, update PaperUpdate) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
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
			return fmt.Errorf("encode paper tags: %w", err)
		}
		appendSet("tags", tags)
	}
	if update.Domain != nil {
		appendSet("domain", *update.Domain)
	}
	if update.Source != nil {
		appendSet("source", *update.Source)
	}
	if update.CoverImage != nil {
		appendSet("cover_image", *update.CoverImage)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, strings.TrimSpace(id))

	res, err := s.DB.ExecContext(ctx, "UPDATE papers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update paper: %w", err)
	}
	return requireRowAffected(res, "paper")
}

// DeletePaper removes a paper record.
func (s *Store) DeletePaper(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}
	return requireRowAffected(res, "paper")
}

// ListPapers returns one page of papers matching the filter plus the total
// match count.
func (s *Store) ListPapers(ctx context.Context, filter core.ContentFilter) ([]core.Paper, int, error) {
	if s == nil || s.DB == nil {
		return nil, 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	filter.Normalize()

	where, args := contentFilterClauses(filter, false)

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM papers"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count papers: %w", err)
	}

	order := " ORDER BY publish_time DESC, id"
	if filter.SortBy == core.SortHot {
		order = " ORDER BY json_array_length(comments) DESC, publish_time DESC, id"
	}

	query := `SELECT id, title, summary, content, author, tags, domain, source, publish_time, cover_image, comments FROM papers` +
		where + order + " LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var papers []core.Paper
	for rows.Next() {
		paper, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, *paper)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list papers: %w", err)
	}

	return papers, total, nil
}

// RecentPapers returns the most recently published papers.
func (s *Store) RecentPapers(ctx context.Context, limit int) ([]core.Paper, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit < 1 {
		limit = 5
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, summary, content, author, tags, domain, source, publish_time, cover_image, comments
		FROM papers
		ORDER BY publish_time DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent papers: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var papers []core.Paper
	for rows.Next() {
		paper, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, *paper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent papers: %w", err)
	}
	return papers, nil
}

// CountPapers returns the total number of papers.
func (s *Store) CountPapers(ctx context.Context) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return count, nil
}

// PaperDomains returns the distinct research domains in alphabetical order.
func (s *Store) PaperDomains(ctx context.Context) ([]string, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT domain FROM papers WHERE domain != '' ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, domain)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return domains, nil
}

// PaperTags returns the sorted union of every paper's tags.
func (s *Store) PaperTags(ctx context.Context) ([]string, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT tags FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan tags: %w", err)
		}
		tags, err := decodeJSONList(raw)
		if err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		for _, tag := range tags {
			seen[tag] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// AddPaperComment appends a comment to a paper's comment list.
func (s *Store) AddPaperComment(ctx context.Context, id string, comment core.Comment) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	paper, err := s.GetPaper(ctx, id)
	if err != nil {
		return err
	}
	if paper == nil {
		return fmt.Errorf("paper: %w", ErrNotFound)
	}

	comments, err := encodeComments(append(paper.Comments, comment))
	if err != nil {
		return fmt.Errorf("encode paper comments: %w", err)
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE papers SET comments = ? WHERE id = ?`, comments, paper.ID)
	if err != nil {
		return fmt.Errorf("store paper comment: %w", err)
	}
	return requireRowAffected(res, "paper")
}

// contentFilterClauses renders the shared WHERE clause for paper and news
// listings. News listings additionally honor the category filter.
func contentFilterClauses(filter core.ContentFilter, withCategory bool) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if filter.Domain != "" {
		clauses = append(clauses, "domain = ?")
		args = append(args, filter.Domain)
	}
	if withCategory && filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		// Tags persist as a JSON array, so match the quoted element.
		clauses = append(clauses, "tags LIKE ?")
		args = append(args, `%"`+filter.Tag+`"%`)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		clauses = append(clauses, "(title LIKE ? OR summary LIKE ? OR author LIKE ?)")
		args = append(args, like, like, like)
	}
	if cutoff, ok := filter.DateCutoff(time.Now().UTC()); ok {
		clauses = append(clauses, "publish_time >= ?")
		args = append(args, cutoff.Unix())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type scanFunc func(dest ...any) error

func scanPaper(scan scanFunc) (*core.Paper, error) {
	var (
		paper       core.Paper
		content     sql.NullString
		coverImage  sql.NullString
		tagsJSON    string
		commentsRaw string
		publishTime int64
	)
	if err := scan(&paper.ID, &paper.Title, &paper.Summary, &content, &paper.Author,
		&tagsJSON, &paper.Domain, &paper.Source, &publishTime, &coverImage, &commentsRaw); err != nil {
		return nil, err
	}

	paper.Content = content.String
	paper.CoverImage = coverImage.String
	paper.PublishTime = time.Unix(publishTime, 0).UTC()

	tags, err := decodeJSONList(tagsJSON)
	if err != nil {
		return nil, fmt.Errorf("decode paper tags: %w", err)
	}
	paper.Tags = tags

	comments, err := decodeComments(commentsRaw)
	if err != nil {
		return nil, fmt.Errorf("decode paper comments: %w", err)
	}
	paper.Comments = comments

	return &paper, nil
}

func encodeJSONList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeJSONList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func encodeComments(comments []core.Comment) (string, error) {
	if comments == nil {
		comments = []core.Comment{}
	}
	payload, err := json.Marshal(comments)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeComments(raw string) ([]core.Comment, error) {
	if strings.TrimSpace(raw) == "" {
		return []core.Comment{}, nil
	}
	var comments []core.Comment
	if err := json.Unmarshal([]byte(raw), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
