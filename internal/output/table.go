package output

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/medfront/medfront/internal/core"
)

// UserTable renders user records as an ASCII table.
func UserTable(users []core.User) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Username", "Email", "Role", "Created"})

	for _, u := range users {
		t.AppendRow(table.Row{
			u.Username,
			u.Email,
			string(u.Role),
			u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return t.Render()
}

// PaperTable renders paper records as an ASCII table.
func PaperTable(papers []core.Paper) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Title", "Author", "Domain", "Tags", "Published"})

	for _, p := range papers {
		t.AppendRow(table.Row{
			p.ID,
			p.Title,
			p.Author,
			p.Domain,
			strings.Join(p.Tags, ", "),
			p.PublishTime.UTC().Format("2006-01-02"),
		})
	}

	return t.Render()
}

// NewsTable renders news records as an ASCII table.
func NewsTable(items []core.News) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Views", "Published"})

	for _, n := range items {
		t.AppendRow(table.Row{
			n.ID,
			n.Title,
			n.Category,
			n.ViewCount,
			n.PublishTime.UTC().Format("2006-01-02"),
		})
	}

	return t.Render()
}
