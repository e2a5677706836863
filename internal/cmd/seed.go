package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/core"
)

// seedFile is the YAML shape accepted by the seed command.
type seedFile struct {
	Users  []seedUser  `yaml:"users"`
	Papers []seedPaper `yaml:"papers"`
	News   []seedNews  `yaml:"news"`
}

type seedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type seedPaper struct {
	Title       string     `yaml:"title"`
	Summary     string     `yaml:"summary"`
	Content     string     `yaml:"content"`
	Author      string     `yaml:"author"`
	Tags        []string   `yaml:"tags"`
	Domain      string     `yaml:"domain"`
	Source      string     `yaml:"source"`
	PublishTime *time.Time `yaml:"publish_time"`
	CoverImage  string     `yaml:"cover_image"`
}

type seedNews struct {
	Title       string     `yaml:"title"`
	Summary     string     `yaml:"summary"`
	Content     string     `yaml:"content"`
	Author      string     `yaml:"author"`
	Tags        []string   `yaml:"tags"`
	Category    string     `yaml:"category"`
	Source      string     `yaml:"source"`
	PublishTime *time.Time `yaml:"publish_time"`
	CoverImage  string     `yaml:"cover_image"`
	ExternalURL string     `yaml:"external_url"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load papers and news from a YAML file",
	Long: `Load users, papers, and news entries from a YAML seed file into the store.

The file may contain "users", "papers", and "news" lists. Existing users
are left untouched, which makes the command safe to re-run when
bootstrapping the first super admin. Papers and news without an explicit
publish_time are stamped with the current time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		var seed seedFile
		if err := yaml.Unmarshal(raw, &seed); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		now := time.Now().UTC()

		for _, u := range seed.Users {
			role := core.UserRole(u.Role)
			if u.Role == "" {
				role = core.RoleUser
			}
			if !role.Valid() {
				return fmt.Errorf("seed user %q: invalid role %s", u.Username, u.Role)
			}
			if len(u.Password) < 6 {
				return fmt.Errorf("seed user %q: password must be at least 6 characters", u.Username)
			}

			existing, err := db.GetUser(cmd.Context(), u.Username)
			if err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
			if existing != nil {
				continue
			}

			hashed, err := auth.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
			err = db.CreateUser(cmd.Context(), core.User{
				Username:       u.Username,
				Email:          u.Email,
				HashedPassword: hashed,
				Role:           role,
				CreatedAt:      now,
			})
			if err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
		}

		for _, p := range seed.Papers {
			publishTime := now
			if p.PublishTime != nil {
				publishTime = p.PublishTime.UTC()
			}
			err := db.CreatePaper(cmd.Context(), core.Paper{
				ID:          uuid.New().String(),
				Title:       p.Title,
				Summary:     p.Summary,
				Content:     p.Content,
				Author:      p.Author,
				Tags:        p.Tags,
				Domain:      p.Domain,
				Source:      p.Source,
				PublishTime: publishTime,
				CoverImage:  p.CoverImage,
				Comments:    []core.Comment{},
			})
			if err != nil {
				return fmt.Errorf("seed paper %q: %w", p.Title, err)
			}
		}

		for _, n := range seed.News {
			publishTime := now
			if n.PublishTime != nil {
				publishTime = n.PublishTime.UTC()
			}
			err := db.CreateNews(cmd.Context(), core.News{
				ID:          uuid.New().String(),
				Title:       n.Title,
				Summary:     n.Summary,
				Content:     n.Content,
				Author:      n.Author,
				Tags:        n.Tags,
				Category:    n.Category,
				Source:      n.Source,
				PublishTime: publishTime,
				CoverImage:  n.CoverImage,
				ExternalURL: n.ExternalURL,
				Comments:    []core.Comment{},
			})
			if err != nil {
				return fmt.Errorf("seed news %q: %w", n.Title, err)
			}
		}

		fmt.Printf("seeded %d users, %d papers, %d news entries\n", len(seed.Users), len(seed.Papers), len(seed.News))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
