package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"murmur/internal/database"
	"murmur/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Scenario is a hand-written data set loaded from YAML. Users are referred
// to by username everywhere else in the file.
type Scenario struct {
	Name    string           `yaml:"name"`
	Users   []ScenarioUser   `yaml:"users"`
	Follows []ScenarioFollow `yaml:"follows,omitempty"`
	Posts   []ScenarioPost   `yaml:"posts,omitempty"`
}

type ScenarioUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email,omitempty"`
	Password string `yaml:"password,omitempty"`
	Bio      string `yaml:"bio,omitempty"`
	Avatar   string `yaml:"avatar,omitempty"`
}

type ScenarioFollow struct {
	Follower string `yaml:"follower"`
	Followee string `yaml:"followee"`
}

type ScenarioPost struct {
	Author   string            `yaml:"author"`
	Content  string            `yaml:"content,omitempty"`
	Image    string            `yaml:"image,omitempty"`
	Likes    []string          `yaml:"likes,omitempty"`
	Comments []ScenarioComment `yaml:"comments,omitempty"`
}

type ScenarioComment struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario, rejecting unknown fields, and checks
// that every username it references is declared.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if len(sc.Users) == 0 {
		return errors.New("scenario declares no users")
	}

	known := make(map[string]bool, len(sc.Users))
	for i, u := range sc.Users {
		if u.Username == "" {
			return fmt.Errorf("users[%d]: username is required", i)
		}
		if known[u.Username] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		known[u.Username] = true
	}

	ref := func(where, name string) error {
		if !known[name] {
			return fmt.Errorf("%s: unknown user %q", where, name)
		}
		return nil
	}
	for i, fl := range sc.Follows {
		if err := ref(fmt.Sprintf("follows[%d].follower", i), fl.Follower); err != nil {
			return err
		}
		if err := ref(fmt.Sprintf("follows[%d].followee", i), fl.Followee); err != nil {
			return err
		}
		if fl.Follower == fl.Followee {
			return fmt.Errorf("follows[%d]: %q cannot follow themselves", i, fl.Follower)
		}
	}
	for i, p := range sc.Posts {
		if err := ref(fmt.Sprintf("posts[%d].author", i), p.Author); err != nil {
			return err
		}
		if p.Content == "" && p.Image == "" {
			return fmt.Errorf("posts[%d]: content or image is required", i)
		}
		for _, l := range p.Likes {
			if err := ref(fmt.Sprintf("posts[%d].likes", i), l); err != nil {
				return err
			}
		}
		for j, c := range p.Comments {
			if err := ref(fmt.Sprintf("posts[%d].comments[%d].author", i, j), c.Author); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply writes the scenario in one transaction.
func (sc *Scenario) Apply(db *gorm.DB, opts Options) (*Summary, error) {
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	sum := &Summary{}
	err := db.Transaction(func(tx *gorm.DB) error {
		f := NewFactory(tx, opts)
		byName := make(map[string]*models.User, len(sc.Users))

		for _, su := range sc.Users {
			su := su
			u, err := f.CreateUser(func(u *models.User) {
				u.Username = su.Username
				u.Email = su.Username + "@example.com"
				if su.Email != "" {
					u.Email = su.Email
				}
				if su.Password != "" {
					u.Password = su.Password
				}
				u.Bio = su.Bio
				u.Avatar = su.Avatar
			})
			if err != nil {
				return err
			}
			byName[su.Username] = u
			sum.Users++
		}

		for _, fl := range sc.Follows {
			created, err := f.Follow(byName[fl.Follower].ID, byName[fl.Followee].ID)
			if err != nil {
				return fmt.Errorf("follow %s -> %s: %w", fl.Follower, fl.Followee, err)
			}
			if created {
				sum.Follows++
			}
		}

		for _, sp := range sc.Posts {
			post := &models.Post{
				AuthorID: byName[sp.Author].ID,
				Content:  sp.Content,
				Image:    sp.Image,
			}
			if err := f.CreatePostsBatch([]*models.Post{post}); err != nil {
				return fmt.Errorf("post by %s: %w", sp.Author, err)
			}
			sum.Posts++

			for _, name := range sp.Likes {
				created, err := f.Like(byName[name].ID, post.ID)
				if err != nil {
					return fmt.Errorf("like by %s: %w", name, err)
				}
				if created {
					sum.Likes++
				}
			}
			for _, c := range sp.Comments {
				if _, err := f.Comment(byName[c.Author].ID, post.ID, c.Content); err != nil {
					return fmt.Errorf("comment by %s: %w", c.Author, err)
				}
				sum.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}
