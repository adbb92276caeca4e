package seed

import (
	"fmt"

	"murmur/internal/database"
	"murmur/internal/middleware"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// Summary counts the rows a seeding run created.
type Summary struct {
	Users    int
	Posts    int
	Follows  int
	Likes    int
	Comments int
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.Users += o.Users
	s.Posts += o.Posts
	s.Follows += o.Follows
	s.Likes += o.Likes
	s.Comments += o.Comments
}

// ClearAll removes every row created by the application, children first.
func ClearAll(db *gorm.DB) error {
	tables := []any{&models.Comment{}, &models.Like{}, &models.Follow{}, &models.Post{}, &models.User{}}
	for _, t := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	return nil
}

// Seed generates a random social graph: users, posts, follow edges, likes
// and comments. The schema is migrated first.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	f := NewFactory(db, opts)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}
	middleware.Logger.Info("seeded users", "count", sum.Users)

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		posts = append(posts, f.BuildPost(users[f.faker.Number(0, len(users)-1)]))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return sum, fmt.Errorf("create posts: %w", err)
	}
	sum.Posts = len(posts)
	middleware.Logger.Info("seeded posts", "count", sum.Posts)

	// Each user follows up to a third of the others.
	for _, u := range users {
		n := f.faker.Number(0, len(users)/3)
		for i := 0; i < n; i++ {
			other := users[f.faker.Number(0, len(users)-1)]
			created, err := f.Follow(u.ID, other.ID)
			if err != nil {
				return sum, fmt.Errorf("create follow: %w", err)
			}
			if created {
				sum.Follows++
			}
		}
	}

	for _, p := range posts {
		likes := f.faker.Number(0, min(len(users), 10))
		for i := 0; i < likes; i++ {
			created, err := f.Like(users[f.faker.Number(0, len(users)-1)].ID, p.ID)
			if err != nil {
				return sum, fmt.Errorf("create like: %w", err)
			}
			if created {
				sum.Likes++
			}
		}

		comments := f.faker.Number(0, 3)
		for i := 0; i < comments; i++ {
			if _, err := f.Comment(users[f.faker.Number(0, len(users)-1)].ID, p.ID, ""); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}

	middleware.Logger.Info("seeded engagement",
		"follows", sum.Follows, "likes", sum.Likes, "comments", sum.Comments)
	return sum, nil
}
