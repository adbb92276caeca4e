// Package seed creates demo data for development databases. It is not used
// by the server at runtime.
package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"murmur/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is given to every generated user.
const DefaultPassword = "password123"

var usernameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Options tune generated data.
type Options struct {
	Users int
	Posts int
	// MaxDays spreads post timestamps over the last MaxDays days.
	MaxDays int
	// FastHash hashes passwords at the minimum bcrypt cost.
	FastHash bool
	// RandSeed makes generated content reproducible when non-zero.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed)}
}

// passwordHash hashes DefaultPassword once per factory.
func (f *Factory) passwordHash(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if f.opts.FastHash {
		cost = bcrypt.MinCost
	}
	if password != DefaultPassword {
		h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		return string(h), err
	}
	if f.hash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", err
		}
		f.hash = string(h)
	}
	return f.hash, nil
}

// Username returns a random username that passes registration rules.
func (f *Factory) Username() string {
	name := usernameUnsafe.ReplaceAllString(f.faker.Username(), "")
	if len(name) > 24 {
		name = name[:24]
	}
	return fmt.Sprintf("%s%d", name, f.faker.Number(100, 99999))
}

// CreateUser constructs and persists a sample user. Optional overrides may
// modify the generated user before saving; a non-empty Password set by an
// override is hashed.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := f.Username()
	user := &models.User{
		Username: username,
		Email:    strings.ToLower(username) + "@" + f.faker.DomainName(),
		Bio:      f.faker.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Password: DefaultPassword,
	}
	for _, override := range overrides {
		override(user)
	}
	user.Email = strings.ToLower(user.Email)

	hash, err := f.passwordHash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// BuildPost constructs a post for author without persisting it. Roughly one
// in four posts carries an image.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	post := &models.Post{
		AuthorID: author.ID,
		Content:  f.faker.Paragraph(1, 3, 8, " "),
	}
	if f.faker.Number(1, 4) == 1 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}

	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)
	post.UpdatedAt = post.CreatedAt
	return post
}

// CreatePostsBatch persists posts in batches.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, 100).Error
}

// Follow records that follower follows followee. Existing edges and self
// follows are ignored.
func (f *Factory) Follow(followerID, followeeID uint) (bool, error) {
	if followerID == followeeID {
		return false, nil
	}
	res := f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
	return res.RowsAffected > 0, res.Error
}

// Like records userID's like on postID; repeated likes are ignored.
func (f *Factory) Like(userID, postID uint) (bool, error) {
	res := f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	return res.RowsAffected > 0, res.Error
}

// Comment appends a comment. Empty content is replaced by a random sentence.
func (f *Factory) Comment(authorID, postID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		content = f.faker.Sentence(f.faker.Number(3, 12))
	}
	c := &models.Comment{AuthorID: authorID, PostID: postID, Content: content}
	if err := f.db.Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}
