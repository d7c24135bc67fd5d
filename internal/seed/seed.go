// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo data gets created.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// Password is assigned to every seeded user so demo logins work.
	Password string
}

// DefaultOptions returns a small demo dataset configuration.
func DefaultOptions() Options {
	return Options{
		Users:           5,
		PostsPerUser:    4,
		CommentsPerPost: 2,
		Password:        "password123",
	}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a bcrypt-hashed password.
func (f *Factory) CreateUser(password string) (*models.User, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    gofakeit.Email(),
		Password: string(digest),
		Name:     gofakeit.Name(),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post for the given author. Roughly two thirds of
// seeded posts are published so the public listing has content.
func (f *Factory) CreatePost(author *models.User) (*models.Post, error) {
	post := &models.Post{
		Title:     gofakeit.Sentence(5),
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		AuthorID:  author.ID,
		Published: f.rand.Intn(3) > 0,
	}
	if f.rand.Intn(2) == 0 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	// realistic created_at spread
	daysBack := f.rand.Intn(90)
	hoursBack := f.rand.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the given user on the given post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike records a like by the given user on the given post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Where(like).FirstOrCreate(like).Error
}

// Run populates the database with a demo dataset: users with posts, comments
// from other users, and a sprinkling of likes.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser(opts.Password)
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post, err := f.CreatePost(user)
			if err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
			posts = append(posts, post)
		}
	}

	for _, post := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			commenter := users[f.rand.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
		for _, user := range users {
			if f.rand.Intn(3) == 0 {
				if err := f.CreateLike(user, post); err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
			}
		}
	}

	log.Printf("Seeded %d users, %d posts", len(users), len(posts))
	return nil
}
