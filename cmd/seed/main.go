// Command seed populates a development database with demo users, posts,
// comments and likes. It refuses to run against a production environment.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	var (
		users    = flag.Int("users", 5, "number of users to create")
		posts    = flag.Int("posts", 4, "posts per user")
		comments = flag.Int("comments", 2, "comments per post")
		password = flag.String("password", "password123", "password for all seeded users")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	opts := seed.Options{
		Users:           *users,
		PostsPerUser:    *posts,
		CommentsPerPost: *comments,
		Password:        *password,
	}
	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("seed: %v", err)
	}
}
