package badger

import (
	"context"
	"testing"

	"github.com/markdstafford/realworld/core"
)

func seedUser(t *testing.T, repos *Repositories, email, username string) *core.User {
	t.Helper()

	user, err := core.NewUser(email, username, "password123")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if _, err := repos.Users.Save(context.Background(), user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	return user
}

func seedArticle(t *testing.T, repos *Repositories, author *core.User, title string) *core.Article {
	t.Helper()

	article, err := core.NewArticle(author, title, "a description", "some content")
	if err != nil {
		t.Fatalf("Failed to create article: %v", err)
	}
	if _, err := repos.Articles.Save(context.Background(), article); err != nil {
		t.Fatalf("Failed to save article: %v", err)
	}
	return article
}

func mustTag(t *testing.T, name string) *core.Tag {
	t.Helper()

	tag, err := core.NewTag(name)
	if err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	return tag
}
