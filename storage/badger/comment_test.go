package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

func TestCommentSaveAndFind(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	reader := seedUser(t, repos, "anah@example.com", "anah")
	article := seedArticle(t, repos, author, "A commented article")

	comment, err := core.NewArticleComment(reader, article, "Great article!")
	if err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	saved, err := repos.Comments.Save(ctx, comment)
	if err != nil {
		t.Fatalf("Failed to save comment: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("Expected an assigned ID")
	}

	found, err := repos.Comments.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Failed to find comment: %v", err)
	}
	if found.Content != "Great article!" {
		t.Fatalf("Expected content to round-trip, got %q", found.Content)
	}
	if found.Author == nil || found.Author.Username != "anah" {
		t.Fatal("Expected the author to be resolved")
	}

	if _, err := repos.Comments.FindByID(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCommentsByArticle_OldestFirst(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	article := seedArticle(t, repos, author, "A discussed article")
	other := seedArticle(t, repos, author, "A quiet article")

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		comment, err := core.NewArticleComment(author, article, content)
		if err != nil {
			t.Fatalf("Failed to create comment: %v", err)
		}
		if _, err := repos.Comments.Save(ctx, comment); err != nil {
			t.Fatalf("Failed to save comment: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	comments, err := repos.Comments.FindByArticle(ctx, article)
	if err != nil {
		t.Fatalf("Failed to list comments: %v", err)
	}
	if len(comments) != len(contents) {
		t.Fatalf("Expected %d comments, got %d", len(contents), len(comments))
	}
	for i, content := range contents {
		if comments[i].Content != content {
			t.Fatalf("Expected %q at position %d, got %q", content, i, comments[i].Content)
		}
	}

	// Other articles are untouched.
	quiet, err := repos.Comments.FindByArticle(ctx, other)
	if err != nil {
		t.Fatalf("Failed to list comments: %v", err)
	}
	if len(quiet) != 0 {
		t.Fatalf("Expected no comments, got %d", len(quiet))
	}
}

func TestCommentDelete(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	article := seedArticle(t, repos, author, "A moderated article")

	comment, err := core.NewArticleComment(author, article, "delete me")
	if err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	saved, err := repos.Comments.Save(ctx, comment)
	if err != nil {
		t.Fatalf("Failed to save comment: %v", err)
	}

	if err := repos.Comments.Delete(ctx, saved); err != nil {
		t.Fatalf("Failed to delete comment: %v", err)
	}
	if _, err := repos.Comments.FindByID(ctx, saved.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
}
