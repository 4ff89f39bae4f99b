package badger

import (
	"context"
	"testing"
)

func TestFollowLifecycle(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")

	following, err := repos.Follows.IsFollowing(ctx, anah, jake)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Fatal("Expected no follow yet")
	}

	if err := repos.Follows.Follow(ctx, anah, jake); err != nil {
		t.Fatalf("Failed to follow: %v", err)
	}

	following, err = repos.Follows.IsFollowing(ctx, anah, jake)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if !following {
		t.Fatal("Expected follow to exist")
	}

	// The edge is directed.
	reverse, err := repos.Follows.IsFollowing(ctx, jake, anah)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if reverse {
		t.Fatal("Expected no reverse edge")
	}

	if err := repos.Follows.Unfollow(ctx, anah, jake); err != nil {
		t.Fatalf("Failed to unfollow: %v", err)
	}
	following, err = repos.Follows.IsFollowing(ctx, anah, jake)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Fatal("Expected follow to be removed")
	}
}

func TestFollow_Idempotent(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")

	if err := repos.Follows.Follow(ctx, anah, jake); err != nil {
		t.Fatalf("Failed to follow: %v", err)
	}
	if err := repos.Follows.Follow(ctx, anah, jake); err != nil {
		t.Fatalf("Second follow should be a no-op: %v", err)
	}

	following, err := repos.Follows.FindFollowing(ctx, anah)
	if err != nil {
		t.Fatalf("FindFollowing failed: %v", err)
	}
	if len(following) != 1 {
		t.Fatalf("Expected 1 followed user, got %d", len(following))
	}

	// Unfollowing someone never followed is a no-op.
	if err := repos.Follows.Unfollow(ctx, jake, anah); err != nil {
		t.Fatalf("Unfollow of absent edge should be a no-op: %v", err)
	}
}

func TestFindFollowing(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")
	sam := seedUser(t, repos, "sam@example.com", "sam")

	if err := repos.Follows.Follow(ctx, jake, anah); err != nil {
		t.Fatalf("Failed to follow: %v", err)
	}
	if err := repos.Follows.Follow(ctx, jake, sam); err != nil {
		t.Fatalf("Failed to follow: %v", err)
	}

	following, err := repos.Follows.FindFollowing(ctx, jake)
	if err != nil {
		t.Fatalf("FindFollowing failed: %v", err)
	}
	if len(following) != 2 {
		t.Fatalf("Expected 2 followed users, got %d", len(following))
	}
	names := map[string]bool{}
	for _, user := range following {
		names[user.Username] = true
	}
	if !names["anah"] || !names["sam"] {
		t.Fatalf("Expected anah and sam, got %v", names)
	}
}
