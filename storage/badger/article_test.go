package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

func TestArticleSaveAndFindBySlug(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	article := seedArticle(t, repos, author, "How to train your dragon")

	if article.ID == 0 {
		t.Fatal("Expected an assigned ID")
	}

	found, err := repos.Articles.FindBySlug(ctx, "how-to-train-your-dragon")
	if err != nil {
		t.Fatalf("Failed to find by slug: %v", err)
	}
	if found.Title != "How to train your dragon" {
		t.Fatalf("Expected title to round-trip, got %q", found.Title)
	}
	if found.Author == nil || found.Author.Username != "jake" {
		t.Fatal("Expected the author to be resolved")
	}

	if _, err := repos.Articles.FindBySlug(ctx, "no-such-slug"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestArticleSave_DuplicateTitle(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	seedArticle(t, repos, author, "One of a kind")

	dup, err := core.NewArticle(author, "One of a kind", "desc", "content")
	if err != nil {
		t.Fatalf("Failed to create article: %v", err)
	}
	if _, err := repos.Articles.Save(ctx, dup); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestArticleSave_RetitleReindexes(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	article := seedArticle(t, repos, author, "Original title")

	if err := article.SetTitle("Updated title"); err != nil {
		t.Fatalf("Failed to set title: %v", err)
	}
	if _, err := repos.Articles.Save(ctx, article); err != nil {
		t.Fatalf("Failed to re-save article: %v", err)
	}

	if _, err := repos.Articles.FindBySlug(ctx, "original-title"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected stale slug to be removed, got %v", err)
	}
	found, err := repos.Articles.FindBySlug(ctx, "updated-title")
	if err != nil {
		t.Fatalf("Failed to find by new slug: %v", err)
	}
	if found.ID != article.ID {
		t.Fatalf("Expected ID %d, got %d", article.ID, found.ID)
	}

	exists, err := repos.Articles.ExistsByTitle(ctx, "Original title")
	if err != nil {
		t.Fatalf("ExistsByTitle failed: %v", err)
	}
	if exists {
		t.Fatal("Expected stale title index to be removed")
	}
}

func TestArticleExistsByTitle(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")
	seedArticle(t, repos, author, "How to train your dragon")

	exists, err := repos.Articles.ExistsByTitle(ctx, "How to train your dragon")
	if err != nil {
		t.Fatalf("ExistsByTitle failed: %v", err)
	}
	if !exists {
		t.Fatal("Expected title to exist")
	}

	exists, err = repos.Articles.ExistsByTitle(ctx, "Never written")
	if err != nil {
		t.Fatalf("ExistsByTitle failed: %v", err)
	}
	if exists {
		t.Fatal("Expected title to be absent")
	}
}

func TestArticleFindAll_NewestFirstAndPaged(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	author := seedUser(t, repos, "jake@example.com", "jake")

	titles := []string{"Oldest", "Middle", "Newest"}
	for _, title := range titles {
		seedArticle(t, repos, author, title)
		time.Sleep(time.Millisecond)
	}

	articles, err := repos.Articles.FindAll(ctx, core.ArticleFacets{})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(articles))
	}
	if articles[0].Title != "Newest" || articles[2].Title != "Oldest" {
		t.Fatalf("Expected newest first, got %q .. %q", articles[0].Title, articles[2].Title)
	}

	page, err := repos.Articles.FindAll(ctx, core.ArticleFacets{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("Expected 1 article on page 1, got %d", len(page))
	}
	if page[0].Title != "Oldest" {
		t.Fatalf("Expected 'Oldest' on page 1, got %q", page[0].Title)
	}
}

func TestArticleFindAll_AuthorFacet(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")
	seedArticle(t, repos, jake, "By jake")
	seedArticle(t, repos, anah, "By anah")

	articles, err := repos.Articles.FindAll(ctx, core.ArticleFacets{Author: "jake"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "By jake" {
		t.Fatalf("Expected jake's article only, got %d", len(articles))
	}

	// An unknown author matches nothing rather than everything.
	articles, err = repos.Articles.FindAll(ctx, core.ArticleFacets{Author: "nobody"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("Expected no articles for unknown author, got %d", len(articles))
	}
}

func TestArticleFindAll_TagAndFavoritedFacets(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")

	tagged := seedArticle(t, repos, jake, "Tagged article")
	if _, err := repos.ArticleTags.ReplaceTags(ctx, tagged, []*core.Tag{mustTag(t, "dragons")}); err != nil {
		t.Fatalf("Failed to tag article: %v", err)
	}
	favorited := seedArticle(t, repos, jake, "Favorited article")
	if err := repos.Favorites.Favorite(ctx, anah, favorited); err != nil {
		t.Fatalf("Failed to favorite article: %v", err)
	}
	seedArticle(t, repos, jake, "Plain article")

	articles, err := repos.Articles.FindAll(ctx, core.ArticleFacets{Tag: "dragons"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 1 || articles[0].ID != tagged.ID {
		t.Fatalf("Expected only the tagged article, got %d", len(articles))
	}

	articles, err = repos.Articles.FindAll(ctx, core.ArticleFacets{Favorited: "anah"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 1 || articles[0].ID != favorited.ID {
		t.Fatalf("Expected only the favorited article, got %d", len(articles))
	}

	// Combined facets are a union, not an intersection.
	articles, err = repos.Articles.FindAll(ctx, core.ArticleFacets{Tag: "dragons", Favorited: "anah"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected the union of both facets, got %d", len(articles))
	}

	// An unknown tag contributes a clause that never matches, without
	// erasing the other facet.
	articles, err = repos.Articles.FindAll(ctx, core.ArticleFacets{Tag: "no-such-tag", Favorited: "anah"})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(articles) != 1 || articles[0].ID != favorited.ID {
		t.Fatalf("Expected only the favorited article, got %d", len(articles))
	}
}

func TestArticleFindByAuthors(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")
	sam := seedUser(t, repos, "sam@example.com", "sam")
	seedArticle(t, repos, jake, "By jake")
	seedArticle(t, repos, anah, "By anah")
	seedArticle(t, repos, sam, "By sam")

	articles, err := repos.Articles.FindByAuthors(ctx, []*core.User{jake, anah}, core.ArticleFacets{})
	if err != nil {
		t.Fatalf("FindByAuthors failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}

	articles, err = repos.Articles.FindByAuthors(ctx, nil, core.ArticleFacets{})
	if err != nil {
		t.Fatalf("FindByAuthors failed: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("Expected no articles for empty author set, got %d", len(articles))
	}
}

func TestArticleDetails(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")
	article := seedArticle(t, repos, jake, "A detailed article")

	if err := repos.Favorites.Favorite(ctx, anah, article); err != nil {
		t.Fatalf("Failed to favorite: %v", err)
	}

	details, err := repos.Articles.FindArticleDetails(ctx, article)
	if err != nil {
		t.Fatalf("FindArticleDetails failed: %v", err)
	}
	if details.TotalFavorites != 1 {
		t.Fatalf("Expected 1 favorite, got %d", details.TotalFavorites)
	}
	if details.Favorited {
		t.Fatal("Expected no viewer flag without a viewer")
	}

	forAnah, err := repos.Articles.FindArticleDetailsFor(ctx, anah, article)
	if err != nil {
		t.Fatalf("FindArticleDetailsFor failed: %v", err)
	}
	if !forAnah.Favorited {
		t.Fatal("Expected anah's viewer flag to be set")
	}

	forJake, err := repos.Articles.FindArticleDetailsFor(ctx, jake, article)
	if err != nil {
		t.Fatalf("FindArticleDetailsFor failed: %v", err)
	}
	if forJake.Favorited {
		t.Fatal("Expected jake's viewer flag to be unset")
	}
}

func TestArticleDelete_Cascades(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	jake := seedUser(t, repos, "jake@example.com", "jake")
	anah := seedUser(t, repos, "anah@example.com", "anah")
	article := seedArticle(t, repos, jake, "Doomed article")

	if _, err := repos.ArticleTags.ReplaceTags(ctx, article, []*core.Tag{mustTag(t, "dragons")}); err != nil {
		t.Fatalf("Failed to tag article: %v", err)
	}
	if err := repos.Favorites.Favorite(ctx, anah, article); err != nil {
		t.Fatalf("Failed to favorite: %v", err)
	}
	comment, err := core.NewArticleComment(anah, article, "so long")
	if err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	if _, err := repos.Comments.Save(ctx, comment); err != nil {
		t.Fatalf("Failed to save comment: %v", err)
	}

	if err := repos.Articles.Delete(ctx, article); err != nil {
		t.Fatalf("Failed to delete article: %v", err)
	}

	if _, err := repos.Articles.FindBySlug(ctx, article.Slug); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected article to be gone, got %v", err)
	}
	associations, err := repos.ArticleTags.FindByArticle(ctx, article)
	if err != nil {
		t.Fatalf("Failed to list associations: %v", err)
	}
	if len(associations) != 0 {
		t.Fatalf("Expected no associations, got %d", len(associations))
	}
	count, err := repos.Favorites.CountByArticle(ctx, article)
	if err != nil {
		t.Fatalf("CountByArticle failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected no favorites, got %d", count)
	}
	comments, err := repos.Comments.FindByArticle(ctx, article)
	if err != nil {
		t.Fatalf("Failed to list comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("Expected no comments, got %d", len(comments))
	}

	// The tag itself survives the cascade.
	if _, err := repos.Tags.FindByName(ctx, "dragons"); err != nil {
		t.Fatalf("Expected the tag to survive: %v", err)
	}
}
