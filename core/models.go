package core

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID is the integer surrogate key for article-side entities. The relational
// backend assigns it natively on insert; the document backend assigns it
// from a durable sequence before the first write.
type ID int64

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Slugify derives an article slug from its title: lowercase, with every
// maximal run of whitespace replaced by a single hyphen.
func Slugify(title string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(title), "-")
}

// User is an account in the user directory. Identity is a client-assigned
// UUID so that both backends share one identity scheme.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"uniqueIndex;size:30;not null"`
	Username  string    `gorm:"uniqueIndex;size:30;not null"`
	Password  string    `gorm:"size:200;not null"` // bcrypt hash, never logged
	Bio       string    `gorm:"size:500"`
	ImageURL  string    `gorm:"size:200"`
	CreatedAt time.Time
}

// NewUser creates a User with a fresh UUID and a hashed password.
func NewUser(email, username, password string) (*User, error) {
	if err := validateUserFields(email, username, password); err != nil {
		return nil, err
	}

	u := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetEmail updates the email. Blank or unchanged values are ignored.
func (u *User) SetEmail(email string) {
	if strings.TrimSpace(email) == "" || u.Email == email {
		return
	}
	u.Email = email
}

// SetUsername updates the username. Blank or unchanged values are ignored.
func (u *User) SetUsername(username string) {
	if strings.TrimSpace(username) == "" || u.Username == username {
		return
	}
	u.Username = username
}

// SetBio updates the bio. Blank values are ignored.
func (u *User) SetBio(bio string) {
	if strings.TrimSpace(bio) == "" {
		return
	}
	u.Bio = bio
}

// SetImageURL updates the profile image URL. Blank values are ignored.
func (u *User) SetImageURL(imageURL string) {
	if strings.TrimSpace(imageURL) == "" {
		return
	}
	u.ImageURL = imageURL
}

// Tag is a shared label for articles. The name is the natural key; tags are
// upserted, never duplicated, and never deleted by unlinking.
type Tag struct {
	Name      string `gorm:"primaryKey;size:50"`
	CreatedAt time.Time
}

// NewTag creates a Tag with the given name.
func NewTag(name string) (*Tag, error) {
	if err := ValidateTagName(name); err != nil {
		return nil, err
	}
	return &Tag{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Article is an authored post. The slug is always a pure function of the
// title and is recomputed whenever the title changes.
type Article struct {
	ID          ID     `gorm:"primaryKey;autoIncrement"`
	AuthorID    string `gorm:"size:36;not null;index"`
	Author      *User  `gorm:"foreignKey:AuthorID"`
	Slug        string `gorm:"uniqueIndex;size:50;not null"`
	Title       string `gorm:"uniqueIndex;size:50;not null"`
	Description string `gorm:"size:50;not null"`
	Content     string `gorm:"size:1000;not null"`

	Tags []ArticleTag `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewArticle creates an Article owned by a persisted author.
func NewArticle(author *User, title, description, content string) (*Article, error) {
	if author == nil || author.ID == "" {
		return nil, wrapInvalid(ErrInvalidArticle, ErrUnknownAuthor)
	}
	if err := validateArticleFields(title, description, content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Article{
		AuthorID:    author.ID,
		Author:      author,
		Slug:        Slugify(title),
		Title:       title,
		Description: description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsAuthoredBy reports whether the given user owns this article.
func (a *Article) IsAuthoredBy(user *User) bool {
	return user != nil && a.AuthorID == user.ID
}

// SetTitle updates the title, recomputes the slug and bumps UpdatedAt.
func (a *Article) SetTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return wrapInvalid(ErrInvalidArticle, ErrEmptyTitle)
	}

	a.Title = title
	a.Slug = Slugify(title)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SetDescription updates the description and bumps UpdatedAt.
func (a *Article) SetDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return wrapInvalid(ErrInvalidArticle, ErrEmptyDescription)
	}

	a.Description = description
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SetContent updates the content and bumps UpdatedAt.
func (a *Article) SetContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return wrapInvalid(ErrInvalidArticle, ErrEmptyContent)
	}

	a.Content = content
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// AddTag attaches an association to this article and sets its back-reference.
func (a *Article) AddTag(at ArticleTag) {
	at.ArticleID = a.ID
	a.Tags = append(a.Tags, at)
}

// TagNames returns the names of the article's attached tags.
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, at := range a.Tags {
		names = append(names, at.TagName)
	}
	return names
}

// ArticleTag links one Article to one Tag. Unique per (article, tag) pair.
type ArticleTag struct {
	ID        ID     `gorm:"primaryKey;autoIncrement"`
	ArticleID ID     `gorm:"not null;uniqueIndex:idx_article_tag"`
	TagName   string `gorm:"size:50;not null;uniqueIndex:idx_article_tag"`
	Tag       *Tag   `gorm:"foreignKey:TagName"`
	CreatedAt time.Time
}

// NewArticleTag links a persisted article to a persisted tag.
func NewArticleTag(article *Article, tag *Tag) (*ArticleTag, error) {
	if article == nil || article.ID == 0 {
		return nil, wrapInvalid(ErrInvalidArticleTag, ErrUnknownArticle)
	}
	if tag == nil || tag.Name == "" {
		return nil, wrapInvalid(ErrInvalidArticleTag, ErrUnknownTag)
	}

	return &ArticleTag{
		ArticleID: article.ID,
		TagName:   tag.Name,
		Tag:       tag,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ArticleFavorite links one User to one Article. Existence is a boolean
// fact; the pair is unique.
type ArticleFavorite struct {
	ID        ID     `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:idx_user_article"`
	ArticleID ID     `gorm:"not null;uniqueIndex:idx_user_article"`
	CreatedAt time.Time
}

// NewArticleFavorite records that a persisted user favorited a persisted article.
func NewArticleFavorite(user *User, article *Article) (*ArticleFavorite, error) {
	if user == nil || user.ID == "" {
		return nil, wrapInvalid(ErrInvalidFavorite, ErrUnknownUser)
	}
	if article == nil || article.ID == 0 {
		return nil, wrapInvalid(ErrInvalidFavorite, ErrUnknownArticle)
	}

	return &ArticleFavorite{
		UserID:    user.ID,
		ArticleID: article.ID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UserFollow is a directed follower → following edge between users. Unique
// per ordered pair.
type UserFollow struct {
	ID          ID     `gorm:"primaryKey;autoIncrement"`
	FollowerID  string `gorm:"size:36;not null;uniqueIndex:idx_follower_following"`
	FollowingID string `gorm:"size:36;not null;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time
}

// NewUserFollow records that follower follows following.
func NewUserFollow(follower, following *User) (*UserFollow, error) {
	if follower == nil || follower.ID == "" {
		return nil, wrapInvalid(ErrInvalidFollow, ErrUnknownUser)
	}
	if following == nil || following.ID == "" {
		return nil, wrapInvalid(ErrInvalidFollow, ErrUnknownUser)
	}

	return &UserFollow{
		FollowerID:  follower.ID,
		FollowingID: following.ID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ArticleComment is a comment on an article.
type ArticleComment struct {
	ID        ID     `gorm:"primaryKey;autoIncrement"`
	ArticleID ID     `gorm:"not null;index"`
	AuthorID  string `gorm:"size:36;not null"`
	Author    *User  `gorm:"foreignKey:AuthorID"`
	Content   string `gorm:"size:500;not null"`
	CreatedAt time.Time
}

// NewArticleComment creates a comment by a persisted author on a persisted article.
func NewArticleComment(author *User, article *Article, content string) (*ArticleComment, error) {
	if author == nil || author.ID == "" {
		return nil, wrapInvalid(ErrInvalidComment, ErrUnknownUser)
	}
	if article == nil || article.ID == 0 {
		return nil, wrapInvalid(ErrInvalidComment, ErrUnknownArticle)
	}
	if strings.TrimSpace(content) == "" {
		return nil, wrapInvalid(ErrInvalidComment, ErrEmptyContent)
	}

	return &ArticleComment{
		ArticleID: article.ID,
		AuthorID:  author.ID,
		Author:    author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ArticleDetails is an article together with its viewer-facing aggregates.
type ArticleDetails struct {
	Article        *Article
	TotalFavorites int
	Favorited      bool
}

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// ArticleFacets are the independent filter dimensions accepted by the
// article listing query. Zero-valued facets contribute nothing.
type ArticleFacets struct {
	Page      int // 0-indexed
	Size      int
	Author    string
	Tag       string
	Favorited string
}

// Limit returns the page size clamped to [1, 50], defaulting to 20.
func (f ArticleFacets) Limit() int {
	switch {
	case f.Size <= 0:
		return defaultPageSize
	case f.Size > maxPageSize:
		return maxPageSize
	default:
		return f.Size
	}
}

// Offset returns the number of articles to skip.
func (f ArticleFacets) Offset() int {
	if f.Page < 0 {
		return 0
	}
	return f.Page * f.Limit()
}
