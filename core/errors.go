package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidUser indicates a User failed validation.
	ErrInvalidUser = errors.New("invalid user")

	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrInvalidTag indicates a Tag failed validation.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidArticleTag indicates an ArticleTag failed validation.
	ErrInvalidArticleTag = errors.New("invalid article tag")

	// ErrInvalidFavorite indicates an ArticleFavorite failed validation.
	ErrInvalidFavorite = errors.New("invalid favorite")

	// ErrInvalidFollow indicates a UserFollow failed validation.
	ErrInvalidFollow = errors.New("invalid follow")

	// ErrInvalidComment indicates an ArticleComment failed validation.
	ErrInvalidComment = errors.New("invalid comment")

	// ErrEmptyTitle indicates the title field is blank.
	ErrEmptyTitle = errors.New("title cannot be blank")

	// ErrEmptyDescription indicates the description field is blank.
	ErrEmptyDescription = errors.New("description cannot be blank")

	// ErrEmptyContent indicates the content field is blank.
	ErrEmptyContent = errors.New("content cannot be blank")

	// ErrEmptyEmail indicates the email field is blank.
	ErrEmptyEmail = errors.New("email cannot be blank")

	// ErrEmptyUsername indicates the username field is blank.
	ErrEmptyUsername = errors.New("username cannot be blank")

	// ErrEmptyPassword indicates the password field is blank.
	ErrEmptyPassword = errors.New("password cannot be blank")

	// ErrEmptyTagName indicates the tag name is blank.
	ErrEmptyTagName = errors.New("tag name cannot be blank")

	// ErrUnknownAuthor indicates the author is nil or has no persisted identity.
	ErrUnknownAuthor = errors.New("author is nil or unknown user")

	// ErrUnknownUser indicates the user is nil or has no persisted identity.
	ErrUnknownUser = errors.New("user is nil or unknown user")

	// ErrUnknownArticle indicates the article is nil or has no persisted identity.
	ErrUnknownArticle = errors.New("article is nil or unknown article")

	// ErrUnknownTag indicates the tag is nil or has no persisted identity.
	ErrUnknownTag = errors.New("tag is nil or unknown tag")
)
