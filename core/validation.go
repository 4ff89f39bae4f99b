package core

import (
	"fmt"
	"strings"
)

func wrapInvalid(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}

// ValidateTagName validates a tag name according to domain rules.
func ValidateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return wrapInvalid(ErrInvalidTag, ErrEmptyTagName)
	}
	return nil
}

func validateUserFields(email, username, password string) error {
	if strings.TrimSpace(email) == "" {
		return wrapInvalid(ErrInvalidUser, ErrEmptyEmail)
	}
	if strings.TrimSpace(username) == "" {
		return wrapInvalid(ErrInvalidUser, ErrEmptyUsername)
	}
	if strings.TrimSpace(password) == "" {
		return wrapInvalid(ErrInvalidUser, ErrEmptyPassword)
	}
	return nil
}

func validateArticleFields(title, description, content string) error {
	if strings.TrimSpace(title) == "" {
		return wrapInvalid(ErrInvalidArticle, ErrEmptyTitle)
	}
	if strings.TrimSpace(description) == "" {
		return wrapInvalid(ErrInvalidArticle, ErrEmptyDescription)
	}
	if strings.TrimSpace(content) == "" {
		return wrapInvalid(ErrInvalidArticle, ErrEmptyContent)
	}
	return nil
}
