package storage

import (
	"github.com/markdstafford/realworld/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalUser serializes a User to bytes.
func MarshalUser(user *core.User) []byte {
	buf := make([]byte, core.UserMUS.Size(*user))
	core.UserMUS.Marshal(*user, buf)
	return buf
}

// UnmarshalUser deserializes a User from bytes.
func UnmarshalUser(data []byte) (*core.User, error) {
	user, _, err := core.UserMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// MarshalTag serializes a Tag to bytes.
func MarshalTag(tag *core.Tag) []byte {
	buf := make([]byte, core.TagMUS.Size(*tag))
	core.TagMUS.Marshal(*tag, buf)
	return buf
}

// UnmarshalTag deserializes a Tag from bytes.
func UnmarshalTag(data []byte) (*core.Tag, error) {
	tag, _, err := core.TagMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// MarshalArticle serializes an Article to bytes. Associations are not part
// of the document; they live in their own collection.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, core.ArticleMUS.Size(*article))
	core.ArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := core.ArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// MarshalArticleTag serializes an ArticleTag to bytes.
func MarshalArticleTag(at *core.ArticleTag) []byte {
	buf := make([]byte, core.ArticleTagMUS.Size(*at))
	core.ArticleTagMUS.Marshal(*at, buf)
	return buf
}

// UnmarshalArticleTag deserializes an ArticleTag from bytes.
func UnmarshalArticleTag(data []byte) (*core.ArticleTag, error) {
	at, _, err := core.ArticleTagMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// MarshalArticleFavorite serializes an ArticleFavorite to bytes.
func MarshalArticleFavorite(f *core.ArticleFavorite) []byte {
	buf := make([]byte, core.ArticleFavoriteMUS.Size(*f))
	core.ArticleFavoriteMUS.Marshal(*f, buf)
	return buf
}

// UnmarshalArticleFavorite deserializes an ArticleFavorite from bytes.
func UnmarshalArticleFavorite(data []byte) (*core.ArticleFavorite, error) {
	f, _, err := core.ArticleFavoriteMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// MarshalUserFollow serializes a UserFollow to bytes.
func MarshalUserFollow(f *core.UserFollow) []byte {
	buf := make([]byte, core.UserFollowMUS.Size(*f))
	core.UserFollowMUS.Marshal(*f, buf)
	return buf
}

// UnmarshalUserFollow deserializes a UserFollow from bytes.
func UnmarshalUserFollow(data []byte) (*core.UserFollow, error) {
	f, _, err := core.UserFollowMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// MarshalArticleComment serializes an ArticleComment to bytes.
func MarshalArticleComment(c *core.ArticleComment) []byte {
	buf := make([]byte, core.ArticleCommentMUS.Size(*c))
	core.ArticleCommentMUS.Marshal(*c, buf)
	return buf
}

// UnmarshalArticleComment deserializes an ArticleComment from bytes.
func UnmarshalArticleComment(data []byte) (*core.ArticleComment, error) {
	c, _, err := core.ArticleCommentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
