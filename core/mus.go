package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for document storage. Field order is part of the stored
// format; append new fields at the end. Times are stored at microsecond
// resolution.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Int64.Marshal(int64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Int64.Size(int64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// UserMUS serializes User documents.
var UserMUS = userMUS{}

type userMUS struct{}

func (userMUS) Marshal(u User, bs []byte) (n int) {
	n = ord.String.Marshal(u.ID, bs)
	n += ord.String.Marshal(u.Email, bs[n:])
	n += ord.String.Marshal(u.Username, bs[n:])
	n += ord.String.Marshal(u.Password, bs[n:])
	n += ord.String.Marshal(u.Bio, bs[n:])
	n += ord.String.Marshal(u.ImageURL, bs[n:])
	n += raw.TimeUnixMicro.Marshal(u.CreatedAt, bs[n:])
	return n
}

func (userMUS) Unmarshal(bs []byte) (u User, n int, err error) {
	var n1 int
	if u.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if u.Email, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return u, n + n1, err
	}
	n += n1
	if u.Username, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return u, n + n1, err
	}
	n += n1
	if u.Password, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return u, n + n1, err
	}
	n += n1
	if u.Bio, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return u, n + n1, err
	}
	n += n1
	if u.ImageURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return u, n + n1, err
	}
	n += n1
	u.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return u, n + n1, err
}

func (userMUS) Size(u User) (size int) {
	size = ord.String.Size(u.ID)
	size += ord.String.Size(u.Email)
	size += ord.String.Size(u.Username)
	size += ord.String.Size(u.Password)
	size += ord.String.Size(u.Bio)
	size += ord.String.Size(u.ImageURL)
	size += raw.TimeUnixMicro.Size(u.CreatedAt)
	return size
}

// TagMUS serializes Tag documents.
var TagMUS = tagMUS{}

type tagMUS struct{}

func (tagMUS) Marshal(t Tag, bs []byte) (n int) {
	n = ord.String.Marshal(t.Name, bs)
	n += raw.TimeUnixMicro.Marshal(t.CreatedAt, bs[n:])
	return n
}

func (tagMUS) Unmarshal(bs []byte) (t Tag, n int, err error) {
	var n1 int
	if t.Name, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	t.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return t, n + n1, err
}

func (tagMUS) Size(t Tag) (size int) {
	return ord.String.Size(t.Name) + raw.TimeUnixMicro.Size(t.CreatedAt)
}

// ArticleMUS serializes Article documents. The author and the tag
// associations are stored by reference, never embedded.
var ArticleMUS = articleMUS{}

type articleMUS struct{}

func (articleMUS) Marshal(a Article, bs []byte) (n int) {
	n = IDMUS.Marshal(a.ID, bs)
	n += ord.String.Marshal(a.AuthorID, bs[n:])
	n += ord.String.Marshal(a.Slug, bs[n:])
	n += ord.String.Marshal(a.Title, bs[n:])
	n += ord.String.Marshal(a.Description, bs[n:])
	n += ord.String.Marshal(a.Content, bs[n:])
	n += raw.TimeUnixMicro.Marshal(a.CreatedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(a.UpdatedAt, bs[n:])
	return n
}

func (articleMUS) Unmarshal(bs []byte) (a Article, n int, err error) {
	var n1 int
	if a.ID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if a.AuthorID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Slug, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	a.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return a, n + n1, err
}

func (articleMUS) Size(a Article) (size int) {
	size = IDMUS.Size(a.ID)
	size += ord.String.Size(a.AuthorID)
	size += ord.String.Size(a.Slug)
	size += ord.String.Size(a.Title)
	size += ord.String.Size(a.Description)
	size += ord.String.Size(a.Content)
	size += raw.TimeUnixMicro.Size(a.CreatedAt)
	size += raw.TimeUnixMicro.Size(a.UpdatedAt)
	return size
}

// ArticleTagMUS serializes ArticleTag association documents.
var ArticleTagMUS = articleTagMUS{}

type articleTagMUS struct{}

func (articleTagMUS) Marshal(at ArticleTag, bs []byte) (n int) {
	n = IDMUS.Marshal(at.ID, bs)
	n += IDMUS.Marshal(at.ArticleID, bs[n:])
	n += ord.String.Marshal(at.TagName, bs[n:])
	n += raw.TimeUnixMicro.Marshal(at.CreatedAt, bs[n:])
	return n
}

func (articleTagMUS) Unmarshal(bs []byte) (at ArticleTag, n int, err error) {
	var n1 int
	if at.ID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if at.ArticleID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return at, n + n1, err
	}
	n += n1
	if at.TagName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return at, n + n1, err
	}
	n += n1
	at.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return at, n + n1, err
}

func (articleTagMUS) Size(at ArticleTag) (size int) {
	size = IDMUS.Size(at.ID)
	size += IDMUS.Size(at.ArticleID)
	size += ord.String.Size(at.TagName)
	size += raw.TimeUnixMicro.Size(at.CreatedAt)
	return size
}

// ArticleFavoriteMUS serializes ArticleFavorite documents.
var ArticleFavoriteMUS = articleFavoriteMUS{}

type articleFavoriteMUS struct{}

func (articleFavoriteMUS) Marshal(f ArticleFavorite, bs []byte) (n int) {
	n = IDMUS.Marshal(f.ID, bs)
	n += ord.String.Marshal(f.UserID, bs[n:])
	n += IDMUS.Marshal(f.ArticleID, bs[n:])
	n += raw.TimeUnixMicro.Marshal(f.CreatedAt, bs[n:])
	return n
}

func (articleFavoriteMUS) Unmarshal(bs []byte) (f ArticleFavorite, n int, err error) {
	var n1 int
	if f.ID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if f.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.ArticleID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	f.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return f, n + n1, err
}

func (articleFavoriteMUS) Size(f ArticleFavorite) (size int) {
	size = IDMUS.Size(f.ID)
	size += ord.String.Size(f.UserID)
	size += IDMUS.Size(f.ArticleID)
	size += raw.TimeUnixMicro.Size(f.CreatedAt)
	return size
}

// UserFollowMUS serializes UserFollow documents.
var UserFollowMUS = userFollowMUS{}

type userFollowMUS struct{}

func (userFollowMUS) Marshal(f UserFollow, bs []byte) (n int) {
	n = IDMUS.Marshal(f.ID, bs)
	n += ord.String.Marshal(f.FollowerID, bs[n:])
	n += ord.String.Marshal(f.FollowingID, bs[n:])
	n += raw.TimeUnixMicro.Marshal(f.CreatedAt, bs[n:])
	return n
}

func (userFollowMUS) Unmarshal(bs []byte) (f UserFollow, n int, err error) {
	var n1 int
	if f.ID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if f.FollowerID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.FollowingID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	f.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return f, n + n1, err
}

func (userFollowMUS) Size(f UserFollow) (size int) {
	size = IDMUS.Size(f.ID)
	size += ord.String.Size(f.FollowerID)
	size += ord.String.Size(f.FollowingID)
	size += raw.TimeUnixMicro.Size(f.CreatedAt)
	return size
}

// ArticleCommentMUS serializes ArticleComment documents.
var ArticleCommentMUS = articleCommentMUS{}

type articleCommentMUS struct{}

func (articleCommentMUS) Marshal(c ArticleComment, bs []byte) (n int) {
	n = IDMUS.Marshal(c.ID, bs)
	n += IDMUS.Marshal(c.ArticleID, bs[n:])
	n += ord.String.Marshal(c.AuthorID, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += raw.TimeUnixMicro.Marshal(c.CreatedAt, bs[n:])
	return n
}

func (articleCommentMUS) Unmarshal(bs []byte) (c ArticleComment, n int, err error) {
	var n1 int
	if c.ID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.ArticleID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.AuthorID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	c.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	return c, n + n1, err
}

func (articleCommentMUS) Size(c ArticleComment) (size int) {
	size = IDMUS.Size(c.ID)
	size += IDMUS.Size(c.ArticleID)
	size += ord.String.Size(c.AuthorID)
	size += ord.String.Size(c.Content)
	size += raw.TimeUnixMicro.Size(c.CreatedAt)
	return size
}
