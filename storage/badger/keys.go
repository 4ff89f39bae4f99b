package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/markdstafford/realworld/core"
)

// Key prefixes for the collections and their indexes
const (
	userPrefix        = "user"
	userByUsername    = "useruname"
	userByEmail       = "useremail"
	tagPrefix         = "tagrec"
	articlePrefix     = "art"
	articleBySlug     = "artslug"
	articleByTitle    = "arttitle"
	articleDatePrefix = "artdate"
	articleTagPrefix  = "arttag"
	articleTagByTag   = "arttagbt"
	favoritePrefix    = "artfav"
	favoriteByArticle = "artfavba"
	followPrefix      = "ufollow"
	commentPrefix     = "comment"
	commentByArticle  = "commentba"
	sequencePrefix    = "seqrec"
)

// Sequence names used by this backend.
const (
	articleSeq    = "articles"
	articleTagSeq = "article_tags"
	favoriteSeq   = "article_favorites"
	followSeq     = "user_follows"
	commentSeq    = "article_comments"
)

func makeUserKey(id string) []byte {
	return fmt.Appendf(nil, "%s:%s", userPrefix, id)
}

func makeUserByUsernameKey(username string) []byte {
	return fmt.Appendf(nil, "%s:%s", userByUsername, username)
}

func makeUserByEmailKey(email string) []byte {
	return fmt.Appendf(nil, "%s:%s", userByEmail, email)
}

func makeTagKey(name string) []byte {
	return fmt.Appendf(nil, "%s:%s", tagPrefix, name)
}

func makeArticleKey(id core.ID) []byte {
	return fmt.Appendf(nil, "%s:%d", articlePrefix, id)
}

func makeArticleBySlugKey(slug string) []byte {
	return fmt.Appendf(nil, "%s:%s", articleBySlug, slug)
}

func makeArticleByTitleKey(title string) []byte {
	return fmt.Appendf(nil, "%s:%s", articleByTitle, title)
}

// makeArticleDateKey generates a composite key for the creation-time index.
// Format: prefix:timestamp:id
func makeArticleDateKey(createdAt time.Time, id core.ID) []byte {
	prefix := []byte(articleDatePrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialArticleDateKey generates a partial key for ordered scans.
// Format: prefix:timestamp
func makePartialArticleDateKey(createdAt time.Time) []byte {
	prefix := []byte(articleDatePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	return buf
}

// Association documents are keyed by their composite natural key so the
// (article, tag) pair can never exist twice.
func makeArticleTagKey(articleID core.ID, tagName string) []byte {
	return fmt.Appendf(nil, "%s:%020d:%s", articleTagPrefix, articleID, tagName)
}

func makeArticleTagPrefix(articleID core.ID) []byte {
	return fmt.Appendf(nil, "%s:%020d:", articleTagPrefix, articleID)
}

func makeArticleTagByTagKey(tagName string, articleID core.ID) []byte {
	return fmt.Appendf(nil, "%s:%s:%020d", articleTagByTag, tagName, articleID)
}

func makeArticleTagByTagPrefix(tagName string) []byte {
	return fmt.Appendf(nil, "%s:%s:", articleTagByTag, tagName)
}

func makeFavoriteKey(userID string, articleID core.ID) []byte {
	return fmt.Appendf(nil, "%s:%s:%020d", favoritePrefix, userID, articleID)
}

func makeFavoritePrefix(userID string) []byte {
	return fmt.Appendf(nil, "%s:%s:", favoritePrefix, userID)
}

func makeFavoriteByArticleKey(articleID core.ID, userID string) []byte {
	return fmt.Appendf(nil, "%s:%020d:%s", favoriteByArticle, articleID, userID)
}

func makeFavoriteByArticlePrefix(articleID core.ID) []byte {
	return fmt.Appendf(nil, "%s:%020d:", favoriteByArticle, articleID)
}

func makeFollowKey(followerID, followingID string) []byte {
	return fmt.Appendf(nil, "%s:%s:%s", followPrefix, followerID, followingID)
}

func makeFollowPrefix(followerID string) []byte {
	return fmt.Appendf(nil, "%s:%s:", followPrefix, followerID)
}

func makeCommentKey(id core.ID) []byte {
	return fmt.Appendf(nil, "%s:%d", commentPrefix, id)
}

func makeCommentByArticleKey(articleID, commentID core.ID) []byte {
	return fmt.Appendf(nil, "%s:%020d:%020d", commentByArticle, articleID, commentID)
}

func makeCommentByArticlePrefix(articleID core.ID) []byte {
	return fmt.Appendf(nil, "%s:%020d:", commentByArticle, articleID)
}

func makeSequenceKey(name string) []byte {
	return fmt.Appendf(nil, "%s:%s", sequencePrefix, name)
}
