package gateway

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// slugify lowercases the name and replaces every run of non-alphanumerics
// with a single dash. An empty result falls back to "folder".
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "folder"
	}
	return s
}

// resolveSlug derives a slug from the name and appends a numeric suffix until
// it is unique among the user's live folders.
func (g *Gateway) resolveSlug(ctx context.Context, userID, name, folderID string) (string, error) {
	repo := g.repos.Folders(g.db)
	base := slugify(name)

	slug := base
	for i := 2; ; i++ {
		taken, err := repo.SlugExists(ctx, userID, slug, folderID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
