package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var identifierUnsafe = regexp.MustCompile(`[^a-z0-9_]`)

var apostrophes = strings.NewReplacer("'", "", "’", "", "`", "")

// StripApostrophes removes straight and typographic apostrophes.
func StripApostrophes(s string) string {
	return apostrophes.Replace(s)
}

// TableName turns a display name into an identifier that is safe to use as
// a table name: lowercase, whitespace runs become underscores, apostrophes
// and anything else outside [a-z0-9_] are dropped. It is idempotent.
func TableName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = StripApostrophes(name)
	name = whitespaceRegex.ReplaceAllString(name, "_")
	return identifierUnsafe.ReplaceAllString(name, "")
}

// ColumnName replaces spaces in a header with underscores.
func ColumnName(header string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(header), "_")
}

// Closest returns the candidate most similar to `target` by Jaro-Winkler
// similarity after normalizing both sides, an exact match always wins.
// ok is false when there are no candidates or nothing is similar at all.
func Closest(target string, candidates []string) (best string, similarity float64, ok bool) {
	normalizedTarget := TableName(target)
	for _, c := range candidates {
		if c == target || TableName(c) == normalizedTarget {
			return c, 1, true
		}
	}

	for _, c := range candidates {
		s := matchr.JaroWinkler(normalizedTarget, TableName(c), false)
		if s > similarity {
			similarity = s
			best = c
		}
	}
	return best, similarity, similarity > 0
}
