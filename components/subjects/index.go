package subjects

import (
	"context"
	"slices"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/model"
)

// Route is the endpoint the tutoring pages query for suggestions.
const Route = "/api/subjects"

const (
	defaultLimit = 10
	maxLimit     = 25
)

// Index ranks subjects against partial input. It is immutable.
type Index struct {
	entries []entry
}

type entry struct {
	name  string
	lower string
}

// New indexes subjects, dropping blanks and case-insensitive duplicates.
func New(subjects []string) *Index {
	ix := &Index{}
	seen := map[string]struct{}{}
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		ix.entries = append(ix.entries, entry{name: s, lower: lower})
	}
	slices.SortFunc(ix.entries, func(a, b entry) int { return strings.Compare(a.lower, b.lower) })
	return ix
}

// Len reports the number of indexed subjects.
func (ix *Index) Len() int { return len(ix.entries) }

// Search returns up to limit subjects containing query. Whole-name prefixes
// rank first, then word prefixes ("hist" in "World History"), then any other
// match. A blank query matches nothing. limit <= 0 means the default.
func (ix *Index) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	var buckets [3][]string
	for _, e := range ix.entries {
		switch {
		case strings.HasPrefix(e.lower, q):
			buckets[0] = append(buckets[0], e.name)
		case strings.Contains(e.lower, " "+q):
			buckets[1] = append(buckets[1], e.name)
		case strings.Contains(e.lower, q):
			buckets[2] = append(buckets[2], e.name)
		}
	}

	out := slices.Concat(buckets[0], buckets[1], buckets[2])
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Lookup matches the terminal renderer's option source. Fields pointing at
// another endpoint get no suggestions.
func (ix *Index) Lookup(ctx context.Context, endpoint, query string) ([]model.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" && !strings.HasSuffix(endpoint, Route) {
		return nil, nil
	}
	return options(ix.Search(query, 0)), nil
}

func options(names []string) []model.Option {
	out := make([]model.Option, 0, len(names))
	for _, name := range names {
		out = append(out, model.Option{Value: name, Label: name})
	}
	return out
}
