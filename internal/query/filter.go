package query

import "sort"

// Predicate constrains a single document path. Bounds are inclusive; values
// stay raw strings until a storage backend casts them against its schema.
type Predicate struct {
	Eq  *string
	Gte *string
	Lte *string
}

// TextMatch is a case-insensitive literal substring match OR-ed across Paths.
type TextMatch struct {
	Paths []string
	Term  string
}

// Filter is the conjunction of all field predicates and the optional text match.
type Filter struct {
	Fields map[string]Predicate
	Text   *TextMatch
}

// Empty reports whether the filter matches every record.
func (f Filter) Empty() bool {
	return len(f.Fields) == 0 && f.Text == nil
}

// Paths returns the constrained paths in a stable order.
func (f Filter) Paths() []string {
	paths := make([]string, 0, len(f.Fields))
	for p := range f.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SortKey orders results by a document path.
type SortKey struct {
	Path string
	Desc bool
}

// Options carries pagination and ordering. Nil Skip/Limit mean "unset".
type Options struct {
	Skip  *int64
	Limit *int64
	Sort  []SortKey
}
