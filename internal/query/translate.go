package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Translate builds the storage filter and options from raw query parameters.
// It is purely structural: values are not type checked, unknown or empty
// parameters are dropped.
func Translate(values url.Values) (Filter, Options, error) {
	filter := Filter{Fields: map[string]Predicate{}}

	for _, field := range Fields {
		value := values.Get(field.Param)
		if value == "" {
			continue
		}
		apply(&filter, field, value)
	}

	opts, err := translateOptions(values)
	if err != nil {
		return Filter{}, Options{}, err
	}
	return filter, opts, nil
}

func apply(filter *Filter, field Field, value string) {
	if field.Role == RoleText {
		filter.Text = &TextMatch{Paths: append([]string(nil), TextPaths...), Term: value}
		return
	}

	pred := filter.Fields[field.Path]
	v := value
	switch field.Role {
	case RoleExact:
		pred.Eq = &v
	case RoleMin:
		pred.Gte = &v
	case RoleMax:
		pred.Lte = &v
	}
	filter.Fields[field.Path] = pred
}

func translateOptions(values url.Values) (Options, error) {
	var opts Options

	limit, err := parseOptionalInt(values, ParamLimit)
	if err != nil {
		return Options{}, err
	}
	page, err := parseOptionalInt(values, ParamPage)
	if err != nil {
		return Options{}, err
	}

	// A zero limit means "no limit", matching the document store's semantics.
	if limit != nil && *limit > 0 {
		opts.Limit = limit
		if page != nil {
			skip := *page * *limit
			opts.Skip = &skip
		}
	}

	opts.Sort = ParseSort(values.Get(ParamSort))
	return opts, nil
}

func parseOptionalInt(values url.Values, key string) (*int64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", key)
	}
	return &n, nil
}

// ParseSort reads a sort expression such as "-rating.total dateSeen".
// Keys are separated by spaces or commas; a leading '-' sorts descending.
// Keys outside SortablePaths are ignored.
func ParseSort(expr string) []SortKey {
	tokens := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ' ' || r == ','
	})

	var keys []SortKey
	seen := map[string]bool{}
	for _, tok := range tokens {
		key := SortKey{Path: tok}
		switch {
		case strings.HasPrefix(tok, "-"):
			key = SortKey{Path: tok[1:], Desc: true}
		case strings.HasPrefix(tok, "+"):
			key = SortKey{Path: tok[1:]}
		}
		if _, ok := SortablePaths[key.Path]; !ok || seen[key.Path] {
			continue
		}
		seen[key.Path] = true
		keys = append(keys, key)
	}
	return keys
}
