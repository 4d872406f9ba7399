package repository

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/query"
)

type pathType int

const (
	pathInt pathType = iota + 1
	pathDate
	pathBool
	pathString
)

var pathTypes = map[string]pathType{
	query.PathTmdbID:        pathInt,
	query.PathRatingTotal:   pathInt,
	query.PathRatingCh:      pathInt,
	query.PathRatingRt:      pathInt,
	query.PathDateSeen:      pathDate,
	query.PathFsk:           pathInt,
	query.PathMm:            pathBool,
	query.PathTitleOriginal: pathString,
	query.PathTitleGerman:   pathString,
	query.PathGenres:        pathString,
	query.PathReleaseDate:   pathDate,
	query.PathRuntime:       pathInt,
	query.PathBudget:        pathInt,
	query.PathRevenue:       pathInt,
}

// castValue converts a raw filter value into the schema type of path.
func castValue(path, raw string) (any, error) {
	t, ok := pathTypes[path]
	if !ok {
		return nil, errors.Errorf("repository: unknown path %q", path)
	}
	switch t {
	case pathInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "repository: cast %s", path)
		}
		return n, nil
	case pathDate:
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "repository: cast %s", path)
		}
		return d, nil
	case pathBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "repository: cast %s", path)
		}
		return b, nil
	default:
		return raw, nil
	}
}
