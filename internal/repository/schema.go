package repository

import (
	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/failure"
	"github.com/Clark-Hu/movielog/internal/query"
)

// checkSchema validates a complete record before insert, collecting every
// violation. Both backends run it so they reject the same documents.
func checkSchema(m domain.Movie) error {
	var vs []failure.Violation
	add := func(path string, kind failure.ViolationKind) {
		vs = append(vs, failure.Violation{Field: path, Kind: kind})
	}

	if m.TmdbID < 1 {
		add(query.PathTmdbID, failure.ViolationRequired)
	}

	r := m.Rating
	if kind, ok := checkScore(r.Total, 25); !ok {
		add(query.PathRatingTotal, kind)
	}
	if r.Ch == nil && r.Rt != nil {
		add(query.PathRatingCh, failure.ViolationRequired)
	}
	if r.Rt == nil && r.Ch != nil {
		add(query.PathRatingRt, failure.ViolationRequired)
	}
	if r.Ch != nil {
		if kind, ok := checkScore(*r.Ch, 50); !ok {
			add(query.PathRatingCh, kind)
		}
	}
	if r.Rt != nil {
		if kind, ok := checkScore(*r.Rt, 50); !ok {
			add(query.PathRatingRt, kind)
		}
	}
	if r.Ch != nil && r.Rt != nil && domain.MeanOf(*r.Ch, *r.Rt) != r.Total {
		add(query.PathRatingTotal, failure.ViolationMean)
	}

	if m.Fsk != nil && !validFsk(*m.Fsk) {
		add(query.PathFsk, failure.ViolationOneOf)
	}

	if m.Title.Original == "" {
		add(query.PathTitleOriginal, failure.ViolationRequired)
	}
	if m.ReleaseDate == nil {
		add(query.PathReleaseDate, failure.ViolationRequired)
	}
	if m.Runtime == nil {
		add(query.PathRuntime, failure.ViolationRequired)
	}
	if m.Budget == nil {
		add(query.PathBudget, failure.ViolationRequired)
	}
	if m.Revenue == nil {
		add(query.PathRevenue, failure.ViolationRequired)
	}

	if len(vs) > 0 {
		return newConstraintError(nil, vs...)
	}
	return nil
}

func checkScore(v, step int) (failure.ViolationKind, bool) {
	if v < 0 || v > 1000 {
		return failure.ViolationRange, false
	}
	if v%step != 0 {
		return failure.ViolationMultipleOf, false
	}
	return "", true
}

func validFsk(v int) bool {
	for _, f := range domain.FSKRatings {
		if int64(v) == f {
			return true
		}
	}
	return false
}
