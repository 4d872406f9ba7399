package validation

import "github.com/Clark-Hu/movielog/internal/domain"

const ratingMax = 1000

func bound(n int64) *int64 { return &n }

var idRule = Rule{Field: "id", In: SourcePath, Type: TypeObjectID, Presence: Required}

// ListRules guards the list query parameters. Unknown parameters are not
// listed and therefore never rejected.
var ListRules = RuleSet{
	{Field: "sort", In: SourceQuery, Type: TypeString},
	{Field: "limit", In: SourceQuery, Type: TypeInteger, Min: bound(0)},
	{Field: "page", In: SourceQuery, Type: TypeInteger, Min: bound(0)},
	{Field: "rating_total_min", In: SourceQuery, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax)},
	{Field: "rating_total_max", In: SourceQuery, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax)},
	{Field: "rating_ch_min", In: SourceQuery, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax)},
	{Field: "rating_ch_max", In: SourceQuery, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax)},
	{Field: "rating_rt_min", In: SourceQuery, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax)},
	{Field: "rating_rt_max", In: SourceQuery, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax)},
	{Field: "date_seen_min", In: SourceQuery, Type: TypeDate},
	{Field: "date_seen_max", In: SourceQuery, Type: TypeDate},
	{Field: "date_released_min", In: SourceQuery, Type: TypeDate},
	{Field: "date_released_max", In: SourceQuery, Type: TypeDate},
	{Field: "fsk", In: SourceQuery, Type: TypeInteger, OneOf: domain.FSKRatings},
	{Field: "mm", In: SourceQuery, Type: TypeBoolean},
	{Field: "title", In: SourceQuery, Type: TypeString},
	{Field: "genre", In: SourceQuery, Type: TypeString},
	{Field: "runtime_min", In: SourceQuery, Type: TypeInteger, Min: bound(0)},
	{Field: "runtime_max", In: SourceQuery, Type: TypeInteger, Min: bound(0)},
}

var GetRules = RuleSet{idRule}

// CreateRules includes the cross-field rating rules: ch and rt come as a
// pair and total must be their rounded mean.
var CreateRules = RuleSet{
	{Field: "tmdbID", In: SourceBody, Type: TypeInteger, Presence: Required, Min: bound(1)},
	{Field: "rating.total", In: SourceBody, Type: TypeInteger, Presence: Required,
		Min: bound(0), Max: bound(ratingMax), MultipleOf: 25, MeanOf: [2]string{"rating.ch", "rating.rt"}},
	{Field: "rating.ch", In: SourceBody, Type: TypeInteger, Presence: RequiredWith, With: "rating.rt",
		Min: bound(0), Max: bound(ratingMax), MultipleOf: 50},
	{Field: "rating.rt", In: SourceBody, Type: TypeInteger, Presence: RequiredWith, With: "rating.ch",
		Min: bound(0), Max: bound(ratingMax), MultipleOf: 50},
	{Field: "dateSeen", In: SourceBody, Type: TypeDate},
	{Field: "fsk", In: SourceBody, Type: TypeInteger, OneOf: domain.FSKRatings},
	{Field: "mm", In: SourceBody, Type: TypeBoolean},
}

// UpdateRules makes every body field optional. A rating replaces the stored
// one as a whole, so it must carry a total; the ch/rt/total relationship is
// not checked on update.
var UpdateRules = RuleSet{
	idRule,
	{Field: "tmdbID", In: SourceBody, Type: TypeInteger, Min: bound(1)},
	{Field: "rating.total", In: SourceBody, Type: TypeInteger, Presence: RequiredWith, With: "rating", Min: bound(0), Max: bound(ratingMax), MultipleOf: 25},
	{Field: "rating.ch", In: SourceBody, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax), MultipleOf: 50},
	{Field: "rating.rt", In: SourceBody, Type: TypeInteger, Min: bound(0), Max: bound(ratingMax), MultipleOf: 50},
	{Field: "dateSeen", In: SourceBody, Type: TypeDate},
	{Field: "fsk", In: SourceBody, Type: TypeInteger, OneOf: domain.FSKRatings},
	{Field: "mm", In: SourceBody, Type: TypeBoolean},
}

var DeleteRules = RuleSet{idRule}
