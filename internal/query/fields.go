// Package query turns raw list query parameters into a structured storage filter.
package query

// Role describes how a query parameter constrains its document path.
type Role int

const (
	RoleExact Role = iota + 1
	RoleMin
	RoleMax
	RoleText
)

func (r Role) String() string {
	switch r {
	case RoleExact:
		return "exact"
	case RoleMin:
		return "min"
	case RoleMax:
		return "max"
	case RoleText:
		return "text"
	default:
		return "unknown"
	}
}

// Field maps an external query parameter onto an internal document path.
type Field struct {
	Param string
	Path  string
	Role  Role
}

// Reserved parameters steer pagination and ordering and never become predicates.
const (
	ParamLimit = "limit"
	ParamPage  = "page"
	ParamSort  = "sort"
)

// Document paths shared by the storage backends.
const (
	PathTmdbID        = "tmdbID"
	PathRatingTotal   = "rating.total"
	PathRatingCh      = "rating.ch"
	PathRatingRt      = "rating.rt"
	PathDateSeen      = "dateSeen"
	PathFsk           = "fsk"
	PathMm            = "mm"
	PathTitle         = "title"
	PathTitleOriginal = "title.original"
	PathTitleGerman   = "title.german"
	PathGenres        = "genres"
	PathReleaseDate   = "releaseDate"
	PathRuntime       = "runtime"
	PathBudget        = "budget"
	PathRevenue       = "revenue"
)

// TextPaths are the sub-fields a text-search parameter is matched against.
var TextPaths = []string{PathTitleOriginal, PathTitleGerman}

// Fields is the complete set of recognised filter parameters, in evaluation order.
var Fields = []Field{
	{Param: "rating_total_min", Path: PathRatingTotal, Role: RoleMin},
	{Param: "rating_total_max", Path: PathRatingTotal, Role: RoleMax},
	{Param: "rating_ch_min", Path: PathRatingCh, Role: RoleMin},
	{Param: "rating_ch_max", Path: PathRatingCh, Role: RoleMax},
	{Param: "rating_rt_min", Path: PathRatingRt, Role: RoleMin},
	{Param: "rating_rt_max", Path: PathRatingRt, Role: RoleMax},
	{Param: "date_seen_min", Path: PathDateSeen, Role: RoleMin},
	{Param: "date_seen_max", Path: PathDateSeen, Role: RoleMax},
	{Param: "fsk", Path: PathFsk, Role: RoleExact},
	{Param: "mm", Path: PathMm, Role: RoleExact},
	{Param: "title", Path: PathTitle, Role: RoleText},
	{Param: "genre", Path: PathGenres, Role: RoleExact},
	{Param: "date_released_min", Path: PathReleaseDate, Role: RoleMin},
	{Param: "date_released_max", Path: PathReleaseDate, Role: RoleMax},
	{Param: "runtime_min", Path: PathRuntime, Role: RoleMin},
	{Param: "runtime_max", Path: PathRuntime, Role: RoleMax},
}

// SortablePaths lists the document paths a caller may order by.
var SortablePaths = map[string]struct{}{
	PathTmdbID:        {},
	PathRatingTotal:   {},
	PathRatingCh:      {},
	PathRatingRt:      {},
	PathDateSeen:      {},
	PathFsk:           {},
	PathTitleOriginal: {},
	PathTitleGerman:   {},
	PathReleaseDate:   {},
	PathRuntime:       {},
	PathBudget:        {},
	PathRevenue:       {},
}

// Lookup returns the field registered for param.
func Lookup(param string) (Field, bool) {
	for _, f := range Fields {
		if f.Param == param {
			return f, true
		}
	}
	return Field{}, false
}
