package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/failure"
	"github.com/Clark-Hu/movielog/internal/query"
)

// PostgresMovies stores movies in the movies table.
type PostgresMovies struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresMovies builds the Postgres backend on an existing pool.
func NewPostgresMovies(pool *pgxpool.Pool, logger *zap.Logger) *PostgresMovies {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresMovies{pool: pool, logger: logger}
}

const movieColumns = `
    id,
    tmdb_id,
    rating_total,
    rating_ch,
    rating_rt,
    date_seen,
    fsk,
    mm,
    title_original,
    title_german,
    genres,
    release_date,
    runtime,
    poster_url,
    budget,
    revenue,
    tagline,
    overview
`

var pathColumns = map[string]string{
	query.PathTmdbID:        "tmdb_id",
	query.PathRatingTotal:   "rating_total",
	query.PathRatingCh:      "rating_ch",
	query.PathRatingRt:      "rating_rt",
	query.PathDateSeen:      "date_seen",
	query.PathFsk:           "fsk",
	query.PathMm:            "mm",
	query.PathTitleOriginal: "title_original",
	query.PathTitleGerman:   "title_german",
	query.PathGenres:        "genres",
	query.PathReleaseDate:   "release_date",
	query.PathRuntime:       "runtime",
	query.PathBudget:        "budget",
	query.PathRevenue:       "revenue",
}

// checkConstraints maps CHECK constraint names from the migrations to fields.
var checkConstraints = map[string]failure.Violation{
	"movies_tmdb_id_check":      {Field: query.PathTmdbID, Kind: failure.ViolationRange},
	"movies_rating_total_check": {Field: query.PathRatingTotal, Kind: failure.ViolationRange},
	"movies_rating_ch_check":    {Field: query.PathRatingCh, Kind: failure.ViolationRange},
	"movies_rating_rt_check":    {Field: query.PathRatingRt, Kind: failure.ViolationRange},
	"movies_fsk_check":          {Field: query.PathFsk, Kind: failure.ViolationOneOf},
}

// Find returns movies matching filter, ordered by opts.Sort and then by insertion.
func (r *PostgresMovies) Find(ctx context.Context, filter query.Filter, opts query.Options) ([]domain.Movie, error) {
	sql, args, err := buildFindQuery(filter, opts)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("postgres find", zap.String("sql", sql), zap.Int("args", len(args)))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query movies")
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan movie")
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate movies")
	}
	return items, nil
}

func buildFindQuery(filter query.Filter, opts query.Options) (string, []interface{}, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, path := range filter.Paths() {
		col, ok := pathColumns[path]
		if !ok {
			return "", nil, errors.Errorf("repository: no column for path %q", path)
		}
		pred := filter.Fields[path]
		if pred.Eq != nil {
			v, err := castValue(path, *pred.Eq)
			if err != nil {
				return "", nil, err
			}
			if path == query.PathGenres {
				where = append(where, fmt.Sprintf("%s = ANY(%s)", arg(v), col))
			} else {
				where = append(where, fmt.Sprintf("%s = %s", col, arg(v)))
			}
		}
		if pred.Gte != nil {
			v, err := castValue(path, *pred.Gte)
			if err != nil {
				return "", nil, err
			}
			where = append(where, fmt.Sprintf("%s >= %s", col, arg(v)))
		}
		if pred.Lte != nil {
			v, err := castValue(path, *pred.Lte)
			if err != nil {
				return "", nil, err
			}
			where = append(where, fmt.Sprintf("%s <= %s", col, arg(v)))
		}
	}

	if filter.Text != nil {
		term := "%" + escapeLike(filter.Text.Term) + "%"
		ors := make([]string, 0, len(filter.Text.Paths))
		for _, path := range filter.Text.Paths {
			ors = append(ors, fmt.Sprintf("%s ILIKE %s", pathColumns[path], arg(term)))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	order := make([]string, 0, len(opts.Sort)+2)
	for _, key := range opts.Sort {
		col, ok := pathColumns[key.Path]
		if !ok {
			continue
		}
		// Missing values sort lowest, as in MongoDB.
		dir := "ASC NULLS FIRST"
		if key.Desc {
			dir = "DESC NULLS LAST"
		}
		order = append(order, col+" "+dir)
	}
	order = append(order, "created_at ASC", "id ASC")
	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(strings.Join(order, ", "))

	if opts.Limit != nil && *opts.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", *opts.Limit))
	}
	if opts.Skip != nil && *opts.Skip > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET %d", *opts.Skip))
	}

	return queryBuilder.String(), args, nil
}

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// FindByID fetches a movie by its identifier.
func (r *PostgresMovies) FindByID(ctx context.Context, id string) (domain.Movie, error) {
	sql := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, errors.Wrap(err, "get movie")
	}
	return movie, nil
}

// Insert stores a complete record under a freshly generated ObjectID-shaped id.
func (r *PostgresMovies) Insert(ctx context.Context, m domain.Movie) (domain.Movie, error) {
	if err := checkSchema(m); err != nil {
		return domain.Movie{}, err
	}

	sql := fmt.Sprintf(`
        INSERT INTO movies (id, tmdb_id, rating_total, rating_ch, rating_rt, date_seen, fsk, mm,
            title_original, title_german, genres, release_date, runtime, poster_url, budget, revenue, tagline, overview)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING %s
    `, movieColumns)

	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}

	row := r.pool.QueryRow(ctx, sql,
		bson.NewObjectID().Hex(), m.TmdbID, m.Rating.Total, m.Rating.Ch, m.Rating.Rt, m.DateSeen, m.Fsk, m.Mm,
		m.Title.Original, m.Title.German, genres, m.ReleaseDate, m.Runtime, m.PosterURL, m.Budget, m.Revenue,
		m.Tagline, m.Overview)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, mapPgError(err, "insert movie")
	}
	r.logger.Debug("postgres insert", zap.String("id", movie.ID), zap.Int("tmdbID", movie.TmdbID))
	return movie, nil
}

// UpdateByID applies the set fields of patch and returns the updated record.
func (r *PostgresMovies) UpdateByID(ctx context.Context, id string, patch domain.MoviePatch) (domain.Movie, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	set := make([]string, 0)
	args := []interface{}{id}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	assign := func(col string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = %s", col, arg(value)))
	}

	if patch.TmdbID != nil {
		assign("tmdb_id", *patch.TmdbID)
	}
	if patch.Rating != nil {
		// The rating is replaced as one value; nil sub-scores become NULL.
		assign("rating_total", patch.Rating.Total)
		assign("rating_ch", patch.Rating.Ch)
		assign("rating_rt", patch.Rating.Rt)
	}
	if patch.DateSeen != nil {
		assign("date_seen", *patch.DateSeen)
	}
	if patch.Fsk != nil {
		assign("fsk", *patch.Fsk)
	}
	if patch.Mm != nil {
		assign("mm", *patch.Mm)
	}
	set = append(set, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE movies SET %s WHERE id = $1 RETURNING %s`, strings.Join(set, ", "), movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, mapPgError(err, "update movie")
	}
	return movie, nil
}

// DeleteByID removes a movie permanently.
func (r *PostgresMovies) DeleteByID(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return 0, errors.Wrap(err, "delete movie")
	}
	return tag.RowsAffected(), nil
}

// Ping verifies the database is reachable.
func (r *PostgresMovies) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// mapPgError turns constraint violations into *ConstraintError and wraps
// anything else with msg.
func mapPgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return duplicateTmdbID(err)
		case "23514":
			if v, ok := checkConstraints[pgErr.ConstraintName]; ok {
				return newConstraintError(err, v)
			}
		case "23502":
			for path, col := range pathColumns {
				if col == pgErr.ColumnName {
					return newConstraintError(err, failure.Violation{Field: path, Kind: failure.ViolationRequired})
				}
			}
		}
	}
	return errors.Wrap(err, msg)
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie         domain.Movie
		titleOriginal string
		dateSeen      *time.Time
		releaseDate   *time.Time
	)

	err := row.Scan(
		&movie.ID,
		&movie.TmdbID,
		&movie.Rating.Total,
		&movie.Rating.Ch,
		&movie.Rating.Rt,
		&dateSeen,
		&movie.Fsk,
		&movie.Mm,
		&titleOriginal,
		&movie.Title.German,
		&movie.Genres,
		&releaseDate,
		&movie.Runtime,
		&movie.PosterURL,
		&movie.Budget,
		&movie.Revenue,
		&movie.Tagline,
		&movie.Overview,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.Title.Original = titleOriginal
	movie.DateSeen = utc(dateSeen)
	movie.ReleaseDate = utc(releaseDate)
	return movie, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
