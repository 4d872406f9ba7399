package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/query"
)

// versionKey is written on insert and hidden from every read.
const versionKey = "__v"

var hideVersion = bson.D{{Key: versionKey, Value: 0}}

type ratingDocument struct {
	Total int  `bson:"total"`
	Ch    *int `bson:"ch,omitempty"`
	Rt    *int `bson:"rt,omitempty"`
}

type titleDocument struct {
	Original string  `bson:"original"`
	German   *string `bson:"german,omitempty"`
}

type movieDocument struct {
	ID          bson.ObjectID  `bson:"_id"`
	TmdbID      int            `bson:"tmdbID"`
	Rating      ratingDocument `bson:"rating"`
	DateSeen    *time.Time     `bson:"dateSeen,omitempty"`
	Fsk         *int           `bson:"fsk,omitempty"`
	Mm          *bool          `bson:"mm,omitempty"`
	Title       titleDocument  `bson:"title"`
	Genres      []string       `bson:"genres"`
	ReleaseDate *time.Time     `bson:"releaseDate,omitempty"`
	Runtime     *int           `bson:"runtime,omitempty"`
	PosterURL   *string        `bson:"posterURL,omitempty"`
	Budget      *int64         `bson:"budget,omitempty"`
	Revenue     *int64         `bson:"revenue,omitempty"`
	Tagline     *string        `bson:"tagline,omitempty"`
	Overview    *string        `bson:"overview,omitempty"`
	Version     int            `bson:"__v"`
}

func toDocument(m domain.Movie) movieDocument {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return movieDocument{
		TmdbID:      m.TmdbID,
		Rating:      ratingDocument{Total: m.Rating.Total, Ch: m.Rating.Ch, Rt: m.Rating.Rt},
		DateSeen:    m.DateSeen,
		Fsk:         m.Fsk,
		Mm:          m.Mm,
		Title:       titleDocument{Original: m.Title.Original, German: m.Title.German},
		Genres:      genres,
		ReleaseDate: m.ReleaseDate,
		Runtime:     m.Runtime,
		PosterURL:   m.PosterURL,
		Budget:      m.Budget,
		Revenue:     m.Revenue,
		Tagline:     m.Tagline,
		Overview:    m.Overview,
	}
}

func (d movieDocument) toDomain() domain.Movie {
	return domain.Movie{
		ID:          d.ID.Hex(),
		TmdbID:      d.TmdbID,
		Rating:      domain.Rating{Total: d.Rating.Total, Ch: d.Rating.Ch, Rt: d.Rating.Rt},
		DateSeen:    utc(d.DateSeen),
		Fsk:         d.Fsk,
		Mm:          d.Mm,
		Title:       domain.Title{Original: d.Title.Original, German: d.Title.German},
		Genres:      d.Genres,
		ReleaseDate: utc(d.ReleaseDate),
		Runtime:     d.Runtime,
		PosterURL:   d.PosterURL,
		Budget:      d.Budget,
		Revenue:     d.Revenue,
		Tagline:     d.Tagline,
		Overview:    d.Overview,
	}
}

// MongoMovies stores movies as documents in a single collection.
type MongoMovies struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoMovies builds the MongoDB backend on coll.
func NewMongoMovies(coll *mongo.Collection, logger *zap.Logger) *MongoMovies {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoMovies{coll: coll, logger: logger}
}

// EnsureIndexes creates the unique tmdbID index.
func (r *MongoMovies) EnsureIndexes(ctx context.Context) error {
	name, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: query.PathTmdbID, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create tmdbID index")
	}
	r.logger.Info("mongo index ready", zap.String("index", name))
	return nil
}

// Find returns documents matching filter.
func (r *MongoMovies) Find(ctx context.Context, filter query.Filter, opts query.Options) ([]domain.Movie, error) {
	doc, err := buildMongoFilter(filter)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("mongo find", zap.Any("filter", doc))

	cursor, err := r.coll.Find(ctx, doc, buildFindOptions(opts))
	if err != nil {
		return nil, errors.Wrap(err, "find movies")
	}
	defer cursor.Close(ctx)

	items := make([]domain.Movie, 0)
	for cursor.Next(ctx) {
		var d movieDocument
		if err := cursor.Decode(&d); err != nil {
			return nil, errors.Wrap(err, "decode movie")
		}
		items = append(items, d.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate movies")
	}
	return items, nil
}

func buildMongoFilter(filter query.Filter) (bson.D, error) {
	doc := bson.D{}
	for _, path := range filter.Paths() {
		pred := filter.Fields[path]
		if pred.Eq != nil {
			v, err := castValue(path, *pred.Eq)
			if err != nil {
				return nil, err
			}
			doc = append(doc, bson.E{Key: path, Value: v})
			continue
		}
		cmp := bson.D{}
		if pred.Gte != nil {
			v, err := castValue(path, *pred.Gte)
			if err != nil {
				return nil, err
			}
			cmp = append(cmp, bson.E{Key: "$gte", Value: v})
		}
		if pred.Lte != nil {
			v, err := castValue(path, *pred.Lte)
			if err != nil {
				return nil, err
			}
			cmp = append(cmp, bson.E{Key: "$lte", Value: v})
		}
		if len(cmp) > 0 {
			doc = append(doc, bson.E{Key: path, Value: cmp})
		}
	}

	if filter.Text != nil {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(filter.Text.Term), Options: "i"}
		ors := bson.A{}
		for _, path := range filter.Text.Paths {
			ors = append(ors, bson.D{{Key: path, Value: pattern}})
		}
		doc = append(doc, bson.E{Key: "$or", Value: ors})
	}
	return doc, nil
}

func buildFindOptions(opts query.Options) *options.FindOptionsBuilder {
	fo := options.Find().SetProjection(hideVersion)
	if opts.Skip != nil {
		fo.SetSkip(*opts.Skip)
	}
	if opts.Limit != nil {
		fo.SetLimit(*opts.Limit)
	}
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, key := range opts.Sort {
			dir := 1
			if key.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: key.Path, Value: dir})
		}
		fo.SetSort(sort)
	}
	return fo
}

// FindByID fetches a document by its ObjectID hex string.
func (r *MongoMovies) FindByID(ctx context.Context, id string) (domain.Movie, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Movie{}, ErrNotFound
	}
	var d movieDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}, options.FindOne().SetProjection(hideVersion)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, errors.Wrap(err, "get movie")
	}
	return d.toDomain(), nil
}

// Insert validates m against the schema and stores it with a new ObjectID.
func (r *MongoMovies) Insert(ctx context.Context, m domain.Movie) (domain.Movie, error) {
	if err := checkSchema(m); err != nil {
		return domain.Movie{}, err
	}
	d := toDocument(m)
	d.ID = bson.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Movie{}, duplicateTmdbID(err)
		}
		return domain.Movie{}, errors.Wrap(err, "insert movie")
	}
	r.logger.Debug("mongo insert", zap.String("id", d.ID.Hex()), zap.Int("tmdbID", d.TmdbID))
	return d.toDomain(), nil
}

func buildMongoUpdate(patch domain.MoviePatch) bson.D {
	set := bson.D{}
	if patch.TmdbID != nil {
		set = append(set, bson.E{Key: query.PathTmdbID, Value: *patch.TmdbID})
	}
	if patch.Rating != nil {
		rating := ratingDocument{Total: patch.Rating.Total, Ch: patch.Rating.Ch, Rt: patch.Rating.Rt}
		set = append(set, bson.E{Key: "rating", Value: rating})
	}
	if patch.DateSeen != nil {
		set = append(set, bson.E{Key: query.PathDateSeen, Value: *patch.DateSeen})
	}
	if patch.Fsk != nil {
		set = append(set, bson.E{Key: query.PathFsk, Value: *patch.Fsk})
	}
	if patch.Mm != nil {
		set = append(set, bson.E{Key: query.PathMm, Value: *patch.Mm})
	}
	return bson.D{{Key: "$set", Value: set}}
}

// UpdateByID applies patch and returns the document after the update.
func (r *MongoMovies) UpdateByID(ctx context.Context, id string, patch domain.MoviePatch) (domain.Movie, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Movie{}, ErrNotFound
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(hideVersion)
	var d movieDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, buildMongoUpdate(patch), opts).Decode(&d)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return domain.Movie{}, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return domain.Movie{}, duplicateTmdbID(err)
		}
		return domain.Movie{}, errors.Wrap(err, "update movie")
	}
	return d.toDomain(), nil
}

// DeleteByID removes a document permanently.
func (r *MongoMovies) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return 0, errors.Wrap(err, "delete movie")
	}
	return res.DeletedCount, nil
}

// Ping verifies the deployment is reachable.
func (r *MongoMovies) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
