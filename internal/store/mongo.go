package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/level"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "prepwise"

// Mongo is the document database backend.
type Mongo struct {
	client     *mongo.Client
	interviews *mongo.Collection
	levels     *mongo.Collection
}

// OpenMongo connects to uri, verifies the connection and ensures the
// owner-query indexes exist.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:     client,
		interviews: db.Collection(tableInterviews),
		levels:     db.Collection(tableLevels),
	}

	_, err = m.interviews.Indexes().CreateMany(connectCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return m, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Interviews returns the interview repository.
func (m *Mongo) Interviews() interview.Repository {
	return &mongoInterviews{col: m.interviews}
}

// Levels returns the user level repository.
func (m *Mongo) Levels() level.Repository {
	return &mongoLevels{col: m.levels}
}

type mongoInterviews struct {
	col *mongo.Collection
}

func (r *mongoInterviews) Create(ctx context.Context, iv *interview.Interview) error {
	doc := *iv
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interview.ErrConcurrentModification.WithData("sessionId", iv.ID)
		}
		return fmt.Errorf("insert interview: %w", err)
	}
	iv.Version = doc.Version
	return nil
}

func (r *mongoInterviews) Get(ctx context.Context, id string) (*interview.Interview, error) {
	var iv interview.Interview
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&iv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interview.ErrNotFound.WithData("sessionId", id)
		}
		return nil, fmt.Errorf("find interview: %w", err)
	}
	return &iv, nil
}

func (r *mongoInterviews) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check interview: %w", err)
	}
	return n > 0, nil
}

func (r *mongoInterviews) Update(ctx context.Context, iv *interview.Interview) error {
	doc := *iv
	doc.Version = iv.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": iv.ID, "version": iv.Version}, &doc)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	if res.MatchedCount == 0 {
		ok, err := r.Exists(ctx, iv.ID)
		switch {
		case err != nil:
			return err
		case !ok:
			return interview.ErrNotFound.WithData("sessionId", iv.ID)
		default:
			return interview.ErrConcurrentModification.WithData("sessionId", iv.ID)
		}
	}
	iv.Version = doc.Version
	return nil
}

func (r *mongoInterviews) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if res.DeletedCount == 0 {
		return interview.ErrNotFound.WithData("sessionId", id)
	}
	return nil
}

func (r *mongoInterviews) List(ctx context.Context, userID string, opts interview.ListOptions) ([]interview.Interview, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	filter := bson.M{"userId": userID}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if !opts.Since.IsZero() {
		filter["createdAt"] = bson.M{"$gt": opts.Since}
	}

	dir := -1
	if opts.Order == interview.OrderAsc {
		dir = 1
	}
	find := options.Find().SetSort(bson.D{
		{Key: string(opts.SortBy), Value: dir},
		{Key: "_id", Value: dir},
	})
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		find.SetSkip(int64(opts.Offset))
	}

	cur, err := r.col.Find(ctx, filter, find)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer cur.Close(ctx)

	out := []interview.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode interviews: %w", err)
	}
	return out, nil
}

func (r *mongoInterviews) Count(ctx context.Context, userID string) (interview.Counts, error) {
	var c interview.Counts
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return c, fmt.Errorf("count interviews: %w", err)
	}
	defer cur.Close(ctx)

	var groups []struct {
		Status string `bson:"_id"`
		N      int    `bson:"n"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return c, fmt.Errorf("count interviews: %w", err)
	}
	for _, g := range groups {
		c.Total += g.N
		switch interview.Status(g.Status) {
		case interview.StatusActive:
			c.Active = g.N
		case interview.StatusCompleted:
			c.Completed = g.N
		case interview.StatusCancelled:
			c.Cancelled = g.N
		}
	}
	return c, nil
}

type mongoLevels struct {
	col *mongo.Collection
}

func (r *mongoLevels) Get(ctx context.Context, userID string) (*level.UserLevel, error) {
	var u level.UserLevel
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, level.ErrNotFound.WithData("userId", userID)
		}
		return nil, fmt.Errorf("find user level: %w", err)
	}
	return &u, nil
}

func (r *mongoLevels) Create(ctx context.Context, u *level.UserLevel) error {
	doc := *u
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return level.ErrConcurrentModification.WithData("userId", u.UserID)
		}
		return fmt.Errorf("insert user level: %w", err)
	}
	u.Version = doc.Version
	return nil
}

func (r *mongoLevels) Update(ctx context.Context, u *level.UserLevel) error {
	doc := *u
	doc.Version = u.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.UserID, "version": u.Version}, &doc)
	if err != nil {
		return fmt.Errorf("update user level: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.Get(ctx, u.UserID); err != nil {
			return err
		}
		return level.ErrConcurrentModification.WithData("userId", u.UserID)
	}
	u.Version = doc.Version
	return nil
}
