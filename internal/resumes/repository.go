package resumes

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a resume record does not exist.
var ErrNotFound = errors.New("resume not found")

// Repository provides resume persistence operations.
type Repository interface {
	Create(ctx context.Context, r *Resume) error
	GetByID(ctx context.Context, id string) (*Resume, error) // (nil, nil) when missing
	ListByUser(ctx context.Context, userID string) ([]*Resume, error)
	List(ctx context.Context, f ListFilter) ([]*Resume, int64, error)
	ApplyReview(ctx context.Context, id string, upd ReviewUpdate) (*Resume, error) // (nil, nil) when missing
	Delete(ctx context.Context, id string) error
}

// MongoRepository implements Repository using a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates the repository and the indexes the listing
// queries rely on.
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	ctx := context.Background()
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "uploadedAt", Value: -1}}},
	})
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, res *Resume) error {
	if res.UploadedAt.IsZero() {
		res.UploadedAt = time.Now().UTC()
	}
	if res.Status == "" {
		res.Status = StatusPending
	}
	_, err := r.col.InsertOne(ctx, res)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Resume, error) {
	var res Resume
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]*Resume, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeAll(ctx, cur)
}

func (r *MongoRepository) List(ctx context.Context, f ListFilter) ([]*Resume, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.FilterUsers {
		filter["userId"] = bson.M{"$in": f.UserIDs}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) ApplyReview(ctx context.Context, id string, upd ReviewUpdate) (*Resume, error) {
	set := bson.M{
		"status":     upd.Status,
		"reviewerId": upd.ReviewerID,
		"reviewedAt": upd.ReviewedAt,
	}
	if upd.Score != nil {
		set["score"] = *upd.Score
	}
	if upd.Notes != nil {
		set["reviewNotes"] = *upd.Notes
	}
	if upd.Tags != nil {
		set["tags"] = *upd.Tags
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var res Resume
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*Resume, error) {
	out := []*Resume{}
	for cur.Next(ctx) {
		var res Resume
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		out = append(out, &res)
	}
	return out, cur.Err()
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
