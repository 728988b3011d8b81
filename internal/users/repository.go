package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/resumehub/resumehub/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for users. Lookups that find
// nothing return (nil, nil); callers translate that into their own errors.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpsertLink finds-or-creates the user for the lowercased email, updates
	// the display name and overwrites any outstanding magic-link token.
	UpsertLink(ctx context.Context, email, name, token string, expires time.Time) (*models.User, error)

	// RedeemLink atomically matches the token against an unexpired pending
	// link and clears it, marking the user verified. At most one concurrent
	// caller can win; losers get (nil, nil).
	RedeemLink(ctx context.Context, token string, now time.Time) (*models.User, error)

	// UpsertRole finds-or-creates the user and sets its role. Newly created
	// users are verified (admin bootstrap path).
	UpsertRole(ctx context.Context, email, name string, role models.Role) (*models.User, error)

	List(ctx context.Context) ([]*models.User, error)

	// SearchIDs returns the IDs of users whose name or email contains q,
	// case-insensitively.
	SearchIDs(ctx context.Context, q string) ([]string, error)
}

// MongoRepository implements Repository using a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates a repository for the given collection and
// ensures the unique email index exists.
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) UpsertLink(ctx context.Context, email, name, token string, expires time.Time) (*models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"email": email}
	update := bson.M{
		"$set": bson.M{
			"name":             name,
			"magicLinkToken":   token,
			"magicLinkExpires": expires,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"email":     email,
			"role":      models.RoleUser,
			"verified":  false,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RedeemLink is a single conditional update: the filter requires the exact
// token with a strictly-future expiry, and the update clears both fields.
// Mongo executes FindOneAndUpdate atomically, so two racing redemptions of
// the same token produce exactly one match.
func (r *MongoRepository) RedeemLink(ctx context.Context, token string, now time.Time) (*models.User, error) {
	filter := bson.M{
		"magicLinkToken":   token,
		"magicLinkExpires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"verified":    true,
			"lastLoginAt": now,
			"updatedAt":   now,
		},
		"$unset": bson.M{
			"magicLinkToken":   "",
			"magicLinkExpires": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) UpsertRole(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"email": email}
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"role":      role,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"email":     email,
			"verified":  true,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (r *MongoRepository) SearchIDs(ctx context.Context, q string) ([]string, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": q, "$options": "i"}},
		bson.M{"email": bson.M{"$regex": q, "$options": "i"}},
	}}
	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	ids := []string{}
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}
