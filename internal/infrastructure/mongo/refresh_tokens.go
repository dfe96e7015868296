package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	"github.com/rohn-shah/diode-be/internal/domain/repository"
)

type RefreshTokenRepository struct {
	tokens *mongodriver.Collection
	now    func() time.Time
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)

func NewRefreshTokenRepository(db *mongodriver.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{tokens: db.Collection(RefreshTokensCollection), now: time.Now}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *entity.RefreshToken) error {
	const op = "storage/mongo/refresh_tokens.Create"

	now := toMS(r.now())
	t.CreatedAt = now
	t.UpdatedAt = now
	t.ExpiresAt = toMS(t.ExpiresAt)

	res, err := r.tokens.InsertOne(ctx, t)
	if err != nil {
		return translate(op, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

func (r *RefreshTokenRepository) FindActive(ctx context.Context, token string) (*entity.RefreshToken, error) {
	const op = "storage/mongo/refresh_tokens.FindActive"

	var out entity.RefreshToken
	filter := bson.D{{Key: "token", Value: token}, {Key: "isRevoked", Value: false}}
	if err := r.tokens.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	const op = "storage/mongo/refresh_tokens.Revoke"

	_, err := r.tokens.UpdateOne(ctx, bson.D{{Key: "token", Value: token}}, revokeUpdate(r.now()))
	return translate(op, err)
}

func (r *RefreshTokenRepository) RevokeIfValid(ctx context.Context, token string, now time.Time) (*entity.RefreshToken, error) {
	const op = "storage/mongo/refresh_tokens.RevokeIfValid"

	filter := bson.D{
		{Key: "token", Value: token},
		{Key: "isRevoked", Value: false},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}
	var out entity.RefreshToken
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	if err := r.tokens.FindOneAndUpdate(ctx, filter, revokeUpdate(r.now()), opts).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	const op = "storage/mongo/refresh_tokens.RevokeAllForUser"

	oid, err := objectID(op, userID)
	if err != nil {
		return 0, err
	}
	filter := bson.D{{Key: "userId", Value: oid}, {Key: "isRevoked", Value: false}}
	res, err := r.tokens.UpdateMany(ctx, filter, revokeUpdate(r.now()))
	if err != nil {
		return 0, translate(op, err)
	}
	return res.ModifiedCount, nil
}

func revokeUpdate(now time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "isRevoked", Value: true},
		{Key: "updatedAt", Value: toMS(now)},
	}}}
}
