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

type UserRepository struct {
	users *mongodriver.Collection
	now   func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongodriver.Database) *UserRepository {
	return &UserRepository{users: db.Collection(UsersCollection), now: time.Now}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	const op = "storage/mongo/users.Create"

	now := toMS(r.now())
	u.Email = entity.NormalizeEmail(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.users.InsertOne(ctx, u)
	if err != nil {
		return translate(op, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	const op = "storage/mongo/users.GetByID"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const op = "storage/mongo/users.GetByEmail"
	return r.findOne(ctx, op, bson.D{{Key: "email", Value: entity.NormalizeEmail(email)}})
}

func (r *UserRepository) SetEmailVerificationToken(ctx context.Context, id string, token string, expires time.Time) error {
	const op = "storage/mongo/users.SetEmailVerificationToken"
	return r.updateByID(ctx, op, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "emailVerificationToken", Value: token},
		{Key: "emailVerificationExpires", Value: toMS(expires)},
		{Key: "updatedAt", Value: toMS(r.now())},
	}}})
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id string, token string, expires time.Time) error {
	const op = "storage/mongo/users.SetPasswordResetToken"
	return r.updateByID(ctx, op, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "passwordResetToken", Value: token},
		{Key: "passwordResetExpires", Value: toMS(expires)},
		{Key: "updatedAt", Value: toMS(r.now())},
	}}})
}

func (r *UserRepository) ClearPasswordResetToken(ctx context.Context, id string) error {
	const op = "storage/mongo/users.ClearPasswordResetToken"
	return r.updateByID(ctx, op, id, bson.D{
		{Key: "$unset", Value: bson.D{{Key: "passwordResetToken", Value: ""}, {Key: "passwordResetExpires", Value: ""}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: toMS(r.now())}}},
	})
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	const op = "storage/mongo/users.FindByVerificationToken"
	return r.findOne(ctx, op, tokenFilter("emailVerificationToken", "emailVerificationExpires", token, now))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	const op = "storage/mongo/users.FindByResetToken"
	return r.findOne(ctx, op, tokenFilter("passwordResetToken", "passwordResetExpires", token, now))
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time, passwordHash string) (*entity.User, error) {
	const op = "storage/mongo/users.ConsumeVerificationToken"
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "password", Value: passwordHash},
			{Key: "isEmailVerified", Value: true},
			{Key: "updatedAt", Value: toMS(r.now())},
		}},
		{Key: "$unset", Value: bson.D{{Key: "emailVerificationToken", Value: ""}, {Key: "emailVerificationExpires", Value: ""}}},
	}
	return r.findOneAndUpdate(ctx, op, tokenFilter("emailVerificationToken", "emailVerificationExpires", token, now), update)
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*entity.User, error) {
	const op = "storage/mongo/users.ConsumeResetToken"
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "password", Value: passwordHash},
			{Key: "updatedAt", Value: toMS(r.now())},
		}},
		{Key: "$unset", Value: bson.D{{Key: "passwordResetToken", Value: ""}, {Key: "passwordResetExpires", Value: ""}}},
	}
	return r.findOneAndUpdate(ctx, op, tokenFilter("passwordResetToken", "passwordResetExpires", token, now), update)
}

func (r *UserRepository) SetAvatar(ctx context.Context, id string, url string) (*entity.User, error) {
	const op = "storage/mongo/users.SetAvatar"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "avatar", Value: url},
		{Key: "updatedAt", Value: toMS(r.now())},
	}}}
	return r.findOneAndUpdate(ctx, op, bson.D{{Key: "_id", Value: oid}}, update)
}

// UpsertByEmail creates u or overwrites the profile, role, password and flags of
// the user with the same email. Single-use tokens on an existing record are left alone.
func (r *UserRepository) UpsertByEmail(ctx context.Context, u *entity.User) (*entity.User, error) {
	const op = "storage/mongo/users.UpsertByEmail"

	now := toMS(r.now())
	set := bson.D{
		{Key: "firstName", Value: u.FirstName},
		{Key: "lastName", Value: u.LastName},
		{Key: "role", Value: u.Role},
		{Key: "password", Value: u.Password},
		{Key: "isActive", Value: u.IsActive},
		{Key: "isEmailVerified", Value: u.IsEmailVerified},
		{Key: "updatedAt", Value: now},
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	filter := bson.D{{Key: "email", Value: entity.NormalizeEmail(u.Email)}}

	var out entity.User
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

// tokenFilter matches an exact stored token whose expiry is strictly in the future.
func tokenFilter(tokenField, expiresField, token string, now time.Time) bson.D {
	return bson.D{
		{Key: tokenField, Value: token},
		{Key: expiresField, Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.D) (*entity.User, error) {
	var u entity.User
	if err := r.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(op, err)
	}
	return &u, nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, op string, filter, update bson.D) (*entity.User, error) {
	var u entity.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, translate(op, err)
	}
	return &u, nil
}

func (r *UserRepository) updateByID(ctx context.Context, op, id string, update bson.D) error {
	oid, err := objectID(op, id)
	if err != nil {
		return err
	}
	res, err := r.users.UpdateByID(ctx, oid, update)
	if err != nil {
		return translate(op, err)
	}
	if res.MatchedCount == 0 {
		return translate(op, mongodriver.ErrNoDocuments)
	}
	return nil
}
