package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rohn-shah/diode-be/internal/domain/repository"
)

const (
	UsersCollection         = "users"
	RefreshTokensCollection = "refresh_tokens"
	CompaniesCollection     = "companies"
	EmployeesCollection     = "employees"
	AuditCollection         = "auth_audit"

	auditRetention = 90 * 24 * time.Hour
)

// Mongo owns the client and database handle shared by every repository.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

// New connects, pings the primary and ensures indexes.
func New(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	m := &Mongo{client: cli, db: cli.Database(dbName)}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) Database() *mongodriver.Database { return m.db }

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes creates the unique keys the domain relies on and the TTL
// indexes that let the server sweep expired sessions and old audit entries.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	specs := map[string][]mongodriver.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
			{Keys: bson.D{{Key: "emailVerificationToken", Value: 1}}, Options: options.Index().SetName("email_verification_token").SetSparse(true)},
			{Keys: bson.D{{Key: "passwordResetToken", Value: 1}}, Options: options.Index().SetName("password_reset_token").SetSparse(true)},
			{Keys: bson.D{{Key: "companyId", Value: 1}}, Options: options.Index().SetName("company")},
		},
		RefreshTokensCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetName("uniq_token").SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("user")},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(0)},
		},
		CompaniesCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
		},
		EmployeesCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
			{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: options.Index().SetName("uniq_employee_id").SetUnique(true).SetSparse(true)},
		},
		AuditCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: options.Index().SetName("ttl_created_at").SetExpireAfterSeconds(int32(auditRetention / time.Second))},
		},
	}
	for coll, models := range specs {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo ensure indexes %s: %w", coll, err)
		}
	}
	return nil
}

// toMS truncates to what a BSON datetime can hold.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// objectID parses a hex id; a malformed id is reported as a missing record.
func objectID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return oid, nil
}

// translate maps driver errors onto the repository sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	case mongodriver.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
