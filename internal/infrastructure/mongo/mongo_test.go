package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	"github.com/rohn-shah/diode-be/internal/domain/repository"
)

const testTimeout = 10 * time.Second

// TestMain starts one MongoDB container for the package when integration
// tests are enabled. Each test then works in its own database.
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}
	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}
	_ = os.Setenv("MONGO_URI", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("set GO_TEST_INTEGRATION=1 to run MongoDB integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, os.Getenv("MONGO_URI"), "diode_test_"+uuid.NewString(), testTimeout)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})
	return m
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

func TestUserRepositoryCreateAndDuplicate(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)
	repo := NewUserRepository(m.Database())

	u := &entity.User{Email: "Alice@Example.com", FirstName: "Alice", LastName: "Smith", Role: entity.RoleUser, IsActive: true}
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.ID.IsZero())

	got, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	err = repo.Create(ctx, &entity.User{Email: "alice@example.com", FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.GetByID(ctx, "not-an-id")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryConsumeTokenOnce(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)
	repo := NewUserRepository(m.Database())

	u := &entity.User{Email: "bob@example.com", FirstName: "Bob", LastName: "Jones", IsActive: true}
	require.NoError(t, repo.Create(ctx, u))

	now := time.Now()
	require.NoError(t, repo.SetEmailVerificationToken(ctx, u.ID.Hex(), "hashed", now.Add(time.Hour)))

	found, err := repo.FindByVerificationToken(ctx, "hashed", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	consumed, err := repo.ConsumeVerificationToken(ctx, "hashed", now, "$2a$pw")
	require.NoError(t, err)
	assert.True(t, consumed.IsEmailVerified)
	assert.Equal(t, "$2a$pw", consumed.Password)
	assert.Empty(t, consumed.EmailVerificationToken)
	assert.Nil(t, consumed.EmailVerificationExpires)

	_, err = repo.ConsumeVerificationToken(ctx, "hashed", now, "$2a$other")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryExpiredResetToken(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)
	repo := NewUserRepository(m.Database())

	u := &entity.User{Email: "carol@example.com", FirstName: "Carol", LastName: "White", IsActive: true}
	require.NoError(t, repo.Create(ctx, u))

	now := time.Now()
	require.NoError(t, repo.SetPasswordResetToken(ctx, u.ID.Hex(), "reset-hash", now.Add(-time.Minute)))

	_, err := repo.FindByResetToken(ctx, "reset-hash", now)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.ConsumeResetToken(ctx, "reset-hash", now, "$2a$pw")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.ClearPasswordResetToken(ctx, u.ID.Hex()))
	got, err := repo.GetByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.PasswordResetToken)
}

func TestUserRepositoryUpsertByEmail(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)
	repo := NewUserRepository(m.Database())

	admin := &entity.User{Email: "Admin@Diode.local", FirstName: "Admin", LastName: "User", Role: entity.RoleAdmin, Password: "h1", IsActive: true, IsEmailVerified: true}
	first, err := repo.UpsertByEmail(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "admin@diode.local", first.Email)
	assert.False(t, first.CreatedAt.IsZero())

	admin.Password = "h2"
	second, err := repo.UpsertByEmail(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "h2", second.Password)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestRefreshTokenRepository(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)
	repo := NewRefreshTokenRepository(m.Database())
	users := NewUserRepository(m.Database())

	u := &entity.User{Email: "dave@example.com", FirstName: "Dave", LastName: "Brown", IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	now := time.Now()
	for _, tok := range []string{"t1", "t2", "t3"} {
		require.NoError(t, repo.Create(ctx, &entity.RefreshToken{UserID: u.ID, Token: tok, ExpiresAt: now.Add(time.Hour)}))
	}

	got, err := repo.FindActive(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	require.NoError(t, repo.Revoke(ctx, "t1"))
	require.NoError(t, repo.Revoke(ctx, "t1"))
	require.NoError(t, repo.Revoke(ctx, "missing"))
	_, err = repo.FindActive(ctx, "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	prev, err := repo.RevokeIfValid(ctx, "t2", now)
	require.NoError(t, err)
	assert.False(t, prev.IsRevoked)
	_, err = repo.RevokeIfValid(ctx, "t2", now)
	require.ErrorIs(t, err, repository.ErrNotFound)

	n, err := repo.RevokeAllForUser(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRefreshTokenTTLIndex(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	cur, err := m.Database().Collection(RefreshTokensCollection).Indexes().List(ctx)
	require.NoError(t, err)
	var idx []bson.M
	require.NoError(t, cur.All(ctx, &idx))

	var found bool
	for _, i := range idx {
		if i["name"] == "ttl_expires_at" {
			found = true
			assert.EqualValues(t, 0, i["expireAfterSeconds"])
		}
	}
	assert.True(t, found)
}

func TestResourceCRUD(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)
	spec := repository.ResourceSpec{
		Collection:     CompaniesCollection,
		SearchFields:   []string{"name", "email", "industry"},
		RegexFields:    []string{"name", "industry"},
		WritableFields: []string{"name", "email", "industry", "size", "isActive", "website"},
	}
	res := NewResource[entity.Company](m.Database(), spec)

	acme, err := res.Insert(ctx, &entity.Company{Name: "Acme", Email: "info@acme.io", Industry: "Manufacturing", Size: "11-50", IsActive: true, Website: "https://acme.io"})
	require.NoError(t, err)
	assert.False(t, acme.CreatedAt.IsZero())
	_, err = res.Insert(ctx, &entity.Company{Name: "Globex", Email: "hi@globex.io", Industry: "Energy", Size: "1-10", IsActive: true})
	require.NoError(t, err)

	_, err = res.Insert(ctx, &entity.Company{Name: "Dup", Email: "info@acme.io", Size: "1-10"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	list, total, err := res.List(ctx, repository.ListQuery{Q: "manufact"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)

	list, total, err = res.List(ctx, repository.ListQuery{Start: 0, End: 1, Sort: "name", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Globex", list[0].Name)

	acme.Name = "Acme Corp"
	acme.Website = ""
	updated, err := res.Update(ctx, acme.ID.Hex(), acme, []string{"name", "website"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Empty(t, updated.Website)
	assert.Equal(t, "Manufacturing", updated.Industry)

	deleted, err := res.Delete(ctx, acme.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, acme.ID, deleted.ID)
	_, err = res.GetByID(ctx, acme.ID.Hex())
	require.ErrorIs(t, err, repository.ErrNotFound)
}
