package application

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
	"github.com/rohn-shah/diode-be/pkg/mailer"
	"github.com/rohn-shah/diode-be/pkg/validation"
)

func TestMain(m *testing.M) {
	validation.Init()
	os.Exit(m.Run())
}

type memUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]*entity.User{}}
}

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) get(id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repo.ErrNotFound
	}
	u, ok := r.byID[oid]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUsers) SetEmailVerificationToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.EmailVerificationToken, u.EmailVerificationExpires = token, &expires
	return nil
}

func (r *memUsers) SetPasswordResetToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.PasswordResetToken, u.PasswordResetExpires = token, &expires
	return nil
}

func (r *memUsers) ClearPasswordResetToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.PasswordResetToken, u.PasswordResetExpires = "", nil
	return nil
}

func (r *memUsers) find(match func(*entity.User) bool) (*entity.User, error) {
	for _, u := range r.byID {
		if match(u) {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUsers) FindByVerificationToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.find(func(u *entity.User) bool {
		return u.EmailVerificationToken == token && u.VerificationPending(now)
	})
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) FindByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.find(func(u *entity.User) bool {
		return u.PasswordResetToken == token && u.ResetPending(now)
	})
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) ConsumeVerificationToken(_ context.Context, token string, now time.Time, hash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.find(func(u *entity.User) bool {
		return u.EmailVerificationToken == token && u.VerificationPending(now)
	})
	if err != nil {
		return nil, err
	}
	u.Password, u.IsEmailVerified = hash, true
	u.EmailVerificationToken, u.EmailVerificationExpires = "", nil
	cp := *u
	return &cp, nil
}

func (r *memUsers) ConsumeResetToken(_ context.Context, token string, now time.Time, hash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.find(func(u *entity.User) bool {
		return u.PasswordResetToken == token && u.ResetPending(now)
	})
	if err != nil {
		return nil, err
	}
	u.Password = hash
	u.PasswordResetToken, u.PasswordResetExpires = "", nil
	cp := *u
	return &cp, nil
}

func (r *memUsers) SetAvatar(_ context.Context, id, url string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	u.Avatar = url
	cp := *u
	return &cp, nil
}

// stored returns the live record for assertions.
func (r *memUsers) stored(id primitive.ObjectID) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

type memTokens struct {
	mu     sync.Mutex
	tokens []*entity.RefreshToken
	err    error
}

func (r *memTokens) Create(_ context.Context, t *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	t.ID = primitive.NewObjectID()
	cp := *t
	r.tokens = append(r.tokens, &cp)
	return nil
}

func (r *memTokens) FindActive(_ context.Context, token string) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token && !t.IsRevoked {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memTokens) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, t := range r.tokens {
		if t.Token == token {
			t.IsRevoked = true
		}
	}
	return nil
}

func (r *memTokens) RevokeIfValid(_ context.Context, token string, now time.Time) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token && t.IsValid(now) {
			cp := *t
			t.IsRevoked = true
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memTokens) RevokeAllForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tokens {
		if t.UserID.Hex() == userID && !t.IsRevoked {
			t.IsRevoked = true
			n++
		}
	}
	return n, nil
}

func (r *memTokens) byHash(hash string) *entity.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == hash {
			return t
		}
	}
	return nil
}

func (r *memTokens) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type memCompanies map[string]*entity.Company

func (m memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := m[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return c, nil
}

type memAudit struct {
	mu   sync.Mutex
	logs []*entity.AuditLog
}

func (a *memAudit) Insert(_ context.Context, l *entity.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, l)
	return nil
}

func (a *memAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

type sentEmail struct {
	kind  string
	to    mailer.Recipient
	token string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (n *fakeNotifier) record(kind string, to mailer.Recipient, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{kind: kind, to: to, token: token})
	return n.err
}

func (n *fakeNotifier) SendSetPasswordEmail(_ context.Context, to mailer.Recipient, token string) error {
	return n.record("set_password", to, token)
}

func (n *fakeNotifier) SendPasswordResetEmail(_ context.Context, to mailer.Recipient, token string) error {
	return n.record("password_reset", to, token)
}

func (n *fakeNotifier) last() sentEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentEmail{}
	}
	return n.sent[len(n.sent)-1]
}

// memResource is a ResourceRepository over an in-memory slice with unique email.
type memResource[T any] struct {
	mu      sync.Mutex
	docs    map[string]*T
	setID   func(*T, primitive.ObjectID)
	emailOf func(*T) string
}

func (r *memResource[T]) List(_ context.Context, _ repo.ListQuery) ([]T, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *memResource[T]) GetByID(_ context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memResource[T]) Insert(_ context.Context, doc *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if r.emailOf(d) == r.emailOf(doc) {
			return nil, repo.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	r.setID(doc, id)
	cp := *doc
	r.docs[id.Hex()] = &cp
	return doc, nil
}

func (r *memResource[T]) Update(_ context.Context, id string, doc *T, _ []string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return nil, repo.ErrNotFound
	}
	cp := *doc
	r.docs[id] = &cp
	return doc, nil
}

func (r *memResource[T]) Delete(_ context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	delete(r.docs, id)
	return d, nil
}

func newMemCompanies() *memResource[entity.Company] {
	return &memResource[entity.Company]{
		docs:    map[string]*entity.Company{},
		setID:   func(c *entity.Company, id primitive.ObjectID) { c.ID = id },
		emailOf: func(c *entity.Company) string { return c.Email },
	}
}

func newMemUserResource() *memResource[entity.User] {
	return &memResource[entity.User]{
		docs:    map[string]*entity.User{},
		setID:   func(u *entity.User, id primitive.ObjectID) { u.ID = id },
		emailOf: func(u *entity.User) string { return u.Email },
	}
}

var errBoom = errors.New("boom")
