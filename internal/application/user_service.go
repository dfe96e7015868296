package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
	"github.com/rohn-shah/diode-be/pkg/helpers"
)

// UserService covers the user operations that are more than plain CRUD:
// administrative creation with a set-password invite, avatars and search.
type UserService struct {
	Repo            repo.UserRepository
	Companies       repo.CompanyLookup
	Mail            Notifier
	Audit           *Auditor
	Logger          *logrus.Logger
	VerificationTTL time.Duration

	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string

	now func() time.Time
}

func NewUserService(users repo.UserRepository, companies repo.CompanyLookup, mail Notifier, audit *Auditor, logger *logrus.Logger, verificationTTL time.Duration, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esUsersIndex string) *UserService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &UserService{
		Repo:            users,
		Companies:       companies,
		Mail:            mail,
		Audit:           audit,
		Logger:          logger,
		VerificationTTL: verificationTTL,
		GCS:             gcs,
		GCSBucket:       gcsBucket,
		ES:              es,
		ESUsersIndex:    esUsersIndex,
		now:             time.Now,
	}
}

type CreateUserInput struct {
	Email      string      `json:"email" binding:"required,email"`
	FirstName  string      `json:"firstName" binding:"required"`
	LastName   string      `json:"lastName" binding:"required"`
	Role       entity.Role `json:"role" binding:"omitempty,oneof=admin manager user"`
	CompanyID  string      `json:"companyId" binding:"omitempty,objectid"`
	Department string      `json:"department"`
	Position   string      `json:"position"`
	Phone      string      `json:"phone"`
	IsActive   *bool       `json:"isActive"`
}

// UserView is a user with its company resolved.
type UserView struct {
	*entity.User
	Company *CompanyRef `json:"company"`
}

// CreateUser stores a password-less user and emails a set-password link.
// Email delivery and indexing are best effort.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*UserView, error) {
	const op = "application.UserService.CreateUser"

	now := s.now().UTC()
	u := &entity.User{
		Email:      entity.NormalizeEmail(in.Email),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Role:       in.Role,
		Department: in.Department,
		Position:   in.Position,
		Phone:      in.Phone,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.CompanyID != "" {
		oid, err := primitive.ObjectIDFromHex(in.CompanyID)
		if err != nil {
			return nil, validationError(fmt.Errorf("companyId: %w", err))
		}
		u.CompanyID = &oid
	}

	raw, err := helpers.GenerateSecureToken(helpers.EmailTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	expires := now.Add(s.VerificationTTL)
	u.EmailVerificationToken = helpers.HashToken(raw)
	u.EmailVerificationExpires = &expires

	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, fromRepo(op, err, nil, ErrDuplicateEmail)
	}
	metricUsersCreated.Add(1)
	s.Audit.Record(ctx, AuditUserCreated, u, "", nil)

	if err := s.Mail.SendSetPasswordEmail(ctx, recipient(u), raw); err != nil {
		metricEmailsSent.Add("set_password_failure", 1)
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("set-password email failed; invite can be resent")
	} else {
		metricEmailsSent.Add("set_password", 1)
	}
	_ = s.IndexUser(ctx, u)

	return s.view(ctx, u), nil
}

// ResendInvite issues a fresh set-password token for a user who has not set one yet.
func (s *UserService) ResendInvite(ctx context.Context, userID string) error {
	const op = "application.UserService.ResendInvite"

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return fromRepo(op, err, ErrUserNotFound, nil)
	}
	if u.HasPassword() {
		return ErrPasswordAlreadySet
	}
	raw, err := helpers.GenerateSecureToken(helpers.EmailTokenBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Repo.SetEmailVerificationToken(ctx, userID, helpers.HashToken(raw), s.now().UTC().Add(s.VerificationTTL)); err != nil {
		return fromRepo(op, err, ErrUserNotFound, nil)
	}
	if err := s.Mail.SendSetPasswordEmail(ctx, recipient(u), raw); err != nil {
		metricEmailsSent.Add("set_password_failure", 1)
		s.Logger.WithError(err).WithField("user_id", userID).Error("resend set-password email failed")
		return ErrEmailDelivery
	}
	metricEmailsSent.Add("set_password", 1)
	return nil
}

// UploadAvatar stores the image in GCS and points the user's avatar at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	const op = "application.UserService.UploadAvatar"

	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrStorageUnavailable
	}
	if _, err := s.Repo.GetByID(ctx, userID); err != nil {
		return nil, fromRepo(op, err, ErrUserNotFound, nil)
	}
	objectPath := helpers.AvatarObjectPath(userID, uuid.NewString(), filename)
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.Repo.SetAvatar(ctx, userID, url)
	if err != nil {
		return nil, fromRepo(op, err, ErrUserNotFound, nil)
	}
	_ = s.IndexUser(ctx, u)
	return u, nil
}

func (s *UserService) view(ctx context.Context, u *entity.User) *UserView {
	return &UserView{User: u, Company: lookupCompany(ctx, s.Companies, s.Logger, u)}
}

// IndexUser writes the searchable projection of u. Disabled when ES is not configured.
func (s *UserService) IndexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" || u == nil {
		return nil
	}
	id := u.ID.Hex()
	doc := map[string]any{
		"id":         id,
		"email":      u.Email,
		"firstName":  u.FirstName,
		"lastName":   u.LastName,
		"fullName":   u.FullName(),
		"role":       u.Role,
		"department": u.Department,
		"position":   u.Position,
		"avatar":     u.Avatar,
		"isActive":   u.IsActive,
		"createdAt":  u.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":  u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: id, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", id).Warn("es index response error")
	}
	return nil
}

// RemoveFromIndex deletes the user's search document. Missing documents are ignored.
func (s *UserService) RemoveFromIndex(ctx context.Context, userID string) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("es delete failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		s.Logger.WithField("status", res.Status()).WithField("user_id", userID).Warn("es delete response error")
	}
	return nil
}

// SearchUsers performs a multi_match search on email and names.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "fullName", "firstName", "lastName"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
