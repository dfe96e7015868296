package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
	"github.com/rohn-shah/diode-be/pkg/helpers"
	"github.com/rohn-shah/diode-be/pkg/mailer"
)

// Notifier sends the account emails that carry single-use tokens.
type Notifier interface {
	SendSetPasswordEmail(ctx context.Context, to mailer.Recipient, token string) error
	SendPasswordResetEmail(ctx context.Context, to mailer.Recipient, token string) error
}

type AuthConfig struct {
	RefreshTTL      time.Duration
	RememberMeTTL   time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	RefreshRotation bool
}

type AuthService struct {
	Users     repo.UserRepository
	Companies repo.CompanyLookup
	Tokens    repo.RefreshTokenRepository
	JWT       *helpers.JWTManager
	Mail      Notifier
	Audit     *Auditor
	Logger    *logrus.Logger
	Cfg       AuthConfig

	now func() time.Time
}

func NewAuthService(users repo.UserRepository, companies repo.CompanyLookup, tokens repo.RefreshTokenRepository, jwt *helpers.JWTManager, mail Notifier, audit *Auditor, logger *logrus.Logger, cfg AuthConfig) *AuthService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AuthService{
		Users:     users,
		Companies: companies,
		Tokens:    tokens,
		JWT:       jwt,
		Mail:      mail,
		Audit:     audit,
		Logger:    logger,
		Cfg:       cfg,
		now:       time.Now,
	}
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

type CompanyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserProfile is the user as returned on login.
type UserProfile struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	FullName   string      `json:"fullName"`
	Role       entity.Role `json:"role"`
	Avatar     string      `json:"avatar"`
	Company    *CompanyRef `json:"company"`
	Department string      `json:"department"`
	Position   string      `json:"position"`
}

// DetailedProfile is the user as returned by /me.
type DetailedProfile struct {
	UserProfile
	Phone           string `json:"phone"`
	IsActive        bool   `json:"isActive"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

type LoginResult struct {
	User UserProfile `json:"user"`
	TokenPair
}

type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn"`
}

// TokenOwner is what verify-token reveals about a token's user.
type TokenOwner struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

const (
	TokenTypeEmail = "email"
	TokenTypeReset = "reset"
)

// IssueTokenPair signs an access token and persists a new refresh token.
func (s *AuthService) IssueTokenPair(ctx context.Context, u *entity.User, rememberMe bool, deviceInfo string) (TokenPair, error) {
	const op = "application.AuthService.IssueTokenPair"

	access, _, err := s.JWT.GenerateAccessToken(u.ID.Hex())
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	raw, err := helpers.GenerateSecureToken(helpers.RefreshTokenBytes)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	ttl := s.Cfg.RefreshTTL
	if rememberMe {
		ttl = s.Cfg.RememberMeTTL
	}
	now := s.clock().UTC()
	rt := &entity.RefreshToken{
		UserID:     u.ID,
		Token:      helpers.HashToken(raw),
		ExpiresAt:  now.Add(ttl),
		DeviceInfo: deviceInfo,
		RememberMe: rememberMe,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Tokens.Create(ctx, rt); err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return TokenPair{AccessToken: access, RefreshToken: raw, ExpiresIn: s.JWT.ExpiresInSeconds()}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	const op = "application.AuthService.Login"

	email := entity.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.loginFailed(ctx, nil, email, "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !u.IsActive {
		s.loginFailed(ctx, u, email, "deactivated")
		return nil, ErrAccountDeactivated
	}
	if !u.HasPassword() {
		s.loginFailed(ctx, u, email, "password_not_set")
		return nil, ErrPasswordNotSet
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		s.loginFailed(ctx, u, email, "wrong_password")
		return nil, ErrInvalidCredentials
	}
	if !u.IsEmailVerified {
		s.loginFailed(ctx, u, email, "email_not_verified")
		return nil, ErrEmailNotVerified
	}

	pair, err := s.IssueTokenPair(ctx, u, in.RememberMe, requestMeta(ctx).UserAgent)
	if err != nil {
		metricLogins.Add(outcome(err), 1)
		return nil, err
	}
	metricLogins.Add(outcome(nil), 1)
	s.Audit.Record(ctx, AuditLogin, u, email, map[string]any{"rememberMe": in.RememberMe})

	return &LoginResult{User: s.profile(ctx, u), TokenPair: pair}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, u *entity.User, email, reason string) {
	metricLogins.Add("failure", 1)
	s.Audit.Record(ctx, AuditLoginFailed, u, email, map[string]any{"reason": reason})
}

// Refresh exchanges a refresh token for a new access token. With rotation
// enabled the presented token is revoked and a replacement is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	const op = "application.AuthService.Refresh"

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}
	hash := helpers.HashToken(refreshToken)
	now := s.clock().UTC()

	if s.Cfg.RefreshRotation {
		old, err := s.Tokens.RevokeIfValid(ctx, hash, now)
		if err != nil {
			metricRefreshes.Add("failure", 1)
			return nil, fromRepo(op, err, ErrInvalidRefreshToken, nil)
		}
		pair, err := s.IssueTokenPair(ctx, &entity.User{ID: old.UserID}, old.RememberMe, old.DeviceInfo)
		if err != nil {
			return nil, err
		}
		metricRefreshes.Add("rotated", 1)
		s.Audit.Record(ctx, AuditRefresh, &entity.User{ID: old.UserID}, "", map[string]any{"rotated": true})
		return &RefreshResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ExpiresIn: pair.ExpiresIn}, nil
	}

	rt, err := s.Tokens.FindActive(ctx, hash)
	if err != nil {
		metricRefreshes.Add("failure", 1)
		return nil, fromRepo(op, err, ErrInvalidRefreshToken, nil)
	}
	if !rt.IsValid(now) {
		metricRefreshes.Add("failure", 1)
		return nil, ErrInvalidRefreshToken
	}
	access, _, err := s.JWT.GenerateAccessToken(rt.UserID.Hex())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metricRefreshes.Add("success", 1)
	return &RefreshResult{AccessToken: access, ExpiresIn: s.JWT.ExpiresInSeconds()}, nil
}

// Logout revokes the given refresh token. An empty or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	const op = "application.AuthService.Logout"

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	if err := s.Tokens.Revoke(ctx, helpers.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.Audit.Record(ctx, AuditLogout, nil, "", nil)
	return nil
}

// ForgotPassword answers the same way whether or not the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "application.AuthService.ForgotPassword"

	email = entity.NormalizeEmail(email)
	if email == "" {
		return ErrMissingEmail
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	raw, err := helpers.GenerateSecureToken(helpers.EmailTokenBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	uid := u.ID.Hex()
	expires := s.clock().UTC().Add(s.Cfg.ResetTTL)
	if err := s.Users.SetPasswordResetToken(ctx, uid, helpers.HashToken(raw), expires); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.Mail.SendPasswordResetEmail(ctx, recipient(u), raw); err != nil {
		metricEmailsSent.Add("password_reset_failure", 1)
		s.Logger.WithError(err).WithField("user_id", uid).Error("password reset email failed")
		if cErr := s.Users.ClearPasswordResetToken(ctx, uid); cErr != nil {
			s.Logger.WithError(cErr).WithField("user_id", uid).Error("clear reset token failed")
		}
		return ErrEmailDelivery
	}
	metricEmailsSent.Add("password_reset", 1)
	s.Audit.Record(ctx, AuditForgotPassword, u, email, nil)
	return nil
}

// ResetPassword consumes a reset token and revokes every session of its user.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	const op = "application.AuthService.ResetPassword"

	u, err := s.consume(ctx, op, token, password, s.Users.ConsumeResetToken)
	if err != nil {
		return err
	}
	if _, err := s.Tokens.RevokeAllForUser(ctx, u.ID.Hex()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metricPasswordResets.Add(1)
	s.Audit.Record(ctx, AuditResetPassword, u, "", nil)
	return nil
}

// SetPassword consumes an email-verification token, sets the first password and verifies the email.
func (s *AuthService) SetPassword(ctx context.Context, token, password string) error {
	const op = "application.AuthService.SetPassword"

	u, err := s.consume(ctx, op, token, password, s.Users.ConsumeVerificationToken)
	if err != nil {
		return err
	}
	metricPasswordSets.Add(1)
	s.Audit.Record(ctx, AuditSetPassword, u, "", nil)
	return nil
}

type consumeFunc func(ctx context.Context, token string, now time.Time, passwordHash string) (*entity.User, error)

func (s *AuthService) consume(ctx context.Context, op, token, password string, fn consumeFunc) (*entity.User, error) {
	token = strings.TrimSpace(token)
	if token == "" || password == "" {
		return nil, ErrMissingTokenOrPassword
	}
	if !helpers.PasswordLongEnough(password) {
		return nil, ErrWeakPassword
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := fn(ctx, helpers.HashToken(token), s.clock().UTC(), hash)
	if err != nil {
		return nil, fromRepo(op, err, ErrInvalidToken, nil)
	}
	return u, nil
}

// VerifyToken reports who a pending token belongs to without consuming it.
func (s *AuthService) VerifyToken(ctx context.Context, token, typ string) (*TokenOwner, error) {
	const op = "application.AuthService.VerifyToken"

	token = strings.TrimSpace(token)
	if token == "" || typ == "" {
		return nil, ErrMissingTokenOrType
	}
	hash := helpers.HashToken(token)
	now := s.clock().UTC()

	var (
		u       *entity.User
		err     error
		pending func(*entity.User) bool
	)
	switch typ {
	case TokenTypeEmail:
		u, err = s.Users.FindByVerificationToken(ctx, hash, now)
		pending = func(u *entity.User) bool { return u.VerificationPending(now) }
	case TokenTypeReset:
		u, err = s.Users.FindByResetToken(ctx, hash, now)
		pending = func(u *entity.User) bool { return u.ResetPending(now) }
	default:
		return nil, ErrInvalidTokenType
	}
	if err != nil {
		return nil, fromRepo(op, err, ErrInvalidToken, nil)
	}
	// expiry is judged by the service clock, not only the store's
	if !pending(u) {
		return nil, ErrInvalidToken
	}
	return &TokenOwner{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*DetailedProfile, error) {
	const op = "application.AuthService.CurrentUser"

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(op, err, ErrUserNotFound, nil)
	}
	return &DetailedProfile{
		UserProfile:     s.profile(ctx, u),
		Phone:           u.Phone,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
	}, nil
}

func (s *AuthService) profile(ctx context.Context, u *entity.User) UserProfile {
	return UserProfile{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		Role:       u.Role,
		Avatar:     u.Avatar,
		Company:    lookupCompany(ctx, s.Companies, s.Logger, u),
		Department: u.Department,
		Position:   u.Position,
	}
}

// lookupCompany resolves the user's company; a dangling reference yields nil.
func lookupCompany(ctx context.Context, companies repo.CompanyLookup, logger *logrus.Logger, u *entity.User) *CompanyRef {
	if u.CompanyID == nil || companies == nil {
		return nil
	}
	c, err := companies.GetByID(ctx, u.CompanyID.Hex())
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) && logger != nil {
			logger.WithError(err).WithField("company_id", u.CompanyID.Hex()).Warn("company lookup failed")
		}
		return nil
	}
	return &CompanyRef{ID: c.ID.Hex(), Name: c.Name}
}

func recipient(u *entity.User) mailer.Recipient {
	return mailer.Recipient{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
