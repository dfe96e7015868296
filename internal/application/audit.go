package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
)

const (
	AuditLogin          = "login"
	AuditLoginFailed    = "login_failed"
	AuditLogout         = "logout"
	AuditRefresh        = "refresh"
	AuditForgotPassword = "forgot_password"
	AuditResetPassword  = "reset_password"
	AuditSetPassword    = "set_password"
	AuditUserCreated    = "user_created"
)

type requestMetaKey struct{}

// RequestMeta is the caller identity captured by the HTTP layer.
type RequestMeta struct {
	IP        string
	UserAgent string
}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func requestMeta(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

// Auditor writes auth events. Failures are logged and never returned.
type Auditor struct {
	Repo   repo.AuditRepository
	Logger *logrus.Logger
}

func (a *Auditor) Record(ctx context.Context, action string, user *entity.User, email string, metadata map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	meta := requestMeta(ctx)
	log := &entity.AuditLog{
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if user != nil {
		id := user.ID
		log.UserID = &id
		log.Email = user.Email
	}
	// detached so a cancelled request still leaves its trail
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := a.Repo.Insert(c, log); err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}
