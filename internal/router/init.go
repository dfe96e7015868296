package router

import (
	app "github.com/rohn-shah/diode-be/internal/application"
	"github.com/rohn-shah/diode-be/internal/container"
	"github.com/rohn-shah/diode-be/internal/domain/entity"
	mongoinfra "github.com/rohn-shah/diode-be/internal/infrastructure/mongo"
	handlers "github.com/rohn-shah/diode-be/internal/interface/http"
	"github.com/rohn-shah/diode-be/internal/router/modules"
	"github.com/rohn-shah/diode-be/pkg/mailer"
	"github.com/rohn-shah/diode-be/pkg/mailer/templates"
)

type moduleDeps struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Companies *handlers.CRUDHandler[entity.Company]
	UserCRUD  *handlers.CRUDHandler[entity.User]
	Employees *handlers.CRUDHandler[entity.Employee]
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongo()

	users := mongoinfra.NewUserRepository(db)
	tokens := mongoinfra.NewRefreshTokenRepository(db)
	companies := mongoinfra.NewResource[entity.Company](db, app.CompanySpec)
	userDocs := mongoinfra.NewResource[entity.User](db, app.UserSpec)
	employees := mongoinfra.NewResource[entity.Employee](db, app.EmployeeSpec)

	audit := &app.Auditor{Repo: mongoinfra.NewAuditRepository(db), Logger: logger}
	notifier := &mailer.Dispatcher{
		Sender: container.GetMailSender(),
		AppURL: cfg.AppURL,
		Brand: templates.Branding{
			CompanyName: cfg.CompanyName,
			LogoURL:     cfg.LogoURL,
			SupportURL:  cfg.SupportURL,
		},
		VerificationTTL: cfg.EmailVerificationTTL,
		ResetTTL:        cfg.PasswordResetTTL,
	}

	authSvc := app.NewAuthService(users, companies, tokens, container.GetJWT(), notifier, audit, logger, app.AuthConfig{
		RefreshTTL:      cfg.RefreshTTL,
		RememberMeTTL:   cfg.RememberMeTTL,
		VerificationTTL: cfg.EmailVerificationTTL,
		ResetTTL:        cfg.PasswordResetTTL,
		RefreshRotation: cfg.RefreshRotation,
	})
	userSvc := app.NewUserService(
		users,
		companies,
		notifier,
		audit,
		logger,
		cfg.EmailVerificationTTL,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESUsersIndex,
	)

	userCRUD := app.NewCRUDService[entity.User](app.UserSpec, userDocs, logger)
	app.WireUserHooks(userCRUD, userSvc, tokens)

	return moduleDeps{
		Auth:      handlers.NewAuthHandler(authSvc, logger),
		Users:     handlers.NewUserHandler(userSvc, logger),
		Companies: handlers.NewCRUDHandler(app.NewCRUDService[entity.Company](app.CompanySpec, companies, logger), logger),
		UserCRUD:  handlers.NewCRUDHandler(userCRUD, logger),
		Employees: handlers.NewCRUDHandler(app.NewCRUDService[entity.Employee](app.EmployeeSpec, employees, logger), logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	r.Add(
		modules.NewAuthModule(deps.Auth, jwt, rdb),
		modules.NewAdminModule(jwt, rdb, deps.Users, deps.Companies, deps.UserCRUD, deps.Employees),
	)
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
