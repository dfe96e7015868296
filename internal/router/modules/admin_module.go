package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	handlers "github.com/rohn-shah/diode-be/internal/interface/http"
	"github.com/rohn-shah/diode-be/internal/interface/middleware"
	"github.com/rohn-shah/diode-be/pkg/helpers"
)

// AdminModule serves the react-admin resources. Every route needs a bearer token.
type AdminModule struct {
	JWT       *helpers.JWTManager
	Redis     *redis.Client
	Users     *handlers.UserHandler
	Companies *handlers.CRUDHandler[entity.Company]
	UserCRUD  *handlers.CRUDHandler[entity.User]
	Employees *handlers.CRUDHandler[entity.Employee]
}

func NewAdminModule(
	jwt *helpers.JWTManager,
	rdb *redis.Client,
	users *handlers.UserHandler,
	companies *handlers.CRUDHandler[entity.Company],
	userCRUD *handlers.CRUDHandler[entity.User],
	employees *handlers.CRUDHandler[entity.Employee],
) *AdminModule {
	return &AdminModule{JWT: jwt, Redis: rdb, Users: users, Companies: companies, UserCRUD: userCRUD, Employees: employees}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)

	company := auth.Group("/company")
	{
		company.GET("", m.Companies.List)
		company.GET("/:id", m.Companies.Get)
		company.POST("", m.Companies.Create)
		company.PUT("/:id", m.Companies.Update)
		company.DELETE("/:id", m.Companies.Delete)
	}

	// Users are created through the invite flow, not the generic create.
	user := auth.Group("/user")
	{
		user.GET("", m.UserCRUD.List)
		user.GET("/search", m.Users.Search)
		user.GET("/:id", m.UserCRUD.Get)
		user.POST("", m.Users.Create)
		user.POST("/:id/resend-invite", m.Users.ResendInvite)
		user.POST("/:id/avatar", m.Users.UploadAvatar)
		user.PUT("/:id", m.UserCRUD.Update)
		user.DELETE("/:id", m.UserCRUD.Delete)
	}

	employee := auth.Group("/employee")
	{
		employee.GET("", m.Employees.List)
		employee.GET("/:id", m.Employees.Get)
		employee.POST("", m.Employees.Create)
		employee.PUT("/:id", m.Employees.Update)
		employee.DELETE("/:id", m.Employees.Delete)
	}
}
