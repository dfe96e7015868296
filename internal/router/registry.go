package router

import "github.com/gin-gonic/gin"

// APIPrefix is where the admin UI's data provider points.
const APIPrefix = "/api"

// Registry collects feature modules and mounts them on one API group.
// Middleware added with Use wraps that group only, leaving /healthz bare.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	middlewares []gin.HandlerFunc
	modules     []Module
	mounted     bool
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group(APIPrefix)}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) *Registry {
	r.middlewares = append(r.middlewares, mw...)
	return r
}

func (r *Registry) Add(mods ...Module) *Registry {
	r.modules = append(r.modules, mods...)
	return r
}

// RegisterAll mounts every module once; gin panics on duplicate routes.
func (r *Registry) RegisterAll() {
	if r.mounted {
		return
	}
	r.mounted = true
	r.API.Use(r.middlewares...)
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
