package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/rohn-shah/diode-be/internal/application"
	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
	"github.com/rohn-shah/diode-be/pkg/response"
	"github.com/rohn-shah/diode-be/pkg/validation"
)

// TotalCountHeader carries the unpaginated list size for react-admin.
const TotalCountHeader = "X-Total-Count"

// CRUDHandler serves one resource in the json-server dialect react-admin
// expects: bare JSON records and arrays, pagination via _start/_end.
type CRUDHandler[T any] struct {
	Svc    *app.CRUDService[T]
	Logger *logrus.Logger
}

func NewCRUDHandler[T any](svc *app.CRUDService[T], logger *logrus.Logger) *CRUDHandler[T] {
	return &CRUDHandler[T]{Svc: svc, Logger: logger}
}

func (h *CRUDHandler[T]) name() string { return h.Svc.Spec.Name }

// List GET /api/<resource>
func (h *CRUDHandler[T]) List(c *gin.Context) {
	items, total, err := h.Svc.List(c.Request.Context(), ParseListQuery(c, h.Svc.Spec))
	if err != nil {
		writeError(c, h.Logger, err, "Error fetching "+h.name()+" list")
		return
	}
	c.Header(TotalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, items)
}

// Get GET /api/<resource>/:id
func (h *CRUDHandler[T]) Get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err, "Error fetching "+h.name())
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Create POST /api/<resource>
func (h *CRUDHandler[T]) Create(c *gin.Context) {
	body, ok := bindObject(c)
	if !ok {
		return
	}
	doc, err := h.Svc.Create(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.Logger, err, "Error creating "+h.name())
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Update PUT /api/<resource>/:id
func (h *CRUDHandler[T]) Update(c *gin.Context) {
	body, ok := bindObject(c)
	if !ok {
		return
	}
	doc, err := h.Svc.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		writeError(c, h.Logger, err, "Error updating "+h.name())
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete DELETE /api/<resource>/:id
func (h *CRUDHandler[T]) Delete(c *gin.Context) {
	doc, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err, "Error deleting "+h.name())
		return
	}
	c.JSON(http.StatusOK, doc)
}

func bindObject(c *gin.Context) (map[string]any, bool) {
	body := map[string]any{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid request body", validation.ToDetails(err))
		return nil, false
	}
	return body, true
}

// ParseListQuery reads react-admin list parameters. Query keys that are not
// filterable on spec are dropped.
func ParseListQuery(c *gin.Context, spec repo.ResourceSpec) repo.ListQuery {
	q := repo.ListQuery{Filters: map[string][]string{}}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		first := strings.TrimSpace(values[0])
		switch key {
		case "_start":
			q.Start = nonNegative(first)
		case "_end":
			q.End = nonNegative(first)
		case "_sort":
			q.Sort = first
		case "_order":
			q.Desc = strings.EqualFold(first, "DESC")
		case "q":
			q.Q = first
		case "id":
			q.IDs = append(q.IDs, values...)
		default:
			if spec.Filterable(key) {
				q.Filters[key] = values
			}
		}
	}
	return q
}

func nonNegative(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
