package repository

import "context"

// ResourceSpec describes one admin CRUD collection.
type ResourceSpec struct {
	Name       string
	Collection string
	// SearchFields are matched case-insensitively by the "q" list parameter.
	SearchFields []string
	// RegexFields match as case-insensitive "contains" when used as list filters.
	RegexFields []string
	// FilterFields may be used as exact-match list filters.
	FilterFields []string
	// WritableFields are the only keys accepted from create/update bodies.
	WritableFields  []string
	LowercaseFields []string
	Defaults        map[string]any
	// ObjectIDFields are filter fields holding references to other documents.
	ObjectIDFields []string
}

// ListQuery is the react-admin list request after parsing.
type ListQuery struct {
	Start   int64
	End     int64 // exclusive; 0 means no upper bound
	Sort    string
	Desc    bool
	Q       string
	IDs     []string
	Filters map[string][]string
}

// ResourceRepository is the persistence port behind generic CRUD.
type ResourceRepository[T any] interface {
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, doc *T) (*T, error)
	// Update writes the named fields of doc: present values are set, empty ones unset.
	Update(ctx context.Context, id string, doc *T, fields []string) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
}

func (s ResourceSpec) Writable(field string) bool  { return contains(s.WritableFields, field) }
func (s ResourceSpec) Lowercase(field string) bool { return contains(s.LowercaseFields, field) }
func (s ResourceSpec) Regex(field string) bool     { return contains(s.RegexFields, field) }
func (s ResourceSpec) ObjectID(field string) bool  { return contains(s.ObjectIDFields, field) }

// Filterable reports whether field may appear as a list filter.
func (s ResourceSpec) Filterable(field string) bool {
	return field == "id" || contains(s.FilterFields, field) || contains(s.RegexFields, field)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
