package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
	"github.com/rohn-shah/diode-be/pkg/validation"
)

// CRUDService is the generic admin resource service. Request bodies arrive as
// loose JSON objects; only whitelisted keys survive into the typed record.
type CRUDService[T any] struct {
	Spec   repo.ResourceSpec
	Repo   repo.ResourceRepository[T]
	Logger *logrus.Logger

	// OnChange and OnDelete run after a successful write.
	OnChange func(ctx context.Context, doc *T)
	OnDelete func(ctx context.Context, doc *T)
}

func NewCRUDService[T any](spec repo.ResourceSpec, r repo.ResourceRepository[T], logger *logrus.Logger) *CRUDService[T] {
	return &CRUDService[T]{Spec: spec, Repo: r, Logger: logger}
}

func (s *CRUDService[T]) op(name string) string {
	return "application.CRUDService[" + s.Spec.Name + "]." + name
}

func (s *CRUDService[T]) List(ctx context.Context, q repo.ListQuery) ([]T, int64, error) {
	items, total, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, 0, fromRepo(s.op("List"), err, nil, nil)
	}
	return items, total, nil
}

func (s *CRUDService[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(s.op("Get"), err, ErrNotFound, nil)
	}
	return doc, nil
}

func (s *CRUDService[T]) Create(ctx context.Context, body map[string]any) (*T, error) {
	op := s.op("Create")

	fields := s.sanitize(body)
	for k, v := range s.Spec.Defaults {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	for k, v := range fields {
		if v == nil || v == "" {
			delete(fields, k)
		}
	}

	var doc T
	if err := decodeInto(fields, &doc); err != nil {
		return nil, err
	}
	out, err := s.Repo.Insert(ctx, &doc)
	if err != nil {
		return nil, fromRepo(op, err, nil, ErrDuplicate)
	}
	if s.OnChange != nil {
		s.OnChange(ctx, out)
	}
	return out, nil
}

// Update applies a partial update: keys present with a value are set, keys
// present with null or "" are removed, absent keys are left alone.
func (s *CRUDService[T]) Update(ctx context.Context, id string, body map[string]any) (*T, error) {
	op := s.op("Update")

	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(op, err, ErrNotFound, nil)
	}
	merged, err := toMap(existing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields := s.sanitize(body)
	changed := make([]string, 0, len(fields))
	for k, v := range fields {
		changed = append(changed, k)
		if v == nil || v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	if len(changed) == 0 {
		return existing, nil
	}

	var doc T
	if err := decodeInto(merged, &doc); err != nil {
		return nil, err
	}
	out, err := s.Repo.Update(ctx, id, &doc, changed)
	if err != nil {
		return nil, fromRepo(op, err, ErrNotFound, ErrDuplicate)
	}
	if s.OnChange != nil {
		s.OnChange(ctx, out)
	}
	return out, nil
}

func (s *CRUDService[T]) Delete(ctx context.Context, id string) (*T, error) {
	out, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepo(s.op("Delete"), err, ErrNotFound, nil)
	}
	if s.OnDelete != nil {
		s.OnDelete(ctx, out)
	}
	return out, nil
}

// sanitize keeps writable keys and normalizes case-folded ones.
func (s *CRUDService[T]) sanitize(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if !s.Spec.Writable(k) {
			continue
		}
		if str, ok := v.(string); ok {
			str = strings.TrimSpace(str)
			if s.Spec.Lowercase(k) {
				str = strings.ToLower(str)
			}
			v = str
		}
		out[k] = v
	}
	return out
}

func decodeInto(fields map[string]any, dst any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return validationError(err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return validationError(err)
	}
	if err := validation.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
