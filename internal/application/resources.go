package application

import (
	"context"

	"github.com/rohn-shah/diode-be/internal/domain/entity"
	repo "github.com/rohn-shah/diode-be/internal/domain/repository"
)

var CompanySpec = repo.ResourceSpec{
	Name:            "company",
	Collection:      "companies",
	SearchFields:    []string{"name", "email", "industry"},
	RegexFields:     []string{"name", "industry"},
	FilterFields:    []string{"size", "isActive", "email"},
	WritableFields:  []string{"name", "email", "phone", "address", "website", "industry", "size", "logo", "isActive"},
	LowercaseFields: []string{"email"},
	Defaults:        map[string]any{"size": entity.DefaultCompanySize, "isActive": true},
}

var UserSpec = repo.ResourceSpec{
	Name:            "user",
	Collection:      "users",
	SearchFields:    []string{"firstName", "lastName", "email"},
	RegexFields:     []string{"firstName", "lastName", "department"},
	FilterFields:    []string{"role", "companyId", "isActive", "isEmailVerified", "email", "position"},
	WritableFields:  []string{"email", "firstName", "lastName", "role", "companyId", "department", "position", "phone", "avatar", "isActive"},
	LowercaseFields: []string{"email"},
	Defaults:        map[string]any{"role": string(entity.RoleUser), "isActive": true},
	ObjectIDFields:  []string{"companyId"},
}

var EmployeeSpec = repo.ResourceSpec{
	Name:            "employee",
	Collection:      "employees",
	SearchFields:    []string{"firstName", "lastName", "email", "employeeId"},
	RegexFields:     []string{"firstName", "lastName"},
	FilterFields:    []string{"department", "position", "isActive", "email", "employeeId"},
	WritableFields:  []string{"employeeId", "firstName", "lastName", "email", "phone", "department", "position", "isActive"},
	LowercaseFields: []string{"email"},
	Defaults:        map[string]any{"isActive": true},
}

// WireUserHooks keeps the search index and sessions in step with admin edits of users.
func WireUserHooks(crud *CRUDService[entity.User], users *UserService, tokens repo.RefreshTokenRepository) {
	crud.OnChange = func(ctx context.Context, u *entity.User) {
		_ = users.IndexUser(ctx, u)
	}
	crud.OnDelete = func(ctx context.Context, u *entity.User) {
		_ = users.RemoveFromIndex(ctx, u.ID.Hex())
		if tokens == nil {
			return
		}
		if _, err := tokens.RevokeAllForUser(ctx, u.ID.Hex()); err != nil {
			users.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("revoke sessions of deleted user failed")
		}
	}
}
