package store

import (
	"context"

	"accounthub/account-service/internal/models"
)

// Result reports the outcome of a store mutation. Validation failures are
// carried as human-readable descriptions in Errors; infrastructure failures
// travel separately as Go errors.
type Result struct {
	Succeeded bool
	Errors    []string
}

func OK() Result { return Result{Succeeded: true} }

func Failed(descriptions ...string) Result { return Result{Errors: descriptions} }

type UserStore interface {
	// FindByEmail looks a user up by email, case-insensitively.
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// Create stores a new user, hashing rawPassword. Policy violations are
	// reported in the Result, not as an error.
	Create(ctx context.Context, user models.User, rawPassword string) (models.User, Result, error)
	// Roles returns the user's role names in assignment order.
	Roles(ctx context.Context, userID string) ([]string, error)
	AddRole(ctx context.Context, userID, roleID string) (Result, error)
	// ReplaceRoles drops every role the user holds and grants roleID.
	ReplaceRoles(ctx context.Context, userID, roleID string) (Result, error)
	ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error)
}

type RoleStore interface {
	FindByName(ctx context.Context, name string) (models.Role, error)
	// Create provisions the named role. Creating a role that already exists
	// returns the existing role.
	Create(ctx context.Context, name string) (models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
}
