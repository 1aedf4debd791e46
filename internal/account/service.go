package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"accounthub/account-service/internal/credential"
	"accounthub/account-service/internal/models"
	"accounthub/account-service/internal/store"

	"go.uber.org/zap"
)

const (
	// AdminRole is the privileged role seeded by CreateAdmin. Its existence
	// doubles as the bootstrap idempotency marker.
	AdminRole = "Admin"

	adminName     = "Admin"
	adminEmail    = "admin@admin.com"
	adminPassword = "Admin@123"
)

type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// TokenIssuer mints session and refresh tokens after authentication.
type TokenIssuer interface {
	Generate(user models.User, roles []string) (string, error)
	GenerateRefresh() string
}

// Accounts is the operation surface the transport layer consumes.
type Accounts interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) GeneralResponse
	Login(ctx context.Context, email, password string) LoginResponse
	CreateRole(ctx context.Context, name string) GeneralResponse
	ChangeUserRole(ctx context.Context, email, roleName string) GeneralResponse
	Roles(ctx context.Context) ([]models.Role, error)
	UsersWithRoles(ctx context.Context) ([]models.UserWithRoles, error)
}

// Service orchestrates account creation, role assignment, admin bootstrap,
// and login. Every operation converts failures into a response envelope; no
// error propagates to the caller.
type Service struct {
	users    store.UserStore
	roles    store.RoleStore
	verifier credential.Verifier
	tokens   TokenIssuer
	log      *zap.Logger
}

func NewService(users store.UserStore, roles store.RoleStore, verifier credential.Verifier, tokens TokenIssuer, log *zap.Logger) *Service {
	return &Service{
		users:    users,
		roles:    roles,
		verifier: verifier,
		tokens:   tokens,
		log:      log,
	}
}

func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) GeneralResponse {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return GeneralResponse{Message: "Sorry, user is already created"}
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return GeneralResponse{Message: err.Error()}
	}

	user := models.User{Name: input.Name, Email: input.Email}
	created, result, err := s.users.Create(ctx, user, input.Password)
	if err != nil {
		return GeneralResponse{Message: err.Error()}
	}
	if !result.Succeeded {
		return GeneralResponse{Message: joinDescriptions(result)}
	}

	return s.AssignRole(ctx, created, input.Role)
}

// AssignRole grants roleName to the user, provisioning the role first when it
// does not exist yet.
func (s *Service) AssignRole(ctx context.Context, user models.User, roleName string) GeneralResponse {
	if user.Email == "" || roleName == "" {
		return GeneralResponse{Message: "Model State cannot be empty"}
	}

	role, err := s.roles.FindByName(ctx, roleName)
	if errors.Is(err, store.ErrRoleNotFound) {
		role, err = s.roles.Create(ctx, roleName)
	}
	if err != nil {
		return GeneralResponse{Message: err.Error()}
	}

	result, err := s.users.AddRole(ctx, user.ID, role.ID)
	if err != nil {
		return GeneralResponse{Message: err.Error()}
	}
	if !result.Succeeded {
		return GeneralResponse{Message: joinDescriptions(result)}
	}

	return GeneralResponse{
		Success: true,
		Message: fmt.Sprintf("%s assigned to %s role.", user.Name, role.Name),
	}
}

// CreateAdmin seeds the privileged account once. It is a no-op when the
// admin role already exists, and never fails startup.
func (s *Service) CreateAdmin(ctx context.Context) {
	_, err := s.roles.FindByName(ctx, AdminRole)
	if err == nil {
		return
	}
	if !errors.Is(err, store.ErrRoleNotFound) {
		s.log.Warn("admin bootstrap skipped", zap.Error(err))
		return
	}

	resp := s.CreateAccount(ctx, CreateAccountInput{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     AdminRole,
	})
	if !resp.Success {
		s.log.Warn("admin bootstrap failed", zap.String("message", resp.Message))
		return
	}
	s.log.Info("admin account seeded")
}

func (s *Service) Login(ctx context.Context, email, password string) LoginResponse {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return LoginResponse{Message: "User Not Found"}
		}
		return LoginResponse{Message: err.Error()}
	}

	// Any verifier failure collapses to the same message; callers learn
	// nothing about why the credential was rejected.
	if err := s.verifier.Check(ctx, user.Email, password); err != nil {
		return LoginResponse{Message: "Invalid Credential"}
	}

	roles, err := s.users.Roles(ctx, user.ID)
	if err != nil {
		return LoginResponse{Message: err.Error()}
	}

	sessionToken, err := s.tokens.Generate(user, roles)
	refreshToken := s.tokens.GenerateRefresh()
	if err != nil || sessionToken == "" || refreshToken == "" {
		if err != nil {
			s.log.Error("session token issue failed", zap.String("email", user.Email), zap.Error(err))
		}
		return LoginResponse{Message: "Error occured while logging in account, please contact administration"}
	}

	return LoginResponse{
		Success:      true,
		Message:      fmt.Sprintf("%s successfully logged in", user.Name),
		Token:        sessionToken,
		RefreshToken: refreshToken,
	}
}

func (s *Service) CreateRole(ctx context.Context, name string) GeneralResponse {
	if name == "" {
		return GeneralResponse{Message: "Model State cannot be empty"}
	}

	role, err := s.roles.Create(ctx, name)
	if err != nil {
		return GeneralResponse{Message: err.Error()}
	}
	return GeneralResponse{Success: true, Message: fmt.Sprintf("%s role created.", role.Name)}
}

// ChangeUserRole replaces every role the user holds with roleName,
// provisioning it first when missing.
func (s *Service) ChangeUserRole(ctx context.Context, email, roleName string) GeneralResponse {
	if email == "" || roleName == "" {
		return GeneralResponse{Message: "Model State cannot be empty"}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return GeneralResponse{Message: "User Not Found"}
		}
		return GeneralResponse{Message: err.Error()}
	}

	role, err := s.roles.FindByName(ctx, roleName)
	if errors.Is(err, store.ErrRoleNotFound) {
		role, err = s.roles.Create(ctx, roleName)
	}
	if err != nil {
		return GeneralResponse{Message: err.Error()}
	}

	result, err := s.users.ReplaceRoles(ctx, user.ID, role.ID)
	if err != nil {
		return GeneralResponse{Message: err.Error()}
	}
	if !result.Succeeded {
		return GeneralResponse{Message: joinDescriptions(result)}
	}

	return GeneralResponse{
		Success: true,
		Message: fmt.Sprintf("%s assigned to %s role.", user.Name, role.Name),
	}
}

func (s *Service) Roles(ctx context.Context) ([]models.Role, error) {
	return s.roles.List(ctx)
}

func (s *Service) UsersWithRoles(ctx context.Context) ([]models.UserWithRoles, error) {
	return s.users.ListWithRoles(ctx)
}

func joinDescriptions(result store.Result) string {
	return strings.Join(result.Errors, "\n")
}
