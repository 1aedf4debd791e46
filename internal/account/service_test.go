package account

import (
	"context"
	"errors"
	"testing"

	"accounthub/account-service/internal/credential"
	"accounthub/account-service/internal/models"
	"accounthub/account-service/internal/store"

	"go.uber.org/zap"
)

type fakeUserStore struct {
	findFn    func(ctx context.Context, email string) (models.User, error)
	createFn  func(ctx context.Context, user models.User, rawPassword string) (models.User, store.Result, error)
	rolesFn   func(ctx context.Context, userID string) ([]string, error)
	addRoleFn func(ctx context.Context, userID, roleID string) (store.Result, error)
	replaceFn func(ctx context.Context, userID, roleID string) (store.Result, error)
	listFn    func(ctx context.Context) ([]models.UserWithRoles, error)
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	if f.findFn == nil {
		return models.User{}, store.ErrUserNotFound
	}
	return f.findFn(ctx, email)
}

func (f *fakeUserStore) Create(ctx context.Context, user models.User, rawPassword string) (models.User, store.Result, error) {
	if f.createFn == nil {
		user.ID = "user-1"
		return user, store.OK(), nil
	}
	return f.createFn(ctx, user, rawPassword)
}

func (f *fakeUserStore) Roles(ctx context.Context, userID string) ([]string, error) {
	if f.rolesFn == nil {
		return nil, nil
	}
	return f.rolesFn(ctx, userID)
}

func (f *fakeUserStore) AddRole(ctx context.Context, userID, roleID string) (store.Result, error) {
	if f.addRoleFn == nil {
		return store.OK(), nil
	}
	return f.addRoleFn(ctx, userID, roleID)
}

func (f *fakeUserStore) ReplaceRoles(ctx context.Context, userID, roleID string) (store.Result, error) {
	if f.replaceFn == nil {
		return store.OK(), nil
	}
	return f.replaceFn(ctx, userID, roleID)
}

func (f *fakeUserStore) ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

type fakeRoleStore struct {
	findFn   func(ctx context.Context, name string) (models.Role, error)
	createFn func(ctx context.Context, name string) (models.Role, error)
	listFn   func(ctx context.Context) ([]models.Role, error)
}

func (f *fakeRoleStore) FindByName(ctx context.Context, name string) (models.Role, error) {
	if f.findFn == nil {
		return models.Role{}, store.ErrRoleNotFound
	}
	return f.findFn(ctx, name)
}

func (f *fakeRoleStore) Create(ctx context.Context, name string) (models.Role, error) {
	if f.createFn == nil {
		return models.Role{ID: "role-1", Name: name}, nil
	}
	return f.createFn(ctx, name)
}

func (f *fakeRoleStore) List(ctx context.Context) ([]models.Role, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

type fakeVerifier struct {
	checkFn func(ctx context.Context, email, password string) error
}

func (f *fakeVerifier) Check(ctx context.Context, email, password string) error {
	if f.checkFn == nil {
		return nil
	}
	return f.checkFn(ctx, email, password)
}

type fakeIssuer struct {
	generateFn func(user models.User, roles []string) (string, error)
	refreshFn  func() string
}

func (f *fakeIssuer) Generate(user models.User, roles []string) (string, error) {
	if f.generateFn == nil {
		return "session-token", nil
	}
	return f.generateFn(user, roles)
}

func (f *fakeIssuer) GenerateRefresh() string {
	if f.refreshFn == nil {
		return "refresh-token"
	}
	return f.refreshFn()
}

func newTestService(users *fakeUserStore, roles *fakeRoleStore, verifier *fakeVerifier, issuer *fakeIssuer) *Service {
	return NewService(users, roles, verifier, issuer, zap.NewNop())
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	created := false
	users := &fakeUserStore{
		findFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Email: email}, nil
		},
		createFn: func(ctx context.Context, user models.User, rawPassword string) (models.User, store.Result, error) {
			created = true
			return user, store.OK(), nil
		},
	}
	svc := newTestService(users, &fakeRoleStore{}, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Jane", Email: "jane@example.com", Password: "Secret@123", Role: "Manager",
	})
	if resp.Success {
		t.Fatal("expected failure for duplicate email")
	}
	if resp.Message != "Sorry, user is already created" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if created {
		t.Fatal("expected no create call for duplicate email")
	}
}

func TestCreateAccountCreatesUserAndRole(t *testing.T) {
	var createdRole string
	var linkedUser, linkedRole string
	users := &fakeUserStore{
		addRoleFn: func(ctx context.Context, userID, roleID string) (store.Result, error) {
			linkedUser, linkedRole = userID, roleID
			return store.OK(), nil
		},
	}
	roles := &fakeRoleStore{
		createFn: func(ctx context.Context, name string) (models.Role, error) {
			createdRole = name
			return models.Role{ID: "role-1", Name: name}, nil
		},
	}
	svc := newTestService(users, roles, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Jane", Email: "jane@example.com", Password: "Secret@123", Role: "Manager",
	})
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
	if resp.Message != "Jane assigned to Manager role." {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if createdRole != "Manager" {
		t.Fatalf("expected missing role to be auto-created, got %q", createdRole)
	}
	if linkedUser != "user-1" || linkedRole != "role-1" {
		t.Fatalf("expected role link for user-1/role-1, got %s/%s", linkedUser, linkedRole)
	}
}

func TestCreateAccountJoinsStoreErrors(t *testing.T) {
	users := &fakeUserStore{
		createFn: func(ctx context.Context, user models.User, rawPassword string) (models.User, store.Result, error) {
			return models.User{}, store.Failed(
				"Passwords must be at least 8 characters.",
				"Passwords must have at least one digit ('0'-'9').",
			), nil
		},
	}
	svc := newTestService(users, &fakeRoleStore{}, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Jane", Email: "jane@example.com", Password: "weak", Role: "Manager",
	})
	if resp.Success {
		t.Fatal("expected failure")
	}
	want := "Passwords must be at least 8 characters.\nPasswords must have at least one digit ('0'-'9')."
	if resp.Message != want {
		t.Fatalf("expected newline-joined errors, got %q", resp.Message)
	}
}

func TestAssignRoleEmptyArguments(t *testing.T) {
	touched := false
	users := &fakeUserStore{
		addRoleFn: func(ctx context.Context, userID, roleID string) (store.Result, error) {
			touched = true
			return store.OK(), nil
		},
	}
	roles := &fakeRoleStore{
		findFn: func(ctx context.Context, name string) (models.Role, error) {
			touched = true
			return models.Role{}, store.ErrRoleNotFound
		},
		createFn: func(ctx context.Context, name string) (models.Role, error) {
			touched = true
			return models.Role{}, nil
		},
	}
	svc := newTestService(users, roles, &fakeVerifier{}, &fakeIssuer{})

	for _, tc := range []struct {
		user models.User
		role string
	}{
		{models.User{}, "Manager"},
		{models.User{ID: "user-1", Name: "Jane", Email: "jane@example.com"}, ""},
	} {
		resp := svc.AssignRole(context.Background(), tc.user, tc.role)
		if resp.Success {
			t.Fatal("expected failure for empty arguments")
		}
		if resp.Message != "Model State cannot be empty" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	}
	if touched {
		t.Fatal("expected no store access for empty arguments")
	}
}

func TestCreateAdminIdempotent(t *testing.T) {
	adminCreated := 0
	roleExists := false
	users := &fakeUserStore{
		createFn: func(ctx context.Context, user models.User, rawPassword string) (models.User, store.Result, error) {
			adminCreated++
			user.ID = "admin-1"
			return user, store.OK(), nil
		},
	}
	roles := &fakeRoleStore{
		findFn: func(ctx context.Context, name string) (models.Role, error) {
			if roleExists {
				return models.Role{ID: "role-admin", Name: name}, nil
			}
			return models.Role{}, store.ErrRoleNotFound
		},
		createFn: func(ctx context.Context, name string) (models.Role, error) {
			roleExists = true
			return models.Role{ID: "role-admin", Name: name}, nil
		},
	}
	svc := newTestService(users, roles, &fakeVerifier{}, &fakeIssuer{})

	svc.CreateAdmin(context.Background())
	svc.CreateAdmin(context.Background())

	if adminCreated != 1 {
		t.Fatalf("expected exactly one admin account, got %d", adminCreated)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(&fakeUserStore{}, &fakeRoleStore{}, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.Login(context.Background(), "nobody@example.com", "Secret@123")
	if resp.Success {
		t.Fatal("expected failure for unknown email")
	}
	if resp.Message != "User Not Found" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Token != "" || resp.RefreshToken != "" {
		t.Fatal("expected no token fields on failure")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := &fakeUserStore{
		findFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Name: "Jane", Email: email}, nil
		},
	}
	verifier := &fakeVerifier{
		checkFn: func(ctx context.Context, email, password string) error {
			return credential.ErrInvalidCredential
		},
	}
	svc := newTestService(users, &fakeRoleStore{}, verifier, &fakeIssuer{})

	resp := svc.Login(context.Background(), "jane@example.com", "wrong")
	if resp.Success || resp.Message != "Invalid Credential" {
		t.Fatalf("expected Invalid Credential, got success=%v message=%q", resp.Success, resp.Message)
	}
}

func TestLoginVerifierErrorsCollapse(t *testing.T) {
	users := &fakeUserStore{
		findFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Name: "Jane", Email: email}, nil
		},
	}
	verifier := &fakeVerifier{
		checkFn: func(ctx context.Context, email, password string) error {
			return errors.New("credential backend timeout")
		},
	}
	svc := newTestService(users, &fakeRoleStore{}, verifier, &fakeIssuer{})

	resp := svc.Login(context.Background(), "jane@example.com", "Secret@123")
	if resp.Message != "Invalid Credential" {
		t.Fatalf("expected verifier internals to be hidden, got %q", resp.Message)
	}
}

func TestLoginSuccess(t *testing.T) {
	users := &fakeUserStore{
		findFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Name: "Jane", Email: email}, nil
		},
		rolesFn: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"Manager"}, nil
		},
	}
	svc := newTestService(users, &fakeRoleStore{}, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.Login(context.Background(), "jane@example.com", "Secret@123")
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
	if resp.Message != "Jane successfully logged in" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens to be populated")
	}
}

func TestLoginTokenFailureFailsClosed(t *testing.T) {
	users := &fakeUserStore{
		findFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Name: "Jane", Email: email}, nil
		},
	}
	issuer := &fakeIssuer{
		generateFn: func(user models.User, roles []string) (string, error) {
			return "", errors.New("user has no roles")
		},
	}
	svc := newTestService(users, &fakeRoleStore{}, &fakeVerifier{}, issuer)

	resp := svc.Login(context.Background(), "jane@example.com", "Secret@123")
	if resp.Success {
		t.Fatal("expected failure when no token is produced")
	}
	if resp.Message != "Error occured while logging in account, please contact administration" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Token != "" || resp.RefreshToken != "" {
		t.Fatal("expected no token fields on failure")
	}
}

func TestChangeUserRoleReplaces(t *testing.T) {
	var replacedRole string
	users := &fakeUserStore{
		findFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Name: "Jane", Email: email}, nil
		},
		replaceFn: func(ctx context.Context, userID, roleID string) (store.Result, error) {
			replacedRole = roleID
			return store.OK(), nil
		},
	}
	roles := &fakeRoleStore{
		findFn: func(ctx context.Context, name string) (models.Role, error) {
			return models.Role{ID: "role-2", Name: name}, nil
		},
	}
	svc := newTestService(users, roles, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.ChangeUserRole(context.Background(), "jane@example.com", "Auditor")
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
	if resp.Message != "Jane assigned to Auditor role." {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if replacedRole != "role-2" {
		t.Fatalf("expected roles replaced with role-2, got %q", replacedRole)
	}
}

func TestCreateRole(t *testing.T) {
	svc := newTestService(&fakeUserStore{}, &fakeRoleStore{}, &fakeVerifier{}, &fakeIssuer{})

	resp := svc.CreateRole(context.Background(), "Auditor")
	if !resp.Success || resp.Message != "Auditor role created." {
		t.Fatalf("unexpected response success=%v message=%q", resp.Success, resp.Message)
	}

	resp = svc.CreateRole(context.Background(), "")
	if resp.Success || resp.Message != "Model State cannot be empty" {
		t.Fatalf("expected empty-name failure, got success=%v message=%q", resp.Success, resp.Message)
	}
}
